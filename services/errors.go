package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// NotFoundError indicates that a referenced order, service or entry does not
// exist
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ValidationError indicates invalid input (non-positive quantity, negative
// price, out-of-range status)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConcurrencyError indicates a transaction conflict during an atomic unit of
// work; the caller may retry the operation
type ConcurrencyError struct {
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("transaction conflict: %v", e.Err)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// StoreUnavailableError indicates that the underlying persistent store failed
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// wrapStoreError classifies a raw store error into one of the ledger's error
// kinds. Conflict detection matches on driver messages because gorm does not
// expose a portable error code for them (works with both PostgreSQL and
// SQLite).
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var ve *ValidationError
	var ce *ConcurrencyError
	var se *StoreUnavailableError
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "serialize") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "database is locked") {
		return &ConcurrencyError{Err: err}
	}
	return &StoreUnavailableError{Err: err}
}

// notFoundOr maps gorm's record-not-found to a NotFoundError for the given
// resource, and classifies anything else as a store failure
func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return wrapStoreError(err)
}
