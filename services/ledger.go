package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autolane/car-service-api/models"
)

// MoneyScale is the number of fractional digits kept on stored monetary
// values (price, quantity, total, order sum)
const MoneyScale = 2

// Ledger owns Order/OrderEntry consistency: it is the only path that may
// write order sums, and it guarantees that an order's sum always equals the
// sum of its entries' totals after any entry mutation settles.
type Ledger struct {
	db *gorm.DB

	// per-order locks serialize sum recomputation for the same order;
	// mutations against different orders proceed in parallel
	locks sync.Map // map[uint]*sync.Mutex
}

// NewLedger creates a ledger over the given database handle
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

var ledgerInstance *Ledger

// InitLedger initializes the shared ledger instance over the given database
// handle. The instance must be shared so that per-order locks are too.
func InitLedger(db *gorm.DB) *Ledger {
	ledgerInstance = NewLedger(db)
	return ledgerInstance
}

// GetLedger returns the initialized ledger instance
func GetLedger() *Ledger {
	return ledgerInstance
}

func (l *Ledger) lockOrder(orderID uint) func() {
	v, _ := l.locks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// AddEntry creates a new billable entry on an order and recomputes the
// order's sum, as one atomic unit of work. If price is zero, the current
// catalog price of the service is captured at this moment.
func (l *Ledger) AddEntry(ctx context.Context, orderID, serviceID uint, quantity, price decimal.Decimal) (*models.OrderEntry, error) {
	if err := validateEntryInput(quantity, price); err != nil {
		return nil, err
	}

	defer l.lockOrder(orderID)()

	var entry models.OrderEntry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "order", orderID)
		}

		var service models.Service
		if err := tx.First(&service, serviceID).Error; err != nil {
			return notFoundOr(err, "service", serviceID)
		}

		if price.IsZero() {
			price = service.Price
		}

		entry = models.OrderEntry{
			Quantity:  quantity.Round(MoneyScale),
			Price:     price.Round(MoneyScale),
			OrderID:   orderID,
			ServiceID: serviceID,
		}
		entry.Total = entry.Price.Mul(entry.Quantity).Round(MoneyScale)

		if err := tx.Create(&entry).Error; err != nil {
			return wrapStoreError(err)
		}
		return recomputeSum(tx, orderID)
	})
	if err != nil {
		return nil, err
	}

	if err := l.db.WithContext(ctx).Preload("Service").First(&entry, entry.ID).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return &entry, nil
}

// UpdateEntry changes an existing entry's service, quantity and/or price and
// recomputes the parent order's sum, as one atomic unit of work. A zero price
// re-captures the current catalog price of the entry's service.
func (l *Ledger) UpdateEntry(ctx context.Context, entryID, serviceID uint, quantity, price decimal.Decimal) (*models.OrderEntry, error) {
	if err := validateEntryInput(quantity, price); err != nil {
		return nil, err
	}

	var entry models.OrderEntry
	if err := l.db.WithContext(ctx).First(&entry, entryID).Error; err != nil {
		return nil, notFoundOr(err, "order entry", entryID)
	}

	defer l.lockOrder(entry.OrderID)()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// re-read under the lock; the entry may have changed or vanished
		if err := tx.First(&entry, entryID).Error; err != nil {
			return notFoundOr(err, "order entry", entryID)
		}

		if serviceID == 0 {
			serviceID = entry.ServiceID
		}
		var service models.Service
		if err := tx.First(&service, serviceID).Error; err != nil {
			return notFoundOr(err, "service", serviceID)
		}

		if price.IsZero() {
			price = service.Price
		}

		entry.ServiceID = serviceID
		entry.Quantity = quantity.Round(MoneyScale)
		entry.Price = price.Round(MoneyScale)
		entry.Total = entry.Price.Mul(entry.Quantity).Round(MoneyScale)

		if err := tx.Save(&entry).Error; err != nil {
			return wrapStoreError(err)
		}
		return recomputeSum(tx, entry.OrderID)
	})
	if err != nil {
		return nil, err
	}

	if err := l.db.WithContext(ctx).Preload("Service").First(&entry, entry.ID).Error; err != nil {
		return nil, wrapStoreError(err)
	}
	return &entry, nil
}

// RemoveEntry deletes an entry and recomputes the parent order's sum (the
// empty sum is 0), as one atomic unit of work
func (l *Ledger) RemoveEntry(ctx context.Context, entryID uint) error {
	var entry models.OrderEntry
	if err := l.db.WithContext(ctx).First(&entry, entryID).Error; err != nil {
		return notFoundOr(err, "order entry", entryID)
	}

	defer l.lockOrder(entry.OrderID)()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, entryID).Error; err != nil {
			return notFoundOr(err, "order entry", entryID)
		}
		if err := tx.Delete(&models.OrderEntry{}, entryID).Error; err != nil {
			return wrapStoreError(err)
		}
		return recomputeSum(tx, entry.OrderID)
	})
}

// RecomputeOrderSum re-derives and persists the order's sum from its current
// entries and returns it. Idempotent: recomputing twice without an
// intervening mutation yields the same value.
func (l *Ledger) RecomputeOrderSum(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	defer l.lockOrder(orderID)()

	var sum decimal.Decimal
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "order", orderID)
		}
		if err := recomputeSum(tx, orderID); err != nil {
			return err
		}
		if err := tx.First(&order, orderID).Error; err != nil {
			return wrapStoreError(err)
		}
		sum = order.OrderSum
		return nil
	})
	return sum, err
}

// ListEntries returns the order's entries ordered by service name (stable:
// ties broken by entry id)
func (l *Ledger) ListEntries(ctx context.Context, orderID uint) ([]models.OrderEntry, error) {
	var order models.Order
	if err := l.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return nil, notFoundOr(err, "order", orderID)
	}

	var entries []models.OrderEntry
	err := l.db.WithContext(ctx).
		Joins("JOIN services ON services.id = order_entries.service_id").
		Where("order_entries.order_id = ?", orderID).
		Order("services.name ASC, order_entries.id ASC").
		Preload("Service").
		Find(&entries).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return entries, nil
}

// recomputeSum re-derives the order's sum from its entries inside the caller's
// transaction. Summing in Go keeps the arithmetic in fixed-point decimal
// instead of whatever the driver's SUM() returns.
func recomputeSum(tx *gorm.DB, orderID uint) error {
	var entries []models.OrderEntry
	if err := tx.Where("order_id = ?", orderID).Find(&entries).Error; err != nil {
		return wrapStoreError(err)
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Total)
	}

	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
		Update("order_sum", sum.Round(MoneyScale)).Error; err != nil {
		return wrapStoreError(err)
	}
	return nil
}

func validateEntryInput(quantity, price decimal.Decimal) error {
	if !quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if price.IsNegative() {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	return nil
}
