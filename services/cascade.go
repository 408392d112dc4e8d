package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/autolane/car-service-api/models"
)

// Cascade deletes are explicit rather than delegated to database constraints
// so they behave identically on PostgreSQL and SQLite, and so that deleting a
// service can re-derive the sums of the orders it was billed on.

// DeleteOrder removes an order together with its entries and comments, as one
// atomic unit of work
func DeleteOrder(ctx context.Context, db *gorm.DB, orderID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteOrderTx(tx, orderID)
	})
}

func deleteOrderTx(tx *gorm.DB, orderID uint) error {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		return notFoundOr(err, "order", orderID)
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderEntry{}).Error; err != nil {
		return wrapStoreError(err)
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderComment{}).Error; err != nil {
		return wrapStoreError(err)
	}
	if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// DeleteCar removes a car together with all of its orders (and their entries
// and comments)
func DeleteCar(ctx context.Context, db *gorm.DB, carID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCarTx(tx, carID)
	})
}

func deleteCarTx(tx *gorm.DB, carID uint) error {
	var car models.Car
	if err := tx.First(&car, carID).Error; err != nil {
		return notFoundOr(err, "car", carID)
	}
	var orderIDs []uint
	if err := tx.Model(&models.Order{}).Where("car_id = ?", carID).
		Pluck("id", &orderIDs).Error; err != nil {
		return wrapStoreError(err)
	}
	for _, id := range orderIDs {
		if err := deleteOrderTx(tx, id); err != nil {
			return err
		}
	}
	if err := tx.Delete(&models.Car{}, carID).Error; err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// DeleteCarModel removes a car model together with all of its cars (and their
// orders)
func DeleteCarModel(ctx context.Context, db *gorm.DB, modelID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var carModel models.CarModel
		if err := tx.First(&carModel, modelID).Error; err != nil {
			return notFoundOr(err, "car model", modelID)
		}
		var carIDs []uint
		if err := tx.Model(&models.Car{}).Where("car_model_id = ?", modelID).
			Pluck("id", &carIDs).Error; err != nil {
			return wrapStoreError(err)
		}
		for _, id := range carIDs {
			if err := deleteCarTx(tx, id); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.CarModel{}, modelID).Error; err != nil {
			return wrapStoreError(err)
		}
		return nil
	})
}

// DeleteService removes a catalog service together with the order entries
// that reference it, then re-derives the sum of every order that lost an
// entry, all as one atomic unit of work
func DeleteService(ctx context.Context, db *gorm.DB, serviceID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.First(&service, serviceID).Error; err != nil {
			return notFoundOr(err, "service", serviceID)
		}

		var orderIDs []uint
		if err := tx.Model(&models.OrderEntry{}).Where("service_id = ?", serviceID).
			Distinct().Pluck("order_id", &orderIDs).Error; err != nil {
			return wrapStoreError(err)
		}

		if err := tx.Where("service_id = ?", serviceID).Delete(&models.OrderEntry{}).Error; err != nil {
			return wrapStoreError(err)
		}
		if err := tx.Delete(&models.Service{}, serviceID).Error; err != nil {
			return wrapStoreError(err)
		}

		for _, id := range orderIDs {
			if err := recomputeSum(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}
