package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

var ErrInvalidQuantity = fmt.Errorf("%w: quantity must be greater than zero", utils.ErrValidation)

// decrementStock takes qty units off the product only if that many are on hand.
// It reports false when the guard did not match.
func decrementStock(tx *gorm.DB, productId int, qty int) (bool, error) {
	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productId, qty).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func incrementStock(tx *gorm.DB, productId int, qty int) error {
	result := tx.Model(&Product{}).
		Where("id = ?", productId).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// CheckStockAvailability reports whether qty units of the product are on hand.
func CheckStockAvailability(ctx context.Context, productId int, qty int) (bool, error) {
	if qty <= 0 {
		return false, ErrInvalidQuantity
	}
	product, err := GetProduct(ctx, productId)
	if err != nil {
		return false, err
	}
	return product.Stock >= qty, nil
}

// AdjustStock is a manual correction by delta units. Results below zero are refused
// with ErrNegativeStock and leave the product unchanged.
func AdjustStock(ctx context.Context, productId int, delta int) (*Product, error) {
	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	product, err := utils.FetchModelTx[Product](ctx, tx, productId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if delta == 0 {
		tx.Rollback()
		return product, nil
	}
	newStock := product.Stock + delta
	if newStock < 0 {
		tx.Rollback()
		return nil, ErrNegativeStock
	}

	if delta > 0 {
		err = incrementStock(tx, productId, delta)
	} else {
		var ok bool
		ok, err = decrementStock(tx, productId, -delta)
		if err == nil && !ok {
			err = ErrNegativeStock
		}
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	details := fmt.Sprintf("Updated product %s (ID: %d): stock=%d", product.Name, product.ID, newStock)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionUpdateProduct, details); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	product.Stock = newStock
	return product, nil
}
