package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesOrder struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	OrderDate   time.Time       `gorm:"index;not null" json:"order_date"`
	ProductName string          `gorm:"->;-:migration" json:"product_name"`
	ProductSku  string          `gorm:"->;-:migration" json:"product_sku"`
}

type NewSalesOrder struct {
	ProductId int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CreateSalesOrder sells input.Quantity units at the product's current price.
// Insufficient stock is not an error: the call returns created == false and
// nothing is written. Order, stock decrement and audit entry commit together.
func CreateSalesOrder(ctx context.Context, input *NewSalesOrder) (*SalesOrder, bool, error) {
	if input.Quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, false, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	product, err := utils.FetchModelTx[Product](ctx, tx, input.ProductId)
	if err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if product.Stock < input.Quantity {
		tx.Rollback()
		config.LogInfo(config.GetLogger(), "Models", "CreateSalesOrder", "insufficient stock", map[string]int{
			"product_id": product.ID,
			"stock":      product.Stock,
			"quantity":   input.Quantity,
		})
		return nil, false, nil
	}

	order := SalesOrder{
		ProductId:  product.ID,
		Quantity:   input.Quantity,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		OrderDate:  time.Now().UTC(),
	}
	// db action
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, false, err
	}
	ok, err := decrementStock(tx, product.ID, input.Quantity)
	if err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if !ok {
		tx.Rollback()
		return nil, false, nil
	}

	details := fmt.Sprintf("Sold %d units of %s (Order ID: %d, Total: $%s)",
		input.Quantity, product.Name, order.ID, order.TotalPrice.StringFixed(2))
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionCreateSalesOrder, details); err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}

	order.ProductName = product.Name
	order.ProductSku = product.Sku
	return &order, true, nil
}

func GetSalesOrder(ctx context.Context, id int) (*SalesOrder, error) {
	results, err := querySalesOrders(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return results[0], nil
}

// GetSalesOrders lists orders inside the optional range, newest first, with product name and sku.
func GetSalesOrders(ctx context.Context, dateRange *DateRange) ([]*SalesOrder, error) {
	return querySalesOrders(ctx, dateRange, 0)
}

func querySalesOrders(ctx context.Context, dateRange *DateRange, id int) ([]*SalesOrder, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	dbCtx := db.WithContext(ctx).Model(&SalesOrder{}).
		Select("sales_orders.*, products.name AS product_name, products.sku AS product_sku").
		Joins("JOIN products ON products.id = sales_orders.product_id")
	if id > 0 {
		dbCtx = dbCtx.Where("sales_orders.id = ?", id)
	}
	dbCtx = dateRange.apply(dbCtx, "sales_orders.order_date")

	var results []*SalesOrder
	if err := dbCtx.Order("sales_orders.order_date DESC").Order("sales_orders.id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
