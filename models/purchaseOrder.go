package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
)

var ErrNegativeUnitPrice = fmt.Errorf("%w: unit price must not be negative", utils.ErrValidation)

type PurchaseOrder struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	SupplierId   *int            `gorm:"index" json:"supplier_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	OrderDate    time.Time       `gorm:"index;not null" json:"order_date"`
	ProductName  string          `gorm:"->;-:migration" json:"product_name"`
	ProductSku   string          `gorm:"->;-:migration" json:"product_sku"`
	SupplierName *string         `gorm:"->;-:migration" json:"supplier_name"`
}

type NewPurchaseOrder struct {
	ProductId  int             `json:"product_id"`
	SupplierId *int            `json:"supplier_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (input *NewPurchaseOrder) validate() error {
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if input.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	// zero means no supplier
	if input.SupplierId != nil && *input.SupplierId == 0 {
		input.SupplierId = nil
	}
	return nil
}

// CreatePurchaseOrder receives input.Quantity units. Order, stock increment and
// audit entry commit together.
func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	product, err := utils.FetchModelTx[Product](ctx, tx, input.ProductId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	var supplier *Supplier
	if input.SupplierId != nil {
		supplier, err = utils.FetchModelTx[Supplier](ctx, tx, *input.SupplierId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	order := PurchaseOrder{
		ProductId:  product.ID,
		SupplierId: input.SupplierId,
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
		TotalPrice: input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
		OrderDate:  time.Now().UTC(),
	}
	// db action
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := incrementStock(tx, product.ID, input.Quantity); err != nil {
		tx.Rollback()
		return nil, err
	}

	details := fmt.Sprintf("Purchased %d units of %s (Order ID: %d, Total: $%s)",
		input.Quantity, product.Name, order.ID, order.TotalPrice.StringFixed(2))
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionCreatePurchaseOrder, details); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.ProductName = product.Name
	order.ProductSku = product.Sku
	if supplier != nil {
		order.SupplierName = &supplier.Name
	}
	return &order, nil
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	results, err := queryPurchaseOrders(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return results[0], nil
}

// GetPurchaseOrders lists orders inside the optional range, newest first, with product and supplier names.
func GetPurchaseOrders(ctx context.Context, dateRange *DateRange) ([]*PurchaseOrder, error) {
	return queryPurchaseOrders(ctx, dateRange, 0)
}

func queryPurchaseOrders(ctx context.Context, dateRange *DateRange, id int) ([]*PurchaseOrder, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	dbCtx := db.WithContext(ctx).Model(&PurchaseOrder{}).
		Select("purchase_orders.*, products.name AS product_name, products.sku AS product_sku, suppliers.name AS supplier_name").
		Joins("JOIN products ON products.id = purchase_orders.product_id").
		Joins("LEFT JOIN suppliers ON suppliers.id = purchase_orders.supplier_id")
	if id > 0 {
		dbCtx = dbCtx.Where("purchase_orders.id = ?", id)
	}
	dbCtx = dateRange.apply(dbCtx, "purchase_orders.order_date")

	var results []*PurchaseOrder
	if err := dbCtx.Order("purchase_orders.order_date DESC").Order("purchase_orders.id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
