package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrDuplicateSku     = errors.New("duplicate sku")
	ErrNegativePrice    = fmt.Errorf("%w: price must not be negative", utils.ErrValidation)
	ErrNegativeStock    = fmt.Errorf("%w: stock must not be negative", utils.ErrValidation)
	ErrProductNameEmpty = fmt.Errorf("%w: product name is required", utils.ErrValidation)
	ErrProductInUse     = errors.New("product is referenced by orders")
)

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Sku         string          `gorm:"size:50;not null;unique" json:"sku"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Sku         string          `json:"sku" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=100"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
}

// ProductUpdate holds the fields a manual correction may change; nil means unchanged.
// sku, id and timestamps are not part of it.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	Description *string          `json:"description"`
}

func (input *NewProduct) validate() error {
	input.Sku = strings.TrimSpace(input.Sku)
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if input.Price.IsNegative() {
		return ErrNegativePrice
	}
	if input.Stock < 0 {
		return ErrNegativeStock
	}
	return utils.ValidateStruct(input)
}

func (input *ProductUpdate) isEmpty() bool {
	return input == nil || (input.Name == nil && input.Price == nil && input.Category == nil &&
		input.Stock == nil && input.Description == nil)
}

// columns returns the column values to write and a readable summary for the audit log
func (input *ProductUpdate) columns() (map[string]interface{}, string, error) {
	updates := make(map[string]interface{})
	var changes []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, "", ErrProductNameEmpty
		}
		updates["name"] = name
		changes = append(changes, "name="+name)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, "", ErrNegativePrice
		}
		updates["price"] = *input.Price
		changes = append(changes, "price="+input.Price.StringFixed(2))
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		updates["category"] = category
		changes = append(changes, "category="+category)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, "", ErrNegativeStock
		}
		updates["stock"] = *input.Stock
		changes = append(changes, fmt.Sprintf("stock=%d", *input.Stock))
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		changes = append(changes, "description="+*input.Description)
	}
	updates["updated_at"] = time.Now().UTC()
	return updates, strings.Join(changes, ", "), nil
}

// CreateProduct adds a catalog entry. An existing sku yields ErrDuplicateSku and nothing is written.
func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	if err := utils.ValidateUnique[Product](ctx, db, "sku", input.Sku, nil); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, ErrDuplicateSku
		}
		return nil, err
	}

	product := Product{
		Sku:         input.Sku,
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Description: input.Description,
	}

	tx := db.WithContext(ctx).Begin()
	// db action
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	details := fmt.Sprintf("Added product: %s (SKU: %s)", product.Name, product.Sku)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionAddProduct, details); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return GetResource[Product](ctx, id)
}

func GetProductBySku(ctx context.Context, sku string) (*Product, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	var result Product
	err := db.WithContext(ctx).Where("sku = ?", strings.TrimSpace(sku)).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	return ListAllResource[Product](ctx, "name")
}

// SearchProducts matches term case-insensitively anywhere in name, sku or category.
func SearchProducts(ctx context.Context, term string) ([]*Product, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	pattern := likePattern(term)
	var results []*Product
	err := db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateProduct applies the set fields of input. It reports false without
// touching the row when input sets nothing.
func UpdateProduct(ctx context.Context, id int, input *ProductUpdate) (bool, error) {
	if input.isEmpty() {
		return false, nil
	}
	updates, changes, err := input.columns()
	if err != nil {
		return false, err
	}

	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return false, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	product, err := utils.FetchModelTx[Product](ctx, tx, id)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	// db action
	if err := tx.Model(&Product{}).Where("id = ?", id).UpdateColumns(updates).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	details := fmt.Sprintf("Updated product %s (ID: %d): %s", product.Name, product.ID, changes)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionUpdateProduct, details); err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}

// DeleteProduct removes the row for good. This is not an unconditional hard
// delete: a product referenced by any sales or purchase order is refused with
// ErrProductInUse, so order listings never lose their product rows.
func DeleteProduct(ctx context.Context, id int) (bool, error) {
	unlock := config.AcquireWriteLock()
	defer unlock()

	db := config.GetDB()
	if db == nil {
		return false, config.ErrDatabaseNotConnected
	}
	tx := db.WithContext(ctx).Begin()
	product, err := utils.FetchModelTx[Product](ctx, tx, id)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	count, err := utils.ResourceCountWhere[SalesOrder](ctx, tx, "product_id = ?", id)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if count == 0 {
		count, err = utils.ResourceCountWhere[PurchaseOrder](ctx, tx, "product_id = ?", id)
		if err != nil {
			tx.Rollback()
			return false, err
		}
	}
	if count > 0 {
		tx.Rollback()
		return false, ErrProductInUse
	}

	// db action
	if err := tx.Delete(&Product{}, id).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	details := fmt.Sprintf("Deleted product: %s (SKU: %s, ID: %d)", product.Name, product.Sku, product.ID)
	if err := RecordAudit(tx, utils.GetAuditUser(ctx), AuditActionDeleteProduct, details); err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}

// GetLowStockProducts returns products with stock at or below threshold, lowest stock first.
func GetLowStockProducts(ctx context.Context, threshold int) ([]*Product, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}
	var results []*Product
	if err := db.WithContext(ctx).Where("stock <= ?", threshold).Order("stock ASC").Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockProductsDefault uses the configured LOW_STOCK_THRESHOLD.
func GetLowStockProductsDefault(ctx context.Context) ([]*Product, error) {
	return GetLowStockProducts(ctx, config.LowStockThreshold())
}
