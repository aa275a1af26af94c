package models_test

import (
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductRejectsDuplicateSku(t *testing.T) {
	ctx := openTestDB(t)

	first := createProduct(t, ctx, "LAPTOP001", "999.99", 20)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("999.99")))

	_, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:   "LAPTOP001",
		Name:  "Another laptop",
		Price: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, models.ErrDuplicateSku)

	products, err := models.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCreateProductValidation(t *testing.T) {
	ctx := openTestDB(t)

	_, err := models.CreateProduct(ctx, &models.NewProduct{Sku: "A1", Name: "A", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, models.ErrNegativePrice)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = models.CreateProduct(ctx, &models.NewProduct{Sku: "A1", Name: "A", Stock: -3})
	assert.ErrorIs(t, err, models.ErrNegativeStock)

	_, err = models.CreateProduct(ctx, &models.NewProduct{Sku: "  ", Name: "A"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	products, err := models.GetProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetProductNotFound(t *testing.T) {
	ctx := openTestDB(t)

	_, err := models.GetProduct(ctx, 42)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	_, err = models.GetProductBySku(ctx, "NOPE")
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestUpdateProductOnlyTouchesGivenFields(t *testing.T) {
	ctx := openTestDB(t)
	p := createProduct(t, ctx, "MOUSE01", "25", 10)

	updated, err := models.UpdateProduct(ctx, p.ID, &models.ProductUpdate{})
	require.NoError(t, err)
	assert.False(t, updated)

	price := decimal.RequireFromString("19.50")
	updated, err = models.UpdateProduct(ctx, p.ID, &models.ProductUpdate{
		Price:    &price,
		Category: strPtr("Accessories"),
	})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := models.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, "Accessories", got.Category)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Sku, got.Sku)
	assert.Equal(t, 10, got.Stock)
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))

	negative := decimal.NewFromInt(-5)
	_, err = models.UpdateProduct(ctx, p.ID, &models.ProductUpdate{Price: &negative})
	assert.ErrorIs(t, err, models.ErrNegativePrice)
	_, err = models.UpdateProduct(ctx, p.ID, &models.ProductUpdate{Stock: intPtr(-1)})
	assert.ErrorIs(t, err, models.ErrNegativeStock)
	_, err = models.UpdateProduct(ctx, p.ID, &models.ProductUpdate{Name: strPtr(" ")})
	assert.ErrorIs(t, err, models.ErrProductNameEmpty)

	_, err = models.UpdateProduct(ctx, 999, &models.ProductUpdate{Stock: intPtr(1)})
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	got, err = models.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	assert.True(t, got.Price.Equal(price))
}

func TestDeleteProduct(t *testing.T) {
	ctx := openTestDB(t)
	keep := createProduct(t, ctx, "KEEP", "5", 10)
	drop := createProduct(t, ctx, "DROP", "5", 10)

	_, created, err := models.CreateSalesOrder(ctx, &models.NewSalesOrder{ProductId: keep.ID, Quantity: 1})
	require.NoError(t, err)
	require.True(t, created)

	deleted, err := models.DeleteProduct(ctx, keep.ID)
	assert.ErrorIs(t, err, models.ErrProductInUse)
	assert.False(t, deleted)

	deleted, err = models.DeleteProduct(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = models.GetProduct(ctx, drop.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	deleted, err = models.DeleteProduct(ctx, drop.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
	assert.False(t, deleted)
}

func TestSearchProducts(t *testing.T) {
	ctx := openTestDB(t)
	createProduct(t, ctx, "KB-100", "30", 5)
	createProduct(t, ctx, "LAPTOP001", "999", 5)
	_, err := models.CreateProduct(ctx, &models.NewProduct{Sku: "X1", Name: "Keyboard cover", Category: "Covers"})
	require.NoError(t, err)

	results, err := models.SearchProducts(ctx, "kb")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "KB-100", results[0].Sku)

	results, err = models.SearchProducts(ctx, "COVER")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "X1", results[0].Sku)

	results, err = models.SearchProducts(ctx, "product")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Product KB-100", results[0].Name)
	assert.Equal(t, "Product LAPTOP001", results[1].Name)

	results, err = models.SearchProducts(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetLowStockProducts(t *testing.T) {
	ctx := openTestDB(t)
	createProduct(t, ctx, "S10", "1", 10)
	createProduct(t, ctx, "S3", "1", 3)
	createProduct(t, ctx, "S100", "1", 100)
	createProduct(t, ctx, "S2", "1", 2)

	results, err := models.GetLowStockProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Stock)
	assert.Equal(t, 3, results[1].Stock)

	t.Setenv("LOW_STOCK_THRESHOLD", "10")
	results, err = models.GetLowStockProductsDefault(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestAdjustStock(t *testing.T) {
	ctx := openTestDB(t)
	p := createProduct(t, ctx, "ADJ", "1", 5)

	got, err := models.AdjustStock(ctx, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Stock)

	got, err = models.AdjustStock(ctx, p.ID, -12)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	_, err = models.AdjustStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, models.ErrNegativeStock)

	stored, err := models.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)

	ok, err := models.CheckStockAvailability(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = models.CheckStockAvailability(ctx, p.ID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}
