package models_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// openTestDB gives each test a fresh data file and an operator in the context.
func openTestDB(t *testing.T) context.Context {
	t.Helper()
	config.SetLogLevel("error")

	path := filepath.Join(t.TempDir(), "data", "inventory.sqlite")
	require.NoError(t, models.Open(path))
	t.Cleanup(func() { _ = config.CloseDatabase() })

	return utils.SetUsernameInContext(context.Background(), "tester")
}

func createProduct(t *testing.T, ctx context.Context, sku string, price string, stock int) *models.Product {
	t.Helper()
	p, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:      sku,
		Name:     "Product " + sku,
		Price:    decimal.RequireFromString(price),
		Category: "General",
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
