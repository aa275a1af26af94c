package models_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationsWriteAuditEntries(t *testing.T) {
	ctx := openTestDB(t)
	p := createProduct(t, ctx, "AUD", "2.50", 10)

	_, _, err := models.CreateSalesOrder(ctx, &models.NewSalesOrder{ProductId: p.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{ProductId: p.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, err)
	// rejected sale leaves no trace
	_, created, err := models.CreateSalesOrder(ctx, &models.NewSalesOrder{ProductId: p.ID, Quantity: 100})
	require.NoError(t, err)
	require.False(t, created)

	logs, err := models.GetAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.AuditActionCreatePurchaseOrder, logs[0].Action)
	assert.Equal(t, models.AuditActionCreateSalesOrder, logs[1].Action)
	assert.Equal(t, models.AuditActionAddProduct, logs[2].Action)
	assert.Equal(t, "tester", logs[1].User)
	assert.Equal(t, "Sold 4 units of Product AUD (Order ID: 1, Total: $10.00)", logs[1].Details)

	limited, err := models.GetAuditLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, logs[0].ID, limited[0].ID)
}

func TestAuditLogFilters(t *testing.T) {
	ctx := openTestDB(t)
	createProduct(t, ctx, "F1", "1", 1)

	other := utils.SetUsernameInContext(context.Background(), "clerk")
	_, err := models.CreateSupplier(other, &models.NewSupplier{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, models.RecordAuditEntry(context.Background(), "", models.AuditActionCreateBackup, "backup_x.enc"))

	byUser, err := models.GetAuditLogsByUser(ctx, "clerk", 10)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, models.AuditActionAddSupplier, byUser[0].Action)

	system, err := models.GetAuditLogsByUser(ctx, utils.SystemUser, 10)
	require.NoError(t, err)
	require.Len(t, system, 1)

	byAction, err := models.GetAuditLogsByAction(ctx, "product", 10)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.True(t, strings.HasPrefix(byAction[0].Details, "Added product"))
}

func TestFailedAuditAbortsChange(t *testing.T) {
	ctx := openTestDB(t)
	p := createProduct(t, ctx, "ABORT", "1", 10)

	require.NoError(t, config.GetDB().Migrator().DropTable(&models.AuditLog{}))

	_, _, err := models.CreateSalesOrder(ctx, &models.NewSalesOrder{ProductId: p.ID, Quantity: 3})
	require.Error(t, err)

	assertStock(t, ctx, p.ID, 10)
	orders, err := models.GetSalesOrders(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
