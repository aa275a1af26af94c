package models

import (
	"context"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/shopspring/decimal"
)

type SalesReport struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalUnits   int             `json:"total_units"`
	Orders       []*SalesOrder   `json:"orders"`
}

type PurchaseReport struct {
	TotalOrders int              `json:"total_orders"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	TotalUnits  int              `json:"total_units"`
	Orders      []*PurchaseOrder `json:"orders"`
}

type CategorySummary struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Stock    int64  `json:"stock"`
}

type InventorySummary struct {
	TotalProducts int64              `json:"total_products"`
	TotalStock    int64              `json:"total_stock"`
	ByCategory    []*CategorySummary `json:"by_category"`
}

// GetSalesReport aggregates the orders inside dateRange (nil for all).
func GetSalesReport(ctx context.Context, dateRange *DateRange) (*SalesReport, error) {
	orders, err := GetSalesOrders(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	report := SalesReport{
		TotalRevenue: decimal.Zero,
		Orders:       orders,
	}
	for _, o := range orders {
		report.TotalOrders++
		report.TotalUnits += o.Quantity
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalPrice)
	}
	return &report, nil
}

func GetPurchaseReport(ctx context.Context, dateRange *DateRange) (*PurchaseReport, error) {
	orders, err := GetPurchaseOrders(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	report := PurchaseReport{
		TotalCost: decimal.Zero,
		Orders:    orders,
	}
	for _, o := range orders {
		report.TotalOrders++
		report.TotalUnits += o.Quantity
		report.TotalCost = report.TotalCost.Add(o.TotalPrice)
	}
	return &report, nil
}

func GetInventorySummary(ctx context.Context) (*InventorySummary, error) {
	db := config.GetDB()
	if db == nil {
		return nil, config.ErrDatabaseNotConnected
	}

	var totals struct {
		TotalProducts int64
		TotalStock    int64
	}
	err := db.WithContext(ctx).Model(&Product{}).
		Select("COUNT(*) AS total_products, COALESCE(SUM(stock), 0) AS total_stock").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary := InventorySummary{
		TotalProducts: totals.TotalProducts,
		TotalStock:    totals.TotalStock,
	}

	var categories []*CategorySummary
	err = db.WithContext(ctx).Model(&Product{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(stock), 0) AS stock").
		Group("category").
		Order("category").
		Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	summary.ByCategory = categories
	return &summary, nil
}
