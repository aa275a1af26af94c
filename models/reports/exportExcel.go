package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Details"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

type salesOrderRow struct{ *models.SalesOrder }

func (r salesOrderRow) GetCellValues() []interface{} {
	return []interface{}{
		r.ID, r.ProductSku, r.ProductName, r.Quantity,
		r.TotalPrice.InexactFloat64(), r.OrderDate.Format(time.DateTime),
	}
}

type purchaseOrderRow struct{ *models.PurchaseOrder }

func (r purchaseOrderRow) GetCellValues() []interface{} {
	return []interface{}{
		r.ID, r.ProductSku, r.ProductName, utils.DereferencePtr(r.SupplierName, ""), r.Quantity,
		r.UnitPrice.InexactFloat64(), r.TotalPrice.InexactFloat64(), r.OrderDate.Format(time.DateTime),
	}
}

type categoryRow struct{ *models.CategorySummary }

func (r categoryRow) GetCellValues() []interface{} {
	return []interface{}{r.Category, r.Count, r.Stock}
}

type productRow struct{ *models.Product }

func (r productRow) GetCellValues() []interface{} {
	return []interface{}{r.ID, r.Sku, r.Name, r.Category, r.Price.InexactFloat64(), r.Stock}
}

// FileName returns dir/<kind>_<YYYYMMDDHHMMSS>.xlsx
func FileName(dir string, kind string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", kind, now.UTC().Format("20060102150405")))
}

func ExportSalesReport(report *models.SalesReport, filename string) error {
	rows := make([]ExcelExporter, 0, len(report.Orders))
	for _, o := range report.Orders {
		rows = append(rows, salesOrderRow{o})
	}
	totals := [][]interface{}{
		{"Total Orders", report.TotalOrders},
		{"Total Units", report.TotalUnits},
		{"Total Revenue", report.TotalRevenue.InexactFloat64()},
	}
	return exportExcel(filename, totals, rows, "Order ID", "SKU", "Product", "Quantity", "Total Price", "Order Date")
}

func ExportPurchaseReport(report *models.PurchaseReport, filename string) error {
	rows := make([]ExcelExporter, 0, len(report.Orders))
	for _, o := range report.Orders {
		rows = append(rows, purchaseOrderRow{o})
	}
	totals := [][]interface{}{
		{"Total Orders", report.TotalOrders},
		{"Total Units", report.TotalUnits},
		{"Total Cost", report.TotalCost.InexactFloat64()},
	}
	return exportExcel(filename, totals, rows, "Order ID", "SKU", "Product", "Supplier", "Quantity", "Unit Price", "Total Price", "Order Date")
}

func ExportInventorySummary(summary *models.InventorySummary, filename string) error {
	rows := make([]ExcelExporter, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		rows = append(rows, categoryRow{c})
	}
	totals := [][]interface{}{
		{"Total Products", summary.TotalProducts},
		{"Total Stock", summary.TotalStock},
	}
	return exportExcel(filename, totals, rows, "Category", "Products", "Stock")
}

func ExportProducts(products []*models.Product, filename string) error {
	rows := make([]ExcelExporter, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow{p})
	}
	totals := [][]interface{}{{"Products", len(products)}}
	return exportExcel(filename, totals, rows, "ID", "SKU", "Name", "Category", "Price", "Stock")
}

// exportExcel writes totals to the Summary sheet and data to the Details sheet
func exportExcel(filename string, totals [][]interface{}, data []ExcelExporter, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	for i, row := range totals {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(detailSheet); err != nil {
		return err
	}
	header := make([]interface{}, len(headings))
	for i, h := range headings {
		header[i] = h
	}
	if err := setRow(f, detailSheet, 1, header); err != nil {
		return err
	}
	for i, d := range data {
		if err := setRow(f, detailSheet, i+2, d.GetCellValues()); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.SaveAs(filename)
}

func setRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
