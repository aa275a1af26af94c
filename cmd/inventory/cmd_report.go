package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/models/reports"
	"github.com/spf13/cobra"
)

var (
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Sales, purchase and inventory reports",
	}
	reportSalesCmd = &cobra.Command{
		Use:   "sales",
		Short: "Sales totals for a date range",
		Args:  cobra.NoArgs,
		RunE:  runReportSales,
	}
	reportPurchasesCmd = &cobra.Command{
		Use:   "purchases",
		Short: "Purchase totals for a date range",
		Args:  cobra.NoArgs,
		RunE:  runReportPurchases,
	}
	reportInventoryCmd = &cobra.Command{
		Use:   "inventory",
		Short: "Product and stock counts by category",
		Args:  cobra.NoArgs,
		RunE:  runReportInventory,
	}
	reportProductsCmd = &cobra.Command{
		Use:   "products",
		Short: "Export the product catalog",
		Args:  cobra.NoArgs,
		RunE:  runReportProducts,
	}
)

// exportReport writes the report to REPORTS_DIR as xlsx in addition to printing it
var exportReport bool

func init() {
	for _, c := range []*cobra.Command{reportSalesCmd, reportPurchasesCmd} {
		addDateRangeFlags(c)
	}
	for _, c := range []*cobra.Command{reportSalesCmd, reportPurchasesCmd, reportInventoryCmd} {
		c.Flags().BoolVar(&exportReport, "export", false, "also write an .xlsx file to REPORTS_DIR")
	}
	reportCmd.AddCommand(reportSalesCmd, reportPurchasesCmd, reportInventoryCmd, reportProductsCmd)
}

func exportFile(kind string) string {
	return reports.FileName(settings.ReportsDir, kind, time.Now())
}

func runReportSales(cmd *cobra.Command, args []string) error {
	dateRange, err := parseDateRange(fromDate, toDate)
	if err != nil {
		return err
	}
	report, err := models.GetSalesReport(cmd.Context(), dateRange)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := newTable(out, table.Row{"Orders", "Units", "Revenue"})
	t.AppendRow(table.Row{report.TotalOrders, report.TotalUnits, money(report.TotalRevenue)})
	t.Render()
	renderSalesOrders(out, report.Orders)

	if exportReport {
		filename := exportFile("sales_report")
		if err := reports.ExportSalesReport(report, filename); err != nil {
			return err
		}
		printf(out, "Exported to %s", filename)
	}
	return nil
}

func runReportPurchases(cmd *cobra.Command, args []string) error {
	dateRange, err := parseDateRange(fromDate, toDate)
	if err != nil {
		return err
	}
	report, err := models.GetPurchaseReport(cmd.Context(), dateRange)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := newTable(out, table.Row{"Orders", "Units", "Cost"})
	t.AppendRow(table.Row{report.TotalOrders, report.TotalUnits, money(report.TotalCost)})
	t.Render()
	renderPurchaseOrders(out, report.Orders)

	if exportReport {
		filename := exportFile("purchase_report")
		if err := reports.ExportPurchaseReport(report, filename); err != nil {
			return err
		}
		printf(out, "Exported to %s", filename)
	}
	return nil
}

func runReportInventory(cmd *cobra.Command, args []string) error {
	summary, err := models.GetInventorySummary(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := newTable(out, table.Row{"Category", "Products", "Stock"})
	for _, c := range summary.ByCategory {
		t.AppendRow(table.Row{c.Category, c.Count, c.Stock})
	}
	t.AppendFooter(table.Row{"Total", summary.TotalProducts, summary.TotalStock})
	t.Render()

	if exportReport {
		filename := exportFile("inventory_summary")
		if err := reports.ExportInventorySummary(summary, filename); err != nil {
			return err
		}
		printf(out, "Exported to %s", filename)
	}
	return nil
}

func runReportProducts(cmd *cobra.Command, args []string) error {
	products, err := models.GetProducts(cmd.Context())
	if err != nil {
		return err
	}
	filename := exportFile("products")
	if err := reports.ExportProducts(products, filename); err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Exported %d products to %s", len(products), filename)
	return nil
}
