package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func localTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func renderProducts(out io.Writer, products []*models.Product) {
	t := newTable(out, table.Row{"ID", "SKU", "Name", "Category", "Price", "Stock"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Sku, p.Name, p.Category, money(p.Price), p.Stock})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(products)})
	t.Render()
}

func renderSuppliers(out io.Writer, suppliers []*models.Supplier) {
	t := newTable(out, table.Row{"ID", "Name", "Contact", "Email", "Phone", "Address"})
	for _, s := range suppliers {
		t.AppendRow(table.Row{s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address})
	}
	t.Render()
}

func renderSalesOrders(out io.Writer, orders []*models.SalesOrder) {
	t := newTable(out, table.Row{"ID", "Date", "SKU", "Product", "Qty", "Total"})
	for _, o := range orders {
		t.AppendRow(table.Row{o.ID, localTime(o.OrderDate), o.ProductSku, o.ProductName, o.Quantity, money(o.TotalPrice)})
	}
	t.Render()
}

func renderPurchaseOrders(out io.Writer, orders []*models.PurchaseOrder) {
	t := newTable(out, table.Row{"ID", "Date", "SKU", "Product", "Supplier", "Qty", "Unit", "Total"})
	for _, o := range orders {
		t.AppendRow(table.Row{
			o.ID, localTime(o.OrderDate), o.ProductSku, o.ProductName,
			utils.DereferencePtr(o.SupplierName, "-"), o.Quantity, money(o.UnitPrice), money(o.TotalPrice),
		})
	}
	t.Render()
}

func renderAuditLogs(out io.Writer, logs []*models.AuditLog) {
	t := newTable(out, table.Row{"ID", "Time", "User", "Action", "Details"})
	for _, l := range logs {
		t.AppendRow(table.Row{l.ID, localTime(l.Timestamp), l.User, l.Action, l.Details})
	}
	t.Render()
}

func renderUsers(out io.Writer, users []*models.User) {
	t := newTable(out, table.Row{"ID", "Username", "Role", "Must change password", "Created"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID, u.Username, u.Role, u.NeedsPasswordChange(), localTime(u.CreatedAt)})
	}
	t.Render()
}

func printf(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, format+"\n", args...)
}
