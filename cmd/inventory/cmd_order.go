package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/spf13/cobra"
)

var (
	orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Record and list sales and purchase orders",
	}
	orderSellCmd = &cobra.Command{
		Use:   "sell <product-id> <quantity>",
		Short: "Sell units at the product's current price",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderSell,
	}
	orderPurchaseCmd = &cobra.Command{
		Use:   "purchase <product-id> <quantity>",
		Short: "Receive units from a supplier",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderPurchase,
	}
	orderListCmd = &cobra.Command{
		Use:       "list <sales|purchases>",
		Short:     "List orders, newest first",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sales", "purchases"},
		RunE:      runOrderList,
	}
)

var (
	purchaseUnitPrice  string
	purchaseSupplierId int
	fromDate           string
	toDate             string
)

func init() {
	orderPurchaseCmd.Flags().StringVar(&purchaseUnitPrice, "unit-price", "", "price paid per unit")
	orderPurchaseCmd.Flags().IntVar(&purchaseSupplierId, "supplier", 0, "supplier id (0 for none)")
	_ = orderPurchaseCmd.MarkFlagRequired("unit-price")

	addDateRangeFlags(orderListCmd)

	orderCmd.AddCommand(orderSellCmd, orderPurchaseCmd, orderListCmd)
}

func addDateRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromDate, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&toDate, "to", "", "last day, YYYY-MM-DD")
}

// parseDateRange builds the order date filter; nil when neither bound is set
func parseDateRange(from, to string) (*models.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	var bounds [2]*time.Time
	for i, value := range []string{from, to} {
		if value == "" {
			continue
		}
		day, err := utils.ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", utils.ErrValidation, value)
		}
		bounds[i] = &day
	}
	if bounds[0] != nil && bounds[1] != nil && bounds[1].Before(*bounds[0]) {
		return nil, fmt.Errorf("%w: --to is before --from", utils.ErrValidation)
	}
	return models.NewDateRange(bounds[0], bounds[1]), nil
}

func parseQuantity(arg string) (int, error) {
	qty, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid quantity %q", utils.ErrValidation, arg)
	}
	return qty, nil
}

func runOrderSell(cmd *cobra.Command, args []string) error {
	productId, err := parseId(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	order, created, err := models.CreateSalesOrder(cmd.Context(), &models.NewSalesOrder{
		ProductId: productId,
		Quantity:  qty,
	})
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("insufficient stock for product %d", productId)
	}
	printf(cmd.OutOrStdout(), "Sales order %d: %d x %s, total %s", order.ID, order.Quantity, order.ProductName, money(order.TotalPrice))
	return nil
}

func runOrderPurchase(cmd *cobra.Command, args []string) error {
	productId, err := parseId(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	unitPrice, err := utils.ParseDecimal(purchaseUnitPrice)
	if err != nil {
		return err
	}
	order, err := models.CreatePurchaseOrder(cmd.Context(), &models.NewPurchaseOrder{
		ProductId:  productId,
		SupplierId: utils.NilIfEmpty(purchaseSupplierId),
		Quantity:   qty,
		UnitPrice:  unitPrice,
	})
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Purchase order %d: %d x %s, total %s", order.ID, order.Quantity, order.ProductName, money(order.TotalPrice))
	return nil
}

func runOrderList(cmd *cobra.Command, args []string) error {
	dateRange, err := parseDateRange(fromDate, toDate)
	if err != nil {
		return err
	}
	if args[0] == "sales" {
		orders, err := models.GetSalesOrders(cmd.Context(), dateRange)
		if err != nil {
			return err
		}
		renderSalesOrders(cmd.OutOrStdout(), orders)
		return nil
	}
	orders, err := models.GetPurchaseOrders(cmd.Context(), dateRange)
	if err != nil {
		return err
	}
	renderPurchaseOrders(cmd.OutOrStdout(), orders)
	return nil
}
