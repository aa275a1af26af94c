package main

import (
	"fmt"
	"strconv"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/spf13/cobra"
)

var (
	productCmd = &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalog",
	}
	productAddCmd = &cobra.Command{
		Use:   "add <sku> <name>",
		Short: "Add a product",
		Args:  cobra.ExactArgs(2),
		RunE:  runProductAdd,
	}
	productListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE:  runProductList,
	}
	productShowCmd = &cobra.Command{
		Use:   "show <sku>",
		Short: "Show one product by SKU",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductShow,
	}
	productSearchCmd = &cobra.Command{
		Use:   "search <term>",
		Short: "Search products by name, SKU or category",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductSearch,
	}
	productUpdateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Correct product fields; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductUpdate,
	}
	productDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product that no order references (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductDelete,
	}
	productLowStockCmd = &cobra.Command{
		Use:   "low-stock",
		Short: "List products at or below the low stock threshold",
		Args:  cobra.NoArgs,
		RunE:  runProductLowStock,
	}
	productAdjustCmd = &cobra.Command{
		Use:     "adjust <id> --by <delta>",
		Short:   "Change a product's stock by delta units",
		Example: "  inventory product adjust 3 --by=-2",
		Args:    cobra.ExactArgs(1),
		RunE:    runProductAdjust,
	}
)

var (
	productPrice       string
	productCategory    string
	productStock       int
	productDescription string
	updateName         string
	updatePrice        string
	updateCategory     string
	updateStock        int
	updateDescription  string
	lowStockThreshold  int
	stockDelta         int
)

func init() {
	productAddCmd.Flags().StringVar(&productPrice, "price", "0", "unit price")
	productAddCmd.Flags().StringVar(&productCategory, "category", "", "category")
	productAddCmd.Flags().IntVar(&productStock, "stock", 0, "initial stock")
	productAddCmd.Flags().StringVar(&productDescription, "description", "", "description")

	productUpdateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	productUpdateCmd.Flags().StringVar(&updatePrice, "price", "", "new price")
	productUpdateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	productUpdateCmd.Flags().IntVar(&updateStock, "stock", 0, "new stock level")
	productUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")

	productLowStockCmd.Flags().IntVar(&lowStockThreshold, "threshold", -1, "stock threshold (default LOW_STOCK_THRESHOLD)")

	productAdjustCmd.Flags().IntVar(&stockDelta, "by", 0, "units to add; negative removes")
	_ = productAdjustCmd.MarkFlagRequired("by")

	productCmd.AddCommand(productAddCmd, productListCmd, productShowCmd, productSearchCmd,
		productUpdateCmd, productDeleteCmd, productLowStockCmd, productAdjustCmd)
}

func parseId(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", utils.ErrValidation, arg)
	}
	return id, nil
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	price, err := utils.ParseDecimal(productPrice)
	if err != nil {
		return err
	}
	product, err := models.CreateProduct(cmd.Context(), &models.NewProduct{
		Sku:         args[0],
		Name:        args[1],
		Price:       price,
		Category:    productCategory,
		Stock:       productStock,
		Description: productDescription,
	})
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Added product %s (ID %d)", product.Sku, product.ID)
	return nil
}

func runProductList(cmd *cobra.Command, args []string) error {
	products, err := models.GetProducts(cmd.Context())
	if err != nil {
		return err
	}
	renderProducts(cmd.OutOrStdout(), products)
	return nil
}

func runProductShow(cmd *cobra.Command, args []string) error {
	product, err := models.GetProductBySku(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renderProducts(cmd.OutOrStdout(), []*models.Product{product})
	if product.Description != "" {
		printf(cmd.OutOrStdout(), "%s", product.Description)
	}
	return nil
}

func runProductSearch(cmd *cobra.Command, args []string) error {
	products, err := models.SearchProducts(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renderProducts(cmd.OutOrStdout(), products)
	return nil
}

func runProductUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	input := &models.ProductUpdate{}
	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = &updateName
	}
	if flags.Changed("price") {
		price, err := utils.ParseDecimal(updatePrice)
		if err != nil {
			return err
		}
		input.Price = &price
	}
	if flags.Changed("category") {
		input.Category = &updateCategory
	}
	if flags.Changed("stock") {
		input.Stock = &updateStock
	}
	if flags.Changed("description") {
		input.Description = &updateDescription
	}

	updated, err := models.UpdateProduct(cmd.Context(), id, input)
	if err != nil {
		return err
	}
	if !updated {
		printf(cmd.OutOrStdout(), "Nothing to update")
		return nil
	}
	printf(cmd.OutOrStdout(), "Updated product %d", id)
	return nil
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	deleted, err := models.DeleteProduct(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("product %d: %w", id, utils.ErrorRecordNotFound)
	}
	printf(cmd.OutOrStdout(), "Deleted product %d", id)
	return nil
}

func runProductLowStock(cmd *cobra.Command, args []string) error {
	threshold := lowStockThreshold
	if threshold < 0 {
		threshold = config.LowStockThreshold()
	}
	products, err := models.GetLowStockProducts(cmd.Context(), threshold)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Products with stock <= %d", threshold)
	renderProducts(cmd.OutOrStdout(), products)
	return nil
}

func runProductAdjust(cmd *cobra.Command, args []string) error {
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	product, err := models.AdjustStock(cmd.Context(), id, stockDelta)
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "%s stock is now %d", product.Sku, product.Stock)
	return nil
}
