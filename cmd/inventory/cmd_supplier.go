package main

import (
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/spf13/cobra"
)

var (
	supplierCmd = &cobra.Command{
		Use:   "supplier",
		Short: "Manage suppliers",
	}
	supplierAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Add a supplier",
		Args:  cobra.ExactArgs(1),
		RunE:  runSupplierAdd,
	}
	supplierListCmd = &cobra.Command{
		Use:   "list",
		Short: "List suppliers",
		Args:  cobra.NoArgs,
		RunE:  runSupplierList,
	}
	supplierSearchCmd = &cobra.Command{
		Use:   "search <term>",
		Short: "Search suppliers by name, contact or email",
		Args:  cobra.ExactArgs(1),
		RunE:  runSupplierSearch,
	}
	supplierUpdateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Edit supplier fields; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE:  runSupplierUpdate,
	}
)

var (
	supplierContact string
	supplierEmail   string
	supplierPhone   string
	supplierAddress string
	supplierSort    string

	supplierUpdate struct {
		name, contact, email, phone, address string
	}
)

func init() {
	supplierAddCmd.Flags().StringVar(&supplierContact, "contact", "", "contact person")
	supplierAddCmd.Flags().StringVar(&supplierEmail, "email", "", "email address")
	supplierAddCmd.Flags().StringVar(&supplierPhone, "phone", "", "phone number")
	supplierAddCmd.Flags().StringVar(&supplierAddress, "address", "", "postal address")

	supplierListCmd.Flags().StringVar(&supplierSort, "sort", string(models.SupplierSortName), "sort by name, contact_person, email or phone")

	supplierUpdateCmd.Flags().StringVar(&supplierUpdate.name, "name", "", "new name")
	supplierUpdateCmd.Flags().StringVar(&supplierUpdate.contact, "contact", "", "new contact person")
	supplierUpdateCmd.Flags().StringVar(&supplierUpdate.email, "email", "", "new email address")
	supplierUpdateCmd.Flags().StringVar(&supplierUpdate.phone, "phone", "", "new phone number")
	supplierUpdateCmd.Flags().StringVar(&supplierUpdate.address, "address", "", "new postal address")

	supplierCmd.AddCommand(supplierAddCmd, supplierListCmd, supplierSearchCmd, supplierUpdateCmd)
}

func runSupplierAdd(cmd *cobra.Command, args []string) error {
	supplier, err := models.CreateSupplier(cmd.Context(), &models.NewSupplier{
		Name:          args[0],
		ContactPerson: supplierContact,
		Email:         supplierEmail,
		Phone:         supplierPhone,
		Address:       supplierAddress,
	})
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Added supplier %s (ID %d)", supplier.Name, supplier.ID)
	return nil
}

func runSupplierList(cmd *cobra.Command, args []string) error {
	suppliers, err := models.GetSuppliersSorted(cmd.Context(), models.SupplierSortField(supplierSort))
	if err != nil {
		return err
	}
	renderSuppliers(cmd.OutOrStdout(), suppliers)
	return nil
}

func runSupplierSearch(cmd *cobra.Command, args []string) error {
	suppliers, err := models.SearchSuppliers(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renderSuppliers(cmd.OutOrStdout(), suppliers)
	return nil
}

func runSupplierUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseId(args[0])
	if err != nil {
		return err
	}
	input := &models.SupplierUpdate{}
	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = &supplierUpdate.name
	}
	if flags.Changed("contact") {
		input.ContactPerson = &supplierUpdate.contact
	}
	if flags.Changed("email") {
		input.Email = &supplierUpdate.email
	}
	if flags.Changed("phone") {
		input.Phone = &supplierUpdate.phone
	}
	if flags.Changed("address") {
		input.Address = &supplierUpdate.address
	}

	updated, err := models.UpdateSupplier(cmd.Context(), id, input)
	if err != nil {
		return err
	}
	if !updated {
		printf(cmd.OutOrStdout(), "Nothing to update")
		return nil
	}
	printf(cmd.OutOrStdout(), "Updated supplier %d", id)
	return nil
}
