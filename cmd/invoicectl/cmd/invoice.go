package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbill/openbill/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices for the current session",
	RunE:  runList,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice",
	Example: `  # One widget line, due end of month
  invoicectl create --business "Acme Ltd" --customer "Jane Doe" --customer-phone 0712345678 \
      --item "Widget:100:3" --due 2026-09-30`,
	RunE: runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update [invoice-number]",
	Short: "Replace an invoice's line items, status, due date and notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [invoice-number]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe all guest invoices on this machine",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd, clearCmd)

	createCmd.Flags().String("business", "", "Business name issuing the invoice")
	createCmd.Flags().String("customer", "", "Customer full name")
	createCmd.Flags().String("customer-phone", "", "Customer phone number")
	createCmd.Flags().StringArray("item", nil, "Line item as name:price:qty[:type], repeatable")
	createCmd.Flags().String("status", string(models.InvoiceStatusDraft), "Invoice status")
	createCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	createCmd.Flags().String("notes", "", "Free-form notes")
	createCmd.MarkFlagRequired("business")
	createCmd.MarkFlagRequired("item")

	updateCmd.Flags().StringArray("item", nil, "Line item as name:price:qty[:type], repeatable")
	updateCmd.Flags().String("status", string(models.InvoiceStatusDraft), "Invoice status")
	updateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	updateCmd.Flags().String("notes", "", "Free-form notes")
	updateCmd.MarkFlagRequired("item")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	invoices, err := a.dispatcher.List(context.Background(), a.manager.Current())
	if err != nil {
		return err
	}

	if len(invoices) == 0 {
		fmt.Println("No invoices")
		return nil
	}
	for i := range invoices {
		a.printInvoice(&invoices[i])
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	business, _ := cmd.Flags().GetString("business")
	customerName, _ := cmd.Flags().GetString("customer")
	customerPhone, _ := cmd.Flags().GetString("customer-phone")
	itemSpecs, _ := cmd.Flags().GetStringArray("item")
	status, _ := cmd.Flags().GetString("status")
	due, _ := cmd.Flags().GetString("due")
	notes, _ := cmd.Flags().GetString("notes")

	items, err := parseLineItems(itemSpecs)
	if err != nil {
		return err
	}

	s := a.manager.Current()
	customer := models.Customer{FullName: customerName}
	if customerPhone != "" {
		customer.PhoneNumber = &customerPhone
	}

	invoice, err := a.dispatcher.Create(context.Background(), s, &models.CreateInvoiceRequest{
		Username:     s.Username,
		BusinessName: business,
		Customer:     customer,
		LineItems:    items,
		Status:       models.InvoiceStatus(status),
		DueDate:      due,
		Notes:        notes,
	})
	if err != nil {
		return err
	}

	fmt.Println("Created:")
	a.printInvoice(invoice)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	itemSpecs, _ := cmd.Flags().GetStringArray("item")
	status, _ := cmd.Flags().GetString("status")
	due, _ := cmd.Flags().GetString("due")
	notes, _ := cmd.Flags().GetString("notes")

	items, err := parseLineItems(itemSpecs)
	if err != nil {
		return err
	}

	invoice, err := a.dispatcher.Update(context.Background(), a.manager.Current(), args[0], &models.UpdateInvoiceRequest{
		LineItems: items,
		Status:    models.InvoiceStatus(status),
		DueDate:   due,
		Notes:     notes,
	})
	if err != nil {
		return err
	}

	fmt.Println("Updated:")
	a.printInvoice(invoice)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	resp, err := a.dispatcher.Delete(context.Background(), a.manager.Current(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", resp.InvoiceNumber, resp.Status)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.guest.ClearAll(context.Background()); err != nil {
		return err
	}

	fmt.Println("Guest invoices cleared")
	return nil
}
