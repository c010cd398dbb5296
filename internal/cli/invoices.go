package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `Create, list, edit, and manage invoices.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		criteria := service.FilterCriteria{}

		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			for _, s := range strings.Split(statusStr, ",") {
				criteria.Statuses = append(criteria.Statuses, domain.InvoiceStatus(strings.TrimSpace(s)))
			}
		}
		criteria.Search, _ = cmd.Flags().GetString("search")
		criteria.DateFrom, _ = cmd.Flags().GetString("from")
		criteria.DateTo, _ = cmd.Flags().GetString("to")

		invoices, err := appInstance.ReportService.Filter(ctx, criteria)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-12s %-20s %-12s %-12s %-12s %-10s\n", "Number", "Client", "Created", "Total", "Balance", "Status")
		fmt.Println("----------------------------------------------------------------------------------")

		// Print invoices
		for _, invoice := range invoices {
			fmt.Printf("%-12s %-20s %-12s $%-11.2f $%-11.2f %-10s\n",
				invoice.Number,
				truncate(invoice.Client.Name, 20),
				invoice.CreatedAt.Format("2006-01-02"),
				invoice.Totals.GrandTotal,
				invoice.Totals.BalanceDue,
				invoice.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new draft invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := appInstance.Config.Invoice

		prefix, _ := cmd.Flags().GetString("prefix")
		if prefix == "" {
			prefix = cfg.NumberPrefix
		}

		invoice, err := appInstance.InvoiceService.CreateDraft(ctx, prefix, cfg.DefaultDueDays)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		// Stamp the configured defaults onto the fresh draft
		invoice.Currency = cfg.Currency
		invoice.Seller = appInstance.SellerParty()
		if clientName, _ := cmd.Flags().GetString("client"); clientName != "" {
			invoice.Client.Name = clientName
		}
		if err := appInstance.InvoiceService.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		// Remember the last-edited invoice for the TUI to reopen
		_ = appInstance.SettingsRepo.Set(ctx, "lastInvoiceID", invoice.ID)

		fmt.Printf("✓ Draft invoice created: %s\n", invoice.Number)
		fmt.Printf("  Due: %s\n", invoice.DueDate.Format("2006-01-02"))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [number_or_id]",
	Short: "Show a single invoice with its totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  [%s]\n", invoice.Number, invoice.Status)
		if invoice.Client.Name != "" {
			fmt.Printf("  Client:  %s\n", invoice.Client.Name)
		}
		fmt.Printf("  Issued:  %s   Due: %s\n",
			invoice.IssueDate.Format("2006-01-02"),
			invoice.DueDate.Format("2006-01-02"),
		)

		if len(invoice.Items) > 0 {
			fmt.Println()
			fmt.Printf("  %-30s %8s %10s %8s %8s\n", "Description", "Qty", "Price", "Disc%", "Tax%")
			for _, item := range invoice.Items {
				fmt.Printf("  %-30s %8.2f %10.2f %8.2f %8.2f\n",
					truncate(item.Description, 30),
					item.Quantity,
					item.UnitPrice,
					item.DiscountPct,
					item.TaxRatePct,
				)
			}
		}

		if len(invoice.Payments) > 0 {
			fmt.Println()
			for _, p := range invoice.Payments {
				fmt.Printf("  Payment %s  $%.2f  %s\n", p.Date.Format("2006-01-02"), p.Amount, p.Note)
			}
		}

		t := invoice.Totals
		fmt.Println()
		fmt.Printf("  Subtotal:  $%.2f\n", t.Subtotal)
		fmt.Printf("  Discount:  $%.2f\n", t.Discount)
		fmt.Printf("  Tax:       $%.2f\n", t.Tax)
		fmt.Printf("  Total:     $%.2f\n", t.GrandTotal)
		fmt.Printf("  Paid:      $%.2f\n", t.AmountPaid)
		fmt.Printf("  Balance:   $%.2f\n", t.BalanceDue)
		return nil
	},
}

var invoicesAddItemCmd = &cobra.Command{
	Use:   "add-item [number_or_id] [description] [quantity] [unit_price]",
	Short: "Add a line item to an invoice",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if !invoice.CanEdit() {
			return fmt.Errorf("invoice %s is archived and cannot be edited", invoice.Number)
		}

		quantity, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		unitPrice, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid unit price: %w", err)
		}

		item := domain.NewItem(args[1], quantity, unitPrice)
		item.DiscountPct, _ = cmd.Flags().GetFloat64("discount")
		item.TaxRatePct, _ = cmd.Flags().GetFloat64("tax")
		invoice.Items = append(invoice.Items, item)

		if err := appInstance.InvoiceService.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		fmt.Printf("✓ Added item to %s\n", invoice.Number)
		fmt.Printf("  Total: $%.2f\n", invoice.Totals.GrandTotal)
		return nil
	},
}

var invoicesPayCmd = &cobra.Command{
	Use:   "pay [number_or_id] [amount]",
	Short: "Record a payment against an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		note, _ := cmd.Flags().GetString("note")
		invoice.Payments = append(invoice.Payments, domain.NewPayment(time.Now(), amount, note))

		if err := appInstance.InvoiceService.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		fmt.Printf("✓ Payment of $%.2f recorded on %s\n", amount, invoice.Number)
		fmt.Printf("  Balance: $%.2f  [%s]\n", invoice.Totals.BalanceDue, invoice.Status)
		return nil
	},
}

var invoicesSendCmd = &cobra.Command{
	Use:   "send [number_or_id]",
	Short: "Mark a draft invoice as sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		invoice.Status = domain.InvoiceStatusSent
		if err := appInstance.InvoiceService.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as sent\n", invoice.Number)
		return nil
	},
}

var invoicesArchiveCmd = &cobra.Command{
	Use:   "archive [number_or_id]",
	Short: "Archive an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		invoice.Status = domain.InvoiceStatusArchived
		if err := appInstance.InvoiceService.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s archived\n", invoice.Number)
		return nil
	},
}

var invoicesDuplicateCmd = &cobra.Command{
	Use:   "duplicate [number_or_id]",
	Short: "Duplicate an invoice as a fresh draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		original, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		dup, err := appInstance.InvoiceService.Duplicate(ctx, original.ID)
		if err != nil {
			return fmt.Errorf("failed to duplicate invoice: %w", err)
		}

		fmt.Printf("✓ Duplicated %s as %s\n", original.Number, dup.Number)
		fmt.Printf("  Balance: $%.2f\n", dup.Totals.BalanceDue)
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [number_or_id]",
	Short: "Delete an invoice permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		if !confirmPrompt(fmt.Sprintf("Delete invoice %s permanently?", invoice.Number)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.Delete(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s deleted\n", invoice.Number)
		return nil
	},
}

// resolveInvoice looks an invoice up by number first, then by ID
func resolveInvoice(ctx context.Context, numberOrID string) (*domain.Invoice, error) {
	invoice, err := appInstance.InvoiceRepo.GetByNumber(ctx, numberOrID)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	invoice, err = appInstance.InvoiceRepo.GetByID(ctx, numberOrID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no invoice matching '%s'", numberOrID)
		}
		return nil, err
	}
	return invoice, nil
}

// truncate shortens a string for table display
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func init() {
	invoicesListCmd.Flags().String("status", "", "Filter by status (comma-separated: draft,sent,paid,overdue,archived)")
	invoicesListCmd.Flags().String("search", "", "Match against number, client, seller, and notes")
	invoicesListCmd.Flags().String("from", "", "Created on or after (YYYY-MM-DD)")
	invoicesListCmd.Flags().String("to", "", "Created on or before (YYYY-MM-DD)")

	invoicesCreateCmd.Flags().String("prefix", "", "Invoice number prefix (default from config)")
	invoicesCreateCmd.Flags().String("client", "", "Client name")

	invoicesAddItemCmd.Flags().Float64("discount", 0, "Item discount percentage")
	invoicesAddItemCmd.Flags().Float64("tax", 0, "Item tax rate percentage")

	invoicesPayCmd.Flags().String("note", "", "Payment note")

	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesAddItemCmd)
	invoicesCmd.AddCommand(invoicesPayCmd)
	invoicesCmd.AddCommand(invoicesSendCmd)
	invoicesCmd.AddCommand(invoicesArchiveCmd)
	invoicesCmd.AddCommand(invoicesDuplicateCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
}
