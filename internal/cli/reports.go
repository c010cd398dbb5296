package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Portfolio summaries and aging",
}

var reportsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show portfolio totals and counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		summary, err := appInstance.ReportService.Summary(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute summary: %w", err)
		}

		fmt.Printf("Invoices:     %d\n", summary.Count)
		fmt.Printf("Billed:       $%.2f\n", summary.TotalBilled)
		fmt.Printf("Paid:         $%.2f\n", summary.TotalPaid)
		fmt.Printf("Outstanding:  $%.2f\n", summary.TotalOutstanding)
		fmt.Println()
		for _, status := range domain.AllStatuses {
			fmt.Printf("  %-10s %d\n", status, summary.ByStatus[status])
		}
		return nil
	},
}

var reportsAgingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Show unpaid invoices bucketed by days overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		report, err := appInstance.ReportService.Aging(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to compute aging report: %w", err)
		}

		if len(report.Entries) == 0 {
			fmt.Println("Nothing outstanding")
			return nil
		}

		fmt.Printf("%-12s %-20s %-12s %10s %8s\n", "Number", "Client", "Balance", "Overdue", "Bucket")
		fmt.Println("------------------------------------------------------------------")
		for _, entry := range report.Entries {
			fmt.Printf("%-12s %-20s $%-11.2f %6dd   %8s\n",
				entry.Invoice.Number,
				truncate(entry.Invoice.Client.Name, 20),
				entry.Invoice.Totals.BalanceDue,
				entry.DaysOverdue,
				entry.Bucket,
			)
		}
		fmt.Printf("\nOutstanding: $%.2f\n", report.OutstandingTotal)
		return nil
	},
}

var reportsOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Flip sent invoices past their due date to overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		flipped, err := appInstance.InvoiceService.MarkOverdue(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to mark overdue: %w", err)
		}

		fmt.Printf("✓ %d invoice(s) marked overdue\n", flipped)
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsSummaryCmd)
	reportsCmd.AddCommand(reportsAgingCmd)
	reportsCmd.AddCommand(reportsOverdueCmd)
}
