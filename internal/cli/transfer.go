package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all invoices and settings to a snapshot file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		data, err := appInstance.TransferService.Export(ctx)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		if len(args) == 0 {
			fmt.Println(string(data))
			return nil
		}

		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}

		fmt.Printf("✓ Exported to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a snapshot file",
	Long: `Import a snapshot file.

By default the store is replaced wholesale: existing invoices and settings
are cleared before the snapshot is applied. With --merge, imported records
are upserted by id/key and everything else is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		merge, _ := cmd.Flags().GetBool("merge")
		if !merge {
			if !confirmPrompt("This will REPLACE all existing invoices and settings. Continue?") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		count, err := appInstance.TransferService.Import(ctx, data, merge)
		if err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		fmt.Printf("✓ Imported %d invoice(s)\n", count)
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("merge", false, "Upsert by id/key instead of replacing the store")
}
