package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/billkeep/internal/domain"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage stored settings",
	Long:  `Read and write the opaque key-value settings store (theme, seller profile, etc).`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		settings, err := appInstance.SettingsRepo.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}

		if len(settings) == 0 {
			fmt.Println("No settings stored")
			return nil
		}

		for _, s := range settings {
			fmt.Printf("%-24s %s\n", s.Key, truncate(s.Value, 60))
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		value, err := appInstance.SettingsRepo.Get(ctx, args[0])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Printf("Setting '%s' is not set\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to get setting: %w", err)
		}

		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := appInstance.SettingsRepo.Set(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to save setting: %w", err)
		}

		fmt.Printf("✓ %s saved\n", args[0])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
