package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	cur, _ := config.LookupCurrency(cfg.General.Currency)
	fmt.Printf("    Currency:     %s (%s)\n", cur.Code, strings.TrimSpace(cur.Symbol))
	fmt.Printf("    Default days: %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Categories:   %s\n", strings.Join(config.Categories(cfg), ", "))
	fmt.Println()

	fmt.Println("  [Data]")
	fmt.Printf("    Database: %s\n", dbPath())
	if dir := inboxDir(); dir != "" {
		fmt.Printf("    Inbox:    %s\n", dir)
	} else {
		fmt.Println("    Inbox:    not set")
	}
	fmt.Println()

	fmt.Println("  [Remote]")
	if cfg.Remote.URL != "" {
		fmt.Printf("    URL:          %s\n", cfg.Remote.URL)
	} else {
		fmt.Println("    URL:          not configured")
	}
	if cfg.Remote.AnonKey != "" {
		fmt.Printf("    Anon key:     %s\n", maskAPIKey(cfg.Remote.AnonKey))
	}
	if cfg.Remote.AccessToken != "" {
		fmt.Printf("    Access token: %s\n", maskAPIKey(cfg.Remote.AccessToken))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:     %v\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh interval: %ds\n", cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `cbudget setup` to reconfigure.")
	return nil
}
