package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)
	prompt := func() string {
		fmt.Print("     > ")
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	fmt.Println()
	fmt.Println("  Welcome to cbudget!")
	fmt.Println()
	if st, err := store.Open(dbPath()); err == nil {
		if n, err := st.ExpenseCount(); err == nil && n > 0 {
			fmt.Printf("  Found %s expenses in %s\n\n", formatNumber(int64(n)), dbPath())
		}
		_ = st.Close()
	}

	// 1. Currency
	fmt.Println("  1. Currency")
	fmt.Printf("     One of %s [current: %s]\n", strings.Join(config.CurrencyCodes(), ", "), cfg.General.Currency)
	if code := strings.ToUpper(prompt()); code != "" {
		if _, ok := config.LookupCurrency(code); ok {
			cfg.General.Currency = code
		} else {
			fmt.Printf("     Unknown currency %q, keeping %s\n", code, cfg.General.Currency)
		}
	}
	fmt.Println()

	// 2. Default time range
	fmt.Println("  2. Default time range")
	fmt.Println("     (1) 7 days")
	fmt.Println("     (2) 30 days [default]")
	fmt.Println("     (3) 90 days")
	switch prompt() {
	case "1":
		cfg.General.DefaultDays = 7
	case "3":
		cfg.General.DefaultDays = 90
	default:
		cfg.General.DefaultDays = 30
	}
	fmt.Println()

	// 3. Inbox
	fmt.Println("  3. Inbox folder")
	fmt.Println("     CSV, JSON, YAML and XLSX files here are imported on every run.")
	if cfg.Data.InboxDir != "" {
		fmt.Printf("     Current: %s (enter - to clear)\n", cfg.Data.InboxDir)
	}
	switch dir := prompt(); dir {
	case "":
	case "-":
		cfg.Data.InboxDir = ""
	default:
		cfg.Data.InboxDir = dir
	}
	fmt.Println()

	// 4. Hosted backend
	fmt.Println("  4. Hosted backend (optional, for `cbudget sync`)")
	fmt.Println("     Project URL, e.g. https://abcd.supabase.co")
	if cfg.Remote.URL != "" {
		fmt.Printf("     Current: %s\n", cfg.Remote.URL)
	}
	if u := prompt(); u != "" {
		cfg.Remote.URL = strings.TrimRight(u, "/")
	}
	if cfg.Remote.URL != "" {
		fmt.Println("     Anon key")
		if cfg.Remote.AnonKey != "" {
			fmt.Printf("     Current: %s\n", maskAPIKey(cfg.Remote.AnonKey))
		}
		if k := prompt(); k != "" {
			cfg.Remote.AnonKey = k
		}
	}
	fmt.Println()

	// 5. Theme
	fmt.Println("  5. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	switch prompt() {
	case "2":
		cfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		cfg.Appearance.Theme = "tokyo-night"
	case "4":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `cbudget setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
