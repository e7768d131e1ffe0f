package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/log"
	"github.com/theirongolddev/cbudget/internal/remote"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local data with the hosted backend's tables",
	RunE:  runSync,
}

var (
	syncDryRun  bool
	syncVerbose bool
	syncTimeout time.Duration
)

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Fetch and report without touching the local data")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Log requests to stderr")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 60*time.Second, "Overall fetch timeout")
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) error {
	if !cfg.RemoteConfigured() {
		fmt.Println()
		fmt.Println("  No hosted backend configured.")
		fmt.Println()
		fmt.Println("  Configure it:")
		fmt.Println("    cbudget setup                                              (interactive)")
		fmt.Println("    CBUDGET_REMOTE_URL=https://... CBUDGET_ANON_KEY=... cbudget sync  (one-shot)")
		fmt.Println()
		return nil
	}

	client := remote.NewClient(cfg.Remote.URL, cfg.Remote.AnonKey, cfg.Remote.AccessToken)
	if client == nil {
		return fmt.Errorf("invalid remote URL %q (expected http or https)", cfg.Remote.URL)
	}

	level := slog.LevelWarn
	if syncVerbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, Output: os.Stderr}, log.ComponentSync)

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Fetching expenses and budgets...\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	start := time.Now()
	data := client.FetchAll(ctx)
	logger.Debug("fetch finished",
		log.FieldExpenses, len(data.Expenses),
		"budgets", len(data.Budgets),
		log.FieldDuration, time.Since(start).Milliseconds(),
	)

	if data.Error != nil {
		logger.Warn("fetch failed", log.FieldError, data.Error)
		switch {
		case errors.Is(data.Error, remote.ErrUnauthorized):
			return errors.New("remote rejected the credentials; check the anon key and access token")
		case errors.Is(data.Error, remote.ErrRateLimited):
			return errors.New("rate limited by the remote backend; try again in a minute")
		}
		// A partial snapshot would wipe the missing table, so never apply it.
		return fmt.Errorf("fetch failed: %w", data.Error)
	}

	var total float64
	for _, e := range data.Expenses {
		total += e.Amount
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SYNC"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Table", "Rows", "Total"},
		Rows: [][]string{
			{"expenses", formatNumber(int64(len(data.Expenses))), cli.FormatMoney(total)},
			{"budgets", formatNumber(int64(len(data.Budgets))), ""},
		},
	}))

	if syncDryRun {
		fmt.Println("  Dry run: local data left unchanged.")
		fmt.Println()
		return nil
	}

	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.ReplaceAll(data.Expenses, data.Budgets); err != nil {
		return fmt.Errorf("replacing local data: %w", err)
	}
	logger.Info("local data replaced", log.FieldExpenses, len(data.Expenses), "db", dbPath())

	fmt.Printf("  Local data replaced at %s\n\n", data.FetchedAt.Format("3:04:05 PM"))
	return nil
}
