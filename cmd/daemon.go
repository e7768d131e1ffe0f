package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/daemon"
	"github.com/theirongolddev/cbudget/internal/log"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
	InboxDir  string    `json:"inbox_dir,omitempty"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonLogLevel     string
	flagDaemonLogJSON      bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch the expense store and report budget changes over HTTP",
	Long: `Re-read the expense store (and inbox, if set) on an interval and
recompute budget progress. Totals and budget states are served as JSON at
/v1/status, recent budget state changes at /v1/events, and a live
server-sent event feed at /v1/stream.`,
	Example: `  cbudget daemon --detach
  cbudget daemon --interval 1m --inbox ~/Downloads/expenses
  cbudget daemon status`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the watcher's latest totals and budget states",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background budget watcher",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(store.DefaultDir(), "cbudgetd.pid")
	defaultLog := filepath.Join(store.DefaultDir(), "cbudgetd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8787", "Address the budget API listens on")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 15*time.Second, "How often to re-read expenses and recompute budgets")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "Where the watcher records its process id")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Where a detached watcher writes its log")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Budget state changes kept for /v1/events")
	daemonCmd.Flags().StringVar(&flagDaemonLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	daemonCmd.Flags().BoolVar(&flagDaemonLogJSON, "log-json", false, "Write log lines as JSON")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Start the watcher in the background and return")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: set on the detached process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach and --child cannot be combined")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Budget watcher started in the background (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  Checking %s every %s\n", dbPath(), flagDaemonInterval)
	fmt.Printf("  Totals and budgets: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	fmt.Printf("  Check on it with: cbudget daemon status\n")
	return nil
}

func runDaemonForeground() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(flagDaemonPIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagDaemonPIDFile) }()

	state := daemonRuntimeState{
		PID:       pid,
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		DBPath:    dbPath(),
		InboxDir:  inboxDir(),
	}
	_ = writeState(statePath(flagDaemonPIDFile), state)
	defer func() { _ = os.Remove(statePath(flagDaemonPIDFile)) }()

	logger := log.New(log.Config{
		Level:  log.ParseLevel(flagDaemonLogLevel),
		JSON:   flagDaemonLogJSON,
		Output: os.Stderr,
	}, log.ComponentDaemon)

	svc := daemon.New(daemon.Config{
		Source: daemon.StoreSource{
			DBPath:   dbPath(),
			InboxDir: inboxDir(),
			Logger:   logger.WithComponent(log.ComponentImport),
		},
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
		Logger:       logger,
	})

	fmt.Printf("  Watching budgets in %s every %s\n", dbPath(), flagDaemonInterval)
	if dir := inboxDir(); dir != "" {
		fmt.Printf("  Importing new files from %s\n", dir)
	}
	fmt.Printf("  Budget API on http://%s (status, events, stream)\n", flagDaemonAddr)
	fmt.Printf("  Ctrl+C or `cbudget daemon stop` to finish\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil {
		fmt.Printf("  Budget watcher is not running. Start it with: cbudget daemon --detach\n")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Budget watcher exited without cleaning up (pid %d). Start it again with: cbudget daemon --detach\n", pid)
		return nil
	}

	rs := daemonRuntimeState{PID: pid, Addr: flagDaemonAddr}
	if saved, err := readState(statePath(flagDaemonPIDFile)); err == nil {
		rs = saved
		rs.PID = pid
		if rs.Addr == "" {
			rs.Addr = flagDaemonAddr
		}
	}

	st, err := fetchDaemonStatus(rs.Addr)
	fmt.Print(renderDaemonStatus(rs, st, err, time.Now()))
	return nil
}

func fetchDaemonStatus(addr string) (*daemon.Status, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // one-shot local request
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("unreadable status: %w", err)
	}
	return &st, nil
}

// renderDaemonStatus formats the status report. st is nil when the API
// could not be reached; apiErr then says why.
func renderDaemonStatus(rs daemonRuntimeState, st *daemon.Status, apiErr error, now time.Time) string {
	var b strings.Builder

	running := fmt.Sprintf("pid %d", rs.PID)
	if !rs.StartedAt.IsZero() {
		running += ", up " + now.Sub(rs.StartedAt).Truncate(time.Second).String()
	}
	fmt.Fprintf(&b, "  Budget watcher: running (%s)\n", running)
	if rs.DBPath != "" {
		fmt.Fprintf(&b, "  Database:   %s\n", rs.DBPath)
	}
	if rs.InboxDir != "" {
		fmt.Fprintf(&b, "  Inbox:      %s\n", rs.InboxDir)
	}
	fmt.Fprintf(&b, "  API:        http://%s/v1/status\n", rs.Addr)

	if st == nil {
		fmt.Fprintf(&b, "  Could not read totals: %v\n", apiErr)
		return b.String()
	}

	b.WriteString("\n")
	if st.LastPollAt.IsZero() {
		b.WriteString("  Last check: waiting for the first check\n")
	} else {
		fmt.Fprintf(&b, "  Last check: %s (%d check%s so far)\n",
			st.LastPollAt.Local().Format("2 Jan 15:04:05"), st.PollCount, plural(int(st.PollCount)))
	}

	sum := st.Summary
	fmt.Fprintf(&b, "  Expenses:   %s recorded, %s this month, %s today\n",
		cli.FormatNumber(int64(sum.Expenses)), cli.FormatMoney(sum.Totals.Month.Total), cli.FormatMoney(sum.Totals.Today.Total))
	fmt.Fprintf(&b, "  Budgets:    %d on track, %d near limit, %d over\n",
		sum.States[model.StateOK], sum.States[model.StateNear], sum.States[model.StateOver])
	for _, bs := range sum.Budgets {
		if bs.State == model.StateOver {
			fmt.Fprintf(&b, "    over: %s, %s of %s\n", bs.Label, cli.FormatMoney(bs.Spent), cli.FormatMoney(bs.Amount))
		}
	}
	if st.LastError != "" {
		fmt.Fprintf(&b, "  Last error: %s\n", st.LastError)
	}
	return b.String()
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil {
		return errors.New("budget watcher is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding watcher process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping watcher process %d: %w", pid, err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagDaemonPIDFile)
			_ = os.Remove(statePath(flagDaemonPIDFile))
			fmt.Printf("  Budget watcher stopped (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("budget watcher (pid %d) still running after 8s", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("budget watcher already running (pid %d); see cbudget daemon status", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
