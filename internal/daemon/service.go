// Package daemon provides the long-running budget monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cbudget/internal/log"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
)

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventSpending    = "spending"
	EventBudgetState = "budget_state"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Source       Source
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *log.Logger
	Now          func() time.Time
}

// BudgetStatus is the progress of one current budget.
type BudgetStatus struct {
	ID         string           `json:"id"`
	Label      string           `json:"label"`
	Scope      model.Scope      `json:"scope"`
	Category   string           `json:"category,omitempty"`
	PeriodType model.PeriodType `json:"period_type"`
	Amount     float64          `json:"amount"`
	Spent      float64          `json:"spent"`
	Ratio      float64          `json:"ratio"`
	State      model.State      `json:"state"`
}

// Snapshot is a compact spending state for status/event payloads.
type Snapshot struct {
	At       time.Time           `json:"at"`
	Expenses int                 `json:"expenses"`
	Totals   model.PeriodTotals  `json:"totals"`
	Budgets  []BudgetStatus      `json:"budgets"`
	States   map[model.State]int `json:"states"`
}

// StateChange records a budget moving between ok, near and over.
type StateChange struct {
	BudgetID string      `json:"budget_id"`
	Label    string      `json:"label"`
	From     model.State `json:"from"`
	To       model.State `json:"to"`
}

// Delta captures snapshot differences between polls.
type Delta struct {
	Expenses     int           `json:"expenses"`
	Spent        float64       `json:"spent"`
	StateChanges []StateChange `json:"state_changes,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Expenses == 0 && d.Spent == 0 && len(d.StateChanges) == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Source          string    `json:"source"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *log.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}

	return &Service{
		cfg:       cfg,
		log:       cfg.Logger,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return log.Middleware(s.log.WithComponent(log.ComponentHTTP))(mux)
}

// Run serves the HTTP API and polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("daemon listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Seed initial snapshot so status is useful immediately.
		s.pollOnce(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(ctx)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	s.log.Info("daemon started", "addr", ln.Addr().String(), "interval", s.cfg.Interval.String())
	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	now := s.cfg.Now()
	expenses, budgets, err := s.cfg.Source.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Error("poll failed", log.FieldError, err)
		return
	}

	snap := buildSnapshot(expenses, budgets, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		typ := EventSpending
		if len(delta.StateChanges) > 0 {
			typ = EventBudgetState
		}
		ev = Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		for _, ch := range ev.Delta.StateChanges {
			s.log.Info("budget state changed",
				log.FieldBudget, ch.BudgetID,
				"from", string(ch.From),
				log.FieldState, string(ch.To),
			)
		}
		s.publishEvent(ev)
	}
}

// buildSnapshot computes period totals and progress for budgets whose
// period contains now.
func buildSnapshot(expenses []model.Expense, budgets []model.Budget, now time.Time) Snapshot {
	var current []model.Budget
	for _, b := range budgets {
		if pipeline.IsCurrent(b, now) {
			current = append(current, b)
		}
	}
	progress := pipeline.ProgressForAll(current, expenses)

	statuses := make([]BudgetStatus, 0, len(progress))
	for _, bp := range progress {
		statuses = append(statuses, BudgetStatus{
			ID:         bp.Budget.ID,
			Label:      budgetLabel(bp.Budget),
			Scope:      bp.Budget.Scope,
			Category:   bp.Budget.Category,
			PeriodType: bp.Budget.PeriodType,
			Amount:     bp.Budget.Amount,
			Spent:      bp.Spent,
			Ratio:      bp.Ratio,
			State:      bp.State,
		})
	}

	return Snapshot{
		At:       now,
		Expenses: len(expenses),
		Totals:   pipeline.Dashboard(expenses, now),
		Budgets:  statuses,
		States:   pipeline.CountByState(progress),
	}
}

func budgetLabel(b model.Budget) string {
	what := "Overall"
	if b.Scope == model.ScopeCategory {
		what = model.EffectiveCategory(b.Category)
	}
	return fmt.Sprintf("%s %s (%s)", b.PeriodType.Label(), what, pipeline.PeriodLabel(b))
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Expenses: curr.Expenses - prev.Expenses,
		Spent:    curr.Totals.All.Total - prev.Totals.All.Total,
	}

	before := make(map[string]model.State, len(prev.Budgets))
	for _, b := range prev.Budgets {
		before[b.ID] = b.State
	}
	for _, b := range curr.Budgets {
		from, ok := before[b.ID]
		if !ok {
			from = model.StateOK
		}
		if from != b.State {
			d.StateChanges = append(d.StateChanges, StateChange{BudgetID: b.ID, Label: b.Label, From: from, To: b.State})
		}
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source := ""
	if s.cfg.Source != nil {
		source = s.cfg.Source.String()
	}

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Source:          source,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
