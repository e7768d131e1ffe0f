package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	expenses []model.Expense
	budgets  []model.Budget
	err      error
}

func (f *fakeSource) Load(context.Context) ([]model.Expense, []model.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Expense(nil), f.expenses...), f.budgets, f.err
}

func (f *fakeSource) String() string { return "fake" }

func (f *fakeSource) add(e model.Expense) {
	f.mu.Lock()
	f.expenses = append(f.expenses, e)
	f.mu.Unlock()
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
}

func newTestService(src Source) *Service {
	return New(Config{Source: src, Interval: 10 * time.Second, EventsBuffer: 10, Now: fixedNow})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Expenses: 10,
		Totals:   model.PeriodTotals{All: model.PeriodTotal{Total: 100}},
		Budgets: []BudgetStatus{
			{ID: "a", State: model.StateOK},
			{ID: "b", State: model.StateNear},
		},
	}
	curr := Snapshot{
		Expenses: 12,
		Totals:   model.PeriodTotals{All: model.PeriodTotal{Total: 130.5}},
		Budgets: []BudgetStatus{
			{ID: "a", State: model.StateNear},
			{ID: "b", State: model.StateNear},
			{ID: "c", State: model.StateOver},
		},
	}

	delta := diffSnapshots(prev, curr)
	if delta.Expenses != 2 {
		t.Fatalf("Expenses delta = %d, want 2", delta.Expenses)
	}
	if delta.Spent != 30.5 {
		t.Fatalf("Spent delta = %.2f, want 30.50", delta.Spent)
	}
	if len(delta.StateChanges) != 2 {
		t.Fatalf("state changes = %+v, want 2", delta.StateChanges)
	}
	if delta.StateChanges[0].BudgetID != "a" || delta.StateChanges[0].To != model.StateNear {
		t.Fatalf("first change = %+v", delta.StateChanges[0])
	}
	if delta.StateChanges[1].From != model.StateOK || delta.StateChanges[1].To != model.StateOver {
		t.Fatalf("new budget change = %+v", delta.StateChanges[1])
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestBuildSnapshot_OnlyCurrentBudgets(t *testing.T) {
	expenses := []model.Expense{
		{ID: "1", Date: "2024-03-15", Category: "Food", Amount: 90},
		{ID: "2", Date: "2024-02-10", Category: "Food", Amount: 500},
	}
	budgets := []model.Budget{
		{ID: "march", Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01", Amount: 100},
		{ID: "feb", Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-02-01", Amount: 100},
	}

	snap := buildSnapshot(expenses, budgets, fixedNow())
	if len(snap.Budgets) != 1 || snap.Budgets[0].ID != "march" {
		t.Fatalf("budgets = %+v, want only march", snap.Budgets)
	}
	if snap.Budgets[0].State != model.StateNear {
		t.Fatalf("march state = %s, want near", snap.Budgets[0].State)
	}
	if snap.Totals.Today.Total != 90 || snap.Totals.All.Total != 590 {
		t.Fatalf("totals = %+v", snap.Totals)
	}
	if snap.States[model.StateNear] != 1 {
		t.Fatalf("states = %v", snap.States)
	}
}

func TestPollOnce_EmitsStateChange(t *testing.T) {
	src := &fakeSource{
		expenses: []model.Expense{{ID: "1", Date: "2024-03-15", Amount: 50}},
		budgets:  []model.Budget{{ID: "m", Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01", Amount: 100}},
	}
	s := newTestService(src)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	src.add(model.Expense{ID: "2", Date: "2024-03-14", Amount: 60})
	s.pollOnce(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events = %d, want 2 (snapshot + state change)", len(s.events))
	}
	if s.events[0].Type != EventSnapshot {
		t.Fatalf("first event = %s", s.events[0].Type)
	}
	ev := s.events[1]
	if ev.Type != EventBudgetState || len(ev.Delta.StateChanges) != 1 || ev.Delta.StateChanges[0].To != model.StateOver {
		t.Fatalf("second event = %+v", ev)
	}
	if s.pollCount != 3 {
		t.Fatalf("pollCount = %d, want 3", s.pollCount)
	}
}

func TestPollOnce_RecordsError(t *testing.T) {
	s := newTestService(&fakeSource{err: errors.New("disk gone")})
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError != "disk gone" || st.PollCount != 1 || st.EventCount != 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Source:       &fakeSource{},
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHTTPEndpoints(t *testing.T) {
	s := newTestService(&fakeSource{expenses: []model.Expense{{ID: "1", Date: "2024-03-15", Amount: 5}}})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	err = json.NewDecoder(resp.Body).Decode(&st)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if st.Source != "fake" || st.Summary.Expenses != 1 || st.Summary.Totals.Today.Total != 5 {
		t.Fatalf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatal(err)
	}
	var events []Event
	err = json.NewDecoder(resp.Body).Decode(&events)
	_ = resp.Body.Close()
	if err != nil || len(events) != 1 {
		t.Fatalf("events = %v, %v", events, err)
	}
}

func TestStream_SendsCurrentSnapshot(t *testing.T) {
	s := newTestService(&fakeSource{})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, "event: snapshot") {
		t.Fatalf("first line = %q", line)
	}
}
