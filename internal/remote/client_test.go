package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theirongolddev/cbudget/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "anon-key", "")
	if c == nil {
		t.Fatal("NewClient returned nil for a valid URL")
	}
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		url, key string
		ok       bool
	}{
		{"https://abc.supabase.co", "key", true},
		{"https://abc.supabase.co/", "key", true},
		{"", "key", false},
		{"https://abc.supabase.co", "  ", false},
		{"ftp://abc", "key", false},
		{"not a url", "key", false},
	}
	for _, tt := range tests {
		got := NewClient(tt.url, tt.key, "") != nil
		if got != tt.ok {
			t.Errorf("NewClient(%q, %q) ok = %v, want %v", tt.url, tt.key, got, tt.ok)
		}
	}
}

func TestFetchAll(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer anon-key" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		switch r.URL.Path {
		case "/rest/v1/expenses":
			if !strings.HasPrefix(r.URL.Query().Get("order"), "date.desc") {
				t.Errorf("expenses order = %q", r.URL.Query().Get("order"))
			}
			_, _ = w.Write([]byte(`[
				{"id":"e1","date":"2024-03-05","category":"Food","description":"Rice","amount":"2500.5","payment_method":null,"notes":null,"created_at":"2024-03-05T10:00:00.123456+00:00"},
				{"id":"e2","date":null,"category":null,"description":"?","amount":12,"created_at":null},
				{"id":"e3","date":"2024-03-06","amount":"oops"}
			]`))
		case "/rest/v1/budgets":
			_, _ = w.Write([]byte(`[
				{"id":"b1","scope":"category","category":"Food","period_type":"week","period_start":"2024-03-04","amount":5000},
				{"id":"b2","scope":null,"category":null,"period_type":null,"period_start":"2024-03-01","amount":"120"}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	snap := c.FetchAll(context.Background())
	if snap.Error != nil {
		t.Fatalf("FetchAll error: %v", snap.Error)
	}
	if len(snap.Expenses) != 3 || len(snap.Budgets) != 2 {
		t.Fatalf("got %d expenses, %d budgets", len(snap.Expenses), len(snap.Budgets))
	}

	e := snap.Expenses[0]
	if e.Amount != 2500.5 || e.PaymentMethod != "" || e.CreatedAt.IsZero() {
		t.Errorf("first expense = %+v", e)
	}
	if snap.Expenses[1].Amount != 12 || snap.Expenses[1].Date != "" {
		t.Errorf("second expense = %+v", snap.Expenses[1])
	}
	if snap.Expenses[2].Amount != 0 {
		t.Errorf("garbage amount = %v, want 0", snap.Expenses[2].Amount)
	}

	b := snap.Budgets[1]
	if b.Scope != model.ScopeOverall || b.PeriodType != model.PeriodMonth || b.Amount != 120 {
		t.Errorf("defaulted budget = %+v", b)
	}
	if snap.Budgets[0].PeriodType != model.PeriodWeek || snap.Budgets[0].Category != "Food" {
		t.Errorf("category budget = %+v", snap.Budgets[0])
	}
}

func TestFetchAll_NumericIDs(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/expenses":
			_, _ = w.Write([]byte(`[
				{"id":42,"date":"2024-03-01","category":"Food","amount":"12.5"},
				{"id":"abc","date":"2024-03-02","category":"Food","amount":1},
				{"id":null,"date":"2024-03-03","amount":2}
			]`))
		case "/rest/v1/budgets":
			_, _ = w.Write([]byte(`[{"id":7,"scope":"overall","period_type":"month","period_start":"2024-03-01","amount":100}]`))
		default:
			http.NotFound(w, r)
		}
	})

	snap := c.FetchAll(context.Background())
	if snap.Error != nil {
		t.Fatalf("FetchAll error: %v", snap.Error)
	}
	if len(snap.Expenses) != 3 || len(snap.Budgets) != 1 {
		t.Fatalf("got %d expenses, %d budgets", len(snap.Expenses), len(snap.Budgets))
	}
	if got := snap.Expenses[0]; got.ID != "42" || got.Amount != 12.5 {
		t.Errorf("numeric id expense = %+v", got)
	}
	if snap.Expenses[1].ID != "abc" || snap.Expenses[2].ID != "" {
		t.Errorf("ids = %q, %q", snap.Expenses[1].ID, snap.Expenses[2].ID)
	}
	if snap.Budgets[0].ID != "7" {
		t.Errorf("budget id = %q, want 7", snap.Budgets[0].ID)
	}
}

func TestFetchAll_UsesAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-jwt" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	snap := NewClient(srv.URL, "anon-key", "user-jwt").FetchAll(context.Background())
	if snap.Error != nil {
		t.Fatalf("FetchAll error: %v", snap.Error)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		})
		if _, err := c.FetchExpenses(context.Background()); !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
	}

	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := c.FetchBudgets(context.Background()); err == nil {
		t.Fatal("expected error for 500")
	}
}

func TestFetchAll_StopsAfterExpenseFailure(t *testing.T) {
	var budgetCalls int
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/budgets" {
			budgetCalls++
		}
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	snap := c.FetchAll(context.Background())
	if snap.Error == nil {
		t.Fatal("expected parse error")
	}
	if budgetCalls != 0 {
		t.Fatalf("budgets fetched %d times after expense failure", budgetCalls)
	}
}
