// Package remote provides a client for pulling expenses and budgets from a
// hosted PostgREST table backend.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	restPrefix     = "/rest/v1"
)

var (
	// ErrUnauthorized indicates the API key or access token is expired or invalid.
	ErrUnauthorized = errors.New("remote: unauthorized (key or token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("remote: rate limited")
)

// Client reads expense and budget tables from the hosted backend.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	http        *http.Client
}

// NewClient creates a client for the given project URL and API key. The
// access token is optional; without it requests authenticate with the API key.
// Returns nil if the URL or key is empty or the URL is not http(s).
func NewClient(baseURL, apiKey, accessToken string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		accessToken: strings.TrimSpace(accessToken),
		http:        &http.Client{},
	}
}

// FetchAll fetches both tables. Expenses are fetched first; a failure there
// skips the budgets request.
func (c *Client) FetchAll(ctx context.Context) *Snapshot {
	result := &Snapshot{FetchedAt: time.Now()}

	expenses, err := c.FetchExpenses(ctx)
	if err != nil {
		result.Error = err
		return result
	}
	result.Expenses = expenses

	budgets, err := c.FetchBudgets(ctx)
	if err != nil {
		result.Error = err
		return result
	}
	result.Budgets = budgets
	return result
}

// FetchExpenses returns every expense row, newest first.
func (c *Client) FetchExpenses(ctx context.Context) ([]model.Expense, error) {
	q := url.Values{}
	q.Set("select", "id,date,category,description,amount,payment_method,notes,created_at")
	q.Set("order", "date.desc,created_at.desc")

	body, err := c.get(ctx, "/expenses", q)
	if err != nil {
		return nil, err
	}

	var rows []ExpenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("remote: parsing expenses: %w", err)
	}

	out := make([]model.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toExpense())
	}
	return out, nil
}

// FetchBudgets returns every budget row ordered by period type, then newest
// period first.
func (c *Client) FetchBudgets(ctx context.Context) ([]model.Budget, error) {
	q := url.Values{}
	q.Set("select", "id,scope,category,period_type,period_start,amount,created_at")
	q.Set("order", "period_type.asc,period_start.desc")

	body, err := c.get(ctx, "/budgets", q)
	if err != nil {
		return nil, err
	}

	var rows []BudgetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("remote: parsing budgets: %w", err)
	}

	out := make([]model.Budget, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toBudget())
	}
	return out, nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, table string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := c.baseURL + restPrefix + table + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}

	token := c.accessToken
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/cbudget/1.0")

	//nolint:gosec // URL is built from the configured project URL
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d for %s", resp.StatusCode, table)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}
	return body, nil
}
