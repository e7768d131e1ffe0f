package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

const budgetColumns = `id, scope, category, period_type, period_start, amount, created_at`

// SaveBudget inserts or replaces a budget. A missing id or creation time is
// filled in and the stored budget is returned. Only category budgets keep a
// category.
func (s *Store) SaveBudget(b model.Budget) (model.Budget, error) {
	if b.ID == "" {
		b.ID = model.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.Scope != model.ScopeCategory {
		b.Category = ""
	}

	tx, err := s.db.Begin()
	if err != nil {
		return b, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertBudget(tx, b); err != nil {
		return b, err
	}
	return b, tx.Commit()
}

func insertBudget(tx *sql.Tx, b model.Budget) error {
	var category sql.NullString
	if b.Scope == model.ScopeCategory {
		category = sql.NullString{String: b.Category, Valid: true}
	}
	_, err := tx.Exec(`INSERT OR REPLACE INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Scope), category, string(b.PeriodType), b.PeriodStart,
		model.ToAmount(b.Amount), formatTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving budget %s: %w", b.ID, err)
	}
	return nil
}

// GetBudget reads one budget by id.
func (s *Store) GetBudget(id string) (model.Budget, error) {
	row := s.db.QueryRow(`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return b, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, err
}

// DeleteBudget removes a budget by id.
func (s *Store) DeleteBudget(id string) error {
	res, err := s.db.Exec("DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting budget %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return nil
}

// LoadBudgets returns every budget ordered by period type, then newest
// period first.
func (s *Store) LoadBudgets() ([]model.Budget, error) {
	rows, err := s.db.Query(`SELECT ` + budgetColumns + ` FROM budgets
		ORDER BY period_type ASC, period_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func scanBudget(sc scanner) (model.Budget, error) {
	var (
		b                 model.Budget
		scope, periodType string
		category          sql.NullString
		rawAmount         any
		createdAt         string
	)
	err := sc.Scan(&b.ID, &scope, &category, &periodType, &b.PeriodStart, &rawAmount, &createdAt)
	if err != nil {
		return b, err
	}
	b.Scope = model.Scope(scope)
	b.PeriodType = model.PeriodType(periodType)
	if category.Valid {
		b.Category = category.String
	}
	if b.Scope == "" {
		b.Scope = model.ScopeOverall
	}
	if b.PeriodType == "" {
		b.PeriodType = model.PeriodMonth
	}
	b.Amount = model.ToAmount(rawAmount)
	b.CreatedAt = parseTime(createdAt)
	return b, nil
}
