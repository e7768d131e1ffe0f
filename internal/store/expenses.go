package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

const expenseColumns = `id, date, category, description, amount, payment_method, notes, created_at`

// SaveExpense inserts or replaces an expense. A missing id or creation time
// is filled in and the stored expense is returned.
func (s *Store) SaveExpense(e model.Expense) (model.Expense, error) {
	if e.ID == "" {
		e.ID = model.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.Amount = model.ToAmount(e.Amount)

	_, err := s.db.Exec(`INSERT OR REPLACE INTO expenses
		(`+expenseColumns+`, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '')`,
		e.ID, e.Date, e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes, formatTime(e.CreatedAt),
	)
	if err != nil {
		return e, fmt.Errorf("saving expense %s: %w", e.ID, err)
	}
	return e, nil
}

// GetExpense reads one expense by id.
func (s *Store) GetExpense(id string) (model.Expense, error) {
	row := s.db.QueryRow(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return e, fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return e, err
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(id string) error {
	res, err := s.db.Exec("DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return nil
}

// LoadExpenses returns every expense, newest first (date, then creation
// time, then id).
func (s *Store) LoadExpenses() ([]model.Expense, error) {
	rows, err := s.db.Query(`SELECT ` + expenseColumns + ` FROM expenses
		ORDER BY date DESC, created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ExpenseCount returns the number of stored expenses.
func (s *Store) ExpenseCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM expenses").Scan(&count)
	return count, err
}

// Categories returns every distinct effective category in use, sorted.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT CASE WHEN TRIM(category) = '' THEN ? ELSE category END AS c
		FROM expenses ORDER BY c`, model.OtherCategory)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanExpense reads one row. The amount column is scanned untyped so that
// hand-edited text values go through the same coercion as imports.
func scanExpense(sc scanner) (model.Expense, error) {
	var (
		e         model.Expense
		rawAmount any
		createdAt string
	)
	err := sc.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &rawAmount,
		&e.PaymentMethod, &e.Notes, &createdAt)
	if err != nil {
		return e, err
	}
	e.Amount = model.ToAmount(rawAmount)
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

func insertExpenses(tx *sql.Tx, expenses []model.Expense, sourceFile string) error {
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO expenses
		(` + expenseColumns + `, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range expenses {
		if e.ID == "" {
			e.ID = model.NewID()
		}
		_, err := stmt.Exec(e.ID, e.Date, e.Category, e.Description, model.ToAmount(e.Amount),
			e.PaymentMethod, e.Notes, formatTime(e.CreatedAt), sourceFile)
		if err != nil {
			return fmt.Errorf("inserting expense %s: %w", e.ID, err)
		}
	}
	return nil
}

// ReplaceAll swaps the whole local dataset for the given snapshot in one
// transaction. Import bookkeeping is cleared since imported rows are gone.
func (s *Store) ReplaceAll(expenses []model.Expense, budgets []model.Budget) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{"DELETE FROM expenses", "DELETE FROM budgets", "DELETE FROM file_tracker"} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}
	if err := insertExpenses(tx, expenses, ""); err != nil {
		return err
	}
	for _, b := range budgets {
		if err := insertBudget(tx, b); err != nil {
			return err
		}
	}
	return tx.Commit()
}
