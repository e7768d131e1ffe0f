package daemon

import (
	"context"
	"fmt"

	"github.com/theirongolddev/cbudget/internal/log"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/store"
)

// Source supplies the expenses and budgets for each poll.
type Source interface {
	Load(ctx context.Context) ([]model.Expense, []model.Budget, error)
	String() string
}

// StoreSource reads from the SQLite store, importing the inbox directory
// first when one is set. The store is opened per poll so the CLI can write
// between polls.
type StoreSource struct {
	DBPath   string
	InboxDir string
	Logger   *log.Logger
}

// Load implements Source.
func (s StoreSource) Load(ctx context.Context) ([]model.Expense, []model.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(s.DBPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = st.Close() }()

	if s.InboxDir != "" {
		res, err := pipeline.ImportDir(st, s.InboxDir, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("importing inbox: %w", err)
		}
		if s.Logger != nil && (res.Imported > 0 || res.Forgotten > 0 || res.FileErrors > 0) {
			s.Logger.Info("inbox imported",
				log.FieldFiles, res.Imported,
				log.FieldExpenses, len(res.Expenses),
				"forgotten", res.Forgotten,
				"errors", res.FileErrors,
			)
		}
	}

	expenses, err := st.LoadExpenses()
	if err != nil {
		return nil, nil, fmt.Errorf("loading expenses: %w", err)
	}
	budgets, err := st.LoadBudgets()
	if err != nil {
		return nil, nil, fmt.Errorf("loading budgets: %w", err)
	}
	return expenses, budgets, nil
}

func (s StoreSource) String() string {
	return s.DBPath
}
