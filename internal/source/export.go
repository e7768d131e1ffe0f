package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cbudget/internal/model"
)

var tableHeader = []string{"id", "date", "category", "description", "amount", "payment_method", "notes", "created_at"}

// exportExpense is the written form of an expense. Timestamps are strings so
// a missing creation time round-trips as empty.
type exportExpense struct {
	ID            string  `json:"id" yaml:"id"`
	Date          string  `json:"date" yaml:"date"`
	Category      string  `json:"category" yaml:"category"`
	Description   string  `json:"description" yaml:"description"`
	Amount        float64 `json:"amount" yaml:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty" yaml:"payment_method,omitempty"`
	Notes         string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

func toExport(e model.Expense) exportExpense {
	created := ""
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
	}
	return exportExpense{
		ID:            e.ID,
		Date:          e.Date,
		Category:      e.Category,
		Description:   e.Description,
		Amount:        model.ToAmount(e.Amount),
		PaymentMethod: e.PaymentMethod,
		Notes:         e.Notes,
		CreatedAt:     created,
	}
}

func (x exportExpense) row() []string {
	return []string{
		x.ID, x.Date, x.Category, x.Description,
		strconv.FormatFloat(x.Amount, 'f', -1, 64),
		x.PaymentMethod, x.Notes, x.CreatedAt,
	}
}

// Write encodes expenses to w in the given format. XLSX output is written as
// a complete workbook.
func Write(w io.Writer, format Format, expenses []model.Expense) error {
	rows := make([]exportExpense, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, toExport(e))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Version  int             `json:"version"`
			Expenses []exportExpense `json:"expenses"`
		}{envelopeVersion, rows})
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(tableHeader); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(r.row()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatXLSX:
		return writeXLSX(w, rows)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// WriteFile writes expenses to path, inferring the format from the extension.
func WriteFile(path string, expenses []model.Expense) error {
	df, ok := Discover(path)
	if !ok {
		return fmt.Errorf("unsupported export file type: %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, df.Format, expenses); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

const xlsxSheet = "Expenses"

func writeXLSX(w io.Writer, rows []exportExpense) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]any, len(tableHeader))
	for i, h := range tableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.ID, r.Date, r.Category, r.Description, r.Amount, r.PaymentMethod, r.Notes, r.CreatedAt}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(xlsxSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "D", "D", 32); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}
