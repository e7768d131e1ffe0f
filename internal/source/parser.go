// Package source discovers, parses and writes expense files (JSON, CSV, YAML
// and XLSX).
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

// ParseResult holds the output of parsing a single expense file.
type ParseResult struct {
	Expenses []model.Expense
	BadDates int // rows kept whose date is missing or malformed
	Err      error
}

// ParseFile reads one expense file. Amounts are coerced, never rejected.
// Rows without an id get a stable one derived from the file path and row
// number, so re-importing a file replaces its rows rather than duplicating them.
func ParseFile(df DiscoveredFile) ParseResult {
	var (
		raws []rawExpense
		err  error
	)

	switch df.Format {
	case FormatXLSX:
		raws, err = readXLSX(df.Path)
	default:
		var data []byte
		data, err = os.ReadFile(df.Path)
		if err != nil {
			return ParseResult{Err: err}
		}
		raws, err = decode(df.Format, data)
	}
	if err != nil {
		return ParseResult{Err: fmt.Errorf("parsing %s: %w", df.Path, err)}
	}

	result := ParseResult{Expenses: make([]model.Expense, 0, len(raws))}
	for i, r := range raws {
		e := r.toExpense()
		if e.ID == "" {
			e.ID = stableID(df.Path, i)
		}
		if _, ok := period.Parse(e.Date); !ok {
			result.BadDates++
		}
		result.Expenses = append(result.Expenses, e)
	}
	return result
}

// Parse decodes expenses from an in-memory document of the given format.
func Parse(format Format, data []byte) ([]model.Expense, error) {
	raws, err := decode(format, data)
	if err != nil {
		return nil, err
	}
	out := make([]model.Expense, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.toExpense())
	}
	return out, nil
}

func decode(format Format, data []byte) ([]rawExpense, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		var raws []rawExpense
		if err := yaml.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	case FormatCSV:
		return decodeCSV(bytes.NewReader(data))
	case FormatXLSX:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return xlsxRows(f)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// decodeJSON accepts either a bare array or a versioned envelope.
func decodeJSON(data []byte) ([]rawExpense, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '[' {
		var raws []rawExpense
		if err := dec.Decode(&raws); err != nil {
			return nil, err
		}
		return raws, nil
	}

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if env.Version > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	return env.Expenses, nil
}

func decodeCSV(r io.Reader) ([]rawExpense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return fromRows(records)
}

func readXLSX(path string) ([]rawExpense, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return xlsxRows(f)
}

func xlsxRows(f *excelize.File) ([]rawExpense, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// Date cells come back as serial numbers in raw mode.
	layouts := make(map[int]string)
	for i, h := range rows[0] {
		switch normalizeHeader(h) {
		case "date":
			layouts[i] = period.Layout
		case "createdat":
			layouts[i] = "2006-01-02 15:04:05"
		}
	}
	for _, row := range rows[1:] {
		for i, layout := range layouts {
			if i < len(row) {
				row[i] = serialDate(row[i], layout, date1904)
			}
		}
	}
	return fromRows(rows)
}

// serialDate renders an Excel date serial in layout. Anything that is not a
// number is returned unchanged.
func serialDate(v, layout string, date1904 bool) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(n, date1904)
	if err != nil {
		return v
	}
	return t.Format(layout)
}

// errNoHeader is returned when a tabular file lacks the required columns.
var errNoHeader = errors.New("header row must include date and amount columns")

// fromRows maps a header row plus data rows onto expenses. Header names are
// matched case-insensitively, ignoring spaces, dashes and underscores.
func fromRows(rows [][]string) ([]rawExpense, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[normalizeHeader(h)] = i
	}
	if _, ok := cols["date"]; !ok {
		return nil, errNoHeader
	}
	if _, ok := cols["amount"]; !ok {
		return nil, errNoHeader
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []rawExpense
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, rawExpense{
			ID:            cell(row, "id"),
			Date:          cell(row, "date"),
			Category:      cell(row, "category"),
			Description:   cell(row, "description"),
			Amount:        cell(row, "amount"),
			PaymentMethod: cell(row, "paymentmethod"),
			Notes:         cell(row, "notes"),
			CreatedAt:     cell(row, "createdat"),
		})
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r rawExpense) toExpense() model.Expense {
	pm := r.PaymentMethod
	if pm == "" {
		pm = r.PaymentMethodSnake
	}
	created := r.CreatedAt
	if created == "" {
		created = r.CreatedAtSnake
	}

	return model.Expense{
		ID:            strings.TrimSpace(r.ID),
		Date:          strings.TrimSpace(r.Date),
		Category:      strings.TrimSpace(r.Category),
		Description:   r.Description,
		Amount:        model.ToAmount(r.Amount),
		PaymentMethod: pm,
		Notes:         r.Notes,
		CreatedAt:     parseCreatedAt(created),
	}
}

func parseCreatedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", period.Layout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stableID(path string, row int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path+"#"+strconv.Itoa(row))).String()
}
