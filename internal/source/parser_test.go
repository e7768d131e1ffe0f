package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/cbudget/internal/model"
)

// writeFile creates a temp expense file and returns a DiscoveredFile for it.
func writeFile(t *testing.T, name string, lines ...string) DiscoveredFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	df, ok := Discover(path)
	if !ok {
		t.Fatalf("Discover(%s) failed", path)
	}
	return df
}

func TestParseFile_JSONArray(t *testing.T) {
	df := writeFile(t, "export.json",
		`[`,
		`  {"id":"1","date":"2024-03-01","category":"Food","description":"Rice","amount":"2500.50","paymentMethod":"Cash"},`,
		`  {"id":"2","date":"2024-03-02","category":"","description":"?","amount":"abc"},`,
		`  {"id":"3","date":"","category":"Bills","amount":120,"payment_method":"Card","created_at":"2024-03-02T10:00:00Z"}`,
		`]`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 3 {
		t.Fatalf("got %d expenses, want 3", len(result.Expenses))
	}
	if got := result.Expenses[0].Amount; got != 2500.50 {
		t.Errorf("string amount = %v, want 2500.50", got)
	}
	if got := result.Expenses[1].Amount; got != 0 {
		t.Errorf("garbage amount = %v, want 0", got)
	}
	if result.Expenses[2].PaymentMethod != "Card" {
		t.Errorf("snake_case payment method not read: %+v", result.Expenses[2])
	}
	if !result.Expenses[2].CreatedAt.Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", result.Expenses[2].CreatedAt)
	}
	if result.BadDates != 1 {
		t.Errorf("BadDates = %d, want 1", result.BadDates)
	}
}

func TestParseFile_JSONEnvelope(t *testing.T) {
	df := writeFile(t, "store.json",
		`{"version":1,"expenses":[{"date":"2024-03-01","category":"Food","amount":10}]}`,
	)
	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 1 || result.Expenses[0].Amount != 10 {
		t.Fatalf("expenses = %+v", result.Expenses)
	}
	if result.Expenses[0].ID == "" {
		t.Error("missing id was not filled")
	}
}

func TestParseFile_JSONFutureVersion(t *testing.T) {
	df := writeFile(t, "store.json", `{"version":99,"expenses":[]}`)
	if result := ParseFile(df); result.Err == nil {
		t.Fatal("expected error for unknown envelope version")
	}
}

func TestParseFile_StableIDs(t *testing.T) {
	df := writeFile(t, "noids.csv",
		"date,amount",
		"2024-03-01,5",
		"2024-03-02,6",
	)
	a := ParseFile(df)
	b := ParseFile(df)
	if a.Err != nil || b.Err != nil {
		t.Fatalf("errors: %v %v", a.Err, b.Err)
	}
	if a.Expenses[0].ID != b.Expenses[0].ID {
		t.Error("ids differ between parses of the same file")
	}
	if a.Expenses[0].ID == a.Expenses[1].ID {
		t.Error("rows share an id")
	}
}

func TestParseFile_CSV(t *testing.T) {
	df := writeFile(t, "bank.csv",
		"Date,Category,Description,Amount,Payment Method,Notes",
		"2024-03-01,Food,\"Rice, beans\",1500,Cash,",
		",,,,,",
		"2024-03-05,Transport,Bus,  300 ,Card,morning",
		"2024-03-06,Transport,Short row",
	)
	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 3 {
		t.Fatalf("got %d expenses, want 3 (blank row skipped)", len(result.Expenses))
	}
	first := result.Expenses[0]
	if first.Description != "Rice, beans" || first.Amount != 1500 || first.PaymentMethod != "Cash" {
		t.Errorf("first row = %+v", first)
	}
	if result.Expenses[1].Amount != 300 || result.Expenses[1].Notes != "morning" {
		t.Errorf("second row = %+v", result.Expenses[1])
	}
	if result.Expenses[2].Amount != 0 {
		t.Errorf("short row amount = %v, want 0", result.Expenses[2].Amount)
	}
}

func TestParseFile_CSVMissingHeader(t *testing.T) {
	df := writeFile(t, "bad.csv", "when,how much", "2024-03-01,5")
	if result := ParseFile(df); result.Err == nil {
		t.Fatal("expected header error")
	}
}

func TestParseFile_YAML(t *testing.T) {
	df := writeFile(t, "trip.yaml",
		"- date: 2024-03-01",
		"  category: Travel",
		"  description: Hotel",
		"  amount: 45000",
		"- date: 2024-03-02",
		"  amount: \"12.75\"",
		"  payment_method: Card",
	)
	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(result.Expenses))
	}
	if result.Expenses[0].Date != "2024-03-01" || result.Expenses[0].Amount != 45000 {
		t.Errorf("first = %+v", result.Expenses[0])
	}
	if result.Expenses[1].Amount != 12.75 || result.Expenses[1].PaymentMethod != "Card" {
		t.Errorf("second = %+v", result.Expenses[1])
	}
}

func TestWriteThenParse(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	in := []model.Expense{
		{ID: "a", Date: "2024-03-01", Category: "Food", Description: "Lunch, late", Amount: 1250.5, PaymentMethod: "Cash", CreatedAt: created},
		{ID: "b", Date: "2024-03-02", Amount: 7, Notes: "no category"},
	}

	for _, format := range []Format{FormatJSON, FormatCSV, FormatYAML, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, format, in); err != nil {
				t.Fatalf("Write: %v", err)
			}
			out, err := Parse(format, buf.Bytes())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(out) != 2 {
				t.Fatalf("got %d expenses, want 2", len(out))
			}
			if out[0].ID != "a" || out[0].Description != "Lunch, late" || out[0].Amount != 1250.5 {
				t.Errorf("first = %+v", out[0])
			}
			if !out[0].CreatedAt.Equal(created) {
				t.Errorf("created = %v, want %v", out[0].CreatedAt, created)
			}
			if !out[1].CreatedAt.IsZero() || out[1].Notes != "no category" {
				t.Errorf("second = %+v", out[1])
			}
		})
	}
}

func TestParseFile_XLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{"Date", "Category", "Amount", "Created At"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Food", 12.5, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"2024-03-02", "Bills", 40, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	df, ok := Discover(path)
	if !ok {
		t.Fatalf("Discover(%s) failed", path)
	}

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.BadDates != 0 {
		t.Errorf("BadDates = %d, want 0", result.BadDates)
	}
	if len(result.Expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(result.Expenses))
	}
	first := result.Expenses[0]
	if first.Date != "2024-03-01" || first.Amount != 12.5 || first.Category != "Food" {
		t.Errorf("date cell row = %+v", first)
	}
	if !first.CreatedAt.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("created = %v", first.CreatedAt)
	}
	if result.Expenses[1].Date != "2024-03-02" || result.Expenses[1].Amount != 40 {
		t.Errorf("text date row = %+v", result.Expenses[1])
	}
}

func TestSerialDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"45352", "2024-03-01"},
		{"45352.5", "2024-03-01"},
		{"2024-03-01", "2024-03-01"},
		{"", ""},
		{"-1", "-1"},
	}
	for _, tt := range tests {
		if got := serialDate(tt.in, "2006-01-02", false); got != tt.want {
			t.Errorf("serialDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.JSON", "c.yml", "d.xlsx", "~$d.xlsx", "notes.txt", ".hidden.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "2024")
	if err := os.MkdirAll(sub, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "march.csv"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 5 {
		t.Fatalf("found %d files, want 5: %+v", len(files), files)
	}
	formats := map[Format]int{}
	for _, f := range files {
		formats[f.Format]++
	}
	if formats[FormatCSV] != 2 || formats[FormatJSON] != 1 || formats[FormatYAML] != 1 || formats[FormatXLSX] != 1 {
		t.Errorf("formats = %v", formats)
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Fatalf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}
