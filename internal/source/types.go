package source

import "strings"

// Format is an expense file format.
type Format string

// Supported import and export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromExt maps a file extension (with or without the dot) to a format.
func FormatFromExt(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		return FormatJSON, true
	case "csv":
		return FormatCSV, true
	case "yaml", "yml":
		return FormatYAML, true
	case "xlsx":
		return FormatXLSX, true
	}
	return "", false
}

// DiscoveredFile is an importable file found while scanning a directory.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// envelopeVersion is the version written into exported JSON files.
const envelopeVersion = 1

// rawExpense is the on-disk expense shape shared by JSON and YAML. Amount is
// left untyped so numbers and quoted strings both survive decoding.
type rawExpense struct {
	ID                 string `json:"id" yaml:"id"`
	Date               string `json:"date" yaml:"date"`
	Category           string `json:"category" yaml:"category"`
	Description        string `json:"description" yaml:"description"`
	Amount             any    `json:"amount" yaml:"amount"`
	PaymentMethod      string `json:"paymentMethod" yaml:"paymentMethod"`
	PaymentMethodSnake string `json:"payment_method" yaml:"payment_method"`
	Notes              string `json:"notes" yaml:"notes"`
	CreatedAt          string `json:"createdAt" yaml:"createdAt"`
	CreatedAtSnake     string `json:"created_at" yaml:"created_at"`
}

// envelope is the versioned JSON wrapper around an expense list.
type envelope struct {
	Version  int          `json:"version"`
	Expenses []rawExpense `json:"expenses"`
}
