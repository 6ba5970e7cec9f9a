// Package export writes expenses as CSV or JSON documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ArionMiles/finlog/pkg/api"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Headers are the CSV column names.
var Headers = []string{"Date", "Amount", "Category", "Reason", "Merchant"}

// ParseFormat resolves a format name. An empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// FileName returns the attachment name for an export taken at t.
func (f Format) FileName(t time.Time) string {
	return fmt.Sprintf("expenses-%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Write encodes expenses to w in format f.
func Write(w io.Writer, f Format, expenses []api.Expense) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, expenses)
	case FormatJSON:
		return writeJSON(w, expenses)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func writeCSV(w io.Writer, expenses []api.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("writing csv headers: %w", err)
	}

	for _, e := range expenses {
		record := []string{
			e.Date.UTC().Format("2006-01-02"),
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
			e.Reason,
			e.MerchantName,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, expenses []api.Expense) error {
	if expenses == nil {
		expenses = []api.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(expenses); err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}
	return nil
}
