// Package csvexport writes analysis line items as CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ppm/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{
	"Concept",
	"Unit",
	"Quantity",
	"Contract Cost",
	"Market Price",
	"Difference",
	"Difference %",
}

// Writer wraps csv.Writer for exporting line items.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteLineItems writes one row per line item.
func (w *Writer) WriteLineItems(items []domain.LineItem) error {
	for i := range items {
		if err := w.csv.Write(lineItemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes the BOM, header and every line item of result to out.
func Export(out io.Writer, result *domain.AnalysisResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if result != nil {
		if err := w.WriteLineItems(result.LineItems); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func lineItemToRow(item *domain.LineItem) []string {
	return []string{
		item.Concept,
		item.Unit,
		strconv.FormatFloat(item.Quantity, 'f', -1, 64),
		formatMoney(item.ContractCost),
		formatMoney(item.MarketPrice),
		formatMoney(item.Difference),
		formatMoney(item.DifferencePercent),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a file name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars. An empty result becomes "analysis".
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		return "analysis"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	name = strings.TrimSuffix(name, ".pdf")
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
