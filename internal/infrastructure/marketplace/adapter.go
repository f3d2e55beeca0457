// Package marketplace maps raw seller-export tables from each supported
// platform onto the normalized analytics schema. Adapters do field-name and
// unit reconciliation only; cross-platform business logic lives with the
// aggregator.
package marketplace

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/infrastructure/csvtable"
)

// maxRowIssues caps how many skipped-row details are kept per upload
const maxRowIssues = 100

// PlatformAdapter converts one platform's export rows into normalized
// shipment records.
type PlatformAdapter interface {
	// Platform returns the marketplace this adapter handles
	Platform() analytics.Platform

	// RequiredColumns lists the headers the export must carry. A missing
	// column is a schema mismatch, not a per-row problem.
	RequiredColumns() []string

	// Normalize maps parsed rows onto shipment records. Rows with
	// unparseable dates or negative amounts are dropped into the skipped
	// tally, never fatal.
	Normalize(rows []*csvtable.Row) *NormalizeResult
}

// NormalizeResult is the outcome of adapting one export file
type NormalizeResult struct {
	Records   []analytics.ShipmentRecord
	TotalRows int
	Skipped   *csvtable.ErrorCollection
}

// newNormalizeResult allocates a result sized for the input
func newNormalizeResult(totalRows int) *NormalizeResult {
	return &NormalizeResult{
		Records:   make([]analytics.ShipmentRecord, 0, totalRows),
		TotalRows: totalRows,
		Skipped:   csvtable.NewErrorCollection(maxRowIssues),
	}
}

// SkippedRows returns how many input rows were dropped
func (r *NormalizeResult) SkippedRows() int {
	return r.Skipped.TotalCount()
}

// skip records one dropped row
func (r *NormalizeResult) skip(err csvtable.RowError) {
	r.Skipped.Add(err)
}

// SchemaMismatchError reports required columns absent from an upload
type SchemaMismatchError struct {
	Platform analytics.Platform
	Columns  []string
}

// Error implements the error interface, naming the missing columns
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s export is missing required column(s): %s",
		e.Platform, strings.Join(e.Columns, ", "))
}

// NewSchemaMismatchError creates a SchemaMismatchError
func NewSchemaMismatchError(platform analytics.Platform, columns []string) *SchemaMismatchError {
	return &SchemaMismatchError{Platform: platform, Columns: columns}
}

// CheckSchema verifies that every required column of the adapter is present
// in the parsed header, returning a SchemaMismatchError naming the absent
// ones otherwise.
func CheckSchema(adapter PlatformAdapter, parser *csvtable.Parser) error {
	missing := parser.MissingHeaders(adapter.RequiredColumns())
	if len(missing) > 0 {
		return NewSchemaMismatchError(adapter.Platform(), missing)
	}
	return nil
}

// dateFormats are the order-date layouts seen across seller exports
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// parseDate tries each known layout in turn
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}

// parseAmount parses a decimal amount, tolerating currency commas
func parseAmount(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// parseQuantity parses an integer quantity; exports sometimes write "1.0"
func parseQuantity(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("fractional quantity: %s", value)
	}
	return d.IntPart(), nil
}

// normalizeStateName upper-cases and collapses whitespace so state
// breakdown keys stay stable across exports.
func normalizeStateName(state string) string {
	return strings.ToUpper(strings.Join(strings.Fields(state), " "))
}
