// =============================================================================
// Tally Sales XML - Shared Types
// =============================================================================
//
// This package contains the record model shared by the decoders, the voucher
// builder and the validator. Keeping it here avoids import cycles between:
//   - xlsxparser / csvparser (produce records)
//   - converter (applies column rules)
//   - voucher (groups records and builds the XML tree)
//   - validation (strict-mode checks)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================
// Header-row names read from the sales register. Any other column is carried
// on the record but ignored by the voucher builder.

const (
	ColInvoiceNo     = "Invoice No"
	ColInvoiceDate   = "Invoice Date"
	ColPartyName     = "Party A/C Name"
	ColPlaceOfSupply = "Place of Supply"
	ColItem          = "ITEM"
	ColTaxableValue  = "Taxable Value"
	ColIGST          = "IGST"
	ColCGST          = "Cgst"
	ColSGST          = "Sgst"
)

// MonetaryColumns hold amounts. Everything else is descriptive text, even
// when it looks like a number.
var MonetaryColumns = []string{ColTaxableValue, ColIGST, ColCGST, ColSGST}

// IsMonetary reports whether column holds an amount.
func IsMonetary(column string) bool {
	for _, c := range MonetaryColumns {
		if c == column {
			return true
		}
	}
	return false
}

// =============================================================================
// CELL VALUES
// =============================================================================

// Kind identifies what a cell holds.
type Kind int

const (
	// KindAbsent means the column is missing or the cell is empty.
	KindAbsent Kind = iota

	// KindString is any non-numeric text.
	KindString

	// KindNumber is a numeric cell.
	KindNumber
)

// Value is a single decoded cell.
//
// Text holds the cell's source text. For numbers parsed from text it keeps the
// original spelling, so "0012" and "01012024" render unchanged while still
// summing as 12 and 1012024.
type Value struct {
	Kind Kind
	Text string
	Num  decimal.Decimal
}

// Absent returns the zero Value.
func Absent() Value {
	return Value{}
}

// String wraps text as a string cell.
func String(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Number wraps a decimal as a numeric cell.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// ParseCell turns raw cell text into a Value.
//
// Empty (after trimming) text is absent, text that parses as a decimal is a
// number that remembers its trimmed text, everything else is kept verbatim as
// a string.
func ParseCell(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Absent()
	}
	if d, err := decimal.NewFromString(trimmed); err == nil {
		return Value{Kind: KindNumber, Text: trimmed, Num: d}
	}
	return String(raw)
}

// IsAbsent reports whether the cell is missing.
func (v Value) IsAbsent() bool {
	return v.Kind == KindAbsent
}

// IsNumber reports whether the cell is numeric.
func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// String renders the cell as text. Absent cells render as "". Numbers render
// their source text when they have one.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if v.Text != "" {
			return v.Text
		}
		return v.Num.String()
	case KindString:
		return v.Text
	default:
		return ""
	}
}

// Decimal returns the numeric value and whether the cell is a number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.Kind != KindNumber {
		return decimal.Zero, false
	}
	return v.Num, true
}

// =============================================================================
// RECORDS
// =============================================================================

// Record is one data row from the input sheet.
type Record struct {
	// Row is the 1-based row number in the source sheet (header is row 1).
	// Used for error reporting only.
	Row int

	// Cells maps header-row column names to cell values.
	Cells map[string]Value
}

// NewRecord creates an empty record for the given sheet row.
func NewRecord(row int) Record {
	return Record{Row: row, Cells: make(map[string]Value)}
}

// Get returns the cell for a column, or an absent value.
func (r Record) Get(column string) Value {
	if r.Cells == nil {
		return Absent()
	}
	return r.Cells[column]
}

// Set stores a cell. Absent values remove the column.
func (r Record) Set(column string, v Value) {
	if v.IsAbsent() {
		delete(r.Cells, column)
		return
	}
	r.Cells[column] = v
}

// HeaderNames turns a header row into unique column names.
//
// Names are trimmed. A blank header becomes "__EMPTY" and a repeated name gets
// a numeric suffix ("ITEM", "ITEM_1", ...), so no column is lost.
func HeaderNames(row []string) []string {
	names := make([]string, len(row))
	used := make(map[string]bool)

	for i, cell := range row {
		base := strings.TrimSpace(cell)
		if base == "" {
			base = "__EMPTY"
		}

		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[i] = name
	}

	return names
}
