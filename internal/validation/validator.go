// =============================================================================
// Tally Sales XML - Validation Engine
// =============================================================================
//
// Strict-mode checks run before the voucher builder. The builder itself never
// rejects input: a missing amount becomes "NaN" in the XML. With strict mode
// on, the same problems are reported to the caller instead.
//
// CHECKS (per record):
//   1. Required columns present:
//        Invoice No, Invoice Date, Party A/C Name, Place of Supply, ITEM,
//        Taxable Value                                     -> SchemaError
//   2. Monetary columns that are present are numeric:
//        Taxable Value, IGST, Cgst, Sgst                   -> ArithmeticError
//   3. Rows without a positive IGST are booked as CGST + SGST, so both
//      columns must be present on those rows               -> SchemaError
//
// ERROR HANDLING:
//   - Errors are collected, not returned on first failure
//   - Each error carries the sheet row number and column
//   - A sheet that passes every check converts exactly as in lenient mode
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

// RequiredColumns must be present on every record.
var RequiredColumns = []string{
	types.ColInvoiceNo,
	types.ColInvoiceDate,
	types.ColPartyName,
	types.ColPlaceOfSupply,
	types.ColItem,
	types.ColTaxableValue,
}

// MonetaryColumns must be numeric when present.
var MonetaryColumns = types.MonetaryColumns

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks every record and returns all problems found, in row order.
// Each error is a *types.SchemaError or a *types.ArithmeticError.
func Validate(records []types.Record) []error {
	var errs []error
	for _, record := range records {
		errs = append(errs, ValidateRecord(record)...)
	}
	return errs
}

// ValidateRecord checks a single record.
func ValidateRecord(record types.Record) []error {
	var errs []error

	for _, column := range RequiredColumns {
		if record.Get(column).IsAbsent() {
			errs = append(errs, &types.SchemaError{Row: record.Row, Column: column})
		}
	}

	for _, column := range MonetaryColumns {
		v := record.Get(column)
		if !v.IsAbsent() && !v.IsNumber() {
			errs = append(errs, &types.ArithmeticError{Row: record.Row, Column: column, Value: v.String()})
		}
	}

	if !takesIGSTBranch(record) {
		for _, column := range []string{types.ColCGST, types.ColSGST} {
			if record.Get(column).IsAbsent() {
				errs = append(errs, &types.SchemaError{Row: record.Row, Column: column})
			}
		}
	}

	return errs
}

// takesIGSTBranch mirrors the builder's branch: only IGST > 0 counts.
func takesIGSTBranch(record types.Record) bool {
	d, ok := record.Get(types.ColIGST).Decimal()
	return ok && d.IsPositive()
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// Error reports every problem found in a sheet. Each wrapped error is a
// *types.SchemaError or a *types.ArithmeticError.
type Error struct {
	Errs []error
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed with %d error(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *Error) Unwrap() []error {
	return e.Errs
}

// Join combines errs into a *Error, or nil when errs is empty.
func Join(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &Error{Errs: errs}
}

// FormatErrors renders errs one per line for console output.
func FormatErrors(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, err)
	}
	return b.String()
}

// Counts splits errs into schema and arithmetic totals.
func Counts(errs []error) (schema, arithmetic int) {
	for _, err := range errs {
		var se *types.SchemaError
		var ae *types.ArithmeticError
		switch {
		case errors.As(err, &se):
			schema++
		case errors.As(err, &ae):
			arithmetic++
		}
	}
	return schema, arithmetic
}
