// =============================================================================
// Tally Sales XML - XLSX Sheet Parser
// =============================================================================
//
// This module decodes a sales register workbook into invoice line records.
//
// SHEET LAYOUT:
//   Row 1 holds the column names; every following non-blank row is one
//   invoice line:
//
//   | Invoice No | Invoice Date | Party A/C Name | Place of Supply | ITEM   | Taxable Value | IGST | Cgst | Sgst |
//   |------------|--------------|----------------|-----------------|--------|---------------|------|------|------|
//   | INV-001    | 20240115     | Acme Traders   | Karnataka       | Widget | 100           | 18   |      |      |
//   | INV-002    | 20240116     | Bharat Stores  | Goa             | Bolt   | 50            |      | 4.5  | 4.5  |
//
// CELL VALUES:
//   Cells are read raw (number formats are not applied). A cell stored as a
//   number becomes a numeric value; text, booleans, dates and error cells are
//   kept as text. Empty cells are absent from the record.
//
// HEADER NAMES:
//   Names are trimmed. A blank header becomes "__EMPTY" ("__EMPTY_1", ...) and
//   a repeated name gets a numeric suffix ("ITEM_1"), so no column is lost.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls which part of the workbook is read.
type Options struct {
	// Sheet is the worksheet to read.
	// Default: "" (the first sheet in the workbook)
	Sheet string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the workbook at path.
func Parse(path string, opts Options) ([]types.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.NewDecodeError(path, err)
	}
	defer file.Close()

	records, err := Decode(file, opts)
	if err != nil {
		var de *types.DecodeError
		if errors.As(err, &de) && de.Source == "" {
			de.Source = path
		}
		return nil, err
	}
	return records, nil
}

// Decode reads a workbook from r.
//
// RETURNS:
//   - The records of the selected sheet in sheet order. A sheet with only a
//     header row (or nothing at all) yields no records and no error.
//   - A *types.DecodeError if the workbook cannot be opened or read.
func Decode(r io.Reader, opts Options) ([]types.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, types.NewDecodeError("", fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, types.NewDecodeError("", fmt.Errorf("workbook has no sheets"))
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, types.NewDecodeError("", fmt.Errorf("failed to read sheet %q: %w", sheetName, err))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := types.HeaderNames(rows[0])
	var records []types.Record

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		sheetRow := i + 1
		record := types.NewRecord(sheetRow)

		for col, raw := range row {
			if col >= len(headers) || strings.TrimSpace(raw) == "" {
				continue
			}

			value, err := cellValue(f, sheetName, col+1, sheetRow, raw)
			if err != nil {
				return nil, types.NewDecodeError("", err)
			}
			record.Set(headers[col], value)
		}

		records = append(records, record)
	}

	return records, nil
}

// cellValue types a raw cell using the cell's stored type.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (types.Value, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return types.Value{}, fmt.Errorf("invalid cell coordinates: %w", err)
	}

	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return types.Value{}, fmt.Errorf("failed to read type of cell %s: %w", ref, err)
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		// Untyped cells are numbers in SpreadsheetML.
		v := types.ParseCell(raw)
		if v.IsNumber() {
			return v, nil
		}
		return types.String(raw), nil
	default:
		return types.String(raw), nil
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
