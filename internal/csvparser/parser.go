// =============================================================================
// Tally Sales XML - CSV Parser Module
// =============================================================================
//
// This module decodes a sales register exported as CSV. The first line holds
// the column names, every following non-blank line is one invoice line.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, tab, semicolon)
//   - Header names cleaned the same way as the workbook parser
//   - Numeric text becomes a numeric value, everything else stays text
//   - Ragged rows are accepted; missing trailing cells are absent
//
// CUSTOMIZATION:
//   - Add delimiters to configureReader
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/tally-sales-xml/internal/types"
)

// Options controls how the CSV text is split.
type Options struct {
	// Delimiter separates fields. Accepts a single character or one of
	// "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the CSV file at path.
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

// Decode reads CSV text from r.
//
// RETURNS:
//   - The records in file order. Row counts CSV records from 1 (the header),
//     so it matches the line number unless the file has empty lines.
//   - A *types.DecodeError if the text is not valid CSV.
func Decode(r io.Reader, opts Options) ([]types.Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, opts)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, types.NewDecodeError("", fmt.Errorf("failed to read CSV: %w", err))
	}
	if len(allRows) == 0 {
		return nil, nil
	}

	headers := types.HeaderNames(stripBOM(allRows[0]))
	var records []types.Record

	for i := 1; i < len(allRows); i++ {
		row := allRows[i]
		if isRowEmpty(row) {
			continue
		}

		record := types.NewRecord(i + 1)
		for col, raw := range row {
			if col >= len(headers) {
				break
			}
			record.Set(headers[col], types.ParseCell(raw))
		}
		records = append(records, record)
	}

	return records, nil
}

// configureReader applies opts to the CSV reader.
func configureReader(reader *csv.Reader, opts Options) {
	switch opts.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(opts.Delimiter) > 0 {
			reader.Comma = rune(opts.Delimiter[0])
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// stripBOM removes a UTF-8 byte order mark left by spreadsheet exports.
func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
