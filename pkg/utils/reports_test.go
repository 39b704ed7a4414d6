package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "sales.xlsx",
		ErrorType:    "SCHEMA",
		ErrorMessage: `row 3: missing required column "ITEM"`,
		RowNumber:    3,
		FieldName:    "ITEM",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "Row Number:     3")
	assert.Contains(t, string(data), "Field:          ITEM")
	assert.NotContains(t, string(data), "Value:")
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalVouchers:   3,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.xlsx", OutputFile: "a.xml", Vouchers: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.xlsx", ErrorMessage: "decode failed"}},
	}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "processing_summary_20240115_100000.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Duration:       2s")
	assert.Contains(t, string(data), "Total Vouchers:     3")
	assert.Contains(t, string(data), "Error: decode failed")
}
