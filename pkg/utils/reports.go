// =============================================================================
// Tally Sales XML - Run Reports
// =============================================================================
//
// Plain-text reports written next to the generated XML:
//
//   error_log_<timestamp>_<id>.txt       One per failed sheet
//   processing_summary_<timestamp>.txt   One per directory run
//
// Both are meant for the person who dropped the sheets in, so they are
// plain aligned text rather than structured logs.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	reportTimeLayout = "2006-01-02 15:04:05"
	fileTimeLayout   = "20060102_150405"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLogEntry is one problem found while converting a sheet.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string // DECODE, SCHEMA, ARITHMETIC or PROCESSING
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes entries to a new error log in outputDir.
//
// RETURNS:
//   - The path to the error log file, or "" when entries is empty.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	// The short id keeps logs from concurrent runs apart.
	name := fmt.Sprintf("error_log_%s_%s.txt", time.Now().Format(fileTimeLayout), uuid.New().String()[:8])
	path := filepath.Join(outputDir, name)

	err := writeReport(path, func(r *report) {
		r.line("Tally Sales XML - Error Log")
		r.line("Generated: %s", time.Now().Format(reportTimeLayout))
		r.line("Total Errors: %d", len(entries))
		r.rule(heavyRule)
		r.blank()

		for i, entry := range entries {
			r.line("Error #%d", i+1)
			r.field(16, "Timestamp", entry.Timestamp.Format(reportTimeLayout))
			r.field(16, "File", entry.FileName)
			r.field(16, "Error Type", entry.ErrorType)
			r.field(16, "Message", entry.ErrorMessage)
			if entry.RowNumber > 0 {
				r.field(16, "Row Number", entry.RowNumber)
			}
			if entry.FieldName != "" {
				r.field(16, "Field", entry.FieldName)
			}
			if entry.FieldValue != "" {
				r.field(16, "Value", entry.FieldValue)
			}
			r.blank()
		}

		r.rule(heavyRule)
		r.line("End of Error Log")
	})
	if err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return path, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one batch run over a directory.
type ProcessingSummary struct {
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	SkippedFiles     int
	FailedFiles      int
	TotalRows        int
	TotalVouchers    int
	TotalLedgers     int
	ValidationErrors int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo describes a converted sheet.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	Rows        int
	Vouchers    int
	ProcessTime time.Duration
}

// FailedFileInfo describes a sheet that failed.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// Duration is the wall time of the run.
func (s ProcessingSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// WriteSummaryLog writes summary to outputDir, named after its start time.
//
// RETURNS:
//   - The path to the summary file.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	name := fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format(fileTimeLayout))
	path := filepath.Join(outputDir, name)

	err := writeReport(path, func(r *report) {
		r.line("Tally Sales XML - Processing Summary")
		r.rule(heavyRule)
		r.blank()

		r.line("Run Information:")
		r.field(16, "Start Time", summary.StartTime.Format(reportTimeLayout))
		r.field(16, "End Time", summary.EndTime.Format(reportTimeLayout))
		r.field(16, "Duration", summary.Duration())
		r.blank()

		r.line("Statistics:")
		r.field(20, "Total Files", summary.TotalFiles)
		r.field(20, "Successful", summary.SuccessfulFiles)
		r.field(20, "Skipped (empty)", summary.SkippedFiles)
		r.field(20, "Failed", summary.FailedFiles)
		r.field(20, "Total Rows", summary.TotalRows)
		r.field(20, "Total Vouchers", summary.TotalVouchers)
		r.field(20, "Total Ledger Lines", summary.TotalLedgers)
		r.field(20, "Validation Errors", summary.ValidationErrors)
		r.blank()

		if len(summary.ProcessedFiles) > 0 {
			r.line("Successful Files:")
			r.rule(lightRule)
			for _, pf := range summary.ProcessedFiles {
				r.field(14, "Input", pf.InputFile)
				r.field(14, "Output", pf.OutputFile)
				r.field(14, "Rows", pf.Rows)
				r.field(14, "Vouchers", pf.Vouchers)
				r.field(14, "Process Time", pf.ProcessTime)
				r.blank()
			}
		}

		if len(summary.FailedFilesList) > 0 {
			r.line("Failed Files:")
			r.rule(lightRule)
			for _, ff := range summary.FailedFilesList {
				r.field(7, "File", ff.InputFile)
				r.field(7, "Error", ff.ErrorMessage)
				r.blank()
			}
		}

		r.rule(heavyRule)
		r.line("End of Summary")
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}

// =============================================================================
// REPORT WRITER
// =============================================================================

// report buffers the lines of a text report.
type report struct {
	w *bufio.Writer
}

func (r *report) line(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
	r.w.WriteByte('\n')
}

func (r *report) rule(rule string) {
	r.w.WriteString(rule)
	r.w.WriteByte('\n')
}

func (r *report) blank() {
	r.w.WriteByte('\n')
}

// field writes an indented "Label: value" line, padding "Label:" to width.
func (r *report) field(width int, label string, value interface{}) {
	fmt.Fprintf(r.w, "  %-*s%v\n", width, label+":", value)
}

// writeReport creates path, creating its directory if needed, and fills it
// with render.
func writeReport(path string, render func(*report)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	r := &report{w: bufio.NewWriter(file)}
	render(r)
	return r.w.Flush()
}
