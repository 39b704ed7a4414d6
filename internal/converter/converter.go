// =============================================================================
// Tally Sales XML - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for a single sales sheet, from decoding to the written XML file.
//
// CONVERSION PIPELINE:
//   1. Decode the sheet (workbook or CSV) into records
//   2. Apply transformation rules to text cells
//   3. Validate the records (strict mode only)
//   4. Group records by invoice and build the voucher envelope
//   5. Serialize the envelope to XML
//   6. Write the output file
//   7. Archive the input sheet
//
// EMPTY SHEETS:
//   A sheet without data rows produces no XML. Run reports it as skipped and
//   writes nothing.
//
// CONCURRENCY:
//   A Converter holds no per-run state, so one instance may run several
//   files at once.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/tally-sales-xml/internal/config"
	"github.com/ginjaninja78/tally-sales-xml/internal/csvparser"
	"github.com/ginjaninja78/tally-sales-xml/internal/logger"
	"github.com/ginjaninja78/tally-sales-xml/internal/types"
	"github.com/ginjaninja78/tally-sales-xml/internal/validation"
	"github.com/ginjaninja78/tally-sales-xml/internal/voucher"
	"github.com/ginjaninja78/tally-sales-xml/internal/xlsxparser"
	"github.com/ginjaninja78/tally-sales-xml/internal/xmlwriter"
	"github.com/ginjaninja78/tally-sales-xml/pkg/utils"
)

// WorkbookExtensions are decoded with the workbook parser.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// SupportedExtensions lists every input extension the converter accepts.
var SupportedExtensions = append(append([]string{}, WorkbookExtensions...), ".csv")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input sheet.
	FilePath string

	// OutputFile is the path to the generated XML file. Empty when nothing
	// was written (failure, empty sheet, dry run or stdout output).
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Skipped is set when the sheet had no data rows.
	Skipped bool

	// Error contains the error if processing failed.
	Error error

	// ErrorLog is the error log written for a failed sheet, if any.
	ErrorLog string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows decoded from the sheet.
	RowsProcessed int

	// VouchersCreated is the number of TALLYMESSAGE elements written.
	VouchersCreated int

	// LedgerEntries is the number of ALLLEDGERENTRIES.LIST elements written.
	LedgerEntries int

	// ValidationErrors is the number of strict-mode problems found.
	ValidationErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter turns sales sheets into Tally import XML.
type Converter struct {
	config      *config.Config
	transformer *Transformer
	files       *utils.FileManager
	log         zerolog.Logger

	// DryRun runs the whole pipeline but writes, archives and logs nothing
	// to disk.
	DryRun bool

	// Stdout, when set, receives the XML instead of a file in OutputDir.
	Stdout io.Writer
}

// New creates a Converter from the application configuration.
func New(cfg *config.Config) *Converter {
	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	files.ArchiveOnSuccess = cfg.ArchiveOnSuccess
	files.UseTimestampSubdirs = cfg.ArchiveByDate

	return &Converter{
		config:      cfg,
		transformer: NewTransformer(cfg.TransformationRules),
		files:       files,
		log:         logger.WithComponent("converter"),
	}
}

// Files returns the file manager used for output and archiving.
func (c *Converter) Files() *utils.FileManager {
	return c.files
}

// Settings returns the voucher settings derived from the configuration.
func (c *Converter) Settings() voucher.Settings {
	return voucher.Settings{
		CompanyName: c.config.CompanyName,
		Country:     c.config.Country,
	}
}

// GenerateOptions returns the XML serialization options.
func (c *Converter) GenerateOptions() xmlwriter.GenerateOptions {
	return xmlwriter.GenerateOptions{
		Indent:                c.config.XMLIndent,
		IncludeXMLDeclaration: c.config.XMLDeclaration,
	}
}

// =============================================================================
// DECODING
// =============================================================================

// Load decodes a sheet read from r. The name selects the decoder by its
// extension and is reported as the source of decode errors.
func (c *Converter) Load(name string, r io.Reader) ([]types.Record, error) {
	var (
		records []types.Record
		err     error
	)

	switch {
	case isWorkbook(name):
		records, err = xlsxparser.Decode(r, xlsxparser.Options{Sheet: c.config.Sheet})
	case strings.EqualFold(filepath.Ext(name), ".csv"):
		records, err = csvparser.Decode(r, csvparser.Options{Delimiter: c.config.CSVDelimiter})
	default:
		return nil, types.NewDecodeError(name, fmt.Errorf("unsupported file type %q", filepath.Ext(name)))
	}

	if err != nil {
		var de *types.DecodeError
		if errors.As(err, &de) && de.Source == "" {
			de.Source = name
		}
		return nil, err
	}
	return records, nil
}

// LoadFile decodes the sheet at path.
func (c *Converter) LoadFile(path string) ([]types.Record, error) {
	switch {
	case isWorkbook(path):
		return xlsxparser.Parse(path, xlsxparser.Options{Sheet: c.config.Sheet})
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		return csvparser.Parse(path, csvparser.Options{Delimiter: c.config.CSVDelimiter})
	default:
		return nil, types.NewDecodeError(path, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range WorkbookExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// =============================================================================
// CONVERSION
// =============================================================================

// Transform applies the configured transformation rules to records in place.
func (c *Converter) Transform(records []types.Record) error {
	if err := c.transformer.TransformRecords(records); err != nil {
		return fmt.Errorf("failed to apply transformations: %w", err)
	}
	return nil
}

// Build applies the transformation rules, validates in strict mode and
// builds the voucher envelope.
//
// RETURNS:
//   - The envelope, or nil when records is empty.
//   - A *validation.Error in strict mode when any record fails a check.
func (c *Converter) Build(records []types.Record) (*xmlwriter.Element, error) {
	if len(records) == 0 {
		return nil, nil
	}

	if err := c.Transform(records); err != nil {
		return nil, err
	}

	if c.config.Strict {
		if err := validation.Join(validation.Validate(records)); err != nil {
			return nil, err
		}
	}

	return voucher.Build(records, c.Settings()), nil
}

// Convert turns records into the XML document.
//
// RETURNS:
//   - The XML bytes, or nil when records is empty.
//   - The error from Build or serialization.
func (c *Converter) Convert(records []types.Record) ([]byte, error) {
	envelope, err := c.Build(records)
	if err != nil || envelope == nil {
		return nil, err
	}

	data, err := xmlwriter.Marshal(envelope, c.GenerateOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to generate XML: %w", err)
	}
	return data, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file at path.
//
// PROCESSING STEPS:
//   1. Decode the sheet
//   2. Transform, validate and build the envelope
//   3. Serialize and write the output (file or Stdout)
//   4. Archive the input sheet
//
// On failure an error log is written to the output directory and the input
// sheet stays where it is.
func (c *Converter) Run(path string) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: path}
	log := c.log.With().Str("file", path).Logger()

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	log.Info().Msg("processing file")

	// =========================================================================
	// STEP 1: DECODE
	// =========================================================================

	records, err := c.LoadFile(path)
	if err != nil {
		return c.fail(log, result, fmt.Errorf("failed to read sheet: %w", err))
	}
	result.Stats.RowsProcessed = len(records)
	log.Debug().Int("rows", len(records)).Msg("decoded sheet")

	// =========================================================================
	// STEP 2: BUILD
	// =========================================================================

	envelope, err := c.Build(records)
	if err != nil {
		var ve *validation.Error
		if errors.As(err, &ve) {
			result.Stats.ValidationErrors = len(ve.Errs)
			for _, e := range ve.Errs {
				log.Warn().Err(e).Msg("validation error")
			}
		}
		return c.fail(log, result, err)
	}

	if envelope == nil {
		log.Info().Msg("sheet has no data rows; nothing written")
		result.Success = true
		result.Skipped = true
		return result
	}

	result.Stats.VouchersCreated, result.Stats.LedgerEntries = voucher.Count(envelope)

	// =========================================================================
	// STEP 3: SERIALIZE AND WRITE
	// =========================================================================

	data, err := xmlwriter.Marshal(envelope, c.GenerateOptions())
	if err != nil {
		return c.fail(log, result, fmt.Errorf("failed to generate XML: %w", err))
	}

	switch {
	case c.DryRun:
		log.Info().Int("bytes", len(data)).Msg("dry run; output not written")
	case c.Stdout != nil:
		if _, err := c.Stdout.Write(data); err != nil {
			return c.fail(log, result, fmt.Errorf("failed to write output: %w", err))
		}
	default:
		name := utils.GenerateOutputFileName(c.config.OutputName, map[string]string{
			"original": utils.OriginalName(path),
		})
		outputPath, err := c.files.WriteOutput(name, data)
		if err != nil {
			return c.fail(log, result, fmt.Errorf("failed to write output: %w", err))
		}
		result.OutputFile = outputPath
		log.Info().Str("output", outputPath).
			Int("vouchers", result.Stats.VouchersCreated).
			Msg("wrote output")
	}

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	if !c.DryRun {
		if archived, err := c.files.ArchiveInputFile(path); err != nil {
			// The XML is already written; a failed move is not a failed run.
			log.Warn().Err(err).Msg("failed to archive input")
		} else if archived != path {
			log.Debug().Str("archive", archived).Msg("archived input")
		}
	}

	result.Success = true
	return result
}

// fail records err on result and writes the error log.
func (c *Converter) fail(log zerolog.Logger, result Result, err error) Result {
	result.Error = err
	log.Error().Err(err).Msg("conversion failed")

	if c.DryRun {
		return result
	}

	logPath, logErr := utils.WriteErrorLog(errorLogEntries(result.FilePath, err), c.files.OutputDir)
	if logErr != nil {
		log.Warn().Err(logErr).Msg("failed to write error log")
		return result
	}
	result.ErrorLog = logPath
	return result
}

// errorLogEntries flattens err into one log entry per problem.
func errorLogEntries(path string, err error) []utils.ErrorLogEntry {
	now := time.Now()
	file := filepath.Base(path)

	var ve *validation.Error
	if !errors.As(err, &ve) {
		errorType := "PROCESSING"
		if errors.Is(err, types.ErrDecode) {
			errorType = "DECODE"
		}
		return []utils.ErrorLogEntry{{
			Timestamp:    now,
			FileName:     file,
			ErrorType:    errorType,
			ErrorMessage: err.Error(),
		}}
	}

	entries := make([]utils.ErrorLogEntry, 0, len(ve.Errs))
	for _, e := range ve.Errs {
		entry := utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     file,
			ErrorMessage: e.Error(),
		}

		var se *types.SchemaError
		var ae *types.ArithmeticError
		switch {
		case errors.As(e, &se):
			entry.ErrorType = "SCHEMA"
			entry.RowNumber = se.Row
			entry.FieldName = se.Column
		case errors.As(e, &ae):
			entry.ErrorType = "ARITHMETIC"
			entry.RowNumber = ae.Row
			entry.FieldName = ae.Column
			entry.FieldValue = ae.Value
		}
		entries = append(entries, entry)
	}
	return entries
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsSupported reports whether path has an extension the converter reads.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range SupportedExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// EnsureDirectories creates the output and archive directories before a
// batch run, so concurrent runs find them in place.
func (c *Converter) EnsureDirectories() error {
	if c.DryRun || c.Stdout != nil {
		return nil
	}
	return c.files.EnsureDirectories()
}
