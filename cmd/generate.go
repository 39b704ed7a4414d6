// =============================================================================
// Tally Sales XML - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which converts sales sheets into
// Tally import XML.
//
// COMMAND USAGE:
//   tallyxml generate [file|dir] [flags]
//
// FLAGS:
//   --output-dir  : Directory for generated XML files
//   --output-name : Output file name template ({uuid}, {timestamp}, {date},
//                   {time}, {original})
//   --company     : Company name written to SVCURRENTCOMPANY
//   --sheet       : Worksheet to read (default: first sheet)
//   --strict      : Reject sheets with missing or non-numeric columns
//   --archive     : Move converted sheets to the input archive
//   --stdout      : Print the XML instead of writing a file (single file only)
//   --dry-run     : Run the conversion without writing anything
//
// PROCESSING:
//   A file argument is converted on its own. A directory argument (or no
//   argument, meaning input_dir) converts every supported sheet in it
//   concurrently, bounded by max_concurrency. Each sheet succeeds or fails
//   independently, and a summary is written to the output directory.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tally-sales-xml/internal/config"
	"github.com/ginjaninja78/tally-sales-xml/internal/converter"
	"github.com/ginjaninja78/tally-sales-xml/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputDir  string
	outputName string
	company    string
	sheet      string
	strict     bool
	archive    bool
	toStdout   bool
	dryRun     bool
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate [file|dir]",
	Short: "Convert sales sheets to Tally import XML",
	Long: `The generate command reads a sales invoice sheet (.xlsx, .xlsm, .xltx,
.xltm or .csv) and writes the Tally "Import Data" XML for it.

On success:
  - The XML is written to the output directory (SalesData.xml by default)
  - With --archive, the sheet is moved to the input archive

On error:
  - An error log is created in the output directory
  - The sheet remains where it is
  - Other sheets in the same directory are still converted

A sheet with a header row but no data rows produces no file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyGenerateFlags(cmd, appConfig)

		target := appConfig.InputDir
		if len(args) == 1 {
			target = args[0]
		}
		return runGenerate(cmd, target)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVar(&outputDir, "output-dir", "", "Directory for generated XML files")
	flags.StringVar(&outputName, "output-name", "", "Output file name template")
	flags.StringVar(&company, "company", "", "Company name for SVCURRENTCOMPANY")
	flags.StringVar(&sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	flags.BoolVar(&strict, "strict", false, "Reject sheets with missing or non-numeric columns")
	flags.BoolVar(&archive, "archive", false, "Move converted sheets to the input archive")
	flags.BoolVar(&toStdout, "stdout", false, "Print the XML instead of writing a file")
	flags.BoolVar(&dryRun, "dry-run", false, "Run the conversion without writing output files")
}

// applyGenerateFlags overrides cfg with the flags given on the command line.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("output-name") {
		cfg.OutputName = outputName
	}
	if flags.Changed("company") {
		cfg.CompanyName = company
	}
	if flags.Changed("sheet") {
		cfg.Sheet = sheet
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("archive") {
		cfg.ArchiveOnSuccess = archive
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runGenerate converts target, a sheet or a directory of sheets.
func runGenerate(cmd *cobra.Command, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", target, err)
	}

	if !info.IsDir() {
		if !converter.IsSupported(target) {
			return fmt.Errorf("%s: unsupported file type, expected one of %s",
				target, strings.Join(converter.SupportedExtensions, ", "))
		}
		conv := newConverter(cmd)
		result := conv.Run(target)
		printResult(cmd, result)
		if result.Error != nil {
			return result.Error
		}
		return nil
	}

	if toStdout {
		return fmt.Errorf("--stdout needs a single file, %s is a directory", target)
	}

	conv := newConverter(cmd)
	files, err := conv.Files().DiscoverInputFiles(target, converter.SupportedExtensions)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		cmd.PrintErrf("No sales sheets found in %s\n", target)
		return nil
	}

	// Several sheets would all land on the same name unless it is unique per
	// sheet. The converter reads the output name from appConfig on every run.
	if len(files) > 1 && !uniquePerFile(appConfig.OutputName) {
		appConfig.OutputName = perFileOutputName(appConfig.OutputName)
	}

	if err := conv.EnsureDirectories(); err != nil {
		return err
	}

	summary := processFiles(cmd, conv, files, appConfig.MaxConcurrency)

	if !dryRun {
		if path, err := utils.WriteSummaryLog(summary, appConfig.OutputDir); err != nil {
			cmd.PrintErrf("Failed to write summary: %v\n", err)
		} else {
			cmd.PrintErrf("Summary written to %s\n", path)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// newConverter builds a converter from appConfig and the output flags.
func newConverter(cmd *cobra.Command) *converter.Converter {
	conv := converter.New(appConfig)
	conv.DryRun = dryRun
	if toStdout {
		conv.Stdout = cmd.OutOrStdout()
	}
	return conv
}

// perFileOutputName prefixes a fixed output name with {original}, so
// march.xlsx and april.csv produce march_SalesData.xml and april_SalesData.xml.
func perFileOutputName(name string) string {
	if name == "" {
		name = utils.DefaultOutputName
	}
	return "{original}_" + name
}

// uniquePerFile reports whether the name template already differs between
// sheets of one run. {date}, {time} and {timestamp} do not: sheets converted
// in the same second share them.
func uniquePerFile(name string) bool {
	return strings.Contains(name, "{original}") || strings.Contains(name, "{uuid}")
}

// processFiles converts files concurrently, at most limit at a time.
func processFiles(cmd *cobra.Command, conv *converter.Converter, files []string, limit int) utils.ProcessingSummary {
	if limit < 1 {
		limit = 1
	}

	summary := utils.ProcessingSummary{
		StartTime:  time.Now(),
		TotalFiles: len(files),
	}

	var wg sync.WaitGroup
	slots := make(chan struct{}, limit)
	results := make(chan converter.Result, len(files))

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			results <- conv.Run(path)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		printResult(cmd, result)

		summary.TotalRows += result.Stats.RowsProcessed
		summary.ValidationErrors += result.Stats.ValidationErrors

		switch {
		case result.Error != nil:
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
		case result.Skipped:
			summary.SkippedFiles++
		default:
			summary.SuccessfulFiles++
			summary.TotalVouchers += result.Stats.VouchersCreated
			summary.TotalLedgers += result.Stats.LedgerEntries
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				Rows:        result.Stats.RowsProcessed,
				Vouchers:    result.Stats.VouchersCreated,
				ProcessTime: result.Stats.ProcessingTime,
			})
		}
	}

	summary.EndTime = time.Now()

	cmd.PrintErrln("\n=== Processing Complete ===")
	cmd.PrintErrf("Total files:     %d\n", summary.TotalFiles)
	cmd.PrintErrf("Successful:      %d\n", summary.SuccessfulFiles)
	cmd.PrintErrf("Skipped (empty): %d\n", summary.SkippedFiles)
	cmd.PrintErrf("Errors:          %d\n", summary.FailedFiles)
	cmd.PrintErrf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	return summary
}

// printResult reports one file on stderr, keeping stdout for the XML.
func printResult(cmd *cobra.Command, result converter.Result) {
	name := filepath.Base(result.FilePath)
	switch {
	case result.Error != nil:
		cmd.PrintErrf("  ✗ %s: %v\n", name, result.Error)
		if result.ErrorLog != "" {
			cmd.PrintErrf("    error log: %s\n", result.ErrorLog)
		}
	case result.Skipped:
		cmd.PrintErrf("  - %s: no data rows, nothing written\n", name)
	case result.OutputFile != "":
		cmd.PrintErrf("  ✓ %s -> %s (%d voucher(s))\n", name, result.OutputFile, result.Stats.VouchersCreated)
	default:
		cmd.PrintErrf("  ✓ %s (%d voucher(s))\n", name, result.Stats.VouchersCreated)
	}
}
