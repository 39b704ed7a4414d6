// =============================================================================
// Tally Sales XML - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a sales sheet
// without writing any XML.
//
// COMMAND USAGE:
//   tallyxml validate <file>
//
// CHECKS:
//   - The sheet can be read (.xlsx, .xlsm, .xltx, .xltm or .csv)
//   - Every row carries the columns its tax branch needs (schema)
//   - Every amount column holds a number (arithmetic)
//
// The same checks decide what --strict rejects in 'generate'.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tally-sales-xml/internal/converter"
	"github.com/ginjaninja78/tally-sales-xml/internal/validation"
	"github.com/ginjaninja78/tally-sales-xml/internal/voucher"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a sales sheet for missing or non-numeric columns",
	Long: `The validate command reads a sales sheet and reports every row that is
missing a required column or carries a non-numeric amount. Nothing is written.

The command exits with an error when any problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate decodes path, applies the configured transformation rules and
// reports every problem found.
func runValidate(cmd *cobra.Command, path string) error {
	conv := converter.New(appConfig)

	records, err := conv.LoadFile(path)
	if err != nil {
		return err
	}
	if err := conv.Transform(records); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := filepath.Base(path)
	invoices := len(voucher.GroupByInvoice(records))
	fmt.Fprintf(out, "%s: %d row(s), %d invoice(s)\n", name, len(records), invoices)

	errs := validation.Validate(records)
	if len(errs) == 0 {
		fmt.Fprintln(out, "  ✓ no problems found")
		return nil
	}

	schema, arithmetic := validation.Counts(errs)
	fmt.Fprint(out, validation.FormatErrors(errs))
	fmt.Fprintf(out, "  ✗ %d missing column(s), %d non-numeric value(s)\n", schema, arithmetic)
	return fmt.Errorf("%s failed validation with %d error(s)", name, len(errs))
}
