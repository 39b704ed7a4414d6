// =============================================================================
// Tally Sales XML - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Tally Sales XML CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   tallyxml generate [file|dir] - Convert sales sheets to Tally import XML
//   tallyxml validate <file>     - Report missing or non-numeric columns
//   tallyxml serve               - Serve the upload page
//   tallyxml version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Decoding, voucher building, XML output, HTTP server
//   - pkg/           : File management shared by the CLI and the converter
//   - config.yaml    : Optional settings, overridden by TALLYXML_* variables
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/tally-sales-xml/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
