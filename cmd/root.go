// =============================================================================
// Tally Sales XML - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (tallyxml)
//   ├── generateCmd (tallyxml generate)
//   ├── validateCmd (tallyxml validate)
//   ├── serveCmd    (tallyxml serve)
//   └── versionCmd  (tallyxml version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tally-sales-xml/internal/config"
	"github.com/ginjaninja78/tally-sales-xml/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is loaded once in PersistentPreRunE and shared by subcommands.
var appConfig *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tallyxml",
	Short: "Tally Sales XML - Convert sales invoice sheets to Tally import XML",
	Long: `Tally Sales XML converts a spreadsheet of sales invoice lines into the
XML accepted by Tally's "Import Data" request.

Rows sharing an Invoice No become one Sales voucher: the party ledger is
credited with the invoice total, each row debits its item ledger, and the
tax on each row is booked to IGST, or to CGST and SGST.

Example Usage:
  tallyxml generate sales.xlsx              # Write ./output/SalesData.xml
  tallyxml generate ./input --archive       # Convert every sheet in a folder
  tallyxml generate sales.xlsx --stdout     # Print the XML
  tallyxml validate sales.xlsx              # Report missing or bad columns
  tallyxml serve --addr :8080               # Upload page in the browser`,

	// Execute reports errors; cobra would print them a second time.
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRunE runs before every subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: A missing file is fine; defaults and TALLYXML_*
	// environment variables still apply.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration and sets up logging.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logConfig := cfg.LoggerConfig()
	if verbose {
		logConfig.Level = "debug"
	}
	if err := logger.Setup(logConfig); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	log := logger.WithComponent("cli")
	log.Debug().Str("config", cfgFile).Msg("configuration loaded")

	appConfig = cfg
	return nil
}
