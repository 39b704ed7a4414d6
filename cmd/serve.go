// =============================================================================
// Tally Sales XML - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the upload page.
//
// COMMAND USAGE:
//   tallyxml serve [--addr :8080]
//
// The server runs until interrupted (Ctrl+C or SIGTERM), then finishes the
// requests in flight before exiting.
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tally-sales-xml/internal/converter"
	"github.com/ginjaninja78/tally-sales-xml/internal/server"
)

var serveAddr string

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload page for browser conversions",
	Long: `The serve command starts a web page where a sales sheet can be uploaded
and the generated SalesData.xml downloaded.

The listen address defaults to server_addr from the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.ServerAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(converter.New(appConfig)).Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server_addr)")
}
