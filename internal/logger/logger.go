// =============================================================================
// Tally Sales XML - Logging
// =============================================================================
//
// Thin setup layer over zerolog. Commands call Setup once; packages then log
// through component loggers so every line carries its source:
//
//   log := logger.WithComponent("converter")
//   log.Info().Str("file", path).Msg("conversion started")
//
// =============================================================================

package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Format     string // json, console
	TimeFormat string // time layout for the timestamp field
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns the logging configuration used when none is given.
// Logs go to stderr so generated XML on stdout stays clean.
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
	}
}

// Setup initializes the global logger with the provided configuration.
// Unset fields fall back to DefaultConfig.
func Setup(config LogConfig) error {
	defaults := DefaultConfig()
	if config.Level == "" {
		config.Level = defaults.Level
	}
	if config.TimeFormat == "" {
		config.TimeFormat = defaults.TimeFormat
	}
	if config.Output == "" {
		config.Output = defaults.Output
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch config.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		// Anything else is a file path.
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		output = file
	}

	if strings.ToLower(config.Format) != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
		}
	}

	zerolog.TimeFieldFormat = config.TimeFormat
	log.Logger = zerolog.New(output).With().
		Timestamp().
		Logger()

	return nil
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithRequestID returns a logger with a request ID field
func WithRequestID(requestID string) zerolog.Logger {
	return log.Logger.With().Str("request_id", requestID).Logger()
}
