// Package logging configures the global zerolog logger for the CLI.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up console logging on stderr. Verbose enables debug output,
// including the command lines passed to the CSP tools.
func Init(app string, verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	log.Logger = logger
	return logger
}
