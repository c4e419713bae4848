/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the global logger, selects the output format per environment
(console for development, JSON otherwise), and exposes leveled helpers that
take key-value field pairs.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger initializes the global zerolog instance. Development gets
// Debug level with the human-readable ConsoleWriter; production gets Info
// level with plain JSON on stdout. All entries carry a timestamp and caller.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.
			Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger. Components derive child loggers
// from it with With().Str("component", ...).
func Logger() *zerolog.Logger {
	return &log.Logger
}

// eventFields checks that the variadic fields hold key-value pairs. An odd
// count is logged and the fields dropped so zerolog never panics on them.
func eventFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msg("Log call received an odd number of fields. Fields ignored.")
		return nil
	}
	return fields
}

// Info records a message at the Info level with optional key-value fields.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(eventFields("Info", fields)).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at the Warn level with optional key-value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(eventFields("Warn", fields)).CallerSkipFrame(1).Msg(msg)
}

// Error records an error and a message at the Error level.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(eventFields("Error", fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal records an error at the Fatal level and terminates the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(eventFields("Fatal", fields)).CallerSkipFrame(1).Msg(msg)
}
