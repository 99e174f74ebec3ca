// Package logger provides the agent's structured logging surface, built on
// zerolog. Console output is colorized via zerolog's ConsoleWriter; file
// rotation (file_logger.go) replaces the writer with a plain multi-writer
// that also carries the file sink, so rotated logs contain the same events
// as the console.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger is the global structured logger instance
	Logger zerolog.Logger

	// Maintain backward compatibility with existing logger functions
	initialized bool
)

func init() {
	initStructuredLogger()
}

// initStructuredLogger initializes the structured logger with agent-specific configuration
func initStructuredLogger() {
	zerolog.TimeFieldFormat = time.RFC3339

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
	}

	Logger = zerolog.New(consoleWriter).
		With().
		Timestamp().
		Str("service", "all-smi-agent").
		Logger()

	initialized = true
}

// SetStructuredLogger replaces the global logger with one writing plain JSON
// lines to w, e.g. to fan events out to a rotated file alongside stdout.
// Used by SetupFileLogger to route the agent's real log stream (not the
// stdlib "log" package) onto the rotating file sink.
func SetStructuredLogger(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	Logger = zerolog.New(w).With().Timestamp().Str("service", "all-smi-agent").Logger()
	initialized = true
}

// LogScrapeRequest logs one Prometheus scrape of the HTTP endpoint.
func LogScrapeRequest(remoteAddr string, deviceCount int, duration time.Duration) {
	Logger.Info().
		Str("component", "exporter").
		Str("remote_addr", remoteAddr).
		Int("device_count", deviceCount).
		Dur("duration", duration).
		Msg("scrape request served")
}

// LogReaderError records a reader or collector failing to produce a
// snapshot: host reader errors from the exporter's scrape, collector
// pipe/parse errors, and the amd-wmi device reader's query errors; other
// device readers drop their errors without logging.
func LogReaderError(reader string, err error) {
	Logger.Warn().
		Str("component", "reader").
		Str("reader", reader).
		Err(err).
		Msg("reader snapshot degraded")
}

// LogCollectorRestart records an external-process collector being
// relaunched after exiting or failing a health check.
func LogCollectorRestart(command string, attempt int, reason string) {
	Logger.Warn().
		Str("component", "collector").
		Str("command", command).
		Int("attempt", attempt).
		Str("reason", reason).
		Msg("collector process restarting")
}

// LogPeerScrape records one fleet-aggregator fetch of a peer agent.
func LogPeerScrape(peer string, ok bool, duration time.Duration, err error) {
	event := Logger.Info()
	if !ok {
		event = Logger.Warn()
	}
	event = event.
		Str("component", "aggregator").
		Str("peer", peer).
		Bool("ok", ok).
		Dur("duration", duration)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("peer scrape completed")
}

// Info and Warn are the plain narration helpers the rest of the agent calls
// for one-off messages that don't warrant a dedicated Log* function above.

func Info(format string, args ...interface{}) {
	if initialized {
		Logger.Info().Msgf(format, args...)
	} else {
		log.Info().Msgf(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if initialized {
		Logger.Warn().Msgf(format, args...)
	} else {
		log.Warn().Msgf(format, args...)
	}
}
