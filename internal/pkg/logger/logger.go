package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"keyportal/internal/platform/config"
)

// Init installs the global logger described by cfg. The returned closer
// releases the log file when output is "file"; it is a no-op otherwise.
func Init(cfg config.LoggingConfig) io.Closer {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Output == "file" && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			log.Error().Err(err).Msg("failed to create log directory, logging to stdout")
			log.Logger = New(cfg.Format, os.Stdout)
			return nopCloser{}
		}

		file, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			log.Error().Err(err).Msg("failed to open log file, logging to stdout")
			log.Logger = New(cfg.Format, os.Stdout)
			return nopCloser{}
		}
		log.Logger = zerolog.New(file).With().Timestamp().Logger()
		return file
	}

	log.Logger = New(cfg.Format, os.Stdout)
	return nopCloser{}
}

// New builds a logger writing to w, as console text when format is "text"
// and as JSON lines otherwise.
func New(format string, w io.Writer) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
