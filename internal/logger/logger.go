package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the application logger
type Options struct {
	Level       string
	File        string // optional path; rotated by lumberjack
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Environment string
}

// New builds the JSON application logger. Records always go to stdout and,
// when File is set, to a rotated log file as well. The returned closer
// releases the file.
func New(opts Options) (*slog.Logger, io.Closer) {
	return NewWithWriter(os.Stdout, opts)
}

// NewWithWriter is New with a custom primary writer.
func NewWithWriter(out io.Writer, opts Options) (*slog.Logger, io.Closer) {
	writers := []io.Writer{out}
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    defaultInt(opts.MaxSizeMB, 50),
			MaxBackups: defaultInt(opts.MaxBackups, 5),
			MaxAge:     defaultInt(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		writers = append(writers, file)
		closer = file
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: strings.EqualFold(opts.Environment, "development"),
	})

	return slog.New(handler).With(slog.String("service", "folio-backend")), closer
}

// ParseLevel maps a level name to a slog.Level; unknown names mean info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
