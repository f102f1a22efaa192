// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phsym/console-slog"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"

	"github.com/symptomsync/healthai/backend/internal/config"
)

// Preinit installs a console logger so that configuration errors are readable.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

// Init replaces the default logger according to cfg. The returned closer
// releases the log file, if any.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := ParseLevel(cfg.Level)

	handlers := []slog.Handler{
		console.NewHandler(os.Stderr, &console.HandlerOptions{
			AddSource: cfg.AddSource,
			Level:     level,
		}),
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, oops.In("logging").With("file", cfg.File).Wrapf(err, "failed to create log directory")
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, oops.In("logging").With("file", cfg.File).Wrapf(err, "failed to open log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			AddSource: cfg.AddSource,
			Level:     level,
		}))
		closer = file
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closer, nil
}

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
