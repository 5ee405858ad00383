package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"skywatcher/internal/config"
)

// ParseLevel maps a configured level name onto a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds a text or JSON slog handler writing to w
func NewHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Setup opens the append-only detections log, creating its directory first,
// and returns a logger writing one timestamped line per event to it.
// The returned closer releases the file.
func Setup(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	path := cfg.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", cfg.Dir, err)
		}
		path = filepath.Join(cfg.Dir, cfg.File)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var w io.Writer = file
	if cfg.Console {
		w = io.MultiWriter(file, os.Stdout)
	}

	return slog.New(NewHandler(w, cfg)), file, nil
}
