package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type LoggerOptions struct {
	// File enables rotated JSON logs at this path; when empty logs go to Writer.
	File   string
	Level  string
	Writer io.Writer
}

// NewLogger returns a structured logger and a function releasing its output.
func NewLogger(opts LoggerOptions) (*slog.Logger, func(), error) {
	var level slog.Level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(opts.Level))); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.File == "" {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotated := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	return slog.New(slog.NewJSONHandler(rotated, handlerOpts)), func() { rotated.Close() }, nil
}
