package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// teeHandler sends each record to every handler that accepts its level.
type teeHandler []slog.Handler

// Tee combines handlers into one.
func Tee(handlers ...slog.Handler) slog.Handler {
	return teeHandler(handlers)
}

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	list := make(teeHandler, len(t))
	for i, h := range t {
		list[i] = h.WithAttrs(attrs)
	}
	return list
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	list := make(teeHandler, len(t))
	for i, h := range t {
		list[i] = h.WithGroup(name)
	}
	return list
}

// Options configure the process logger.
type Options struct {
	Level string
	// Debug forces debug level regardless of Level.
	Debug bool
	// RunLog, when set, also receives every record at debug level as text.
	RunLog string
	// Writer receives the console output. Defaults to stderr.
	Writer io.Writer
}

// Setup installs the default logger and returns a function that closes the
// run log, if any.
func Setup(o Options) (func() error, error) {
	level := ParseLogLevel(o.Level)
	if o.Debug {
		level = slog.LevelDebug
	}
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}

	var h slog.Handler = NewCLIHandler(w, level)
	closer := func() error { return nil }

	if o.RunLog != "" {
		if err := os.MkdirAll(filepath.Dir(o.RunLog), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run log dir: %w", err)
		}
		f, err := os.OpenFile(o.RunLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening run log %s: %w", o.RunLog, err)
		}
		h = Tee(h, slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = f.Close
	}

	slog.SetDefault(slog.New(h))
	return closer, nil
}
