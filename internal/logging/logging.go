// ABOUTME: Structured logger construction and context propagation.
// ABOUTME: Wraps charmbracelet/log; loggers write to stderr so stdio surfaces stay clean.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type contextKey struct{}

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"). Unknown or empty levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "cortitrack",
		ReportTimestamp: true,
	})
}

// Default returns an info-level logger on stderr.
func Default() *log.Logger {
	return New(os.Stderr, "info")
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return Discard()
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context, or
// returns fallback when none is present.
func FromContext(ctx context.Context, fallback *log.Logger) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*log.Logger); ok {
			return logger
		}
	}
	return OrDiscard(fallback)
}
