// ABOUTME: Tests for logger construction and context helpers.
// ABOUTME: Verifies level parsing and context round-trips.
package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "chatty")

	logger.Debug("debug line")
	logger.Info("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Errorf("debug should be filtered: %q", out)
	}
	if !strings.Contains(out, "info line") {
		t.Errorf("info should be written: %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx, nil); got != logger {
		t.Error("FromContext did not return the attached logger")
	}

	fallback := Discard()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("FromContext should return the fallback when no logger is attached")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Error("FromContext should never return nil")
	}
}
