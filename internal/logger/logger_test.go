package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "cryptoquery", nil)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "symbol", "BTC")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "symbol=BTC") {
		t.Errorf("warn record missing: %q", out)
	}
	if !strings.Contains(out, "service=cryptoquery") {
		t.Errorf("service attribute missing: %q", out)
	}
}

func TestLogger_TraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelDebug, "svc", func(ctx context.Context) string { return "abc123" })

	log.Debug(context.Background(), "traced")

	if !strings.Contains(buf.String(), "trace_id=abc123") {
		t.Errorf("trace id missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug,
		"warn":  LevelWarn,
		"error": LevelError,
		"info":  LevelInfo,
		"":      LevelInfo,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
