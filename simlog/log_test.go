package simlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Info("invoke", "entrypoint", "call", "energy", 9000)

	out := buf.String()
	if !strings.Contains(out, "invoke") || !strings.Contains(out, "entrypoint=call") || !strings.Contains(out, "energy=9000") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestWithAppendsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).With("contract", "<1,0>")
	l.Debug("resumed")

	if !strings.Contains(buf.String(), "contract=<1,0>") {
		t.Fatalf("expected derived context to be logged, got %q", buf.String())
	}
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(LevelWarn)
	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	l.Warn("should appear")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}
