package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace": LevelTrace,
		"TRACE": LevelTrace,
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
	if ValidLogLevel("verbose") {
		t.Fatalf("expected verbose to be rejected")
	}
}

func TestNamedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewLoggerWithWriter(LevelWarn, &buf)
	child := root.Named("store").Named("watch")

	child.Infof("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	root.SetLevel(LevelDebug)
	child.Debugf("reloaded %d", 2)
	out := buf.String()
	if !strings.Contains(out, "[DEBUG] store.watch: reloaded 2") {
		t.Fatalf("unexpected output %q", out)
	}
}
