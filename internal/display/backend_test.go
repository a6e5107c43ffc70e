package display

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hyprpal/hyprslide/internal/util"
)

func TestParseColor(t *testing.T) {
	tests := map[string]Color{
		"#1E90FF":  {R: 0x1e, G: 0x90, B: 0xff},
		"1e90ff":   {R: 0x1e, G: 0x90, B: 0xff},
		"#abc":     {R: 0xaa, G: 0xbb, B: 0xcc},
		"0x000000": {},
	}
	for input, want := range tests {
		got, err := ParseColor(input)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", input, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q): expected error", bad)
		}
	}
	if s := (Color{R: 0x1e, G: 0x90, B: 0xff}).String(); s != "#1E90FF" {
		t.Fatalf("String() = %q", s)
	}
}

func TestParsePosition(t *testing.T) {
	if p, err := ParsePosition("Fit"); err != nil || p != PositionFit {
		t.Fatalf("ParsePosition(Fit) = %q, %v", p, err)
	}
	if p, err := ParsePosition("5"); err != nil || p != PositionSpan {
		t.Fatalf("ParsePosition(5) = %q, %v", p, err)
	}
	for _, bad := range []string{"6", "-1", "zoom"} {
		if _, err := ParsePosition(bad); err == nil {
			t.Fatalf("ParsePosition(%q): expected error", bad)
		}
	}
}

func TestDryRunSkipsWrites(t *testing.T) {
	mem := NewMemory("DP-1")
	var logs bytes.Buffer
	dry := DryRun{Backend: mem, Logger: util.NewLoggerWithWriter(util.LevelInfo, &logs)}

	if err := dry.SetWallpaper(context.Background(), "DP-1", "/w/a.png"); err != nil {
		t.Fatalf("SetWallpaper: %v", err)
	}
	if len(mem.Writes) != 0 {
		t.Fatalf("dry run reached the backend: %v", mem.Writes)
	}
	if !strings.Contains(logs.String(), "dry-run: wallpaper DP-1 -> /w/a.png") {
		t.Fatalf("expected dry-run log, got %q", logs.String())
	}
	monitors, err := dry.ActiveMonitors(context.Background())
	if err != nil || len(monitors) != 1 {
		t.Fatalf("reads should pass through: %v %v", monitors, err)
	}
}
