package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg, err := Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Config{
		PresetsDir: "/xdg/hyprslide/presets",
		LogLevel:   "info",
		Backend:    BackendHyprpaper,
		Dispatch:   DispatchSocket,
		Interval:   30 * time.Minute,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIntervalForms(t *testing.T) {
	tests := map[string]time.Duration{
		"interval: 15m":  15 * time.Minute,
		"interval: 90s":  90 * time.Second,
		"interval: 10":   10 * time.Minute,
		"interval: 1h5m": time.Hour + 5*time.Minute,
	}
	for input, want := range tests {
		cfg, err := Parse([]byte(input), "")
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if cfg.Interval != want {
			t.Fatalf("Parse(%q).Interval = %s, want %s", input, cfg.Interval, want)
		}
	}
	if _, err := Parse([]byte("interval: soon"), ""); err == nil {
		t.Fatalf("expected invalid interval error")
	}
}

func TestParseResolvesRelativePresetsDir(t *testing.T) {
	cfg, err := Parse([]byte("presetsDir: presets.d\n"), "/etc/hyprslide")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PresetsDir != "/etc/hyprslide/presets.d" {
		t.Fatalf("PresetsDir = %q", cfg.PresetsDir)
	}
}

func TestLintCollectsEveryIssue(t *testing.T) {
	cfg := &Config{
		PresetsDir: "/p",
		LogLevel:   "loud",
		Backend:    "gnome",
		Dispatch:   "carrier-pigeon",
		Interval:   time.Millisecond,
		Position:   "zoom",
	}
	errs := cfg.Lint()
	var paths []string
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	want := []string{"logLevel", "backend", "dispatch", "interval", "position"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("lint paths mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err == nil || !strings.HasPrefix(err.Error(), "logLevel:") {
		t.Fatalf("Validate should surface the first issue, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendHyprpaper || cfg.Interval != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: kde\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
	cfg, lintErrs, err := LintFile(path)
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if len(lintErrs) != 1 {
		t.Fatalf("expected one lint error, got %v", lintErrs)
	}
	if cfg.Backend != "kde" {
		t.Fatalf("expected parsed config alongside lint errors, got backend %q", cfg.Backend)
	}
}
