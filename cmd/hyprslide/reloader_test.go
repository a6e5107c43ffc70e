package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/util"
)

func TestReloadLogsDiffOnFailureAndKeepsPreviousConfig(t *testing.T) {
	initial := "interval: 15m\nlogLevel: info\n"
	bad := "interval: 15m\nlogLevel: loud\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	var logs bytes.Buffer
	logger := util.NewLoggerWithWriter(util.LevelInfo, &logs)
	applied := 0
	apply := func(context.Context, *config.Config) error {
		applied++
		return nil
	}
	reloader := newConfigReloader(path, logger, apply, cfg, []byte(initial))

	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	if err := reloader.Reload(context.Background(), "test"); err == nil {
		t.Fatalf("expected reload to fail")
	}
	if applied != 0 {
		t.Fatalf("rejected config must not be applied")
	}
	if reloader.Current() != cfg {
		t.Fatalf("expected previous config to be kept")
	}
	out := logs.String()
	if !strings.Contains(out, "config change rejected; diff vs last valid config") {
		t.Fatalf("expected diff log, got %q", out)
	}
	if !strings.Contains(out, `"logLevel: info"`) || !strings.Contains(out, `"logLevel: loud"`) {
		t.Fatalf("expected diff to show the changed line, got %q", out)
	}
	if !strings.Contains(out, "logLevel: unknown level") {
		t.Fatalf("expected lint issue to be logged, got %q", out)
	}
}

func TestReloadAppliesValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("interval: 5\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var got *config.Config
	reloader := newConfigReloader(path, util.Discard(), func(_ context.Context, cfg *config.Config) error {
		got = cfg
		return nil
	}, config.Default(), nil)

	if err := reloader.Reload(context.Background(), "test"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got == nil || got.Interval != 5*time.Minute {
		t.Fatalf("expected 5m interval to be applied, got %+v", got)
	}
	if reloader.Current() != got {
		t.Fatalf("expected applied config to become current")
	}
}

func TestDaemonApplyConfigReschedulesAndSetsPosition(t *testing.T) {
	app := newTestApp(t, "DP-1")
	d, err := newDaemon(context.Background(), app.App)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	t.Cleanup(func() { d.scheduler.Shutdown() })
	firstID := d.job.ID()

	next := *app.Config
	next.Interval = 10 * time.Minute
	next.Position = "fit"
	next.LogLevel = "warn"
	next.PresetsDir = filepath.Join(t.TempDir(), "elsewhere")
	if err := d.applyConfig(context.Background(), &next); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}

	if d.interval != 10*time.Minute {
		t.Fatalf("interval = %s, want 10m", d.interval)
	}
	if d.job.ID() != firstID {
		t.Fatalf("expected the advance job to be updated in place")
	}
	if jobs := d.scheduler.Jobs(); len(jobs) != 1 {
		t.Fatalf("expected a single scheduled job, got %d", len(jobs))
	}
	if pos, _ := app.backend.Position(context.Background()); pos != display.PositionFit {
		t.Fatalf("position = %s, want fit", pos)
	}
	if app.Logger.Level() != util.LevelWarn {
		t.Fatalf("log level not applied")
	}
	if app.currentConfig().PresetsDir != app.Store.Dir() {
		t.Fatalf("presetsDir must not change without restart")
	}
	if !strings.Contains(app.errOut.String(), "take effect after restart") {
		t.Fatalf("expected restart warning, got %q", app.errOut.String())
	}
}

func TestWatchConfigDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	requests := make(chan string, 1)
	watcher, err := watchConfigFile(path, util.Discard(), requests)
	if err != nil {
		t.Fatalf("watchConfigFile: %v", err)
	}
	defer watcher.Close()

	for i := range 3 {
		if err := os.WriteFile(path, []byte(strings.Repeat("#\n", i+1)), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	select {
	case reason := <-requests:
		if reason != "config file updated" {
			t.Fatalf("unexpected reason %q", reason)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no reload request after config write")
	}
}
