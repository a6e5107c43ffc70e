// Package engine drives preset rotation against a display backend.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/metrics"
	"github.com/hyprpal/hyprslide/internal/preset"
	"github.com/hyprpal/hyprslide/internal/store"
	"github.com/hyprpal/hyprslide/internal/util"
)

// ForeignPresetName names presets adapted from the backend's own rotation.
const ForeignPresetName = "(native slideshow)"

type enumerateFunc func(folder string, recurse bool) ([]string, error)

// Engine ties together the preset store, the selector and the display
// backend. Calls are serialized; monitors are painted one after another.
type Engine struct {
	store    *store.Store
	backend  display.Backend
	logger   *util.Logger
	metrics  *metrics.Collector
	selector *preset.Selector
	dryRun   bool

	mu        sync.Mutex
	enumerate enumerateFunc
}

// Report summarizes one rotation pass.
type Report struct {
	// Applied maps preset name to the image it moved to.
	Applied map[string]string
	// Skipped maps preset name to a metrics skip reason.
	Skipped map[string]string
	// Errors collects backend failures that did not stop the pass.
	Errors []error
}

func newReport() *Report {
	return &Report{Applied: make(map[string]string), Skipped: make(map[string]string)}
}

// New creates an engine. With dryRun set, backend writes are logged instead
// of performed and rotation state is not persisted.
func New(st *store.Store, backend display.Backend, logger *util.Logger, collector *metrics.Collector, dryRun bool) *Engine {
	if logger == nil {
		logger = util.Discard()
	}
	logger = logger.Named("engine")
	if dryRun {
		backend = display.DryRun{Backend: backend, Logger: logger}
	}
	return &Engine{
		store:     st,
		backend:   backend,
		logger:    logger,
		metrics:   collector,
		selector:  &preset.Selector{},
		dryRun:    dryRun,
		enumerate: preset.Enumerate,
	}
}

// Store returns the preset store the engine rotates.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Advance moves every enabled preset to its next image, in store order.
// Failures for one monitor or preset are logged and recorded in the report;
// the returned error is reserved for failures that prevent the pass itself.
func (e *Engine) Advance(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	presets, err := e.store.AllEnabled()
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	active, err := e.activeMonitors(ctx)
	if err != nil {
		return nil, err
	}
	report := newReport()
	for _, p := range presets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.advanceOne(ctx, p, active, report)
	}
	e.logger.Debugf("pass complete: %d advanced, %d skipped, %d errors", len(report.Applied), len(report.Skipped), len(report.Errors))
	return report, nil
}

// AdvancePreset advances a single enabled preset.
func (e *Engine) AdvancePreset(ctx context.Context, name string) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.Get(name)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, fmt.Errorf("preset %q is disabled", name)
	}
	active, err := e.activeMonitors(ctx)
	if err != nil {
		return nil, err
	}
	report := newReport()
	e.advanceOne(ctx, p, active, report)
	return report, nil
}

func (e *Engine) advanceOne(ctx context.Context, p *preset.Preset, active []string, report *Report) {
	// Resolve targets before selecting: a preset none of whose monitors are
	// active keeps its current image and history.
	targets := p.Targets(active)
	if len(targets) == 0 {
		e.logger.Debugf("preset %s: none of its monitors are active", p.Name)
		e.skip(report, p.Name, metrics.SkipNoMonitors)
		return
	}
	candidates, err := e.enumerate(p.Folder, p.RecurseSubfolders)
	if err != nil {
		e.logger.Warnf("preset %s: %v", p.Name, err)
		e.skip(report, p.Name, metrics.SkipEnumerate)
		return
	}
	beforeCurrent, beforeLen := p.CurrentImage, len(p.History)
	img, ok := e.selector.NextImage(p, candidates)
	if !ok {
		e.logger.Infof("preset %s: no images in %s", p.Name, p.Folder)
		e.skip(report, p.Name, metrics.SkipNoImage)
		return
	}

	e.applyAppearance(ctx, p, report)
	for _, monitor := range targets {
		if err := e.backend.SetWallpaper(ctx, monitor, img); err != nil {
			e.backendFailed(report, &preset.BackendError{Op: "set_wallpaper", Monitor: monitor, Err: err})
		}
	}
	report.Applied[p.Name] = img
	e.metrics.RecordAdvance(p.Name)
	e.logger.Infof("preset %s -> %s on %v", p.Name, filepath.Base(img), targets)

	if p.CurrentImage == beforeCurrent && len(p.History) == beforeLen {
		return
	}
	if e.dryRun {
		return
	}
	if err := e.store.Persist(p); err != nil {
		e.logger.Warnf("preset %s: persist rotation state: %v", p.Name, err)
		e.metrics.RecordSkip(p.Name, metrics.SkipPersistFail)
	}
}

// applyAppearance sets the preset's fit mode and fill colour, if configured.
func (e *Engine) applyAppearance(ctx context.Context, p *preset.Preset, report *Report) {
	if p.Position != "" {
		pos, err := display.ParsePosition(p.Position)
		if err != nil {
			e.logger.Warnf("preset %s: %v", p.Name, err)
		} else if err := e.backend.SetPosition(ctx, pos); err != nil {
			e.backendFailed(report, &preset.BackendError{Op: "set_position", Err: err})
		}
	}
	if p.BackgroundColor != "" {
		c, err := display.ParseColor(p.BackgroundColor)
		if err != nil {
			e.logger.Warnf("preset %s: %v", p.Name, err)
		} else if err := e.backend.SetBackgroundColor(ctx, c); err != nil {
			e.backendFailed(report, &preset.BackendError{Op: "set_background_color", Err: err})
		}
	}
}

func (e *Engine) skip(report *Report, name, reason string) {
	report.Skipped[name] = reason
	e.metrics.RecordSkip(name, reason)
}

func (e *Engine) backendFailed(report *Report, err *preset.BackendError) {
	e.logger.Warnf("%v", err)
	e.metrics.RecordBackendError(err.Op)
	if report != nil {
		report.Errors = append(report.Errors, err)
	}
}

func (e *Engine) activeMonitors(ctx context.Context) ([]string, error) {
	active, err := e.backend.ActiveMonitors(ctx)
	if err != nil {
		e.metrics.RecordBackendError("active_monitors")
		return nil, &preset.BackendError{Op: "active_monitors", Err: err}
	}
	return active, nil
}

// AdaptForeignRotation reports the backend's own slideshow as a read-only
// preset. The preset is never added to the store.
func (e *Engine) AdaptForeignRotation(ctx context.Context) (*preset.Preset, bool, error) {
	show, err := e.backend.Slideshow(ctx)
	if err != nil {
		return nil, false, &preset.BackendError{Op: "slideshow", Err: err}
	}
	if !show.Active {
		return nil, false, nil
	}
	policy := preset.PolicyOrdered
	if show.Shuffle {
		policy = preset.PolicyNonrepeating
	}
	p := preset.New(ForeignPresetName, show.Folder, policy)
	p.ReadOnly = true
	return p, true, nil
}

// SetSingleImage paints path on the monitors selected by monitorArg: empty
// for every active monitor, a zero-based index, or a monitor id. A running
// native slideshow on those monitors is stopped first.
func (e *Engine) SetSingleImage(ctx context.Context, path, monitorArg string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("wallpaper file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("wallpaper file %s is a directory", abs)
	}
	if !preset.IsSupportedImage(abs) {
		return fmt.Errorf("wallpaper file %s: unsupported image type", abs)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	targets, err := e.resolveMonitorArg(ctx, monitorArg)
	if err != nil {
		return err
	}
	if err := e.neutralizeForeign(ctx, targets); err != nil {
		return err
	}
	var errs []error
	for _, monitor := range targets {
		if err := e.backend.SetWallpaper(ctx, monitor, abs); err != nil {
			berr := &preset.BackendError{Op: "set_wallpaper", Monitor: monitor, Err: err}
			e.metrics.RecordBackendError(berr.Op)
			errs = append(errs, berr)
			continue
		}
		e.logger.Infof("wallpaper %s -> %s", monitor, abs)
	}
	return errors.Join(errs...)
}

// RemovePreset deletes the named preset from the store and its backing
// file. A running native slideshow is stopped first so the monitors return
// to direct control.
func (e *Engine) RemovePreset(ctx context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.activeMonitors(ctx)
	if err != nil {
		return false, err
	}
	if err := e.neutralizeForeign(ctx, active); err != nil {
		return false, err
	}
	removed, err := e.store.Remove(name)
	if err != nil {
		return removed, err
	}
	if removed {
		e.logger.Infof("removed preset %s", name)
	}
	return removed, nil
}

// neutralizeForeign re-applies each monitor's current static image, which
// stops the backend's own rotation. It is a no-op when no slideshow runs.
func (e *Engine) neutralizeForeign(ctx context.Context, monitors []string) error {
	show, err := e.backend.Slideshow(ctx)
	if err != nil {
		return &preset.BackendError{Op: "slideshow", Err: err}
	}
	if !show.Active {
		return nil
	}
	e.logger.Infof("stopping native slideshow of %s", show.Folder)
	for _, monitor := range monitors {
		current, err := e.backend.Wallpaper(ctx, monitor)
		if err != nil {
			e.backendFailed(nil, &preset.BackendError{Op: "wallpaper", Monitor: monitor, Err: err})
			continue
		}
		if current == "" {
			continue
		}
		if err := e.backend.SetWallpaper(ctx, monitor, current); err != nil {
			e.backendFailed(nil, &preset.BackendError{Op: "set_wallpaper", Monitor: monitor, Err: err})
		}
	}
	return nil
}

// Reapply repaints the current image of every enabled preset. The daemon
// calls it when monitors are plugged in.
func (e *Engine) Reapply(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	presets, err := e.store.AllEnabled()
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	active, err := e.activeMonitors(ctx)
	if err != nil {
		return nil, err
	}
	report := newReport()
	for _, p := range presets {
		if p.CurrentImage == "" {
			continue
		}
		for _, monitor := range p.Targets(active) {
			if err := e.backend.SetWallpaper(ctx, monitor, p.CurrentImage); err != nil {
				e.backendFailed(report, &preset.BackendError{Op: "set_wallpaper", Monitor: monitor, Err: err})
				continue
			}
			report.Applied[p.Name] = p.CurrentImage
		}
	}
	return report, nil
}

// PresetForMonitor returns a copy of the enabled preset claiming monitorID.
// When no stored preset claims it, a running native slideshow is reported
// instead.
func (e *Engine) PresetForMonitor(ctx context.Context, monitorID string) (*preset.Preset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	presets, err := e.store.AllEnabled()
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	for _, p := range presets {
		if p.Claims(monitorID) {
			return p.Clone(), nil
		}
	}
	foreign, ok, err := e.AdaptForeignRotation(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return foreign, nil
	}
	return nil, fmt.Errorf("no preset for monitor %s: %w", monitorID, preset.ErrNotFound)
}

// Monitors lists the active monitor ids.
func (e *Engine) Monitors(ctx context.Context) ([]string, error) {
	return e.activeMonitors(ctx)
}

// Wallpaper returns the image shown on the monitor selected by monitorArg,
// which accepts the same forms as SetSingleImage. Empty selects the first
// monitor.
func (e *Engine) Wallpaper(ctx context.Context, monitorArg string) (string, error) {
	targets, err := e.resolveMonitorArg(ctx, monitorArg)
	if err != nil {
		return "", err
	}
	path, err := e.backend.Wallpaper(ctx, targets[0])
	if err != nil {
		return "", &preset.BackendError{Op: "wallpaper", Monitor: targets[0], Err: err}
	}
	return path, nil
}

// BackgroundColor returns the color shown around wallpapers.
func (e *Engine) BackgroundColor(ctx context.Context) (display.Color, error) {
	c, err := e.backend.BackgroundColor(ctx)
	if err != nil {
		return display.Color{}, &preset.BackendError{Op: "background_color", Err: err}
	}
	return c, nil
}

// SetBackgroundColor changes the color shown around wallpapers.
func (e *Engine) SetBackgroundColor(ctx context.Context, c display.Color) error {
	if err := e.backend.SetBackgroundColor(ctx, c); err != nil {
		return &preset.BackendError{Op: "set_background_color", Err: err}
	}
	return nil
}

// Position returns the backend's current fit mode.
func (e *Engine) Position(ctx context.Context) (display.Position, error) {
	p, err := e.backend.Position(ctx)
	if err != nil {
		return "", &preset.BackendError{Op: "position", Err: err}
	}
	return p, nil
}

// SetPosition changes the fit mode used for wallpapers set afterwards.
func (e *Engine) SetPosition(ctx context.Context, p display.Position) error {
	if err := e.backend.SetPosition(ctx, p); err != nil {
		return &preset.BackendError{Op: "set_position", Err: err}
	}
	return nil
}

func (e *Engine) resolveMonitorArg(ctx context.Context, arg string) ([]string, error) {
	active, err := e.activeMonitors(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no active monitors: %w", preset.ErrNotFound)
	}
	if arg == "" {
		return active, nil
	}
	if slices.Contains(active, arg) {
		return []string{arg}, nil
	}
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 0 || idx >= len(active) {
			return nil, fmt.Errorf("monitor index %d out of range (0-%d): %w", idx, len(active)-1, preset.ErrNotFound)
		}
		return []string{active[idx]}, nil
	}
	return nil, fmt.Errorf("monitor %q: %w", arg, preset.ErrNotFound)
}
