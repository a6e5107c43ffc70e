package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/engine"
	"github.com/hyprpal/hyprslide/internal/ipc"
	"github.com/hyprpal/hyprslide/internal/metrics"
	"github.com/hyprpal/hyprslide/internal/store"
	"github.com/hyprpal/hyprslide/internal/util"
)

// App holds the wired components shared by every command.
type App struct {
	ConfigPath string
	Config     *config.Config
	Logger     *util.Logger
	Store      *store.Store
	Engine     *engine.Engine
	Metrics    *metrics.Collector
	// Hyprland is set when the hyprpaper backend is in use.
	Hyprland bool

	Out io.Writer
	Err io.Writer

	cfgMu sync.RWMutex
}

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Captured from flags before Execute.
	ConfigPath string
	LogLevel   string
	PresetsDir string
	DryRun     bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// newTestProvider wraps an already wired App.
func newTestProvider(app *App) *AppProvider {
	return &AppProvider{app: app, Out: app.Out, Err: app.Err}
}

func (p *AppProvider) init() (*App, error) {
	cfgPath := p.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfgPath, err := filepath.Abs(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p.PresetsDir != "" {
		cfg.PresetsDir = p.PresetsDir
	}
	level := cfg.LogLevel
	if p.LogLevel != "" {
		if !util.ValidLogLevel(p.LogLevel) {
			return nil, fmt.Errorf("unknown log level %q", p.LogLevel)
		}
		level = p.LogLevel
	}

	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	logger := util.NewLoggerWithWriter(util.ParseLogLevel(level), errOut)

	backend, hyprland, err := newBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	collector := metrics.NewCollector(nil)
	st := store.New(cfg.PresetsDir, logger, collector)
	return &App{
		ConfigPath: cfgPath,
		Config:     cfg,
		Logger:     logger,
		Store:      st,
		Engine:     engine.New(st, backend, logger, collector, p.DryRun),
		Metrics:    collector,
		Hyprland:   hyprland,
		Out:        out,
		Err:        errOut,
	}, nil
}

func newBackend(cfg *config.Config, logger *util.Logger) (display.Backend, bool, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return display.NewMemory(memoryMonitor), false, nil
	default:
		hp, strategy, err := ipc.NewHyprpaper(logger, ipc.DispatchStrategy(cfg.Dispatch))
		if err != nil {
			return nil, false, fmt.Errorf("configure hyprpaper backend: %w", err)
		}
		logger.Debugf("using %s dispatch strategy", strategy)
		hp.UsePositionFile(filepath.Join(cfg.PresetsDir, positionStateFile))
		return hp, true, nil
	}
}

// memoryMonitor is the single monitor the in-memory backend exposes.
const memoryMonitor = "MEM-0"

// positionStateFile holds the hyprpaper fit mode. It is hidden so the
// preset store skips it.
const positionStateFile = ".hyprpaper-position"

func (a *App) currentConfig() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.Config
}

func (a *App) setConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	a.Config = cfg
	a.cfgMu.Unlock()
}

// writeMetrics exports counters when a textfile path is configured.
func (a *App) writeMetrics() {
	cfg := a.currentConfig()
	if cfg == nil || cfg.MetricsTextfile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		a.Logger.Warnf("write metrics: %v", err)
	}
}
