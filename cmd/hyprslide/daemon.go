package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/ipc"
	"github.com/hyprpal/hyprslide/internal/util"
)

const advanceJobName = "advance"

func newDaemonCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Advance presets on an interval and follow file changes",
		Long: `Run in the foreground, advancing every enabled preset each interval
(config "interval", default 30m). Preset files are watched and re-read on
change, the config file is reloaded on change or SIGHUP, and current
images are repainted when a monitor is plugged in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), app)
		},
	}
}

type daemon struct {
	app       *App
	logger    *util.Logger
	scheduler gocron.Scheduler
	job       gocron.Job
	interval  time.Duration
	runCtx    context.Context
}

func newDaemon(ctx context.Context, app *App) (*daemon, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	d := &daemon{
		app:       app,
		logger:    app.Logger.Named("daemon"),
		scheduler: s,
		interval:  app.Config.Interval,
		runCtx:    ctx,
	}
	job, err := s.NewJob(
		gocron.DurationJob(d.interval),
		gocron.NewTask(d.advance),
		gocron.WithName(advanceJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to create advance job: %w", err)
	}
	d.job = job
	return d, nil
}

func (d *daemon) advance() {
	report, err := d.app.Engine.Advance(d.runCtx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Errorf("advance failed: %v", err)
		}
		return
	}
	if n := len(report.Errors); n > 0 {
		d.logger.Warnf("advance finished with %d backend error(s)", n)
	}
	d.app.writeMetrics()
}

// applyConfig takes over the settings that can change without a restart.
func (d *daemon) applyConfig(ctx context.Context, cfg *config.Config) error {
	current := d.app.currentConfig()
	if cfg.PresetsDir != current.PresetsDir || cfg.Backend != current.Backend || cfg.Dispatch != current.Dispatch {
		d.logger.Warnf("presetsDir, backend and dispatch changes take effect after restart")
		cfg.PresetsDir, cfg.Backend, cfg.Dispatch = current.PresetsDir, current.Backend, current.Dispatch
	}
	d.app.Logger.SetLevel(util.ParseLogLevel(cfg.LogLevel))
	if err := d.applyPosition(ctx, cfg); err != nil {
		return err
	}
	if cfg.Interval != d.interval {
		job, err := d.scheduler.Update(
			d.job.ID(),
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(d.advance),
			gocron.WithName(advanceJobName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("reschedule advance: %w", err)
		}
		d.logger.Infof("advance interval %s -> %s", d.interval, cfg.Interval)
		d.job = job
		d.interval = cfg.Interval
	}
	d.app.setConfig(cfg)
	return nil
}

func (d *daemon) applyPosition(ctx context.Context, cfg *config.Config) error {
	if cfg.Position == "" {
		return nil
	}
	pos, err := display.ParsePosition(cfg.Position)
	if err != nil {
		return err
	}
	return d.app.Engine.SetPosition(ctx, pos)
}

func runDaemon(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d, err := newDaemon(ctx, app)
	if err != nil {
		return err
	}
	defer d.scheduler.Shutdown()

	serialized, err := os.ReadFile(app.ConfigPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}
	reloader := newConfigReloader(app.ConfigPath, d.logger, d.applyConfig, app.Config, serialized)
	if err := d.applyPosition(ctx, app.Config); err != nil {
		d.logger.Warnf("apply position: %v", err)
	}

	if err := os.MkdirAll(app.Store.Dir(), 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}
	if err := app.Store.Watch(ctx, func(path string) {
		d.logger.Debugf("preset file %s changed", filepath.Base(path))
	}); err != nil {
		d.logger.Warnf("not watching presets: %v", err)
	}

	reloadRequests := make(chan string, 1)
	if watcher, err := watchConfigFile(app.ConfigPath, d.logger, reloadRequests); err != nil {
		d.logger.Warnf("not watching config: %v", err)
	} else {
		defer watcher.Close()
	}

	var monitorEvents <-chan ipc.Event
	if app.Hyprland {
		if monitorEvents, err = ipc.Subscribe(ctx, d.logger); err != nil {
			d.logger.Warnf("monitor hotplug disabled: %v", err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	d.scheduler.Start()
	d.logger.Infof("advancing every %s from %s", d.interval, app.Store.Dir())

	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-reloadRequests:
			if err := reloader.Reload(ctx, reason); err != nil {
				d.logger.Errorf("reload failed: %v", err)
			}
		case ev, ok := <-monitorEvents:
			if !ok {
				monitorEvents = nil
				continue
			}
			if !strings.HasPrefix(ev.Kind, "monitoradded") {
				continue
			}
			d.logger.Infof("monitor added (%s), repainting", ev.Payload)
			if _, err := app.Engine.Reapply(ctx); err != nil {
				d.logger.Warnf("repaint failed: %v", err)
			}
		case sig := <-sigs:
			switch sig {
			case syscall.SIGHUP:
				if err := reloader.Reload(ctx, "received SIGHUP"); err != nil {
					d.logger.Errorf("reload failed: %v", err)
				}
			default:
				d.logger.Infof("received %s, shutting down", sig)
				return nil
			}
		}
	}
}

// watchConfigFile watches the config directory so editors that replace the
// file are noticed; bursts are coalesced into one reload request.
func watchConfigFile(path string, logger *util.Logger, reloadRequests chan<- string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	go watchConfig(logger, watcher, target, reloadRequests)
	return watcher, nil
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}
