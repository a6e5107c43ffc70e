package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/util"
)

type applyFunc func(ctx context.Context, cfg *config.Config) error

// configReloader re-reads the config file and keeps the last valid version
// when the new one is rejected.
type configReloader struct {
	path           string
	logger         *util.Logger
	apply          applyFunc
	lastConfig     *config.Config
	lastSerialized []byte
}

func newConfigReloader(path string, logger *util.Logger, apply applyFunc, cfg *config.Config, serialized []byte) *configReloader {
	return &configReloader{
		path:           path,
		logger:         logger,
		apply:          apply,
		lastConfig:     cfg,
		lastSerialized: append([]byte(nil), serialized...),
	}
}

func (r *configReloader) Reload(ctx context.Context, reason string) error {
	r.logger.Infof("%s, reloading config", reason)
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw, filepath.Dir(r.path))
	if err != nil {
		r.logDiff(raw)
		return err
	}
	if lintErrs := cfg.Lint(); len(lintErrs) > 0 {
		r.logLintErrors(lintErrs)
		r.logDiff(raw)
		return errors.New(lintErrs[0].Error())
	}
	if err := r.apply(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("apply config: %w", err)
	}

	r.lastConfig = cfg
	r.lastSerialized = append([]byte(nil), raw...)
	return nil
}

// Current returns the last accepted configuration.
func (r *configReloader) Current() *config.Config {
	return r.lastConfig
}

func (r *configReloader) logDiff(current []byte) {
	diff := config.DiffSerialized(r.lastSerialized, current)
	if diff == "" {
		r.logger.Warnf("config change rejected; unable to compute diff vs last valid config")
		return
	}
	r.logger.Warnf("config change rejected; diff vs last valid config:\n%s", diff)
}

func (r *configReloader) logLintErrors(errs []config.LintError) {
	r.logger.Warnf("config validation failed with %d issue(s):", len(errs))
	for _, lintErr := range errs {
		if lintErr.Path != "" {
			r.logger.Warnf(" - %s: %s", lintErr.Path, lintErr.Message)
			continue
		}
		r.logger.Warnf(" - %s", lintErr.Message)
	}
}
