// Package metrics keeps rotation counters on a private Prometheus registry.
// The CLI is short-lived, so counters are exported as a node-exporter
// textfile rather than served over HTTP.
package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "hyprslide"

// Skip reasons recorded by the engine.
const (
	SkipNoImage     = "no_image"
	SkipEnumerate   = "enumerate_failed"
	SkipNoMonitors  = "no_active_monitors"
	SkipPersistFail = "persist_failed"
)

// Collector aggregates rotation counters. A nil *Collector is a no-op.
type Collector struct {
	registry      *prom.Registry
	advances      *prom.CounterVec
	skipped       *prom.CounterVec
	backendErrors *prom.CounterVec
	presetsLoaded prom.Gauge
	malformed     prom.Counter
}

// NewCollector registers the rotation metrics on reg, or on a fresh
// registry when reg is nil.
func NewCollector(reg *prom.Registry) *Collector {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	c := &Collector{
		registry: reg,
		advances: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "advances_total",
			Help:      "Images selected per preset",
		}, []string{"preset"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Presets skipped during a rotation pass, by reason",
		}, []string{"preset", "reason"}),
		backendErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Failed display backend calls by operation",
		}, []string{"operation"}),
		presetsLoaded: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "presets_loaded",
			Help:      "Presets held by the store after the last reload",
		}),
		malformed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_preset_files_total",
			Help:      "Preset files skipped because they could not be decoded",
		}),
	}
	reg.MustRegister(c.advances, c.skipped, c.backendErrors, c.presetsLoaded, c.malformed)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prom.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) RecordAdvance(preset string) {
	if c == nil {
		return
	}
	c.advances.WithLabelValues(preset).Inc()
}

func (c *Collector) RecordSkip(preset, reason string) {
	if c == nil {
		return
	}
	c.skipped.WithLabelValues(preset, reason).Inc()
}

func (c *Collector) RecordBackendError(operation string) {
	if c == nil {
		return
	}
	c.backendErrors.WithLabelValues(operation).Inc()
}

func (c *Collector) SetPresetsLoaded(n int) {
	if c == nil {
		return
	}
	c.presetsLoaded.Set(float64(n))
}

func (c *Collector) RecordMalformed() {
	if c == nil {
		return
	}
	c.malformed.Inc()
}

// WriteTextfile dumps the registry in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
