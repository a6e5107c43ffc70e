package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/util"
)

// Backend names.
const (
	BackendHyprpaper = "hyprpaper"
	BackendMemory    = "memory"
)

// Dispatch strategies for the hyprpaper backend.
const (
	DispatchSocket  = "socket"
	DispatchHyprctl = "hyprctl"
)

const defaultInterval = 30 * time.Minute

// Config is the top-level configuration document.
type Config struct {
	PresetsDir      string        `yaml:"presetsDir"`
	LogLevel        string        `yaml:"logLevel"`
	Backend         string        `yaml:"backend"`
	Dispatch        string        `yaml:"dispatch"`
	Interval        time.Duration `yaml:"interval"`
	Position        string        `yaml:"position"`
	MetricsTextfile string        `yaml:"metricsTextfile"`
}

// UnmarshalYAML accepts the interval either as a Go duration string or as a
// bare number of minutes.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		PresetsDir      string    `yaml:"presetsDir"`
		LogLevel        string    `yaml:"logLevel"`
		Backend         string    `yaml:"backend"`
		Dispatch        string    `yaml:"dispatch"`
		Interval        yaml.Node `yaml:"interval"`
		Position        string    `yaml:"position"`
		MetricsTextfile string    `yaml:"metricsTextfile"`
	}
	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.PresetsDir = raw.PresetsDir
	c.LogLevel = raw.LogLevel
	c.Backend = raw.Backend
	c.Dispatch = raw.Dispatch
	c.Position = raw.Position
	c.MetricsTextfile = raw.MetricsTextfile

	c.Interval = 0
	if raw.Interval.Kind == yaml.ScalarNode && raw.Interval.Value != "" {
		var minutes int
		if err := raw.Interval.Decode(&minutes); err == nil && raw.Interval.Tag == "!!int" {
			c.Interval = time.Duration(minutes) * time.Minute
			return nil
		}
		d, err := time.ParseDuration(raw.Interval.Value)
		if err != nil {
			return fmt.Errorf("interval: %w", err)
		}
		c.Interval = d
	}
	return nil
}

// DefaultDir is ~/.config/hyprslide, or $XDG_CONFIG_HOME/hyprslide.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hyprslide")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hyprslide")
}

// DefaultPath is the config file consulted when --config is not given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Parse decodes raw YAML and applies defaults. Relative paths are resolved
// against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyDefaults(baseDir)
	return &cfg, nil
}

// Load reads and validates a configuration file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults(baseDir string) {
	if c.PresetsDir == "" {
		c.PresetsDir = filepath.Join(DefaultDir(), "presets")
	} else {
		c.PresetsDir = expandHome(c.PresetsDir)
		if !filepath.IsAbs(c.PresetsDir) && baseDir != "" {
			c.PresetsDir = filepath.Join(baseDir, c.PresetsDir)
		}
	}
	if c.MetricsTextfile != "" {
		c.MetricsTextfile = expandHome(c.MetricsTextfile)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Backend == "" {
		c.Backend = BackendHyprpaper
	}
	if c.Dispatch == "" {
		c.Dispatch = DispatchSocket
	}
	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Validate returns the first lint issue, if any.
func (c *Config) Validate() error {
	if errs := c.Lint(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// LintError describes a single configuration problem.
type LintError struct {
	Path    string
	Message string
}

func (e LintError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Lint collects every configuration issue.
func (c *Config) Lint() []LintError {
	var errs []LintError
	if !util.ValidLogLevel(c.LogLevel) {
		errs = append(errs, LintError{Path: "logLevel", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}
	switch c.Backend {
	case BackendHyprpaper, BackendMemory:
	default:
		errs = append(errs, LintError{Path: "backend", Message: fmt.Sprintf("unsupported backend %q", c.Backend)})
	}
	switch c.Dispatch {
	case DispatchSocket, DispatchHyprctl:
	default:
		errs = append(errs, LintError{Path: "dispatch", Message: fmt.Sprintf("unsupported dispatch strategy %q", c.Dispatch)})
	}
	if c.Interval < time.Second {
		errs = append(errs, LintError{Path: "interval", Message: fmt.Sprintf("must be at least 1s, got %s", c.Interval)})
	}
	if c.Position != "" {
		if _, err := display.ParsePosition(c.Position); err != nil {
			errs = append(errs, LintError{Path: "position", Message: err.Error()})
		}
	}
	return errs
}

// LintFile parses path and lints the result. The parsed config is returned
// alongside its lint issues; decode failures are returned as the error.
func LintFile(path string) (*Config, []LintError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Lint(), nil
}
