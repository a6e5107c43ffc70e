// Package store keeps the preset collection backed by one YAML file per
// preset. A Store is constructed once per process; its snapshot is reloaded
// lazily after Invalidate, which the filesystem watcher calls on change.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/metrics"
	"github.com/hyprpal/hyprslide/internal/preset"
	"github.com/hyprpal/hyprslide/internal/util"
)

// Store owns the presets of one backing folder.
type Store struct {
	dir     string
	logger  *util.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	presets map[string]*preset.Preset
	// sources lists every backing file declaring a name, in directory
	// order. The first entry is the one loaded and the one Persist writes.
	sources   map[string][]string
	dirty     bool
	lastValid map[string][]byte
}

// New returns a store for dir. Nothing is read until the first access.
func New(dir string, logger *util.Logger, collector *metrics.Collector) *Store {
	if logger == nil {
		logger = util.Discard()
	}
	return &Store{
		dir:       filepath.Clean(dir),
		logger:    logger.Named("store"),
		metrics:   collector,
		presets:   make(map[string]*preset.Preset),
		sources:   make(map[string][]string),
		dirty:     true,
		lastValid: make(map[string][]byte),
	}
}

// Dir returns the backing folder.
func (s *Store) Dir() string {
	return s.dir
}

// Invalidate marks the cached snapshot stale.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Dirty reports whether the next read reloads from disk.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// All returns every preset ordered by name. The returned presets are the
// live instances; callers mutating them should Persist afterwards.
func (s *Store) All() ([]*preset.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return s.sortedLocked(func(*preset.Preset) bool { return true }), nil
}

// AllEnabled returns the enabled presets ordered by name.
func (s *Store) AllEnabled() ([]*preset.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return s.sortedLocked(func(p *preset.Preset) bool { return p.Enabled }), nil
}

// Get looks a preset up by name.
func (s *Store) Get(name string) (*preset.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	p, ok := s.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", name, preset.ErrNotFound)
	}
	return p, nil
}

// Add inserts p keyed by name, replacing a same-named preset. An enabled
// preset whose monitors overlap another enabled preset is rejected with a
// *preset.ConflictError and the store is left unchanged.
func (s *Store) Add(p *preset.Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	if err := s.checkConflictLocked(p); err != nil {
		return err
	}
	s.presets[p.Name] = p
	s.metrics.SetPresetsLoaded(len(s.presets))
	return nil
}

// CheckConflict reports whether p could be added without violating monitor
// exclusivity.
func (s *Store) CheckConflict(p *preset.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	return s.checkConflictLocked(p)
}

func (s *Store) checkConflictLocked(p *preset.Preset) error {
	if !p.Enabled {
		return nil
	}
	for _, other := range s.sortedLocked(func(o *preset.Preset) bool { return o.Enabled && o.Name != p.Name }) {
		if overlap := p.Overlap(other); len(overlap) > 0 {
			return &preset.ConflictError{Preset: p.Name, Existing: other.Name, Monitors: overlap}
		}
	}
	return nil
}

// Remove drops the named preset and deletes every backing file that
// declares it. It reports whether anything was removed.
func (s *Store) Remove(name string) (bool, error) {
	if err := preset.ValidateName(name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return false, err
	}
	_, found := s.presets[name]
	delete(s.presets, name)
	defer s.metrics.SetPresetsLoaded(len(s.presets))

	paths := s.sources[name]
	if !slices.Contains(paths, s.pathFor(name)) {
		paths = append(paths, s.pathFor(name))
	}
	var errs []error
	var kept []string
	for _, path := range paths {
		err := os.Remove(path)
		switch {
		case err == nil:
			found = true
			delete(s.lastValid, path)
		case errors.Is(err, os.ErrNotExist):
			delete(s.lastValid, path)
		default:
			kept = append(kept, path)
			errs = append(errs, fmt.Errorf("remove preset file: %w", err))
		}
	}
	if len(kept) > 0 {
		s.sources[name] = kept
	} else {
		delete(s.sources, name)
	}
	return found, errors.Join(errs...)
}

// Persist writes p's backing file, overwriting the file it was loaded
// from. Presets that have no file yet are written to <name>.yaml.
func (s *Store) Persist(p *preset.Preset) error {
	if err := preset.ValidateName(p.Name); err != nil {
		return err
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}
	path := s.pathFor(p.Name)
	if paths := s.sources[p.Name]; len(paths) > 0 {
		path = paths[0]
	} else {
		s.sources[p.Name] = []string{path}
	}
	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("write preset %q: %w", p.Name, err)
	}
	s.lastValid[path] = data
	return nil
}

// Reload forces a reload from disk.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	return s.ensureLoadedLocked()
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+FileExt)
}

func (s *Store) sortedLocked(keep func(*preset.Preset) bool) []*preset.Preset {
	out := make([]*preset.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) ensureLoadedLocked() error {
	if !s.dirty {
		return nil
	}
	loaded, sources, err := s.loadLocked()
	if err != nil {
		return err
	}
	s.presets = loaded
	s.sources = sources
	s.dirty = false
	s.metrics.SetPresetsLoaded(len(loaded))
	return nil
}

// loadLocked parses every backing file independently; malformed files are
// logged and skipped. When several files declare the same name, the first
// in directory order wins and the others are only recorded as sources.
func (s *Store) loadLocked() (map[string]*preset.Preset, map[string][]string, error) {
	loaded := make(map[string]*preset.Preset)
	sources := make(map[string][]string)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return loaded, sources, nil
		}
		return nil, nil, fmt.Errorf("read presets dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isPresetFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warnf("skipping preset file %s: %v", path, err)
			continue
		}
		p, err := Decode(data, path, s.dir)
		if err != nil {
			s.metrics.RecordMalformed()
			s.logger.Warnf("skipping %v", err)
			s.logDiff(path, data)
			continue
		}
		s.lastValid[path] = data
		if earlier := sources[p.Name]; len(earlier) > 0 {
			s.logger.Warnf("preset %q defined more than once; ignoring %s, already loaded from %s", p.Name, path, earlier[0])
			sources[p.Name] = append(earlier, path)
			continue
		}
		loaded[p.Name] = p
		sources[p.Name] = []string{path}
	}
	s.logger.Debugf("loaded %d presets from %s", len(loaded), s.dir)
	return loaded, sources, nil
}

func (s *Store) logDiff(path string, current []byte) {
	previous, ok := s.lastValid[path]
	if !ok {
		return
	}
	if diff := config.DiffSerialized(previous, current); diff != "" {
		s.logger.Warnf("preset file %s rejected; diff vs last valid version:\n%s", path, diff)
	}
}

func isPresetFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), FileExt)
}

func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp."+hex.EncodeToString(randBytes))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
