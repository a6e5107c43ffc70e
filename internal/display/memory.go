package display

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process backend. It records every write and can be told
// to fail for specific monitors.
type Memory struct {
	mu         sync.Mutex
	monitors   []string
	wallpapers map[string]string
	color      Color
	position   Position
	slideshow  Slideshow

	// Fail maps a monitor id to the error SetWallpaper returns for it.
	Fail map[string]error
	// Writes lists "monitor=path" for each successful SetWallpaper.
	Writes []string
}

// NewMemory returns a backend with the given active monitors.
func NewMemory(monitors ...string) *Memory {
	return &Memory{
		monitors:   append([]string(nil), monitors...),
		wallpapers: make(map[string]string),
		position:   PositionFill,
		Fail:       make(map[string]error),
	}
}

// SetMonitors replaces the active monitor list.
func (m *Memory) SetMonitors(ids ...string) {
	m.mu.Lock()
	m.monitors = append([]string(nil), ids...)
	m.mu.Unlock()
}

// SetSlideshow configures the simulated platform rotation.
func (m *Memory) SetSlideshow(s Slideshow) {
	m.mu.Lock()
	m.slideshow = s
	m.mu.Unlock()
}

// SetWallpaperDirect seeds a wallpaper without recording a write.
func (m *Memory) SetWallpaperDirect(monitorID, path string) {
	m.mu.Lock()
	m.wallpapers[monitorID] = path
	m.mu.Unlock()
}

func (m *Memory) ActiveMonitors(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.monitors...), nil
}

func (m *Memory) Wallpaper(_ context.Context, monitorID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.monitors, monitorID) {
		return "", fmt.Errorf("monitor %q not active", monitorID)
	}
	return m.wallpapers[monitorID], nil
}

func (m *Memory) SetWallpaper(_ context.Context, monitorID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[monitorID]; err != nil {
		return err
	}
	if !slices.Contains(m.monitors, monitorID) {
		return fmt.Errorf("monitor %q not active", monitorID)
	}
	m.wallpapers[monitorID] = path
	// painting a monitor directly stops the platform rotation
	m.slideshow = Slideshow{}
	m.Writes = append(m.Writes, monitorID+"="+path)
	return nil
}

func (m *Memory) BackgroundColor(context.Context) (Color, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color, nil
}

func (m *Memory) SetBackgroundColor(_ context.Context, c Color) error {
	m.mu.Lock()
	m.color = c
	m.mu.Unlock()
	return nil
}

func (m *Memory) Position(context.Context) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, nil
}

func (m *Memory) SetPosition(_ context.Context, p Position) error {
	m.mu.Lock()
	m.position = p
	m.mu.Unlock()
	return nil
}

func (m *Memory) Slideshow(context.Context) (Slideshow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slideshow, nil
}

var _ Backend = (*Memory)(nil)
