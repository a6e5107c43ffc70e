package ipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/util"
)

// DispatchStrategy describes how hyprpaper requests are issued.
type DispatchStrategy string

const (
	// DispatchStrategySocket uses the hyprpaper socket directly.
	DispatchStrategySocket DispatchStrategy = "socket"
	// DispatchStrategyHyprctl shells out to `hyprctl hyprpaper`.
	DispatchStrategyHyprctl DispatchStrategy = "hyprctl"
)

const backgroundColorOption = "misc:background_color"

type requester interface {
	Request(ctx context.Context, args ...string) (string, error)
}

// Hyprpaper implements display.Backend for Hyprland with hyprpaper painting
// the wallpapers. hyprpaper has no rotation of its own, so Slideshow always
// reports inactive. Fit modes are applied through hyprpaper's path prefixes
// and kept in a state file so every process renders the same mode.
type Hyprpaper struct {
	ctl    *Client
	req    requester
	logger *util.Logger

	mu           sync.Mutex
	position     display.Position
	positionFile string
}

// UsePositionFile makes the fit mode persistent in path. The file is read
// on every access, so a mode set by another process takes effect here too.
func (h *Hyprpaper) UsePositionFile(path string) {
	h.mu.Lock()
	h.positionFile = path
	h.mu.Unlock()
}

// NewHyprpaper returns a backend using the requested strategy when possible,
// falling back to hyprctl when the socket is unavailable.
func NewHyprpaper(logger *util.Logger, requested DispatchStrategy) (*Hyprpaper, DispatchStrategy, error) {
	if logger == nil {
		logger = util.Discard()
	}
	base := NewClient()
	h := &Hyprpaper{ctl: base, logger: logger.Named("hyprpaper"), position: display.PositionFill}
	switch requested {
	case DispatchStrategySocket:
		sock, err := newSocketRequester()
		if err != nil {
			h.logger.Warnf("falling back to hyprctl hyprpaper: %v", err)
			h.req = hyprctlRequester{client: base}
			return h, DispatchStrategyHyprctl, nil
		}
		h.logger.Debugf("using hyprpaper socket at %s", sock.SocketPath())
		h.req = sock
		return h, DispatchStrategySocket, nil
	case DispatchStrategyHyprctl:
		h.req = hyprctlRequester{client: base}
		return h, DispatchStrategyHyprctl, nil
	default:
		return nil, "", fmt.Errorf("unknown dispatch strategy %q", requested)
	}
}

func (h *Hyprpaper) ActiveMonitors(ctx context.Context) ([]string, error) {
	monitors, err := h.ctl.ListMonitors(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(monitors))
	for _, m := range monitors {
		ids = append(ids, m.Name)
	}
	return ids, nil
}

func (h *Hyprpaper) Wallpaper(ctx context.Context, monitorID string) (string, error) {
	reply, err := h.req.Request(ctx, "listactive")
	if err != nil {
		return "", err
	}
	return parseListActive(reply)[monitorID], nil
}

func (h *Hyprpaper) SetWallpaper(ctx context.Context, monitorID, path string) error {
	if err := h.expectOK(ctx, "preload", path); err != nil {
		return err
	}
	target := fmt.Sprintf("%s,%s%s", monitorID, h.pathPrefix(), path)
	if err := h.expectOK(ctx, "wallpaper", target); err != nil {
		return err
	}
	if err := h.expectOK(ctx, "unload", "unused"); err != nil {
		h.logger.Debugf("unload unused: %v", err)
	}
	return nil
}

func (h *Hyprpaper) BackgroundColor(ctx context.Context) (display.Color, error) {
	v, err := h.ctl.OptionInt(ctx, backgroundColorOption)
	if err != nil {
		return display.Color{}, err
	}
	return display.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (h *Hyprpaper) SetBackgroundColor(ctx context.Context, c display.Color) error {
	value := fmt.Sprintf("rgb(%02x%02x%02x)", c.R, c.G, c.B)
	return h.ctl.Keyword(ctx, backgroundColorOption, value)
}

func (h *Hyprpaper) Position(context.Context) (display.Position, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked(), nil
}

// SetPosition affects wallpapers set afterwards.
func (h *Hyprpaper) SetPosition(_ context.Context, p display.Position) error {
	if err := checkRenderable(p); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.positionFile != "" {
		if err := os.MkdirAll(filepath.Dir(h.positionFile), 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
		if err := os.WriteFile(h.positionFile, []byte(string(p)+"\n"), 0o644); err != nil {
			return fmt.Errorf("write position: %w", err)
		}
	}
	h.position = p
	return nil
}

func checkRenderable(p display.Position) error {
	switch p {
	case display.PositionFill, display.PositionFit, display.PositionTile:
		return nil
	default:
		return fmt.Errorf("hyprpaper cannot render position %q (supported: fill, fit, tile)", p)
	}
}

// positionLocked prefers the state file. A missing or unreadable file falls
// back to the in-process mode.
func (h *Hyprpaper) positionLocked() display.Position {
	if h.positionFile == "" {
		return h.position
	}
	data, err := os.ReadFile(h.positionFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Warnf("read position state: %v", err)
		}
		return h.position
	}
	p := display.Position(strings.TrimSpace(string(data)))
	if err := checkRenderable(p); err != nil {
		h.logger.Warnf("ignoring position state %s: %v", h.positionFile, err)
		return h.position
	}
	return p
}

func (h *Hyprpaper) Slideshow(context.Context) (display.Slideshow, error) {
	return display.Slideshow{}, nil
}

func (h *Hyprpaper) pathPrefix() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.positionLocked() {
	case display.PositionFit:
		return "contain:"
	case display.PositionTile:
		return "tile:"
	default:
		return ""
	}
}

func (h *Hyprpaper) expectOK(ctx context.Context, args ...string) error {
	reply, err := h.req.Request(ctx, args...)
	if err != nil {
		return err
	}
	if resp := strings.TrimSpace(reply); resp != "" && !strings.EqualFold(resp, "ok") {
		return fmt.Errorf("hyprpaper %s: %s", args[0], resp)
	}
	return nil
}

// parseListActive reads "MONITOR = /path" lines.
func parseListActive(reply string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(reply, "\n") {
		monitor, path, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		monitor = strings.TrimSpace(monitor)
		path = strings.TrimSpace(path)
		for _, prefix := range []string{"contain:", "tile:"} {
			path = strings.TrimPrefix(path, prefix)
		}
		if monitor != "" && path != "" {
			out[monitor] = path
		}
	}
	return out
}

var _ display.Backend = (*Hyprpaper)(nil)
