// Package display describes the wallpaper capability the rotation engine
// drives. Implementations live elsewhere (see internal/ipc).
package display

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Backend paints and inspects per-monitor wallpaper state.
type Backend interface {
	// ActiveMonitors lists monitor ids in enumeration order.
	ActiveMonitors(ctx context.Context) ([]string, error)
	Wallpaper(ctx context.Context, monitorID string) (string, error)
	SetWallpaper(ctx context.Context, monitorID, path string) error
	BackgroundColor(ctx context.Context) (Color, error)
	SetBackgroundColor(ctx context.Context, c Color) error
	Position(ctx context.Context) (Position, error)
	SetPosition(ctx context.Context, p Position) error
	// Slideshow reports the platform's own rotation, if any.
	Slideshow(ctx context.Context) (Slideshow, error)
}

// Slideshow describes a platform-native rotation.
type Slideshow struct {
	Active  bool
	Folder  string
	Shuffle bool
}

// Position is the wallpaper fit mode.
type Position string

const (
	PositionCenter  Position = "center"
	PositionTile    Position = "tile"
	PositionStretch Position = "stretch"
	PositionFit     Position = "fit"
	PositionFill    Position = "fill"
	PositionSpan    Position = "span"
)

// Positions lists fit modes in their numeric order.
var Positions = []Position{PositionCenter, PositionTile, PositionStretch, PositionFit, PositionFill, PositionSpan}

// ParsePosition accepts a mode name or its index in Positions.
func ParsePosition(s string) (Position, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if idx, err := strconv.Atoi(trimmed); err == nil {
		if idx < 0 || idx >= len(Positions) {
			return "", fmt.Errorf("position index %d out of range 0-%d", idx, len(Positions)-1)
		}
		return Positions[idx], nil
	}
	for _, p := range Positions {
		if string(p) == trimmed {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Color is an RGB background fill.
type Color struct {
	R, G, B uint8
}

// ParseColor accepts #RRGGBB, RRGGBB, #RGB and 0xRRGGBB.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimSpace(s)
	hex = strings.TrimPrefix(hex, "#")
	if strings.HasPrefix(hex, "0x") || strings.HasPrefix(hex, "0X") {
		hex = hex[2:]
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
