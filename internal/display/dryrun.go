package display

import (
	"context"

	"github.com/hyprpal/hyprslide/internal/util"
)

// DryRun forwards reads to the wrapped backend and logs writes instead of
// performing them.
type DryRun struct {
	Backend
	Logger *util.Logger
}

func (d DryRun) SetWallpaper(_ context.Context, monitorID, path string) error {
	d.Logger.Infof("dry-run: wallpaper %s -> %s", monitorID, path)
	return nil
}

func (d DryRun) SetBackgroundColor(_ context.Context, c Color) error {
	d.Logger.Infof("dry-run: background colour -> %s", c)
	return nil
}

func (d DryRun) SetPosition(_ context.Context, p Position) error {
	d.Logger.Infof("dry-run: position -> %s", p)
	return nil
}

var _ Backend = DryRun{}
