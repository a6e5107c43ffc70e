package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprslide/internal/display"
)

func newSetCmd(provider *AppProvider) *cobra.Command {
	var (
		monitor  string
		position string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "set [image]",
		Short: "Set a single wallpaper, fit mode or background colour",
		Long: `Paint one image directly, bypassing presets. A running native
slideshow on the targeted monitors is stopped first.

--monitor accepts a zero-based index or a monitor name; without it every
active monitor is painted.

Examples:
  hyprslide set ~/Pictures/lake.png
  hyprslide set ~/Pictures/lake.png --monitor 1
  hyprslide set --position fit --color '#1e1e2e'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && position == "" && color == "" {
				return fmt.Errorf("nothing to set: give an image, --position or --color")
			}
			var (
				pos display.Position
				c   display.Color
				err error
			)
			if position != "" {
				if pos, err = display.ParsePosition(position); err != nil {
					return err
				}
			}
			if color != "" {
				if c, err = display.ParseColor(color); err != nil {
					return err
				}
			}

			app, err := provider.Get()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if position != "" {
				if err := app.Engine.SetPosition(ctx, pos); err != nil {
					return err
				}
			}
			if color != "" {
				if err := app.Engine.SetBackgroundColor(ctx, c); err != nil {
					return err
				}
			}
			if len(args) == 1 {
				return app.Engine.SetSingleImage(ctx, args[0], monitor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&monitor, "monitor", "m", "", "monitor index or name")
	cmd.Flags().StringVar(&position, "position", "", "fit mode (center|tile|stretch|fit|fill|span or 0-5)")
	cmd.Flags().StringVar(&color, "color", "", "background colour (#RRGGBB)")
	return cmd
}
