package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGetCmd(provider *AppProvider) *cobra.Command {
	var monitor string

	cmd := &cobra.Command{
		Use:   "get <wallpaper|monitors|count|color|position|slideshow>",
		Short: "Print current display state",
		Args:  cobra.ExactArgs(1),
		ValidArgs: []string{
			"wallpaper", "monitors", "count", "color", "position", "slideshow",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			switch strings.ToLower(args[0]) {
			case "wallpaper":
				path, err := app.Engine.Wallpaper(ctx, monitor)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, path)
			case "monitors":
				monitors, err := app.Engine.Monitors(ctx)
				if err != nil {
					return err
				}
				for i, id := range monitors {
					fmt.Fprintf(app.Out, "%d\t%s\n", i, id)
				}
			case "count":
				monitors, err := app.Engine.Monitors(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, len(monitors))
			case "color", "colour":
				c, err := app.Engine.BackgroundColor(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, c)
			case "position":
				p, err := app.Engine.Position(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, p)
			case "slideshow":
				p, ok, err := app.Engine.AdaptForeignRotation(ctx)
				if err != nil {
					return err
				}
				if !ok {
					// empty output means no native slideshow
					return nil
				}
				fmt.Fprintf(app.Out, "%s\t%s\n", p.Folder, p.Policy)
			default:
				return fmt.Errorf("unknown query %q", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&monitor, "monitor", "m", "", "monitor index or name (wallpaper only)")
	return cmd
}
