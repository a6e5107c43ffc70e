package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/preset"
	"github.com/hyprpal/hyprslide/internal/store"
)

func newPresetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage rotation presets",
	}
	cmd.AddCommand(
		newPresetAddCmd(provider),
		newPresetRemoveCmd(provider),
		newPresetListCmd(provider),
		newPresetToggleCmd(provider, "enable", true),
		newPresetToggleCmd(provider, "disable", false),
		newPresetShowCmd(provider),
	)
	return cmd
}

func newPresetAddCmd(provider *AppProvider) *cobra.Command {
	var (
		monitors []string
		policy   string
		recurse  bool
		disabled bool
		color    string
		position string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <folder>",
		Short: "Create or replace a preset",
		Long: `Create a preset rotating the images of <folder>. Without --monitor the
preset claims every active monitor, which conflicts with any other
enabled preset.

Examples:
  hyprslide preset add nature ~/Pictures/nature --monitor DP-1
  hyprslide preset add all ~/Pictures --recurse --policy random`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pol, err := preset.ParsePolicy(policy)
			if err != nil {
				return err
			}
			folder, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve folder: %w", err)
			}
			info, err := os.Stat(folder)
			if err != nil {
				return fmt.Errorf("slideshow folder: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("slideshow folder %s is not a directory", folder)
			}
			if color != "" {
				c, err := display.ParseColor(color)
				if err != nil {
					return err
				}
				color = c.String()
			}
			if position != "" {
				pos, err := display.ParsePosition(position)
				if err != nil {
					return err
				}
				position = string(pos)
			}

			app, err := provider.Get()
			if err != nil {
				return err
			}
			p := preset.New(args[0], folder, pol, monitors...)
			p.RecurseSubfolders = recurse
			p.Enabled = !disabled
			p.BackgroundColor = color
			p.Position = position
			if err := saveNew(app.Store, p); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Saved preset %s\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&monitors, "monitor", "m", nil, "monitor name (repeatable; default all monitors)")
	cmd.Flags().StringVar(&policy, "policy", string(preset.PolicyNonrepeating), "ordered|nonrepeating|random")
	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "include images in subfolders")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "save the preset disabled")
	cmd.Flags().StringVar(&color, "color", "", "background colour applied when the preset rotates")
	cmd.Flags().StringVar(&position, "position", "", "fit mode applied when the preset rotates")
	return cmd
}

// saveNew adds p to the store and writes its backing file.
func saveNew(st *store.Store, p *preset.Preset) error {
	if err := st.Add(p); err != nil {
		return err
	}
	return st.Persist(p)
}

func newPresetRemoveCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a preset and its file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			removed, err := app.Engine.RemovePreset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("preset %q: %w", args[0], preset.ErrNotFound)
			}
			fmt.Fprintf(app.Out, "Removed preset %s\n", args[0])
			return nil
		},
	}
}

func newPresetListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			presets, err := app.Store.All()
			if err != nil {
				return err
			}
			if len(presets) == 0 {
				fmt.Fprintln(app.Out, "No presets.")
				return nil
			}
			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENABLED\tPOLICY\tMONITORS\tFOLDER")
			for _, p := range presets {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", p.Name, p.Enabled, p.Policy, monitorList(p), p.Folder)
			}
			return tw.Flush()
		},
	}
}

func monitorList(p *preset.Preset) string {
	if p.CatchAll() {
		return "*"
	}
	return strings.Join(p.MonitorIDs, ",")
}

func newPresetToggleCmd(provider *AppProvider, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			current, err := app.Store.Get(args[0])
			if err != nil {
				return err
			}
			if current.Enabled == enabled {
				fmt.Fprintf(app.Out, "Preset %s already %sd\n", current.Name, verb)
				return nil
			}
			updated := current.Clone()
			updated.Enabled = enabled
			if err := saveNew(app.Store, updated); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Preset %s %sd\n", updated.Name, verb)
			return nil
		},
	}
}

func newPresetShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a preset, or the preset driving a monitor",
		Long: `Print the stored form of a preset. With --monitor instead of a name,
print the preset that currently drives that monitor; a native slideshow
is reported when no preset claims it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			monitor, _ := cmd.Flags().GetString("monitor")
			var p *preset.Preset
			switch {
			case len(args) == 1:
				p, err = app.Store.Get(args[0])
			case monitor != "":
				p, err = app.Engine.PresetForMonitor(cmd.Context(), monitor)
			default:
				return fmt.Errorf("give a preset name or --monitor")
			}
			if err != nil {
				return err
			}
			data, err := store.Encode(p)
			if err != nil {
				return err
			}
			_, err = app.Out.Write(data)
			return err
		},
	}
	cmd.Flags().StringP("monitor", "m", "", "monitor name")
	return cmd
}
