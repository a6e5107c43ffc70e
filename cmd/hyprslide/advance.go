package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprslide/internal/engine"
)

func newAdvanceCmd(provider *AppProvider) *cobra.Command {
	var presetName string

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Move enabled presets to their next image",
		Long: `Advance every enabled preset, or only the one named with --preset.

Examples:
  hyprslide advance
  hyprslide advance --preset nature`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			defer app.writeMetrics()

			var report *engine.Report
			if presetName != "" {
				report, err = app.Engine.AdvancePreset(cmd.Context(), presetName)
			} else {
				report, err = app.Engine.Advance(cmd.Context())
			}
			if err != nil {
				return err
			}
			printReport(app.Out, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "advance only this preset")
	return cmd
}

func printReport(w io.Writer, report *engine.Report) {
	names := make([]string, 0, len(report.Applied))
	for name := range report.Applied {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, filepath.Base(report.Applied[name]))
	}
	skipped := make([]string, 0, len(report.Skipped))
	for name := range report.Skipped {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		fmt.Fprintf(w, "%s: skipped (%s)\n", name, report.Skipped[name])
	}
	for _, err := range report.Errors {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
