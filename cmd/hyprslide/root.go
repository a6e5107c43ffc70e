package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{Out: os.Stdout, Err: os.Stderr}
	return newRootCmd(provider).Execute()
}

func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hyprslide",
		Short: "Rotate wallpaper presets across Hyprland monitors",
		Long: `hyprslide keeps named wallpaper presets, each pointing at a folder of
images and a set of monitors, and advances them with an ordered,
nonrepeating or random policy. Presets live in one YAML file each under
the presets directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&provider.ConfigPath, "config", "", "path to YAML config (default ~/.config/hyprslide/config.yaml)")
	flags.StringVar(&provider.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	flags.StringVar(&provider.PresetsDir, "presets-dir", "", "override the presets directory")
	flags.BoolVar(&provider.DryRun, "dry-run", false, "log wallpaper changes instead of applying them")

	rootCmd.AddCommand(
		newAdvanceCmd(provider),
		newSetCmd(provider),
		newGetCmd(provider),
		newPresetCmd(provider),
		newCheckCmd(provider),
		newDaemonCmd(provider),
	)
	return rootCmd
}
