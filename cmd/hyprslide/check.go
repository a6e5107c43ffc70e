package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyprpal/hyprslide/internal/config"
	"github.com/hyprpal/hyprslide/internal/store"
)

func newCheckCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and every preset file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := provider.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			out, errOut := provider.Out, provider.Err
			if out == nil {
				out = os.Stdout
			}
			if errOut == nil {
				errOut = os.Stderr
			}
			return runCheck(path, provider.PresetsDir, out, errOut)
		},
	}
}

func runCheck(configPath, presetsDir string, stdout, stderr io.Writer) error {
	cfg := config.Default()
	var issues []string
	if _, err := os.Stat(configPath); err == nil {
		parsed, lintErrs, err := config.LintFile(configPath)
		if err != nil {
			issues = append(issues, err.Error())
		} else {
			cfg = parsed
		}
		for _, lintErr := range lintErrs {
			issues = append(issues, lintErr.Error())
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if presetsDir != "" {
		cfg.PresetsDir = presetsDir
	}

	presetIssues, checked, err := checkPresetFiles(cfg.PresetsDir)
	if err != nil {
		return err
	}
	issues = append(issues, presetIssues...)

	if len(issues) == 0 {
		fmt.Fprintf(stdout, "Configuration OK (%d preset files)\n", checked)
		return nil
	}
	fmt.Fprintf(stderr, "Configuration has %d issue(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(stderr, "- %s\n", issue)
	}
	return fmt.Errorf("configuration validation failed")
}

func checkPresetFiles(dir string) ([]string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read presets dir: %w", err)
	}
	var issues []string
	checked := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), store.FileExt) {
			continue
		}
		checked++
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, err.Error())
			continue
		}
		if _, err := store.Decode(data, path, dir); err != nil {
			issues = append(issues, err.Error())
		}
	}
	sort.Strings(issues)
	return issues, checked, nil
}
