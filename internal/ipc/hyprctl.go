package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Client wraps hyprctl shell-outs.
type Client struct {
	Binary string
}

// NewClient returns a hyprctl client using the binary on PATH.
func NewClient() *Client {
	return &Client{Binary: "hyprctl"}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hyprctl %s: %v: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (c *Client) queryJSON(ctx context.Context, topic string, args ...string) ([]byte, error) {
	return c.run(ctx, append([]string{"-j", topic}, args...)...)
}

// Monitor is the subset of `hyprctl monitors` the backend needs.
type Monitor struct {
	ID       int
	Name     string
	Disabled bool
}

// ListMonitors returns the enabled monitors ordered by Hyprland id.
func (c *Client) ListMonitors(ctx context.Context) ([]Monitor, error) {
	data, err := c.queryJSON(ctx, "monitors")
	if err != nil {
		return nil, err
	}
	var raw []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Disabled bool   `json:"disabled"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode monitors: %w", err)
	}
	monitors := make([]Monitor, 0, len(raw))
	for _, m := range raw {
		if m.Disabled || m.Name == "" {
			continue
		}
		monitors = append(monitors, Monitor{ID: m.ID, Name: m.Name})
	}
	sort.SliceStable(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })
	return monitors, nil
}

// OptionInt reads an integer-valued (or colour) Hyprland option.
func (c *Client) OptionInt(ctx context.Context, name string) (int64, error) {
	data, err := c.queryJSON(ctx, "getoption", name)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Int *int64 `json:"int"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("decode option %s: %w", name, err)
	}
	if payload.Int == nil {
		return 0, fmt.Errorf("option %s has no integer value", name)
	}
	return *payload.Int, nil
}

// Keyword invokes `hyprctl keyword`.
func (c *Client) Keyword(ctx context.Context, key, value string) error {
	out, err := c.run(ctx, "keyword", key, value)
	if err != nil {
		return err
	}
	if resp := strings.TrimSpace(string(out)); resp != "" && resp != "ok" {
		return fmt.Errorf("hyprctl keyword %s: %s", key, resp)
	}
	return nil
}

// hyprctlRequester forwards hyprpaper requests through `hyprctl hyprpaper`.
type hyprctlRequester struct {
	client *Client
}

func (r hyprctlRequester) Request(ctx context.Context, args ...string) (string, error) {
	out, err := r.client.run(ctx, append([]string{"hyprpaper"}, args...)...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
