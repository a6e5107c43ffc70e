package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyprpal/hyprslide/internal/util"
)

// Event represents a Hyprland event stream payload.
type Event struct {
	Kind    string
	Payload string
}

// MonitorChange reports whether the event adds or removes a monitor.
func (e Event) MonitorChange() bool {
	switch e.Kind {
	case "monitoradded", "monitoraddedv2", "monitorremoved", "monitorremovedv2":
		return true
	}
	return false
}

// Subscribe connects to the Hyprland event socket and streams monitor
// hotplug events until context cancellation.
func Subscribe(ctx context.Context, logger *util.Logger) (<-chan Event, error) {
	socket, err := eventSocketPath()
	if err != nil {
		return nil, err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	events := make(chan Event)
	go func() {
		defer close(events)
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			ev := parseEvent(scanner.Text())
			if !ev.MonitorChange() {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logger.Warnf("event stream error: %v", err)
		}
	}()
	return events, nil
}

func parseEvent(line string) Event {
	kind, payload, _ := strings.Cut(line, ">>")
	return Event{Kind: kind, Payload: payload}
}

func eventSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig, ".socket2.sock"), nil
}
