package ipc

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const socketTimeout = 5 * time.Second

// socketRequester talks to hyprpaper's IPC socket directly.
type socketRequester struct {
	path string
}

func newSocketRequester() (*socketRequester, error) {
	path, err := hyprpaperSocketPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("hyprpaper socket: %w", err)
	}
	return &socketRequester{path: path}, nil
}

// Request writes one command line and returns the full reply.
func (r *socketRequester) Request(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", r.path)
	if err != nil {
		return "", fmt.Errorf("connect hyprpaper socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(socketTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set socket deadline: %w", err)
	}
	if _, err := conn.Write([]byte(strings.Join(args, " "))); err != nil {
		return "", fmt.Errorf("write hyprpaper request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read hyprpaper reply: %w", err)
	}
	return string(reply), nil
}

func (r *socketRequester) SocketPath() string {
	return r.path
}

func hyprpaperSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig, ".hyprpaper.sock"), nil
}
