// Command hyprslide rotates wallpaper presets across Hyprland monitors.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		exitErr(err)
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
