package preset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedExtensions lists the image formats the rotation considers.
var SupportedExtensions = []string{"bmp", "dib", "gif", "jfif", "jpe", "jpeg", "jpg", "png", "tif", "tiff", "wdp"}

var supported = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SupportedExtensions))
	for _, ext := range SupportedExtensions {
		m["."+ext] = struct{}{}
	}
	return m
}()

// IsSupportedImage reports whether path carries an allowed extension.
func IsSupportedImage(path string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Enumerate lists the candidate images under folder as cleaned absolute
// paths, deduplicated and sorted lexicographically. Walking a large tree
// blocks for its full duration.
func Enumerate(folder string, recurse bool) ([]string, error) {
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve slideshow folder: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("slideshow folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("slideshow folder %s is not a directory", root)
	}

	seen := map[string]struct{}{}
	add := func(path string) {
		if !IsSupportedImage(path) {
			return
		}
		seen[filepath.Clean(path)] = struct{}{}
	}

	if recurse {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if path == root {
					return walkErr
				}
				// unreadable subtree
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if isImageEntry(path, d) {
				add(path)
			}
			return nil
		})
	} else {
		var entries []fs.DirEntry
		entries, err = os.ReadDir(root)
		for _, d := range entries {
			path := filepath.Join(root, d.Name())
			if isImageEntry(path, d) {
				add(path)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("list slideshow folder: %w", err)
	}

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

func isImageEntry(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
