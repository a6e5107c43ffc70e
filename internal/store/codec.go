package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hyprpal/hyprslide/internal/display"
	"github.com/hyprpal/hyprslide/internal/preset"
)

// FileExt is the backing file extension; files are named <preset>.yaml.
const FileExt = ".yaml"

// presetFile is the on-disk representation of one preset.
type presetFile struct {
	PresetName         string   `yaml:"presetname"`
	Enabled            *bool    `yaml:"enabled,omitempty"`
	SlideshowFolder    string   `yaml:"slideshowfolder"`
	SubfolderScan      bool     `yaml:"subfolderscan"`
	MonitorIDs         []string `yaml:"monitorids,omitempty"`
	ShuffleType        string   `yaml:"shuffletype"`
	ShuffledImagePaths []string `yaml:"shuffledimagepaths"`
	CurrentImagePath   string   `yaml:"currentimagepath"`
	BackgroundColor    string   `yaml:"backgroundcolor,omitempty"`
	Position           string   `yaml:"position,omitempty"`
}

// Decode parses one backing file. Relative paths are resolved against
// baseDir. Any problem is reported as a *preset.ConfigurationError.
func Decode(data []byte, path, baseDir string) (*preset.Preset, error) {
	p, err := decode(data, baseDir)
	if err != nil {
		return nil, &preset.ConfigurationError{Path: path, Err: err}
	}
	return p, nil
}

func decode(data []byte, baseDir string) (*preset.Preset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw presetFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty preset file")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	policy, err := preset.ParsePolicy(raw.ShuffleType)
	if err != nil {
		return nil, err
	}
	if raw.SlideshowFolder == "" {
		return nil, errors.New("slideshowfolder is required")
	}
	if raw.BackgroundColor != "" {
		if _, err := display.ParseColor(raw.BackgroundColor); err != nil {
			return nil, fmt.Errorf("backgroundcolor: %w", err)
		}
	}
	if raw.Position != "" {
		if _, err := display.ParsePosition(raw.Position); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
	}

	p := &preset.Preset{
		Name:              raw.PresetName,
		Folder:            absPath(raw.SlideshowFolder, baseDir),
		RecurseSubfolders: raw.SubfolderScan,
		MonitorIDs:        raw.MonitorIDs,
		Policy:            policy,
		CurrentImage:      absPath(raw.CurrentImagePath, baseDir),
		Enabled:           raw.Enabled == nil || *raw.Enabled,
		BackgroundColor:   raw.BackgroundColor,
		Position:          raw.Position,
	}
	if len(raw.ShuffledImagePaths) > 0 {
		p.History = make([]string, 0, len(raw.ShuffledImagePaths))
		for _, h := range raw.ShuffledImagePaths {
			if h == "" {
				continue
			}
			p.History = append(p.History, absPath(h, baseDir))
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode renders p as a backing file.
func Encode(p *preset.Preset) ([]byte, error) {
	enabled := p.Enabled
	raw := presetFile{
		PresetName:         p.Name,
		Enabled:            &enabled,
		SlideshowFolder:    p.Folder,
		SubfolderScan:      p.RecurseSubfolders,
		MonitorIDs:         p.MonitorIDs,
		ShuffleType:        string(p.Policy),
		ShuffledImagePaths: p.History,
		CurrentImagePath:   p.CurrentImage,
		BackgroundColor:    p.BackgroundColor,
		Position:           p.Position,
	}
	if raw.ShuffledImagePaths == nil {
		raw.ShuffledImagePaths = []string{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("encode preset %q: %w", p.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode preset %q: %w", p.Name, err)
	}
	return buf.Bytes(), nil
}

func absPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if baseDir != "" {
			path = filepath.Join(baseDir, path)
		} else if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return filepath.Clean(path)
}
