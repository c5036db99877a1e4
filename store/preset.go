// SPDX-License-Identifier: EPL-2.0

package store

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Preset is a shareable set of remote overrides. Files are YAML; JSON
// presets parse as well.
type Preset struct {
	Name    string                 `yaml:"name" json:"name"`
	Credits string                 `yaml:"credits" json:"credits"`
	Tracks  map[string]PresetTrack `yaml:"tracks" json:"tracks"`
}

type PresetTrack struct {
	ID string `yaml:"id" json:"id"`
	// URL defaults to ID when empty; the converter resolves bare ids.
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	Name     string `yaml:"name" json:"name"`
	Duration int64  `yaml:"duration" json:"duration"` // seconds
	Uploader string `yaml:"uploader" json:"uploader"`
}

func (t PresetTrack) Remote() Remote {
	locator := t.URL
	if locator == "" {
		locator = t.ID
	}
	return Remote{
		ID:       t.ID,
		Name:     t.Name,
		URL:      locator,
		Duration: time.Duration(t.Duration) * time.Second,
		Uploader: t.Uploader,
	}
}

// TrackNames returns the preset's track names, sorted.
func (p *Preset) TrackNames() []string {
	names := make([]string, 0, len(p.Tracks))
	for n := range p.Tracks {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ParsePreset decodes a YAML or JSON preset.
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	if len(p.Tracks) == 0 {
		return nil, fmt.Errorf("parsing preset: no tracks")
	}
	for name, t := range p.Tracks {
		if t.ID == "" && t.URL == "" {
			return nil, fmt.Errorf("parsing preset: track %q has no id or url", name)
		}
	}
	return &p, nil
}

func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}
	return ParsePreset(data)
}
