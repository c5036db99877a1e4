// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Playback.Fade() != time.Second {
		t.Errorf("Fade() = %v, want 1s", cfg.Playback.Fade())
	}
	if !cfg.Acquisition.SkipOverriddenOnBulk {
		t.Error("SkipOverriddenOnBulk default = false, want true")
	}
	if cfg.Search.PageSize != 4 {
		t.Errorf("PageSize = %d, want 4", cfg.Search.PageSize)
	}
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
data_dir = "` + dir + `"

[playback]
fade_ms = 250

[acquisition]
skip_overridden_on_bulk = false

[store]
backend = "memory"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MUSICREPLACER_MAX_VOLUME_UNITS", "100")
	t.Setenv("MUSICREPLACER_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Playback.FadeMs != 250 {
		t.Errorf("FadeMs = %d, want 250", cfg.Playback.FadeMs)
	}
	if cfg.Acquisition.SkipOverriddenOnBulk {
		t.Error("SkipOverriddenOnBulk = true, want false from file")
	}
	if cfg.Playback.MaxVolumeUnits != 100 {
		t.Errorf("MaxVolumeUnits = %d, want 100 from env", cfg.Playback.MaxVolumeUnits)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Playback.TrackMs != 600 {
		t.Errorf("TrackMs = %d, want default 600", cfg.Playback.TrackMs)
	}
	if got := cfg.CachePath(); got != filepath.Join(dir, "music-overrides") {
		t.Errorf("CachePath() = %q", got)
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[playback\nfade_ms ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() error = nil, want decode error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "etcd" }, "invalid backend"},
		{"zero volume units", func(c *Config) { c.Playback.MaxVolumeUnits = 0 }, "max_volume_units"},
		{"negative fade", func(c *Config) { c.Playback.FadeMs = -1 }, "fade_ms"},
		{"ftp converter", func(c *Config) { c.Acquisition.ConverterURL = "ftp://x" }, "converter_url"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"zero page", func(c *Config) { c.Search.PageSize = 0 }, "page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
