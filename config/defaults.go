// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		CacheDir: "music-overrides",
		Store: StoreConfig{
			Backend:   "sqlite",
			Path:      "overrides.db",
			RedisAddr: "localhost:6379",
			Group:     "musicreplacer",
			KeyPrefix: "track_",
		},
		Playback: PlaybackConfig{
			FadeMs:         1000,
			MaxVolumeUnits: 255,
			FrameMs:        20,
			TrackMs:        600,
		},
		Acquisition: AcquisitionConfig{
			TimeoutMs:            60000,
			SkipOverriddenOnBulk: true,
			QueueSize:            64,
		},
		Search: SearchConfig{
			PageSize:  4,
			TimeoutMs: 30000,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "musicreplacer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "musicreplacer"
	}
	return filepath.Join(home, ".local", "share", "musicreplacer")
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.CacheDir == "" {
		c.CacheDir = d.CacheDir
	}

	// Store
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = d.Store.RedisAddr
	}
	if c.Store.Group == "" {
		c.Store.Group = d.Store.Group
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = d.Store.KeyPrefix
	}

	// Playback
	if c.Playback.FadeMs == 0 {
		c.Playback.FadeMs = d.Playback.FadeMs
	}
	if c.Playback.MaxVolumeUnits == 0 {
		c.Playback.MaxVolumeUnits = d.Playback.MaxVolumeUnits
	}
	if c.Playback.FrameMs == 0 {
		c.Playback.FrameMs = d.Playback.FrameMs
	}
	if c.Playback.TrackMs == 0 {
		c.Playback.TrackMs = d.Playback.TrackMs
	}

	// Acquisition
	if c.Acquisition.TimeoutMs == 0 {
		c.Acquisition.TimeoutMs = d.Acquisition.TimeoutMs
	}
	if c.Acquisition.QueueSize == 0 {
		c.Acquisition.QueueSize = d.Acquisition.QueueSize
	}

	// Search
	if c.Search.PageSize == 0 {
		c.Search.PageSize = d.Search.PageSize
	}
	if c.Search.TimeoutMs == 0 {
		c.Search.TimeoutMs = d.Search.TimeoutMs
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// CachePath is the directory holding override audio files.
func (c *Config) CachePath() string {
	if filepath.IsAbs(c.CacheDir) {
		return c.CacheDir
	}
	return filepath.Join(c.DataDir, c.CacheDir)
}

// StorePath is the sqlite database location.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.DataDir, c.Store.Path)
}
