// SPDX-License-Identifier: EPL-2.0

package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// DataDir is the host data directory; CacheDir is resolved under it
	// unless it is absolute.
	DataDir  string `toml:"data_dir"`
	CacheDir string `toml:"cache_dir"`

	Store       StoreConfig       `toml:"store"`
	Playback    PlaybackConfig    `toml:"playback"`
	Acquisition AcquisitionConfig `toml:"acquisition"`
	Search      SearchConfig      `toml:"search"`
	Log         LogConfig         `toml:"log"`
}

// StoreConfig selects and configures the key-value backend holding the
// override catalog.
type StoreConfig struct {
	Backend       string `toml:"backend"` // sqlite, redis or memory
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Group         string `toml:"group"`
	KeyPrefix     string `toml:"key_prefix"`
}

// PlaybackConfig holds engine timing and the host volume scale.
type PlaybackConfig struct {
	FadeMs         int `toml:"fade_ms"`
	MaxVolumeUnits int `toml:"max_volume_units"`
	FrameMs        int `toml:"frame_ms"`
	TrackMs        int `toml:"track_ms"`
}

// AcquisitionConfig holds settings for copying and downloading overrides.
type AcquisitionConfig struct {
	TimeoutMs            int    `toml:"timeout_ms"`
	ConverterURL         string `toml:"converter_url"`
	NormalizeWAV         bool   `toml:"normalize_wav"`
	SkipOverriddenOnBulk bool   `toml:"skip_overridden_on_bulk"`
	QueueSize            int    `toml:"queue_size"`
}

// SearchConfig holds the search provider endpoint and paging.
type SearchConfig struct {
	Endpoint  string `toml:"endpoint"`
	PageSize  int    `toml:"page_size"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}

func (c PlaybackConfig) Fade() time.Duration       { return ms(c.FadeMs) }
func (c PlaybackConfig) Frame() time.Duration      { return ms(c.FrameMs) }
func (c PlaybackConfig) Track() time.Duration      { return ms(c.TrackMs) }
func (c AcquisitionConfig) Timeout() time.Duration { return ms(c.TimeoutMs) }
func (c SearchConfig) Timeout() time.Duration      { return ms(c.TimeoutMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
