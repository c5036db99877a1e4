// SPDX-License-Identifier: EPL-2.0

// Package config loads musicreplacer settings from TOML with .env and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const envPrefix = "MUSICREPLACER_"

// Load reads configuration from standard locations with environment overrides.
// Search order: $XDG_CONFIG_HOME/musicreplacer/config.toml, ~/.config/musicreplacer/config.toml,
// ~/.musicreplacerrc
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom reads configuration from path; an empty path means defaults only.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	// a missing .env is fine
	_ = godotenv.Load()

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	paths := []string{
		filepath.Join(xdgConfig, "musicreplacer", "config.toml"),
		filepath.Join(home, ".musicreplacerrc"),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	envString("DATA_DIR", &cfg.DataDir)
	envString("CACHE_DIR", &cfg.CacheDir)

	// Store
	envString("STORE_BACKEND", &cfg.Store.Backend)
	envString("STORE_PATH", &cfg.Store.Path)
	envString("REDIS_ADDR", &cfg.Store.RedisAddr)
	envString("REDIS_PASSWORD", &cfg.Store.RedisPassword)
	envInt("REDIS_DB", &cfg.Store.RedisDB)

	// Playback
	envInt("FADE_MS", &cfg.Playback.FadeMs)
	envInt("MAX_VOLUME_UNITS", &cfg.Playback.MaxVolumeUnits)

	// Acquisition
	envInt("TIMEOUT_MS", &cfg.Acquisition.TimeoutMs)
	envString("CONVERTER_URL", &cfg.Acquisition.ConverterURL)
	envBool("NORMALIZE_WAV", &cfg.Acquisition.NormalizeWAV)
	envBool("SKIP_OVERRIDDEN_ON_BULK", &cfg.Acquisition.SkipOverriddenOnBulk)

	// Search
	envString("SEARCH_ENDPOINT", &cfg.Search.Endpoint)

	// Log
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FILE", &cfg.Log.File)
}

func envString(name string, dst *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
