// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}
	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.Acquisition.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("acquisition: %w", err))
	}
	if err := c.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks StoreConfig for errors.
func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case "sqlite", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("redis backend needs redis_addr")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be sqlite, redis, or memory)", c.Backend)
	}
	if c.RedisDB < 0 {
		return errors.New("redis_db must be non-negative")
	}
	return nil
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.FadeMs < 0 {
		return errors.New("fade_ms must be non-negative")
	}
	if c.MaxVolumeUnits <= 0 {
		return errors.New("max_volume_units must be positive")
	}
	if c.FrameMs <= 0 || c.TrackMs <= 0 {
		return errors.New("frame_ms and track_ms must be positive")
	}
	return nil
}

// Validate checks AcquisitionConfig for errors.
func (c *AcquisitionConfig) Validate() error {
	if c.TimeoutMs <= 0 {
		return errors.New("timeout_ms must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.New("queue_size must be positive")
	}
	if c.ConverterURL != "" {
		if err := validURL(c.ConverterURL); err != nil {
			return fmt.Errorf("invalid converter_url: %w", err)
		}
	}
	return nil
}

// Validate checks SearchConfig for errors.
func (c *SearchConfig) Validate() error {
	if c.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}
	if c.Endpoint != "" {
		if err := validURL(c.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}

func validURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q is not http(s)", u.Scheme)
	}
	return nil
}
