// Package config loads snesctl.json configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "snesctl.json"

	// DefaultServer is the default bridge endpoint.
	DefaultServer = "ws://localhost:8080"

	// DefaultReadTimeoutSec bounds each blocking read step.
	DefaultReadTimeoutSec = 30

	// DefaultWriteTimeoutSec bounds each blocking write step.
	DefaultWriteTimeoutSec = 10

	// DefaultTrackerListen is the default tracker HTTP address.
	DefaultTrackerListen = "127.0.0.1:8190"

	// DefaultTrackerPollSec is the default tracker poll interval.
	DefaultTrackerPollSec = 5
)

// Config is the complete snesctl.json schema.
type Config struct {
	// Server is the bridge WebSocket endpoint.
	Server string `json:"server,omitempty"`

	// Device is the device identifier to attach to. Empty means the first
	// device reported by DeviceList.
	Device string `json:"device,omitempty"`

	// ReadTimeoutSec bounds each blocking read step, in seconds.
	ReadTimeoutSec int `json:"read_timeout_sec,omitempty"`

	// WriteTimeoutSec bounds each blocking write step, in seconds.
	WriteTimeoutSec int `json:"write_timeout_sec,omitempty"`

	// UploadRate throttles uploads, in bytes per second. Zero disables.
	UploadRate int64 `json:"upload_rate,omitempty"`

	// Tracker configures the tracker HTTP server.
	Tracker TrackerConfig `json:"tracker,omitempty"`
}

// TrackerConfig configures the tracker HTTP server.
type TrackerConfig struct {
	// Listen is the HTTP listen address.
	Listen string `json:"listen,omitempty"`

	// PollSec is the snapshot poll interval, in seconds.
	PollSec int `json:"poll_sec,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Server:          DefaultServer,
		ReadTimeoutSec:  DefaultReadTimeoutSec,
		WriteTimeoutSec: DefaultWriteTimeoutSec,
		Tracker: TrackerConfig{
			Listen:  DefaultTrackerListen,
			PollSec: DefaultTrackerPollSec,
		},
	}
}

// Load reads configuration from path. When path is empty it looks for
// snesctl.json in the working directory, then in the user config dir;
// a missing file yields the defaults, a malformed one an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfig()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func findConfig() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "snesctl", ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyDefaults fills zero values left by a sparse config file.
func (c *Config) applyDefaults() {
	if c.Server == "" {
		c.Server = DefaultServer
	}
	if c.ReadTimeoutSec <= 0 {
		c.ReadTimeoutSec = DefaultReadTimeoutSec
	}
	if c.WriteTimeoutSec <= 0 {
		c.WriteTimeoutSec = DefaultWriteTimeoutSec
	}
	if c.Tracker.Listen == "" {
		c.Tracker.Listen = DefaultTrackerListen
	}
	if c.Tracker.PollSec <= 0 {
		c.Tracker.PollSec = DefaultTrackerPollSec
	}
}

// ReadTimeout returns the read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// PollInterval returns the tracker poll interval as a duration.
func (c *TrackerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSec) * time.Second
}
