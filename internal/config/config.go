// Package config loads the on-disk YAML configuration for the service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every option the adapter and core read at startup. Durations
// are stored as strings in the YAML file (e.g. "60m") and parsed on load so
// the file stays human-editable.
type Config struct {
	// InputsDir is where the registry writes uploaded bytes.
	InputsDir string `yaml:"inputs_dir"`

	// OutputsDir is where the encoder writes finished MP4s.
	OutputsDir string `yaml:"outputs_dir"`

	// EncoderBinary is the transcoder executable, resolved via PATH if not absolute.
	EncoderBinary string `yaml:"encoder_binary"`

	// MaxInputBytes bounds a single upload; enforced by the HTTP adapter.
	MaxInputBytes int64 `yaml:"max_input_bytes"`

	// RetentionRaw is how long a terminal job's files survive past completed_at.
	RetentionRaw string `yaml:"retention"`

	// SweepIntervalRaw is how often the registry sweeper runs.
	SweepIntervalRaw string `yaml:"sweep_interval"`

	// ListenPort is the HTTP adapter's bind port.
	ListenPort int `yaml:"listen_port"`

	// LogLevel controls logging verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogDir is loaded from the file but not read by the service; logs are
	// written to stdout only.
	LogDir string `yaml:"log_dir"`

	// HistoryDBPath is where the SQLite-backed outcome ledger lives.
	// Empty disables the ledger.
	HistoryDBPath string `yaml:"history_db_path"`
}

// Retention parses RetentionRaw, defaulting to 60 minutes on a blank or
// unparseable value.
func (c *Config) Retention() time.Duration {
	return parseDurationOr(c.RetentionRaw, 60*time.Minute)
}

// SweepInterval parses SweepIntervalRaw, defaulting to 60 seconds.
func (c *Config) SweepInterval() time.Duration {
	return parseDurationOr(c.SweepIntervalRaw, 60*time.Second)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		InputsDir:        "./data/inputs",
		OutputsDir:       "./data/outputs",
		EncoderBinary:    "ffmpeg",
		MaxInputBytes:    1 << 30, // 1 GiB
		RetentionRaw:     "60m",
		SweepIntervalRaw: "60s",
		ListenPort:       8080,
		LogLevel:         "info",
		LogDir:           "",
		HistoryDBPath:    "./data/history.db",
	}
}

// Load reads config from a YAML file, applying defaults for missing values.
// If the file does not exist, a default one is written in its place.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if saveErr := cfg.Save(path); saveErr != nil {
				fmt.Printf("warning: could not create config file: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.EncoderBinary == "" {
		cfg.EncoderBinary = "ffmpeg"
	}
	if cfg.InputsDir == "" {
		cfg.InputsDir = "./data/inputs"
	}
	if cfg.OutputsDir == "" {
		cfg.OutputsDir = "./data/outputs"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8080
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = 1 << 30
	}

	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
