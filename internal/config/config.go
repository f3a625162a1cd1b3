// Package config provides configuration management for ubertimetracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultListenAddr is the local API bind address.
	DefaultListenAddr = "127.0.0.1:7420"
	// DefaultMaxConns caps the SQLite connection pool.
	DefaultMaxConns = 4
)

// UploadConfig configures the S3-compatible cloud uploader. The uploader is
// inactive until Bucket and Region are set.
type UploadConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // empty for AWS proper
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// Configured reports whether the uploader has enough settings to run.
func (u UploadConfig) Configured() bool {
	return u.Bucket != "" && u.Region != ""
}

// Config is the process configuration, loaded from ~/.ubertimetracker/config.yaml.
// Runtime user preferences (auto-sync, cloud sync, language) live in the
// settings row of the database instead.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	MaxConns   int    `yaml:"max_conns"`
	// SpoolDir is where the platform shim drops screen-dump text files.
	SpoolDir string `yaml:"spool_dir"`
	// OfflinePolicy selects the bridge profile: "pause" or "stop".
	OfflinePolicy string `yaml:"offline_policy"`
	// ColdStart selects the open-session reconciliation policy on startup:
	// "leave" (orphaned sessions stay untouched) or "adopt" (re-attach as
	// running).
	ColdStart string `yaml:"cold_start"`
	ExportDir string `yaml:"export_dir"`

	Upload UploadConfig `yaml:"upload"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		ListenAddr:    DefaultListenAddr,
		MaxConns:      DefaultMaxConns,
		SpoolDir:      filepath.Join(DataDir(), "spool"),
		OfflinePolicy: "pause",
		ColdStart:     "leave",
		ExportDir:     filepath.Join(DataDir(), "exports"),
	}
}

// DataDir returns the application data directory (~/.ubertimetracker).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ubertimetracker")
}

// DBPath returns the SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "ubertimetracker.db")
}

// ConfigPath returns the YAML config file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

// EnsureAll creates the data directory and the spool/export subdirectories
// from a loaded (or default) config.
func EnsureAll(cfg *Config) error {
	if err := EnsureDataDir(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.SpoolDir, 0o755); err != nil {
		return fmt.Errorf("ensure spool dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}
	return nil
}

// Load reads the config file, filling unset fields from Default(). A missing
// file is not an error; the defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config file.
func Save(cfg *Config) error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o644)
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.MaxConns <= 0 {
		c.MaxConns = def.MaxConns
	}
	if c.SpoolDir == "" {
		c.SpoolDir = def.SpoolDir
	}
	if c.OfflinePolicy == "" {
		c.OfflinePolicy = def.OfflinePolicy
	}
	if c.ColdStart == "" {
		c.ColdStart = def.ColdStart
	}
	if c.ExportDir == "" {
		c.ExportDir = def.ExportDir
	}
}
