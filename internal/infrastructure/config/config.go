package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for trafficgrid.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Database   DatabaseConfig   `yaml:"database"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig describes the file-system boundary shared with the
// simulation host: where status snapshots appear, where command files go,
// and how to recognise the host process for the liveness probe.
type SimulationConfig struct {
	// StatusFile is the path of the snapshot JSON the host overwrites
	// on each tick. The control side only ever reads it.
	StatusFile string `yaml:"status_file"`

	// CommandsDir is the mailbox directory command files are published into.
	// Created on startup if it does not exist.
	CommandsDir string `yaml:"commands_dir"`

	// ProcessName is matched against the process table (pgrep -f) to decide
	// whether the host is running. Advisory only.
	ProcessName string `yaml:"process_name"`

	// ProbeTimeoutSeconds bounds a single liveness probe.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds"`

	// PollIntervalSeconds is how often the snapshot is re-read for
	// WebSocket broadcast to dashboard clients.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// DatabaseConfig contains SQLite settings for the command journal.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TRAFFICGRID_SECTION_KEY
// For example: TRAFFICGRID_SIMULATION_COMMANDS_DIR, TRAFFICGRID_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. The simulation paths
// default to the shared /tmp directory the host is launched with.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StatusFile:          "/tmp/unity-traffic/traffic_system_status.json",
			CommandsDir:         "/tmp/unity-traffic/commands",
			ProcessName:         "server.x86_64",
			ProbeTimeoutSeconds: 2,
			PollIntervalSeconds: 2,
		},
		Database: DatabaseConfig{
			Path:        "./data/trafficgrid.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TRAFFICGRID_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Simulation boundary
	if v := os.Getenv("TRAFFICGRID_SIMULATION_STATUS_FILE"); v != "" {
		cfg.Simulation.StatusFile = v
	}
	if v := os.Getenv("TRAFFICGRID_SIMULATION_COMMANDS_DIR"); v != "" {
		cfg.Simulation.CommandsDir = v
	}
	if v := os.Getenv("TRAFFICGRID_SIMULATION_PROCESS_NAME"); v != "" {
		cfg.Simulation.ProcessName = v
	}

	// Database
	if v := os.Getenv("TRAFFICGRID_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("TRAFFICGRID_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("TRAFFICGRID_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Logging
	if v := os.Getenv("TRAFFICGRID_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Simulation boundary validation
	if c.Simulation.StatusFile == "" {
		errs = append(errs, "simulation.status_file is required")
	}
	if c.Simulation.CommandsDir == "" {
		errs = append(errs, "simulation.commands_dir is required")
	}
	if c.Simulation.ProcessName == "" {
		errs = append(errs, "simulation.process_name is required")
	}
	if c.Simulation.ProbeTimeoutSeconds < 1 {
		errs = append(errs, "simulation.probe_timeout_seconds must be at least 1")
	}
	if c.Simulation.PollIntervalSeconds < 1 {
		errs = append(errs, "simulation.poll_interval_seconds must be at least 1")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ProbeTimeout returns the liveness probe timeout as a Duration.
func (c *SimulationConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// PollInterval returns the snapshot poll interval as a Duration.
func (c *SimulationConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
