// Package config loads run configuration for the Ergotest framework from an
// ergotest.config.yml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the run configuration for the Ergotest framework
type Config struct {
	// Timeout is the default per-test deadline in milliseconds.
	Timeout int `yaml:"timeout,omitempty"`

	// ChildProcess selects isolated execution in a worker process.
	ChildProcess bool `yaml:"childProcess,omitempty"`

	// Watchdog is the worker-silence window in milliseconds before the run
	// is declared an infinite loop.
	Watchdog int `yaml:"watchdog,omitempty"`

	// Renderer names a registered error renderer (supports ${ENV_VAR} syntax).
	Renderer string `yaml:"renderer,omitempty"`

	// Modules lists the registered module paths to run.
	Modules []string `yaml:"modules,omitempty"`

	// Values is exposed to test bodies via GetConfig (string values support
	// ${ENV_VAR} syntax).
	Values map[string]any `yaml:"values,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:      2000,
		ChildProcess: true,
		Watchdog:     2000,
	}
}

// TimeoutDuration returns the default test deadline as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// WatchdogDuration returns the watchdog window as a duration.
func (c *Config) WatchdogDuration() time.Duration {
	return time.Duration(c.Watchdog) * time.Millisecond
}

// LoadConfig loads configuration from a file. It searches for
// ergotest.config.yml or ergotest.config.yaml in the current directory and
// parent directories, falling back to defaults when none is found.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return DefaultConfig(), nil
	}

	return LoadConfigFromFile(configPath)
}

// LoadConfigFromFile loads configuration from the specified file. A .env
// file next to the config file is loaded into the environment first, so
// ${ENV_VAR} references in the config can resolve against it.
func LoadConfigFromFile(path string) (*Config, error) {
	// Missing .env is fine; it only feeds env expansion.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ExpandEnvInConfig(config)
	return config, nil
}

// findConfigFile searches for ergotest.config.yml or ergotest.config.yaml.
// It starts from the current directory and walks up to parent directories.
func findConfigFile() (string, error) {
	filenames := []string{"ergotest.config.yml", "ergotest.config.yaml"}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree
	for {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("config file not found")
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandEnvInConfig expands environment variables in the configuration
// It supports ${VAR} and $VAR syntax
func ExpandEnvInConfig(config *Config) {
	config.Renderer = os.ExpandEnv(config.Renderer)
	for i, module := range config.Modules {
		config.Modules[i] = os.ExpandEnv(module)
	}
	for key, value := range config.Values {
		if s, ok := value.(string); ok {
			config.Values[key] = os.ExpandEnv(s)
		}
	}
}
