package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides carries command-line values that win over the config file.
// Zero values leave the config untouched.
type Overrides struct {
	Debug      bool
	LogFile    string
	Backend    string
	Workers    int
	Density    int
	ChunkCount int
}

// Load loads configuration with priority: defaults < file. An empty path
// searches the standard locations.
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if path == "" {
		path = FindConfigFile()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	return cfg, nil
}

// ApplyOverrides applies command-line overrides (highest priority).
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		c.Logging.LogFile = o.LogFile
	}
	if o.Backend != "" {
		c.Mesher.Backend = o.Backend
	}
	if o.Workers > 0 {
		c.Mesher.Workers = o.Workers
	}
	if o.Density > 0 {
		c.Terrain.Density = o.Density
	}
	if o.ChunkCount > 0 {
		c.Terrain.ChunkCount = o.ChunkCount
	}
}

// FindConfigFile looks for config in standard locations.
func FindConfigFile() string {
	candidates := []string{
		"./shoreline.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Shoreline")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Shoreline")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "shoreline")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shoreline")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
