package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice defaults
	Invoice InvoiceConfig `yaml:"invoice"`

	// Seller identity stamped onto new invoices
	Seller SellerConfig `yaml:"seller"`

	// Logging settings
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type InvoiceConfig struct {
	NumberPrefix   string `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
	DefaultDueDays int    `yaml:"default_due_days"` // Days until invoice due
	Currency       string `yaml:"currency"`         // Default currency code
}

type SellerConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Output string `yaml:"output"` // file path, or "stderr"
}

// DefaultConfigPath returns ~/.config/billkeep/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "billkeep", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "billkeep", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "billkeep", "billkeep.db"),
		},
		Invoice: InvoiceConfig{
			NumberPrefix:   "INV",
			DefaultDueDays: 30,
			Currency:       "USD",
		},
		Seller: SellerConfig{},
		Log: LogConfig{
			Level: "info",
			// Log to a file by default so output stays off the TUI terminal
			Output: filepath.Join(homeDir, ".config", "billkeep", "billkeep.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories for the database and log
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0755); err != nil {
		return err
	}

	if c.Log.Output != "" && c.Log.Output != "stderr" {
		if err := os.MkdirAll(filepath.Dir(c.Log.Output), 0755); err != nil {
			return err
		}
	}

	return nil
}
