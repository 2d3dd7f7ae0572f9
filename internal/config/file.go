package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/cmdrouter/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// Localization
	Language   string `yaml:"language,omitempty"`    // "en", "de", "es"
	PluginName string `yaml:"plugin_name,omitempty"` // Message prefix

	// Who one-shot commands run as
	Caller string `yaml:"caller,omitempty"`

	// Logging settings
	Logging *LoggingConfig `yaml:"logging,omitempty"`

	// File locations
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // "debug", "info", "warn", "error", "none"
	Format string `yaml:"format,omitempty"` // "text", "json"
	Debug  bool   `yaml:"debug,omitempty"`  // Trace pattern comparisons
}

// PathsConfig holds file and directory overrides
type PathsConfig struct {
	Settings string `yaml:"settings,omitempty"`
	Locales  string `yaml:"locales,omitempty"`
	History  string `yaml:"history,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+constants.AppName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from a file
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if fileExists(path) {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ApplyFileConfig applies file configuration to the main Config
// File config has lower priority than environment variables and CLI flags
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	setIfEmpty(&c.Language, fc.Language)
	setIfEmpty(&c.PluginName, fc.PluginName)
	setIfEmpty(&c.Caller, fc.Caller)

	if fc.Logging != nil {
		setIfEmpty(&c.LogLevel, fc.Logging.Level)
		setIfEmpty(&c.LogFormat, fc.Logging.Format)
		// A false flag cannot be told apart from an unset one, so only true applies
		if fc.Logging.Debug {
			c.Debug = true
		}
	}

	if fc.Paths != nil {
		setIfEmpty(&c.SettingsPath, fc.Paths.Settings)
		setIfEmpty(&c.LocaleDir, fc.Paths.Locales)
		setIfEmpty(&c.HistoryPath, fc.Paths.History)
	}
}

// CreateDefaultConfigFile creates a default config file at the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return CreateDefaultConfigFileIn(filepath.Join(configDir, constants.AppName))
}

// CreateDefaultConfigFileIn writes the commented default config into dir
func CreateDefaultConfigFileIn(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# cmdrouter configuration
# Location: ~/.config/cmdrouter/config.yaml
# Environment variables (CMDROUTER_*) and flags take precedence.

# Message language: en, de, es (default: en)
# language: en

# Prefix shown on messages sent to players
# plugin_name: cmdrouter

# Who one-shot commands run as ("console" or a player name)
# caller: console

# logging:
#   level: info      # debug, info, warn, error, none
#   format: text     # text or json
#   debug: false     # trace every pattern comparison

# paths:
#   settings: ~/.local/share/cmdrouter/settings.json
#   locales: ./locales        # extra <lang>.yaml translations
#   history: ~/.local/share/cmdrouter/history.json
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
