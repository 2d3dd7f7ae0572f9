package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/quocvuong92/cmdrouter/internal/constants"
)

// Environment variable names
const (
	EnvLanguage     = "CMDROUTER_LANGUAGE"
	EnvPluginName   = "CMDROUTER_PLUGIN_NAME"
	EnvLogLevel     = "CMDROUTER_LOG_LEVEL"
	EnvLogFormat    = "CMDROUTER_LOG_FORMAT"
	EnvDebug        = "CMDROUTER_DEBUG"
	EnvSettingsPath = "CMDROUTER_SETTINGS_PATH"
	EnvLocaleDir    = "CMDROUTER_LOCALE_DIR"
	EnvHistoryPath  = "CMDROUTER_HISTORY_PATH"
	EnvCaller       = "CMDROUTER_CALLER"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultLanguage   = constants.DefaultLanguage
	DefaultPluginName = constants.DefaultPluginName
	DefaultLogLevel   = constants.DefaultLogLevel
	DefaultLogFormat  = constants.DefaultLogFormat
	DefaultCaller     = constants.DefaultCaller
)

// Errors
var (
	ErrInvalidLogFormat = errors.New("invalid log format. Use 'text' or 'json'")
	ErrInvalidLogLevel  = errors.New("invalid log level. Use 'debug', 'info', 'warn', 'error' or 'none'")
	ErrEmptyCaller      = errors.New("caller name is empty. Set CMDROUTER_CALLER or use --as")
)

// envConfig mirrors Config for environment parsing
type envConfig struct {
	Language     string `env:"CMDROUTER_LANGUAGE"`
	PluginName   string `env:"CMDROUTER_PLUGIN_NAME"`
	LogLevel     string `env:"CMDROUTER_LOG_LEVEL"`
	LogFormat    string `env:"CMDROUTER_LOG_FORMAT"`
	Debug        bool   `env:"CMDROUTER_DEBUG"`
	SettingsPath string `env:"CMDROUTER_SETTINGS_PATH"`
	LocaleDir    string `env:"CMDROUTER_LOCALE_DIR"`
	HistoryPath  string `env:"CMDROUTER_HISTORY_PATH"`
	Caller       string `env:"CMDROUTER_CALLER"`
}

// Config holds the application configuration
type Config struct {
	// Localization
	Language   string // BCP-47 tag, e.g. "en", "de"
	PluginName string // Prefix shown on player messages
	LocaleDir  string // Extra <lang>.yaml files

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
	Debug     bool   // Trace every pattern comparison

	// Storage
	SettingsPath string // Capability settings file (default: XDG data dir)
	HistoryPath  string // REPL history file (default: XDG data dir)

	// Caller is who one-shot commands run as; "console" is the console
	Caller string

	// ConfigPath is an explicit config file; empty searches GetConfigPaths
	ConfigPath string

	// Flags
	Interactive bool
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Validate fills unset fields and checks the result.
// Priority: flags (already set) > environment > config file > defaults.
func (c *Config) Validate() error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyEnv(e)

	fc, err := c.loadFile()
	if err != nil {
		return err
	}
	c.ApplyFileConfig(fc)

	c.applyDefaults()

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		return ErrInvalidLogFormat
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "none", "off":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return ErrInvalidLogLevel
	}

	c.Caller = strings.TrimSpace(c.Caller)
	if c.Caller == "" {
		return ErrEmptyCaller
	}

	return nil
}

// loadFile reads the explicit config file, or the first one found on the
// search path. Only an explicit file that cannot be read is an error.
func (c *Config) loadFile() (*FileConfig, error) {
	if c.ConfigPath != "" {
		return loadConfigFromPath(c.ConfigPath)
	}
	fc, err := LoadConfigFile()
	if err != nil {
		// Errors loading the default config file are ignored - env vars and flags take precedence
		return &FileConfig{}, nil
	}
	return fc, nil
}

func (c *Config) applyEnv(e envConfig) {
	setIfEmpty(&c.Language, e.Language)
	setIfEmpty(&c.PluginName, e.PluginName)
	setIfEmpty(&c.LogLevel, e.LogLevel)
	setIfEmpty(&c.LogFormat, e.LogFormat)
	setIfEmpty(&c.SettingsPath, e.SettingsPath)
	setIfEmpty(&c.LocaleDir, e.LocaleDir)
	setIfEmpty(&c.HistoryPath, e.HistoryPath)
	setIfEmpty(&c.Caller, e.Caller)
	if e.Debug {
		c.Debug = true
	}
}

func (c *Config) applyDefaults() {
	setIfEmpty(&c.Language, DefaultLanguage)
	setIfEmpty(&c.PluginName, DefaultPluginName)
	setIfEmpty(&c.LogLevel, DefaultLogLevel)
	setIfEmpty(&c.LogFormat, DefaultLogFormat)
	setIfEmpty(&c.Caller, DefaultCaller)
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

// IsConsoleCaller reports whether one-shot commands run as the console
func (c *Config) IsConsoleCaller() bool {
	return strings.EqualFold(c.Caller, DefaultCaller)
}
