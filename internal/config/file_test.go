package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTempConfigFile creates a temporary config file for testing
func createTempConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	configDir := filepath.Join(dir, ".cmdrouter")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	return configPath
}

// =============================================================================
// loadConfigFromPath Tests
// =============================================================================

func TestLoadConfigFromPath_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
language: de
plugin_name: Guard
caller: alice

logging:
  level: debug
  format: json
  debug: true

paths:
  settings: /srv/settings.json
  locales: /srv/locales
  history: /srv/history.json
`
	configPath := createTempConfigFile(t, tmpDir, configContent)

	cfg, err := loadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("loadConfigFromPath() error = %v", err)
	}

	if cfg.Language != "de" || cfg.PluginName != "Guard" || cfg.Caller != "alice" {
		t.Errorf("top-level fields = %+v", cfg)
	}
	if cfg.Logging == nil || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || !cfg.Logging.Debug {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Paths == nil || cfg.Paths.Settings != "/srv/settings.json" || cfg.Paths.Locales != "/srv/locales" {
		t.Errorf("Paths = %+v", cfg.Paths)
	}
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, t.TempDir(), "logging: [broken")

	if _, err := loadConfigFromPath(configPath); err == nil {
		t.Error("loadConfigFromPath() should fail for invalid YAML")
	}
}

func TestLoadConfigFromPath_NotFound(t *testing.T) {
	_, err := loadConfigFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("loadConfigFromPath() should fail for a missing file")
	}
}

// =============================================================================
// LoadConfigFile / GetConfigPaths Tests
// =============================================================================

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) == 0 {
		t.Fatal("GetConfigPaths() returned no paths")
	}
	if paths[0] != filepath.Join(".", ".cmdrouter", ConfigFileName) {
		t.Errorf("first path = %q, want the working directory", paths[0])
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, filepath.Join("cmdrouter", ConfigFileName)) &&
			!strings.HasSuffix(p, filepath.Join(".cmdrouter", ConfigFileName)) {
			t.Errorf("unexpected path %q", p)
		}
	}
}

func TestLoadConfigFile_NoneFound(t *testing.T) {
	runInTempDir(t)

	cfg, err := LoadConfigFile()
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Language != "" || cfg.Logging != nil {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigFile_WorkingDirectory(t *testing.T) {
	dir := runInTempDir(t)
	createTempConfigFile(t, dir, "language: es\n")

	cfg, err := LoadConfigFile()
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Language != "es" {
		t.Errorf("Language = %q, want es", cfg.Language)
	}
}

// =============================================================================
// ApplyFileConfig Tests
// =============================================================================

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name  string
		start Config
		file  *FileConfig
		check func(t *testing.T, c *Config)
	}{
		{
			name:  "nil file config",
			start: Config{Language: "en"},
			file:  nil,
			check: func(t *testing.T, c *Config) {
				if c.Language != "en" {
					t.Errorf("Language = %q", c.Language)
				}
			},
		},
		{
			name:  "fills empty fields",
			start: Config{},
			file: &FileConfig{
				Language: "de",
				Caller:   "alice",
				Logging:  &LoggingConfig{Level: "warn", Format: "json"},
				Paths:    &PathsConfig{Settings: "s.json", Locales: "loc", History: "h.json"},
			},
			check: func(t *testing.T, c *Config) {
				if c.Language != "de" || c.Caller != "alice" {
					t.Errorf("got %+v", c)
				}
				if c.LogLevel != "warn" || c.LogFormat != "json" {
					t.Errorf("logging = %q/%q", c.LogLevel, c.LogFormat)
				}
				if c.SettingsPath != "s.json" || c.LocaleDir != "loc" || c.HistoryPath != "h.json" {
					t.Errorf("paths = %q %q %q", c.SettingsPath, c.LocaleDir, c.HistoryPath)
				}
			},
		},
		{
			name:  "does not override set fields",
			start: Config{Language: "es", LogLevel: "error"},
			file: &FileConfig{
				Language: "de",
				Logging:  &LoggingConfig{Level: "debug"},
			},
			check: func(t *testing.T, c *Config) {
				if c.Language != "es" || c.LogLevel != "error" {
					t.Errorf("got language %q level %q", c.Language, c.LogLevel)
				}
			},
		},
		{
			name:  "debug only turns on",
			start: Config{Debug: true},
			file:  &FileConfig{Logging: &LoggingConfig{Debug: false}},
			check: func(t *testing.T, c *Config) {
				if !c.Debug {
					t.Error("Debug should stay true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.start
			c.ApplyFileConfig(tt.file)
			tt.check(t, &c)
		})
	}
}

// =============================================================================
// CreateDefaultConfigFile Tests
// =============================================================================

func TestCreateDefaultConfigFileIn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cmdrouter")

	path, err := CreateDefaultConfigFileIn(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfigFileIn() error = %v", err)
	}

	cfg, err := loadConfigFromPath(path)
	if err != nil {
		t.Fatalf("default config should parse: %v", err)
	}
	if cfg.Language != "" {
		t.Errorf("default config should be all comments, got language %q", cfg.Language)
	}

	if _, err := CreateDefaultConfigFileIn(dir); err == nil {
		t.Error("second call should report the existing file")
	}
}
