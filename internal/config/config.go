package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultAPIHost is the tokenization backend address used when nothing is configured
	DefaultAPIHost = "http://localhost:31310/v1"
	// DefaultTableRows is the page size for listings and counts
	DefaultTableRows = 10

	// APIHostEnv overrides the configured API host
	APIHostEnv = "TOKENCTL_API_HOST"
)

var (
	// ConfigDir is the global configuration directory (~/.tokenctl)
	ConfigDir string

	// DatabasePath is the SQLite database holding durable client storage
	DatabasePath string

	// SettingsFile is the global settings file
	SettingsFile string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string
)

// localSettingsFiles are checked in the working directory before the global file
var localSettingsFiles = []string{".tokenctl.yaml", ".tokenctl.yml", ".tokenctl.jsonc", ".tokenctl.json"}

// Settings are the user tunable options
type Settings struct {
	APIHost   string `json:"apiHost" yaml:"apiHost"`
	TableRows int    `json:"tableRows" yaml:"tableRows"`
	Theme     string `json:"theme,omitempty" yaml:"theme,omitempty"`
	Locale    string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Mocked    bool   `json:"mocked,omitempty" yaml:"mocked,omitempty"`
	LogLevel  string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

// Defaults returns the settings used when no file overrides them
func Defaults() Settings {
	return Settings{
		APIHost:   DefaultAPIHost,
		TableRows: DefaultTableRows,
		Theme:     "light",
		LogLevel:  "info",
	}
}

// Initialize sets up the configuration directory and files
// It creates ~/.tokenctl/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".tokenctl"))
}

// InitializeAt is Initialize rooted at dir instead of the home directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "tokenctl.db")
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	LogFile = filepath.Join(ConfigDir, "tokenctl.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(Defaults())
		if err != nil {
			return fmt.Errorf("failed to marshal default settings: %w", err)
		}
		if err := os.WriteFile(SettingsFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	for _, name := range localSettingsFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return SettingsFile
}

// Load reads settings from the local or global file and applies the
// environment override. A missing file yields the defaults.
func Load() (Settings, error) {
	return LoadFile(GetSettingsFilePath())
}

// LoadFile reads settings from path
func LoadFile(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err == nil {
		if err := decode(path, data, &settings); err != nil {
			return settings, err
		}
	}

	if host := os.Getenv(APIHostEnv); host != "" {
		settings.APIHost = host
	}
	settings.APIHost = strings.TrimRight(settings.APIHost, "/")
	if settings.TableRows <= 0 {
		settings.TableRows = DefaultTableRows
	}

	return settings, nil
}

func decode(path string, data []byte, settings *Settings) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, settings); err != nil {
			return fmt.Errorf("failed to parse YAML settings: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
			return fmt.Errorf("failed to parse JSON settings: %w", err)
		}
	default:
		return fmt.Errorf("unsupported settings file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}
	return nil
}
