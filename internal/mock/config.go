package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// codec reads and writes one config file format
type codec struct {
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

var codecs = map[string]codec{
	".yaml": {yaml.Unmarshal, yaml.Marshal},
	".yml":  {yaml.Unmarshal, yaml.Marshal},
	".json": {json.Unmarshal, marshalJSON},
	".jsonc": {
		func(data []byte, v any) error { return json.Unmarshal(jsonc.ToJSON(data), v) },
		marshalJSON,
	},
}

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func codecFor(path string) (codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := codecs[ext]
	if !ok {
		return codec{}, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}
	return c, nil
}

// LoadConfig reads a mock configuration. Fields missing from the file
// keep the values of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := c.unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig serves the built-in backend on the default API host
func DefaultConfig() *Config {
	return &Config{
		Port:    DefaultPort,
		Host:    "localhost",
		Prefix:  DefaultPrefix,
		Logging: true,
	}
}

// ExampleConfig is DefaultConfig plus one static route, written by
// `mock-server --write-config`
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.OrgUID = "org-1"
	cfg.Routes = []Route{{
		Name:        "reject tokenization",
		Method:      http.MethodPost,
		Path:        "/tokenize",
		Status:      http.StatusBadRequest,
		Body:        `{"message":"Unit not available for tokenization","errors":["locked"]}`,
		Description: "Remove this route to let the built-in backend tokenize",
	}}
	return cfg
}

func validateConfig(cfg *Config) error {
	if cfg.Prefix != "" && !strings.HasPrefix(cfg.Prefix, "/") {
		return fmt.Errorf("prefix must start with '/'")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}

	for i, route := range cfg.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		if route.Status != 0 && (route.Status < 100 || route.Status > 599) {
			return fmt.Errorf("route %d: invalid status %d", i, route.Status)
		}
		switch route.PathType {
		case "", "exact", "prefix":
		case "regex":
			if _, err := regexp.Compile(route.Path); err != nil {
				return fmt.Errorf("route %d: invalid path regex: %w", i, err)
			}
		default:
			return fmt.Errorf("route %d: pathType must be 'exact', 'prefix', or 'regex'", i)
		}
	}

	return nil
}

// SaveConfig writes cfg in the format given by the path extension
func SaveConfig(cfg *Config, path string) error {
	c, err := codecFor(path)
	if err != nil {
		return err
	}

	data, err := c.marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
