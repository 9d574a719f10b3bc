package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/tidwall/jsonc"
)

// FileName is the keybinding override file inside the config directory
const FileName = "keybinds.jsonc"

// Config is the user's keybinding configuration.
// Each section maps an action to a comma separated list of keys; a section
// entry replaces every default key of that action in that context.
type Config struct {
	Version   string            `json:"version"`
	Global    map[string]string `json:"global,omitempty"`
	Normal    map[string]string `json:"normal,omitempty"`
	Inspect   map[string]string `json:"inspect,omitempty"`
	TextInput map[string]string `json:"text_input,omitempty"`
	Confirm   map[string]string `json:"confirm,omitempty"`
	Help      map[string]string `json:"help,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:    c.Global,
		ContextNormal:    c.Normal,
		ContextInspect:   c.Inspect,
		ContextTextInput: c.TextInput,
		ContextConfirm:   c.Confirm,
		ContextHelp:      c.Help,
	}
}

// LoadConfig loads keybinding configuration from a JSON or JSONC file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, config.FilePermissions)
}

// ApplyConfig applies user configuration to a registry.
// Unknown actions and empty keys are rejected.
func ApplyConfig(registry *Registry, cfg *Config) error {
	for context, section := range cfg.sections() {
		for actionStr, keyList := range section {
			action := Action(actionStr)
			if !IsKnown(action) {
				if guess := suggestAction(actionStr); guess != "" {
					return fmt.Errorf("unknown action %q in context '%s' (did you mean %q?)", actionStr, context, guess)
				}
				return fmt.Errorf("unknown action %q in context '%s'", actionStr, context)
			}
			keys := splitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("action %q in context '%s': %w", actionStr, context, err)
				}
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return nil
}

// suggestAction returns the known action closest to name, or ""
func suggestAction(name string) string {
	names := make([]string, 0, len(Descriptions))
	for a := range Descriptions {
		names = append(names, string(a))
	}
	sort.Strings(names)

	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		// a lone space is a valid key, so only trim around other keys
		if k != " " {
			k = strings.TrimSpace(k)
		}
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadOrDefault loads user config if it exists, otherwise returns the
// default registry
func LoadOrDefault(path string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(path); err != nil {
		return registry, nil
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}
	if err := ApplyConfig(registry, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	return registry, nil
}

// DefaultConfigPath returns the keybinding file inside config.ConfigDir
func DefaultConfigPath() string {
	return filepath.Join(config.ConfigDir, FileName)
}

// ExportDefaults renders registry as a config, one entry per action
func ExportDefaults(registry *Registry) *Config {
	cfg := &Config{Version: "1.0"}
	sections := map[Context]*map[string]string{
		ContextGlobal:    &cfg.Global,
		ContextNormal:    &cfg.Normal,
		ContextInspect:   &cfg.Inspect,
		ContextTextInput: &cfg.TextInput,
		ContextConfirm:   &cfg.Confirm,
		ContextHelp:      &cfg.Help,
	}

	for context, section := range sections {
		byAction := make(map[Action][]string)
		for key, action := range registry.bindings[context] {
			byAction[action] = append(byAction[action], key)
		}
		if len(byAction) == 0 {
			continue
		}
		*section = make(map[string]string, len(byAction))
		for action := range byAction {
			(*section)[string(action)] = strings.Join(keysFor(registry.bindings[context], action), ",")
		}
	}

	return cfg
}
