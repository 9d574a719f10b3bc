package keybinds

import (
	"fmt"
	"slices"
	"strings"
)

// Issue kinds reported by the validator
const (
	KindConflict = "conflict"
	KindInvalid  = "invalid"
	KindWarning  = "warning"
)

// ValidationError is one finding about a binding
type ValidationError struct {
	Type    string // KindConflict, KindInvalid or KindWarning
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult groups findings; only Errors make a config unusable
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (r *ValidationResult) fail(kind string, ctx Context, key, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Type: kind, Context: ctx, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(ctx Context, key, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Type: KindWarning, Context: ctx, Key: key, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether the config must be rejected
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String renders the findings for `tokenctl keybinds check`
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "No issues found"
	}

	var sb strings.Builder
	section := func(title string, items []ValidationError) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s (%d):\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(&sb, "  - %s\n", it.Error())
		}
	}
	section("Errors", r.Errors)
	section("Warnings", r.Warnings)
	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys are global keys that must keep their action
	reservedKeys map[string]Action

	// required actions must stay reachable in their context
	required map[Context][]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
		required: map[Context][]Action{
			ContextTextInput: {ActionTextSubmit, ActionTextCancel},
			ContextInspect:   {ActionCloseModal},
			ContextConfirm:   {ActionConfirm, ActionCancel},
			ContextHelp:      {ActionCloseModal},
		},
	}
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{}

	v.checkReservedKeys(registry, result)
	v.checkRequiredActions(registry, result)
	v.checkSequences(registry, result)
	v.checkShadowing(registry, result)

	return result
}

// ValidateConfig applies config over the defaults and validates the result
func (v *Validator) ValidateConfig(cfg *Config) *ValidationResult {
	registry := NewDefaultRegistry()
	if err := ApplyConfig(registry, cfg); err != nil {
		result := &ValidationResult{}
		result.fail(KindInvalid, "", "", "%v", err)
		return result
	}
	return v.ValidateRegistry(registry)
}

// checkReservedKeys reports reserved keys bound to another action anywhere
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for _, context := range sortedContexts(registry) {
		for key, action := range registry.bindings[context] {
			want, reserved := v.reservedKeys[key]
			if reserved && action != want {
				result.fail(KindConflict, context, key, "reserved for %s", want)
			}
		}
	}
}

// checkRequiredActions reports forms and dialogs that could not be left
func (v *Validator) checkRequiredActions(registry *Registry, result *ValidationResult) {
	for _, context := range sortedKeys(v.required) {
		for _, action := range v.required[context] {
			if len(registry.Keys(context, action)) == 0 {
				result.fail(KindInvalid, context, "", "action %s has no key", action)
			}
		}
	}
}

// checkSequences warns when a two-key sequence can never complete because
// its first key is bound on its own
func (v *Validator) checkSequences(registry *Registry, result *ValidationResult) {
	for _, context := range sortedContexts(registry) {
		bindings := registry.bindings[context]
		for key := range bindings {
			if !isSequence(key) {
				continue
			}
			if _, single := bindings[key[:1]]; single {
				result.warn(context, key, "unreachable, '%s' is bound on its own", key[:1])
			}
		}
	}
}

// checkShadowing checks for context bindings that hide global bindings
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	globalBindings := registry.bindings[ContextGlobal]
	for _, context := range sortedContexts(registry) {
		if context == ContextGlobal {
			continue
		}
		for key, action := range registry.bindings[context] {
			if global, ok := globalBindings[key]; ok && action != global {
				result.warn(context, key, "shadows global binding (%s -> %s)", global, action)
			}
		}
	}
}

func sortedContexts(registry *Registry) []Context {
	return sortedKeys(registry.bindings)
}

func sortedKeys[V any](m map[Context]V) []Context {
	keys := make([]Context, 0, len(m))
	for c := range m {
		keys = append(keys, c)
	}
	slices.Sort(keys)
	return keys
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	return nil
}
