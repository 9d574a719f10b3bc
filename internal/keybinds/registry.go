package keybinds

import (
	"maps"
	"slices"
	"strings"
)

// Binding is one key bound to an action in a context
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry maps keys to actions per context. It is owned by the TUI
// goroutine and not safe for concurrent use.
type Registry struct {
	bindings map[Context]map[string]Action

	// first key of a half-typed sequence such as "gg", per context
	pending map[Context]string
}

// NewRegistry returns a registry without bindings
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register binds key to action in context, replacing any previous action
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple binds every key in keys to action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, k := range keys {
		r.Register(context, k, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for k, a := range r.bindings[context] {
		if a == action {
			delete(r.bindings[context], k)
		}
	}
}

// Match resolves key in context, then in the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	for _, c := range []Context{context, ContextGlobal} {
		if action, ok := r.bindings[c][key]; ok {
			return action, true
		}
	}
	return "", false
}

// MatchMultiKey is Match with support for two-key sequences. partial is
// true when key opened a sequence and the next key completes it; a
// sequence that does not complete matches nothing.
func (r *Registry) MatchMultiKey(context Context, key string) (action Action, ok, partial bool) {
	if first, waiting := r.pending[context]; waiting {
		delete(r.pending, context)
		action, ok = r.Match(context, first+key)
		return action, ok, false
	}

	if r.opensSequence(context, key) {
		r.pending[context] = key
		return "", false, true
	}

	action, ok = r.Match(context, key)
	return action, ok, false
}

// opensSequence reports whether key is unbound on its own but starts a
// bound sequence
func (r *Registry) opensSequence(context Context, key string) bool {
	if len(key) != 1 {
		return false
	}
	ctx := r.bindings[context]
	if _, bound := ctx[key]; bound {
		return false
	}
	for k := range ctx {
		if isSequence(k) && k[0] == key[0] {
			return true
		}
	}
	return false
}

// isSequence reports whether k is a two-key sequence like "gg"
func isSequence(k string) bool {
	return len(k) == 2 && !strings.Contains(k, "+")
}

// Keys returns the sorted keys bound to action in context, or in the global
// context when context has none
func (r *Registry) Keys(context Context, action Action) []string {
	if keys := keysFor(r.bindings[context], action); len(keys) > 0 {
		return keys
	}
	return keysFor(r.bindings[ContextGlobal], action)
}

func keysFor(bindings map[string]Action, action Action) []string {
	var keys []string
	for k, a := range bindings {
		if a == action {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// KeyString joins the keys of action with "/" for help text
func (r *Registry) KeyString(context Context, action Action) string {
	if keys := r.Keys(context, action); len(keys) > 0 {
		return strings.Join(keys, "/")
	}
	return "unbound"
}

// Bindings lists context's bindings and then the global ones, each group
// sorted by key
func (r *Registry) Bindings(context Context) []Binding {
	contexts := []Context{context}
	if context != ContextGlobal {
		contexts = append(contexts, ContextGlobal)
	}

	var out []Binding
	for _, c := range contexts {
		for _, k := range slices.Sorted(maps.Keys(r.bindings[c])) {
			out = append(out, Binding{Key: k, Action: r.bindings[c][k], Context: c})
		}
	}
	return out
}

// HasBinding reports whether key resolves to an action in context
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}
