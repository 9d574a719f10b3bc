/*
Package keybinds provides customizable keyboard binding management for the
TUI.

# Overview

Keys map to actions within a context. A key that is not bound in the
active context falls back to the global context, so ctrl+c quits from
anywhere.

Contexts:
  - global: available everywhere
  - normal: the unit listing
  - inspect: the unit record viewer
  - text_input: search, sign-in, tokenize and detokenize forms
  - confirm: detokenization confirmation
  - help: the help viewer

# Components

Registry (registry.go):
  - Context-aware key matching with global fallback
  - Two-key sequences such as "gg"

Defaults (defaults.go):
  - The bindings used when no override file exists

Validator (validator.go):
  - Reserved keys (ctrl+c) cannot be rebound
  - Every modal keeps a way out (close, submit, cancel)
  - Warns about shadowed globals and unreachable sequences

# Configuration File Format

Overrides live in ~/.tokenctl/keybinds.jsonc. Each entry maps an action to
a comma separated key list and replaces the default keys of that action:

	{
	  // vim users
	  "normal": {
	    "next_page": "ctrl+f",
	    "prev_page": "ctrl+b"
	  },
	  "inspect": {
	    "close_modal": "esc,q"
	  }
	}

Comments and trailing commas are accepted.
*/
package keybinds
