/*
Package tui implements the terminal user interface for tokenctl.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern on top of the
application store:
  - The store owns the state tree; the Model keeps the latest snapshot and
    view state only (tab, page, search, forms, cursor)
  - Thunks run on the actions.Client and dispatch into the store
  - Store snapshots arrive through a subscription as stateMsg values and
    are applied in Update

# Key Components

  - model.go: Model, Update and View, and applyState which derives the
    view from a snapshot (theme, toasts, confirmation, refresh)
  - keys.go: keyboard routing per mode and the form submissions
  - render.go: table, tabs, footer, inspect and help rendering
  - sync_state.go: bridge from the store subscription into Bubble Tea
  - init.go: construction from Options and Run

# Modes

  - ModeNormal: unit listing
  - ModeSearch, ModeSignIn, ModeImportOrg, ModeTokenize, ModeDetokenize:
    forms driven by text inputs
  - ModeInspect: JSON record viewer for the selected unit
  - ModeConfirmDetok: opened when a parsed detokenization is pending
  - ModeHelp: key reference

# Keybindings

Keys are resolved through a keybinds.Registry per context. A
keybinds.jsonc file in the config directory overrides the defaults.
*/
package tui
