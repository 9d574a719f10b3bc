package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal    Context = "global"     // Available everywhere
	ContextNormal    Context = "normal"     // Unit listing
	ContextInspect   Context = "inspect"    // Unit record viewer
	ContextTextInput Context = "text_input" // Search, sign-in and other forms
	ContextConfirm   Context = "confirm"    // Detokenization confirmation
	ContextHelp      Context = "help"       // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionNextPage     Action = "next_page" // Next page of units (server side)
	ActionPrevPage     Action = "prev_page"
	ActionSwitchTab    Action = "switch_tab" // Untokenized units <-> tokens

	// Listing actions
	ActionRefresh     Action = "refresh"
	ActionOpenSearch  Action = "open_search"
	ActionClearSearch Action = "clear_search"
	ActionToggleOrder Action = "toggle_order"
	ActionToggleTheme Action = "toggle_theme"
	ActionOpenInspect Action = "open_inspect"
	ActionCopyUnitID  Action = "copy_unit_id"
	ActionOpenHelp    Action = "open_help"

	// Backend operations
	ActionSignIn     Action = "sign_in"
	ActionSignOut    Action = "sign_out"
	ActionImportOrg  Action = "import_org"
	ActionTokenize   Action = "tokenize"
	ActionDetokenize Action = "detokenize"

	// Modal actions
	ActionCloseModal Action = "close_modal"
	ActionScrollUp   Action = "scroll_up"
	ActionScrollDown Action = "scroll_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"

	// Text input actions
	ActionTextSubmit    Action = "text_submit"
	ActionTextCancel    Action = "text_cancel"
	ActionTextNextField Action = "text_next_field"
)

// Descriptions are the short labels shown in the help views
var Descriptions = map[Action]string{
	ActionQuit:          "quit",
	ActionQuitForce:     "force quit",
	ActionNavigateUp:    "up",
	ActionNavigateDown:  "down",
	ActionGoToTop:       "top",
	ActionGoToBottom:    "bottom",
	ActionNextPage:      "next page",
	ActionPrevPage:      "previous page",
	ActionSwitchTab:     "switch tab",
	ActionRefresh:       "refresh",
	ActionOpenSearch:    "search",
	ActionClearSearch:   "clear search",
	ActionToggleOrder:   "sort by vintage",
	ActionToggleTheme:   "theme",
	ActionOpenInspect:   "inspect",
	ActionCopyUnitID:    "copy unit id",
	ActionOpenHelp:      "help",
	ActionSignIn:        "sign in",
	ActionSignOut:       "sign out",
	ActionImportOrg:     "import home org",
	ActionTokenize:      "tokenize",
	ActionDetokenize:    "detokenize",
	ActionCloseModal:    "close",
	ActionScrollUp:      "scroll up",
	ActionScrollDown:    "scroll down",
	ActionPageUp:        "page up",
	ActionPageDown:      "page down",
	ActionConfirm:       "confirm",
	ActionCancel:        "cancel",
	ActionTextSubmit:    "submit",
	ActionTextCancel:    "cancel",
	ActionTextNextField: "next field",
}

// IsKnown reports whether a is an action the TUI handles
func IsKnown(a Action) bool {
	_, ok := Descriptions[a]
	return ok
}

// AllContexts lists every context in display order
func AllContexts() []Context {
	return []Context{ContextGlobal, ContextNormal, ContextInspect, ContextTextInput, ContextConfirm, ContextHelp}
}
