package keybinds

// defaultBinding lists the keys of one action in one context
type defaultBinding struct {
	context Context
	action  Action
	keys    []string
}

var defaultBindings = []defaultBinding{
	{ContextGlobal, ActionQuitForce, []string{"ctrl+c"}},

	// unit listing
	{ContextNormal, ActionNavigateUp, []string{"up", "k"}},
	{ContextNormal, ActionNavigateDown, []string{"down", "j"}},
	{ContextNormal, ActionGoToTop, []string{"gg", "home"}},
	{ContextNormal, ActionGoToBottom, []string{"G", "end"}},
	{ContextNormal, ActionNextPage, []string{"right", "l", "n"}},
	{ContextNormal, ActionPrevPage, []string{"left", "h", "p"}},
	{ContextNormal, ActionSwitchTab, []string{"tab"}},
	{ContextNormal, ActionRefresh, []string{"r"}},
	{ContextNormal, ActionOpenSearch, []string{"/"}},
	{ContextNormal, ActionClearSearch, []string{"x"}},
	{ContextNormal, ActionToggleOrder, []string{"o"}},
	{ContextNormal, ActionToggleTheme, []string{"t"}},
	{ContextNormal, ActionOpenInspect, []string{"enter", "i"}},
	{ContextNormal, ActionCopyUnitID, []string{"y"}},
	{ContextNormal, ActionOpenHelp, []string{"?"}},
	{ContextNormal, ActionQuit, []string{"q"}},
	{ContextNormal, ActionSignIn, []string{"s"}},
	{ContextNormal, ActionSignOut, []string{"S"}},
	{ContextNormal, ActionImportOrg, []string{"O"}},
	{ContextNormal, ActionTokenize, []string{"T"}},
	{ContextNormal, ActionDetokenize, []string{"D"}},

	{ContextInspect, ActionCloseModal, []string{"esc", "q", "i"}},
	{ContextInspect, ActionScrollUp, []string{"up", "k"}},
	{ContextInspect, ActionScrollDown, []string{"down", "j"}},
	{ContextInspect, ActionPageUp, []string{"pgup"}},
	{ContextInspect, ActionPageDown, []string{"pgdown", " "}},
	{ContextInspect, ActionCopyUnitID, []string{"y"}},

	{ContextTextInput, ActionTextSubmit, []string{"enter"}},
	{ContextTextInput, ActionTextCancel, []string{"esc"}},
	{ContextTextInput, ActionTextNextField, []string{"tab", "shift+tab"}},

	// detokenization confirm
	{ContextConfirm, ActionConfirm, []string{"y", "Y", "enter"}},
	{ContextConfirm, ActionCancel, []string{"n", "N", "esc"}},
	{ContextConfirm, ActionScrollUp, []string{"up", "k"}},
	{ContextConfirm, ActionScrollDown, []string{"down", "j"}},

	{ContextHelp, ActionCloseModal, []string{"esc", "?", "q"}},
}

// NewDefaultRegistry returns a registry holding the built-in bindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range defaultBindings {
		r.RegisterMultiple(b.context, b.keys, b.action)
	}
	return r
}
