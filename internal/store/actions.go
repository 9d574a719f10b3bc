package store

import (
	"github.com/studiowebux/tokenctl/internal/locale"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Action describes a state change. ActionType returns the stable name used
// in logs.
type Action interface {
	ActionType() string
}

// Dispatcher accepts actions
type Dispatcher interface {
	Dispatch(Action)
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(Action)

// Dispatch calls f(a)
func (f DispatcherFunc) Dispatch(a Action) { f(a) }

type (
	ActivateProgressIndicator   struct{}
	DeactivateProgressIndicator struct{}
	ToggleTheme                 struct{}
	ClearGlobalErrorMessage     struct{}
	SignUserOut                 struct{}

	SetTheme struct {
		Theme types.Theme
	}
	SetGlobalErrorMessage struct {
		Message string
	}
	SetLocale struct {
		Locale string
	}
	ConnectionCheck struct {
		Reachable bool
	}
	// SetNotification with a nil Notification clears the current toast
	SetNotification struct {
		Notification *types.Notification
	}
	RefreshApp struct {
		Render bool
	}
	SetUntokenizedUnits struct {
		Units []types.Unit
	}
	SetUntokenizedUnitsCount struct {
		Count int
	}
	SetTokens struct {
		Units []types.Unit
	}
	SetTokensCount struct {
		Count int
	}
	SetPaginationNrOfPages struct {
		Pages int
	}
	SetProjects struct {
		Projects []types.Project
	}
	SignUserIn struct {
		APIKey        string
		ServerAddress string
	}
	// SetHomeOrg with a nil OrgUID clears the home organization
	SetHomeOrg struct {
		OrgUID *string
	}
	// SetUnitToBeDetokenized with a nil Unit clears the pending record
	SetUnitToBeDetokenized struct {
		Unit types.DetokenizationResult
	}
)

func (ActivateProgressIndicator) ActionType() string   { return "ACTIVATE_PROGRESS_INDICATOR" }
func (DeactivateProgressIndicator) ActionType() string { return "DEACTIVATE_PROGRESS_INDICATOR" }
func (ToggleTheme) ActionType() string                 { return "TOGGLE_THEME" }
func (SetTheme) ActionType() string                    { return "SET_THEME" }
func (SetGlobalErrorMessage) ActionType() string       { return "SET_GLOBAL_ERROR_MESSAGE" }
func (ClearGlobalErrorMessage) ActionType() string     { return "CLEAR_GLOBAL_ERROR_MESSAGE" }
func (SetLocale) ActionType() string                   { return "SET_LOCALE" }
func (ConnectionCheck) ActionType() string             { return "CONNECTION_CHECK" }
func (SetNotification) ActionType() string             { return "SET_NOTIFICATION" }
func (RefreshApp) ActionType() string                  { return "REFRESH_APP" }
func (SetUntokenizedUnits) ActionType() string         { return "SET_UNTOKENIZED_UNITS" }
func (SetUntokenizedUnitsCount) ActionType() string    { return "SET_UNTOKENIZED_UNITS_COUNT" }
func (SignUserIn) ActionType() string                  { return "SIGN_USER_IN" }
func (SignUserOut) ActionType() string                 { return "SIGN_USER_OUT" }
func (SetPaginationNrOfPages) ActionType() string      { return "SET_PAGINATION_NR_OF_PAGES" }
func (SetTokens) ActionType() string                   { return "SET_TOKENS" }
func (SetTokensCount) ActionType() string              { return "SET_TOKENS_COUNT" }
func (SetProjects) ActionType() string                 { return "SET_PROJECTS" }
func (SetHomeOrg) ActionType() string                  { return "SET_HOME_ORG" }
func (SetUnitToBeDetokenized) ActionType() string      { return "SET_UNIT_TO_BE_DETOKENIZED" }

// NewSetLocale builds a SET_LOCALE action, falling back to the default
// locale when code is not in the supported set.
func NewSetLocale(code string) SetLocale {
	return SetLocale{Locale: locale.Resolve(code)}
}

// NewSetHomeOrg builds a SET_HOME_ORG action; an empty uid clears it
func NewSetHomeOrg(uid string) SetHomeOrg {
	if uid == "" {
		return SetHomeOrg{}
	}
	return SetHomeOrg{OrgUID: &uid}
}
