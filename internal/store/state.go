package store

import "github.com/studiowebux/tokenctl/internal/types"

// State is the whole application state tree.
// It is treated as an immutable value: the reducer returns a new State and
// never writes through the slices or pointers of the previous one.
type State struct {
	ShowProgressOverlay bool
	Theme               types.Theme
	ErrorMessage        *string
	Notification        *types.Notification
	Locale              *string
	ConnectionCheck     bool
	Refresh             bool

	UntokenizedUnits      []types.Unit
	UntokenizedUnitsCount *int
	Tokens                []types.Unit
	TokensCount           *int
	PaginationNrOfPages   *int
	Projects              []types.Project

	APIKey        *string
	ServerAddress *string
	HomeOrgUID    *string

	UnitToBeDetokenized types.DetokenizationResult
}

// InitialState returns the defaults the application starts from
func InitialState(theme types.Theme) State {
	if !theme.Valid() {
		theme = types.ThemeLight
	}
	return State{
		Theme:           theme,
		ConnectionCheck: true,
	}
}

// SignedIn reports whether both credentials are present
func (s State) SignedIn() bool {
	return s.APIKey != nil && s.ServerAddress != nil
}

// Units returns the slice selected by unitsType
func (s State) Units(unitsType types.UnitsType) []types.Unit {
	if unitsType == types.UnitsTokens {
		return s.Tokens
	}
	return s.UntokenizedUnits
}

func ptr[T any](v T) *T {
	return &v
}
