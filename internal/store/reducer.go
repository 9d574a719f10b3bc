package store

// Reduce applies a to s and returns the resulting state.
// It has no side effects; persistence triggered by an action is handled by
// the store's effects after the new state is known.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetHomeOrg:
		s.HomeOrgUID = a.OrgUID

	case SetTokensCount:
		s.TokensCount = ptr(a.Count)

	case SetUntokenizedUnitsCount:
		s.UntokenizedUnitsCount = ptr(a.Count)

	case SetUnitToBeDetokenized:
		s.UnitToBeDetokenized = a.Unit

	case SetProjects:
		s.Projects = a.Projects

	case SetUntokenizedUnits:
		s.UntokenizedUnits = a.Units

	case SetTokens:
		s.Tokens = a.Units

	case SetPaginationNrOfPages:
		s.PaginationNrOfPages = ptr(a.Pages)

	case RefreshApp:
		s.Refresh = a.Render

	case ActivateProgressIndicator:
		s.ShowProgressOverlay = true

	case DeactivateProgressIndicator:
		s.ShowProgressOverlay = false

	case SetGlobalErrorMessage:
		s.ErrorMessage = ptr(a.Message)

	case ClearGlobalErrorMessage:
		s.ErrorMessage = nil

	case SetLocale:
		s.Locale = ptr(a.Locale)

	case SetTheme:
		if !a.Theme.Valid() {
			return s
		}
		s.Theme = a.Theme

	case ToggleTheme:
		s.Theme = s.Theme.Toggle()

	case ConnectionCheck:
		s.ConnectionCheck = a.Reachable

	case SetNotification:
		s.Notification = a.Notification

	case SignUserIn:
		s.APIKey = ptr(a.APIKey)
		s.ServerAddress = ptr(a.ServerAddress)

	case SignUserOut:
		s.APIKey = nil
		s.ServerAddress = nil
	}

	return s
}
