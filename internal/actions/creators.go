package actions

import (
	"context"

	"github.com/google/uuid"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

func SetUnitToBeDetokenized(unit types.DetokenizationResult) store.Action {
	return store.SetUnitToBeDetokenized{Unit: unit}
}

func RefreshApp(render bool) store.Action {
	return store.RefreshApp{Render: render}
}

func SetHomeOrg(orgUID string) store.Action {
	return store.NewSetHomeOrg(orgUID)
}

func SetPaginationNrOfPages(pages int) store.Action {
	return store.SetPaginationNrOfPages{Pages: pages}
}

func SetUntokenizedUnits(units []types.Unit) store.Action {
	return store.SetUntokenizedUnits{Units: units}
}

func SetUntokenizedUnitsCount(count int) store.Action {
	return store.SetUntokenizedUnitsCount{Count: count}
}

func SetProjects(projects []types.Project) store.Action {
	return store.SetProjects{Projects: projects}
}

func SetTokens(units []types.Unit) store.Action {
	return store.SetTokens{Units: units}
}

func SetTokensCount(count int) store.Action {
	return store.SetTokensCount{Count: count}
}

func ActivateProgressIndicator() store.Action {
	return store.ActivateProgressIndicator{}
}

func DeactivateProgressIndicator() store.Action {
	return store.DeactivateProgressIndicator{}
}

func ToggleTheme() store.Action {
	return store.ToggleTheme{}
}

func SetGlobalErrorMessage(message string) store.Action {
	return store.SetGlobalErrorMessage{Message: message}
}

func ClearGlobalErrorMessage() store.Action {
	return store.ClearGlobalErrorMessage{}
}

func SetConnectionCheck(reachable bool) store.Action {
	return store.ConnectionCheck{Reachable: reachable}
}

// SetLocale falls back to the default locale for unsupported codes
func SetLocale(code string) store.Action {
	return store.NewSetLocale(code)
}

// SetThemeFromStorage applies the persisted theme, if one is stored
func SetThemeFromStorage(st storage.Storage) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		value, err := st.Get(storage.KeyTheme)
		if err != nil {
			return
		}
		theme := types.Theme(value)
		if !theme.Valid() {
			return
		}
		d.Dispatch(store.SetTheme{Theme: theme})
	}
}

// SetNotificationMessage shows a toast. Error and success accept any id,
// the empty one included. The null type with an empty id clears the
// current toast; an unknown type is ignored.
func SetNotificationMessage(typ types.NotificationType, id string) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		notifyIfValid(d, typ, id)
	}
}

func notifyIfValid(d store.Dispatcher, typ types.NotificationType, id string) {
	switch {
	case typ == types.NotificationNull && id == "":
		d.Dispatch(store.SetNotification{})
	case typ.Valid():
		d.Dispatch(store.SetNotification{Notification: &types.Notification{
			ID:   id,
			Type: typ,
			Key:  uuid.NewString(),
		}})
	}
}
