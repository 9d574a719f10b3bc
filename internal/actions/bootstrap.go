package actions

import (
	"context"

	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Bootstrap builds the startup state from settings and durable storage.
// A persisted theme wins over the configured one, and stored credentials
// sign the user in.
func Bootstrap(settings config.Settings, st storage.Storage) store.State {
	s := store.InitialState(types.Theme(settings.Theme))
	apply := store.DispatcherFunc(func(a store.Action) {
		s = store.Reduce(s, a)
	})

	if settings.Locale != "" {
		apply(SetLocale(settings.Locale))
	}
	SetThemeFromStorage(st)(context.Background(), apply)
	if apiKey, serverAddress, ok := storage.Credentials(st); ok {
		apply(store.SignUserIn{APIKey: apiKey, ServerAddress: serverAddress})
	}
	return s
}
