package store

import (
	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/types"
)

// PersistTheme writes the theme to durable storage whenever it is toggled.
// The stored value is the reduced one, so storage and state never disagree.
func PersistTheme(st storage.Storage, log zerolog.Logger) Effect {
	return func(prev, next State, a Action) {
		if _, ok := a.(ToggleTheme); !ok {
			return
		}
		if err := st.Set(storage.KeyTheme, string(next.Theme)); err != nil {
			log.Error().Err(err).Str("theme", string(next.Theme)).Msg("failed to persist theme")
		}
	}
}

// LogNotifications traces every notification that reaches the state
func LogNotifications(log zerolog.Logger) Effect {
	return func(prev, next State, a Action) {
		n, ok := a.(SetNotification)
		if !ok || n.Notification == nil {
			return
		}
		ev := log.Info()
		if n.Notification.Type == types.NotificationError {
			ev = log.Warn()
		}
		ev.Str("type", string(n.Notification.Type)).Str("id", n.Notification.ID).Msg("notification")
	}
}
