package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInitialState(t *testing.T) {
	s := InitialState("")
	assert.Equal(t, types.ThemeLight, s.Theme)
	assert.True(t, s.ConnectionCheck)
	assert.False(t, s.ShowProgressOverlay)
	assert.False(t, s.SignedIn())
	assert.Nil(t, s.UntokenizedUnits)
	assert.Nil(t, s.Locale)

	assert.Equal(t, types.ThemeDark, InitialState(types.ThemeDark).Theme)
}

func TestReduce(t *testing.T) {
	units := []types.Unit{{WarehouseUnitID: "u1"}}
	projects := []types.Project{{WarehouseProjectID: "p1"}}
	detok := types.DetokenizationResult{"unit": []byte(`{}`)}
	note := &types.Notification{ID: "tokens-not-loaded", Type: types.NotificationError, Key: "k"}

	tests := []struct {
		name   string
		action Action
		check  func(t *testing.T, s State)
	}{
		{"activate loader", ActivateProgressIndicator{}, func(t *testing.T, s State) {
			assert.True(t, s.ShowProgressOverlay)
		}},
		{"deactivate loader", DeactivateProgressIndicator{}, func(t *testing.T, s State) {
			assert.False(t, s.ShowProgressOverlay)
		}},
		{"toggle theme", ToggleTheme{}, func(t *testing.T, s State) {
			assert.Equal(t, types.ThemeDark, s.Theme)
		}},
		{"set theme", SetTheme{Theme: types.ThemeDark}, func(t *testing.T, s State) {
			assert.Equal(t, types.ThemeDark, s.Theme)
		}},
		{"set invalid theme", SetTheme{Theme: "purple"}, func(t *testing.T, s State) {
			assert.Equal(t, types.ThemeLight, s.Theme)
		}},
		{"set error message", SetGlobalErrorMessage{Message: "offline"}, func(t *testing.T, s State) {
			require.NotNil(t, s.ErrorMessage)
			assert.Equal(t, "offline", *s.ErrorMessage)
		}},
		{"clear error message", ClearGlobalErrorMessage{}, func(t *testing.T, s State) {
			assert.Nil(t, s.ErrorMessage)
		}},
		{"supported locale", NewSetLocale("fr-FR"), func(t *testing.T, s State) {
			require.NotNil(t, s.Locale)
			assert.Equal(t, "fr-FR", *s.Locale)
		}},
		{"unsupported locale", NewSetLocale("xx-XX"), func(t *testing.T, s State) {
			require.NotNil(t, s.Locale)
			assert.Equal(t, "en-US", *s.Locale)
		}},
		{"connection lost", ConnectionCheck{Reachable: false}, func(t *testing.T, s State) {
			assert.False(t, s.ConnectionCheck)
		}},
		{"notification", SetNotification{Notification: note}, func(t *testing.T, s State) {
			assert.Equal(t, note, s.Notification)
		}},
		{"refresh", RefreshApp{Render: true}, func(t *testing.T, s State) {
			assert.True(t, s.Refresh)
		}},
		{"untokenized units", SetUntokenizedUnits{Units: units}, func(t *testing.T, s State) {
			assert.Equal(t, units, s.UntokenizedUnits)
			assert.Nil(t, s.Tokens)
		}},
		{"untokenized count", SetUntokenizedUnitsCount{Count: 7}, func(t *testing.T, s State) {
			require.NotNil(t, s.UntokenizedUnitsCount)
			assert.Equal(t, 7, *s.UntokenizedUnitsCount)
		}},
		{"tokens", SetTokens{Units: units}, func(t *testing.T, s State) {
			assert.Equal(t, units, s.Tokens)
			assert.Nil(t, s.UntokenizedUnits)
		}},
		{"tokens count", SetTokensCount{Count: 0}, func(t *testing.T, s State) {
			require.NotNil(t, s.TokensCount)
			assert.Zero(t, *s.TokensCount)
		}},
		{"pagination", SetPaginationNrOfPages{Pages: 3}, func(t *testing.T, s State) {
			require.NotNil(t, s.PaginationNrOfPages)
			assert.Equal(t, 3, *s.PaginationNrOfPages)
		}},
		{"projects", SetProjects{Projects: projects}, func(t *testing.T, s State) {
			assert.Equal(t, projects, s.Projects)
		}},
		{"sign in", SignUserIn{APIKey: "k", ServerAddress: "http://srv"}, func(t *testing.T, s State) {
			assert.True(t, s.SignedIn())
			assert.Equal(t, "k", *s.APIKey)
			assert.Equal(t, "http://srv", *s.ServerAddress)
		}},
		{"sign out", SignUserOut{}, func(t *testing.T, s State) {
			assert.False(t, s.SignedIn())
		}},
		{"home org", NewSetHomeOrg("org-1"), func(t *testing.T, s State) {
			require.NotNil(t, s.HomeOrgUID)
			assert.Equal(t, "org-1", *s.HomeOrgUID)
		}},
		{"clear home org", NewSetHomeOrg(""), func(t *testing.T, s State) {
			assert.Nil(t, s.HomeOrgUID)
		}},
		{"unit to be detokenized", SetUnitToBeDetokenized{Unit: detok}, func(t *testing.T, s State) {
			assert.Equal(t, detok, s.UnitToBeDetokenized)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(InitialState(types.ThemeLight), tt.action))
		})
	}
}

type unknownAction struct{}

func (unknownAction) ActionType() string { return "UNKNOWN" }

func TestReduceUnknownActionKeepsState(t *testing.T) {
	s := Reduce(InitialState(types.ThemeDark), SetTokensCount{Count: 4})
	assert.Equal(t, s, Reduce(s, unknownAction{}))
}

func TestReduceDoesNotMutatePrevious(t *testing.T) {
	prev := Reduce(InitialState(types.ThemeLight), SignUserIn{APIKey: "a", ServerAddress: "b"})
	next := Reduce(prev, SignUserOut{})

	assert.True(t, prev.SignedIn())
	assert.False(t, next.SignedIn())
}

func newStarted(t *testing.T, initial State, opts ...Option) *Store {
	t.Helper()
	s := New(initial, opts...)
	s.Start(context.Background())
	t.Cleanup(s.Close)
	return s
}

func TestToggleThemeAlternatesAndPersists(t *testing.T) {
	st := storage.NewMemory()
	s := newStarted(t, InitialState(types.ThemeLight), WithEffect(PersistTheme(st, zerolog.Nop())))
	ctx := context.Background()

	want := types.ThemeLight
	for i := 0; i < 7; i++ {
		s.Dispatch(ToggleTheme{})
		require.NoError(t, s.Sync(ctx))
		want = want.Toggle()

		assert.Equal(t, want, s.State().Theme)
		stored, err := st.Get(storage.KeyTheme)
		require.NoError(t, err)
		assert.Equal(t, string(want), stored)
	}
}

func TestPersistThemeIgnoresOtherActions(t *testing.T) {
	st := storage.NewMemory()
	s := newStarted(t, InitialState(types.ThemeLight), WithEffect(PersistTheme(st, zerolog.Nop())))

	s.Dispatch(SetTheme{Theme: types.ThemeDark})
	s.Dispatch(ActivateProgressIndicator{})
	require.NoError(t, s.Sync(context.Background()))

	assert.Zero(t, st.Writes())
}

func TestStoreLastWriteWins(t *testing.T) {
	s := newStarted(t, InitialState(types.ThemeLight))

	for i := 1; i <= 50; i++ {
		s.Dispatch(SetPaginationNrOfPages{Pages: i})
	}
	require.NoError(t, s.Sync(context.Background()))

	require.NotNil(t, s.State().PaginationNrOfPages)
	assert.Equal(t, 50, *s.State().PaginationNrOfPages)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s := newStarted(t, InitialState(types.ThemeLight))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(ActivateProgressIndicator{})
			s.Dispatch(DeactivateProgressIndicator{})
		}()
	}
	wg.Wait()
	require.NoError(t, s.Sync(context.Background()))

	assert.False(t, s.State().ShowProgressOverlay)
}

func TestStoreSubscribe(t *testing.T) {
	s := newStarted(t, InitialState(types.ThemeLight))
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Dispatch(SetTokensCount{Count: 1})
	s.Dispatch(SetTokensCount{Count: 2})
	require.NoError(t, s.Sync(context.Background()))

	select {
	case got := <-ch:
		require.NotNil(t, got.TokensCount)
		assert.Equal(t, 2, *got.TokensCount)
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}
}

func TestStoreCloseClosesSubscriptions(t *testing.T) {
	s := New(InitialState(types.ThemeLight))
	s.Start(context.Background())
	ch, unsubscribe := s.Subscribe()

	s.Close()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	// dispatch after close is dropped, not blocked
	s.Dispatch(ToggleTheme{})
	assert.Equal(t, types.ThemeLight, s.State().Theme)
}

func TestStoreStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(InitialState(types.ThemeLight))
	s.Start(ctx)
	cancel()
	s.Close()
}

func TestCloseWithoutStart(t *testing.T) {
	s := New(InitialState(types.ThemeLight))
	s.Close()
	assert.NoError(t, s.Sync(context.Background()))
}

func TestLogNotificationsEffect(t *testing.T) {
	var calls int
	counting := func(prev, next State, a Action) {
		if _, ok := a.(SetNotification); ok {
			calls++
		}
	}
	s := newStarted(t, InitialState(types.ThemeLight),
		WithEffect(LogNotifications(zerolog.Nop())),
		WithEffect(counting),
	)

	s.Dispatch(SetNotification{Notification: &types.Notification{ID: "x", Type: types.NotificationError}})
	s.Dispatch(SetNotification{})
	require.NoError(t, s.Sync(context.Background()))

	assert.Equal(t, 2, calls)
	assert.Nil(t, s.State().Notification)
}
