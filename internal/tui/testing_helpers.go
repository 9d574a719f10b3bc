package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/storage"
)

// CreateTestModel creates a Model answering from fixtures, backed by
// in-memory storage and sized like a regular terminal
func CreateTestModel(t *testing.T) (*Model, *storage.Memory) {
	t.Helper()

	settings := config.Defaults()
	settings.Mocked = true
	st := storage.NewMemory()

	m := New(Options{
		Settings: settings,
		Storage:  st,
		Fetcher:  api.NewFixtureFetcher(),
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(m.Cleanup)

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return m, st
}

// Settle waits for running thunks and feeds the resulting snapshot to the
// model until no refresh is pending
func Settle(t *testing.T, m *Model) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for range 5 {
		m.client.Wait()
		if err := m.store.Sync(ctx); err != nil {
			t.Fatalf("store did not settle: %v", err)
		}
		next := m.store.State()
		m.applyState(next)
		if !next.Refresh {
			return
		}
	}
	t.Fatal("refresh kept being requested")
}

// PressKey sends a key to the model the way Bubble Tea reports it
func PressKey(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// TypeText types s into the focused input one rune at a time
func TypeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// AssertModelField compares a model field against its expected value
func AssertModelField[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
