package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/types"
)

func loadedModel(t *testing.T) (*Model, *storage.Memory) {
	t.Helper()
	m, st := CreateTestModel(t)
	m.reload()
	Settle(t, m)
	return m, st
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNormalKeys_Quit(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m, _ := CreateTestModel(t)
			if !isQuit(PressKey(m, key)) {
				t.Errorf("%q should quit", key)
			}
		})
	}
}

func TestNormalKeys_Navigation(t *testing.T) {
	m, _ := loadedModel(t)
	last := config.DefaultTableRows - 1

	PressKey(m, "G")
	AssertModelField(t, "cursor after G", m.table.Cursor(), last)

	PressKey(m, "k")
	AssertModelField(t, "cursor after k", m.table.Cursor(), last-1)

	PressKey(m, "g")
	AssertModelField(t, "cursor after single g", m.table.Cursor(), last-1)
	PressKey(m, "g")
	AssertModelField(t, "cursor after gg", m.table.Cursor(), 0)

	PressKey(m, "down")
	AssertModelField(t, "cursor after down", m.table.Cursor(), 1)
}

func TestNormalKeys_Paging(t *testing.T) {
	m, _ := loadedModel(t)

	PressKey(m, "p")
	AssertModelField(t, "page stays at 0", m.page, 0)

	for range 5 {
		PressKey(m, "n")
		Settle(t, m)
	}
	AssertModelField(t, "page stops at the last page", m.page, m.totalPages()-1)

	PressKey(m, "p")
	AssertModelField(t, "page after p", m.page, m.totalPages()-2)
	if !strings.Contains(m.renderFooter(), "page 2/3") {
		t.Error("footer should show the current page")
	}
}

func TestNormalKeys_SwitchTab(t *testing.T) {
	m, _ := loadedModel(t)
	PressKey(m, "n")
	PressKey(m, "down")

	PressKey(m, "tab")
	Settle(t, m)

	AssertModelField(t, "tab", m.tab, types.UnitsTokens)
	AssertModelField(t, "page", m.page, 0)
	AssertModelField(t, "cursor", m.table.Cursor(), 0)
	AssertModelField(t, "tokens", len(m.state.Tokens), config.DefaultTableRows)

	PressKey(m, "tab")
	AssertModelField(t, "tab", m.tab, types.UnitsUntokenized)
}

func TestNormalKeys_ToggleTheme(t *testing.T) {
	m, st := CreateTestModel(t)

	PressKey(m, "t")
	Settle(t, m)

	AssertModelField(t, "theme", m.state.Theme, types.ThemeDark)
	stored, err := st.Get(storage.KeyTheme)
	if err != nil {
		t.Fatalf("theme not persisted: %v", err)
	}
	AssertModelField(t, "stored theme", stored, "dark")
}

func TestNormalKeys_Order(t *testing.T) {
	m, _ := loadedModel(t)

	PressKey(m, "o")
	AssertModelField(t, "order", m.order, types.SortAscending)
	if !strings.Contains(m.renderFooter(), "vintage ascending") {
		t.Error("footer should show the sort order")
	}
	PressKey(m, "o")
	AssertModelField(t, "order", m.order, types.SortDescending)
	PressKey(m, "o")
	AssertModelField(t, "order", m.order, types.SortOrder(""))
}

func TestNextOrder(t *testing.T) {
	tests := []struct {
		in   types.SortOrder
		want types.SortOrder
	}{
		{"", types.SortAscending},
		{types.SortAscending, types.SortDescending},
		{types.SortDescending, ""},
	}
	for _, tt := range tests {
		AssertModelField(t, "nextOrder("+string(tt.in)+")", nextOrder(tt.in), tt.want)
	}
}

func TestSearchForm(t *testing.T) {
	m, _ := loadedModel(t)
	PressKey(m, "n")

	PressKey(m, "/")
	AssertModelField(t, "mode", m.mode, ModeSearch)

	TypeText(m, " forest ")
	PressKey(m, "enter")

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "search", m.search, "forest")
	AssertModelField(t, "page", m.page, 0)

	// reopening keeps the current query
	PressKey(m, "/")
	AssertModelField(t, "input", m.searchInput.Value(), "forest")
	PressKey(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)

	PressKey(m, "x")
	AssertModelField(t, "search", m.search, "")
}

func TestTextInput_KeysDoNotTriggerActions(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "/")
	TypeText(m, "tq")

	AssertModelField(t, "mode", m.mode, ModeSearch)
	AssertModelField(t, "input", m.searchInput.Value(), "tq")
	AssertModelField(t, "theme", m.state.Theme, types.ThemeLight)
}

func TestSignInAndOut(t *testing.T) {
	m, st := CreateTestModel(t)

	PressKey(m, "s")
	AssertModelField(t, "mode", m.mode, ModeSignIn)

	TypeText(m, "secret")
	PressKey(m, "enter")
	AssertModelField(t, "mode with a missing field", m.mode, ModeSignIn)

	PressKey(m, "tab")
	AssertModelField(t, "focus", m.signInFocus, 1)
	TypeText(m, "http://warehouse.local/v1")
	PressKey(m, "enter")
	Settle(t, m)

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "signed in", m.state.SignedIn(), true)
	apiKey, serverAddress, ok := storage.Credentials(st)
	AssertModelField(t, "stored", ok, true)
	AssertModelField(t, "api key", apiKey, "secret")
	AssertModelField(t, "server", serverAddress, "http://warehouse.local/v1")

	// the form is prefilled with the stored server
	PressKey(m, "s")
	AssertModelField(t, "server input", m.signIn[1].Value(), "http://warehouse.local/v1")
	AssertModelField(t, "api key input", m.signIn[0].Value(), "")
	PressKey(m, "esc")

	PressKey(m, "S")
	Settle(t, m)
	AssertModelField(t, "signed in", m.state.SignedIn(), false)
	if _, _, ok := storage.Credentials(st); ok {
		t.Error("sign out should remove the stored credentials")
	}
}

func TestSignOut_WhenSignedOut(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "S")

	AssertModelField(t, "statusMsg", m.statusMsg, "Not signed in")
}

func TestTokenizeForm(t *testing.T) {
	m, _ := loadedModel(t)
	PressKey(m, "down")
	want := m.units()[1]

	PressKey(m, "T")
	AssertModelField(t, "mode", m.mode, ModeTokenize)
	if m.tokenizing == nil || m.tokenizing.WarehouseUnitID != want.WarehouseUnitID {
		t.Fatal("tokenize should target the selected unit")
	}
	if !strings.Contains(m.renderFooter(), want.WarehouseUnitID) {
		t.Error("footer should name the unit being tokenized")
	}

	PressKey(m, "enter")
	AssertModelField(t, "mode without address", m.mode, ModeTokenize)

	TypeText(m, "xch1abc")
	PressKey(m, "enter")
	Settle(t, m)

	AssertModelField(t, "mode", m.mode, ModeNormal)
	if m.tokenizing != nil {
		t.Error("tokenizing should be cleared")
	}
}

func TestTokenize_OnlyOnUntokenizedTab(t *testing.T) {
	m, _ := loadedModel(t)
	PressKey(m, "tab")
	Settle(t, m)

	PressKey(m, "T")

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "statusMsg", m.statusMsg, "Only untokenized units can be tokenized")
}

func TestDetokenizeConfirmFlow(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"confirm", "y"},
		{"cancel", "n"},
		{"cancel with esc", "esc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := CreateTestModel(t)

			PressKey(m, "D")
			AssertModelField(t, "mode", m.mode, ModeDetokenize)
			TypeText(m, "detok-file-content")
			PressKey(m, "enter")
			Settle(t, m)

			AssertModelField(t, "mode", m.mode, ModeConfirmDetok)
			if m.state.UnitToBeDetokenized == nil {
				t.Fatal("parsed detokenization should be pending")
			}
			if !strings.Contains(m.View(), "Confirm detokenization") {
				t.Error("View() should render the confirmation")
			}

			PressKey(m, tt.key)
			Settle(t, m)

			AssertModelField(t, "mode", m.mode, ModeNormal)
			if m.state.UnitToBeDetokenized != nil {
				t.Error("pending detokenization should be cleared")
			}
		})
	}
}

func TestDetokenize_EmptyInputIsIgnored(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "D")
	PressKey(m, "enter")
	Settle(t, m)

	AssertModelField(t, "mode", m.mode, ModeNormal)
	if m.state.UnitToBeDetokenized != nil {
		t.Error("nothing should be pending")
	}
}

func TestImportOrgForm(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "O")
	AssertModelField(t, "mode", m.mode, ModeImportOrg)
	TypeText(m, "org-1")
	PressKey(m, "enter")
	Settle(t, m)

	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestInspect(t *testing.T) {
	m, _ := loadedModel(t)
	PressKey(m, "down")
	want := m.units()[1].WarehouseUnitID

	PressKey(m, "enter")
	AssertModelField(t, "mode", m.mode, ModeInspect)
	if m.inspected == nil || m.inspected.WarehouseUnitID != want {
		t.Fatal("inspect should show the selected unit")
	}
	view := m.View()
	if !strings.Contains(view, "Unit "+want) {
		t.Error("View() should title the inspected unit")
	}

	// theme changes re-render the record
	m.store.Dispatch(actions.ToggleTheme())
	Settle(t, m)
	AssertModelField(t, "mode after theme change", m.mode, ModeInspect)

	PressKey(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	if m.inspected != nil {
		t.Error("closing should forget the inspected unit")
	}
}

func TestInspect_WithoutUnits(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "enter")

	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestHelp(t *testing.T) {
	m, _ := CreateTestModel(t)

	PressKey(m, "?")
	AssertModelField(t, "mode", m.mode, ModeHelp)
	if !strings.Contains(m.View(), "Keys") {
		t.Error("View() should render the help")
	}

	if isQuit(PressKey(m, "q")) {
		t.Error("q should close the help, not quit")
	}
	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestCustomKeybinds(t *testing.T) {
	registry := keybinds.NewDefaultRegistry()
	err := keybinds.ApplyConfig(registry, &keybinds.Config{
		Normal: map[string]string{string(keybinds.ActionQuit): "Q"},
	})
	if err != nil {
		t.Fatalf("ApplyConfig() error = %v", err)
	}

	settings := config.Defaults()
	settings.Mocked = true
	m := New(Options{
		Settings: settings,
		Storage:  storage.NewMemory(),
		Fetcher:  api.NewFixtureFetcher(),
		Keybinds: registry,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(m.Cleanup)

	if isQuit(PressKey(m, "q")) {
		t.Error("q should be unbound")
	}
	if !isQuit(PressKey(m, "Q")) {
		t.Error("Q should quit")
	}
}
