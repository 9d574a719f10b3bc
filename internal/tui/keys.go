package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/cli"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// handleKeyPress routes a key to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch, ModeSignIn, ModeImportOrg, ModeTokenize, ModeDetokenize:
		return m.handleTextInputKeys(msg)
	case ModeInspect:
		return m.handleInspectKeys(msg)
	case ModeConfirmDetok:
		return m.handleConfirmKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextNormal, msg.String())
	if partial || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return tea.Quit

	case keybinds.ActionNavigateUp:
		m.table.MoveUp(1)
	case keybinds.ActionNavigateDown:
		m.table.MoveDown(1)
	case keybinds.ActionGoToTop:
		m.table.GotoTop()
	case keybinds.ActionGoToBottom:
		m.table.GotoBottom()

	case keybinds.ActionNextPage:
		if m.page+1 < m.totalPages() {
			m.page++
			m.reload()
		}
	case keybinds.ActionPrevPage:
		if m.page > 0 {
			m.page--
			m.reload()
		}
	case keybinds.ActionSwitchTab:
		if m.tab == types.UnitsTokens {
			m.tab = types.UnitsUntokenized
		} else {
			m.tab = types.UnitsTokens
		}
		m.page = 0
		m.table.SetCursor(0)
		m.updateTable()
		m.reload()

	case keybinds.ActionRefresh:
		m.reload()
		return m.setStatusMessage("Refreshing")
	case keybinds.ActionOpenSearch:
		m.mode = ModeSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()
	case keybinds.ActionClearSearch:
		if m.search != "" {
			m.search = ""
			m.page = 0
			m.reload()
		}
	case keybinds.ActionToggleOrder:
		m.order = nextOrder(m.order)
		m.page = 0
		m.reload()
	case keybinds.ActionToggleTheme:
		m.store.Dispatch(actions.ToggleTheme())

	case keybinds.ActionOpenInspect:
		if u, ok := m.selectedUnit(); ok {
			m.inspected = &u
			m.mode = ModeInspect
			m.refreshInspectContent()
			m.inspect.GotoTop()
		}
	case keybinds.ActionCopyUnitID:
		if u, ok := m.selectedUnit(); ok {
			return m.copyToClipboard(u.WarehouseUnitID)
		}
	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp

	case keybinds.ActionSignIn:
		return m.openSignIn()
	case keybinds.ActionSignOut:
		if !m.state.SignedIn() {
			return m.setStatusMessage("Not signed in")
		}
		m.run(refreshAfter(m.client.SignOut()))
		return m.setStatusMessage("Signed out")
	case keybinds.ActionImportOrg:
		m.mode = ModeImportOrg
		m.orgInput.Reset()
		return m.orgInput.Focus()
	case keybinds.ActionTokenize:
		if m.tab != types.UnitsUntokenized {
			return m.setStatusMessage("Only untokenized units can be tokenized")
		}
		u, ok := m.selectedUnit()
		if !ok {
			return nil
		}
		m.tokenizing = &u
		m.mode = ModeTokenize
		m.toInput.Reset()
		return m.toInput.Focus()
	case keybinds.ActionDetokenize:
		m.mode = ModeDetokenize
		m.detokInput.Reset()
		return m.detokInput.Focus()
	}

	return nil
}

func (m *Model) handleTextInputKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextTextInput, msg.String())
	if ok {
		switch action {
		case keybinds.ActionQuitForce:
			return tea.Quit
		case keybinds.ActionTextCancel:
			m.closeForm()
			return nil
		case keybinds.ActionTextSubmit:
			return m.submitForm()
		case keybinds.ActionTextNextField:
			if m.mode == ModeSignIn {
				return m.focusSignIn((m.signInFocus + 1) % len(m.signIn))
			}
			return nil
		}
	}
	return m.updateActiveInput(msg)
}

func (m *Model) handleInspectKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextInspect, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
		m.inspected = nil
	case keybinds.ActionScrollUp:
		m.inspect.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.inspect.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.inspect.PageUp()
	case keybinds.ActionPageDown:
		m.inspect.PageDown()
	case keybinds.ActionCopyUnitID:
		if m.inspected != nil {
			return m.copyToClipboard(m.inspected.WarehouseUnitID)
		}
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionConfirm:
		pending := m.state.UnitToBeDetokenized
		m.mode = ModeNormal
		if pending != nil {
			m.run(refreshAfter(m.client.ConfirmDetokanization(pending)))
		}
	case keybinds.ActionCancel:
		m.mode = ModeNormal
		m.store.Dispatch(actions.SetUnitToBeDetokenized(nil))
	case keybinds.ActionScrollUp:
		m.inspect.ScrollUp(1)
	case keybinds.ActionScrollDown:
		m.inspect.ScrollDown(1)
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextHelp, msg.String())
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	}
	return nil
}

// submitForm runs the operation behind the open form
func (m *Model) submitForm() tea.Cmd {
	switch m.mode {
	case ModeSearch:
		m.search = strings.TrimSpace(m.searchInput.Value())
		m.page = 0
		m.closeForm()
		m.reload()

	case ModeSignIn:
		apiKey := strings.TrimSpace(m.signIn[0].Value())
		server := strings.TrimSpace(m.signIn[1].Value())
		if apiKey == "" || server == "" {
			return m.setStatusMessage("API key and server address are required")
		}
		m.closeForm()
		m.run(m.client.SignIn(apiKey, server))
		return m.setStatusMessage("Signed in to " + server)

	case ModeImportOrg:
		uid := strings.TrimSpace(m.orgInput.Value())
		m.closeForm()
		if uid != "" {
			m.run(refreshAfter(m.client.ImportHomeOrg(uid)))
		}

	case ModeTokenize:
		to := strings.TrimSpace(m.toInput.Value())
		if to == "" {
			return m.setStatusMessage("A wallet address is required")
		}
		unit := m.tokenizing
		m.closeForm()
		if unit != nil {
			m.run(refreshAfter(m.client.TokenizeUnit(types.TokenizeRequestFor(*unit, to))))
		}

	case ModeDetokenize:
		input := strings.TrimSpace(m.detokInput.Value())
		m.closeForm()
		if input == "" || input == "-" {
			return nil
		}
		detok, err := cli.ReadDetokString(input)
		if err != nil {
			return m.setStatusMessage(err.Error())
		}
		m.run(m.client.DetokenizeUnit(detok))
	}
	return nil
}

// closeForm blurs every input and returns to the listing
func (m *Model) closeForm() {
	m.searchInput.Blur()
	m.orgInput.Blur()
	m.toInput.Blur()
	m.detokInput.Blur()
	for i := range m.signIn {
		m.signIn[i].Blur()
	}
	m.tokenizing = nil
	m.mode = ModeNormal
}

func (m *Model) openSignIn() tea.Cmd {
	m.mode = ModeSignIn
	for i := range m.signIn {
		m.signIn[i].Reset()
	}
	if server, err := m.storage.Get(storage.KeyServerAddress); err == nil {
		m.signIn[1].SetValue(server)
	}
	return m.focusSignIn(0)
}

func (m *Model) focusSignIn(i int) tea.Cmd {
	m.signIn[m.signInFocus].Blur()
	m.signInFocus = i
	return m.signIn[i].Focus()
}

// activeInput returns the focused text input, if any
func (m *Model) activeInput() *textinput.Model {
	switch m.mode {
	case ModeSearch:
		return &m.searchInput
	case ModeImportOrg:
		return &m.orgInput
	case ModeTokenize:
		return &m.toInput
	case ModeDetokenize:
		return &m.detokInput
	case ModeSignIn:
		return &m.signIn[m.signInFocus]
	}
	return nil
}

func (m *Model) updateActiveInput(msg tea.Msg) tea.Cmd {
	in := m.activeInput()
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *Model) openConfirmDetok() {
	m.closeForm()
	m.mode = ModeConfirmDetok
	m.refreshInspectContent()
	m.inspect.GotoTop()
}

// refreshInspectContent renders the record shown by the inspect and
// confirm views
func (m *Model) refreshInspectContent() {
	switch {
	case m.mode == ModeConfirmDetok && m.state.UnitToBeDetokenized != nil:
		m.inspect.SetContent(m.highlightJSON(m.state.UnitToBeDetokenized))
	case m.inspected != nil:
		m.inspect.SetContent(m.highlightJSON(m.inspected))
	}
}

func (m *Model) copyToClipboard(text string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		return m.setStatusMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage("Copied " + text)
}

// nextOrder cycles unsorted -> ascending -> descending
func nextOrder(o types.SortOrder) types.SortOrder {
	switch o {
	case "":
		return types.SortAscending
	case types.SortAscending:
		return types.SortDescending
	}
	return ""
}

// refreshAfter runs t and then asks the model to reload the listing
func refreshAfter(t actions.Thunk) actions.Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		t(ctx, d)
		d.Dispatch(actions.RefreshApp(true))
	}
}
