package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/locale"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeSignIn
	ModeImportOrg
	ModeTokenize
	ModeDetokenize
	ModeConfirmDetok
	ModeInspect
	ModeHelp
)

// Model represents the TUI state. The application state lives in the
// store; the model only keeps the latest snapshot and view state.
type Model struct {
	// Core state
	store    *store.Store
	client   *actions.Client
	storage  storage.Storage
	settings config.Settings
	keybinds *keybinds.Registry
	log      zerolog.Logger
	mode     Mode

	ctx    context.Context
	cancel context.CancelFunc
	sub    *subscription

	// Latest store snapshot
	state store.State

	// Listing view state
	tab    types.UnitsType
	page   int // zero based
	search string
	order  types.SortOrder

	// Widgets
	table     table.Model
	spinner   spinner.Model
	paginator paginator.Model
	help      help.Model
	inspect   viewport.Model
	styles    styles

	// Forms
	searchInput textinput.Model
	signIn      []textinput.Model
	signInFocus int
	orgInput    textinput.Model
	toInput     textinput.Model
	detokInput  textinput.Model
	tokenizing  *types.Unit

	// UI state
	width       int
	height      int
	statusMsg   string
	toast       string
	toastError  bool
	toastKey    string
	inspected   *types.Unit
}

// Init subscribes to the store and loads the first page
func (m *Model) Init() tea.Cmd {
	m.reload()
	return tea.Batch(m.sub.wait(), m.spinner.Tick)
}

// Cleanup stops running thunks, the store and the subscription
func (m *Model) Cleanup() {
	m.cancel()
	m.sub.close()
	m.store.Close()
	m.client.Wait()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case stateMsg:
		cmd = tea.Batch(m.applyState(store.State(msg)), m.sub.wait())

	case storeClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case clearToastMsg:
		if m.toastKey == msg.key {
			m.toast = ""
			m.toastKey = ""
			m.run(actions.SetNotificationMessage(types.NotificationNull, ""))
		}

	case clearStatusMsg:
		m.statusMsg = ""

	default:
		// cursor blink and paste messages for the focused input
		cmd = m.updateActiveInput(msg)
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeInspect:
		return m.renderInspect()
	case ModeConfirmDetok:
		return m.renderConfirmDetok()
	case ModeSignIn:
		return m.renderSignIn()
	default:
		return m.renderMain()
	}
}

// applyState takes a new store snapshot and derives the view from it
func (m *Model) applyState(next store.State) tea.Cmd {
	prev := m.state
	m.state = next

	var cmds []tea.Cmd

	if next.Theme != prev.Theme {
		m.applyTheme(next.Theme)
	}

	if n := next.Notification; n != nil && n.Key != "" && n.Key != m.toastKey {
		cmds = append(cmds, m.showToast(*n))
	}

	if next.UnitToBeDetokenized != nil && prev.UnitToBeDetokenized == nil {
		m.openConfirmDetok()
	}
	if next.UnitToBeDetokenized == nil && m.mode == ModeConfirmDetok {
		m.mode = ModeNormal
	}

	m.updateTable()

	if next.Refresh {
		m.store.Dispatch(actions.RefreshApp(false))
		m.reload()
	}

	return tea.Batch(cmds...)
}

func (m *Model) showToast(n types.Notification) tea.Cmd {
	code := locale.Default
	if m.state.Locale != nil {
		code = *m.state.Locale
	}
	m.toast = locale.Message(code, n.ID)
	m.toastError = n.Type == types.NotificationError
	m.toastKey = n.Key

	key := n.Key
	return tea.Tick(toastTimeout, func(time.Time) tea.Msg {
		return clearToastMsg{key: key}
	})
}

// run starts a thunk against the store
func (m *Model) run(t actions.Thunk) {
	m.client.Run(m.ctx, m.store, t)
}

// reload fetches the current page of the current tab and the counts
func (m *Model) reload() {
	opts := actions.ListOptions{
		Page:         m.page,
		ResultsLimit: m.settings.TableRows,
		SearchQuery:  m.search,
		SortOrder:    m.order,
	}
	if m.tab == types.UnitsTokens {
		m.run(m.client.GetTokens(opts))
	} else {
		m.run(m.client.GetUntokenizedUnits(opts))
	}
	m.run(m.client.GetCountForTokensAndUntokenizedUnits())
}

func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = msg
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// units returns the rows currently shown
func (m *Model) units() []types.Unit {
	return m.state.Units(m.tab)
}

// selectedUnit returns the unit under the cursor
func (m *Model) selectedUnit() (types.Unit, bool) {
	units := m.units()
	i := m.table.Cursor()
	if i < 0 || i >= len(units) {
		return types.Unit{}, false
	}
	return units[i], true
}

// totalPages is the page count reported by the last listing
func (m *Model) totalPages() int {
	if m.state.PaginationNrOfPages == nil {
		return 0
	}
	return *m.state.PaginationNrOfPages
}

// Custom message types
type stateMsg store.State

type storeClosedMsg struct{}

type clearToastMsg struct {
	key string
}

type clearStatusMsg struct{}
