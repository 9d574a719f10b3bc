package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/types"
)

// palette holds the colors of one theme
type palette struct {
	accent  lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
	success lipgloss.Color
	err     lipgloss.Color
	border  lipgloss.Color
	chroma  string // chroma style name for JSON highlighting
}

var palettes = map[types.Theme]palette{
	types.ThemeLight: {
		accent:  lipgloss.Color("25"),
		muted:   lipgloss.Color("245"),
		text:    lipgloss.Color("235"),
		success: lipgloss.Color("28"),
		err:     lipgloss.Color("160"),
		border:  lipgloss.Color("250"),
		chroma:  "github",
	},
	types.ThemeDark: {
		accent:  lipgloss.Color("81"),
		muted:   lipgloss.Color("241"),
		text:    lipgloss.Color("252"),
		success: lipgloss.Color("42"),
		err:     lipgloss.Color("203"),
		border:  lipgloss.Color("238"),
		chroma:  "monokai",
	},
}

type styles struct {
	palette   palette
	title     lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	muted     lipgloss.Style
	success   lipgloss.Style
	err       lipgloss.Style
	modal     lipgloss.Style
	label     lipgloss.Style
}

func newStyles(theme types.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[types.ThemeLight]
	}
	return styles{
		palette:   p,
		title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(p.muted),
		activeTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(p.accent),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		success:   lipgloss.NewStyle().Bold(true).Foreground(p.success),
		err:       lipgloss.NewStyle().Bold(true).Foreground(p.err),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(0, 1),
		label: lipgloss.NewStyle().Bold(true).Foreground(p.text),
	}
}

// applyTheme restyles every widget for theme
func (m *Model) applyTheme(theme types.Theme) {
	m.styles = newStyles(theme)
	p := m.styles.palette

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.border).
		BorderBottom(true).
		Bold(true).
		Foreground(p.text)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("230")).
		Background(p.accent).
		Bold(false)
	m.table.SetStyles(ts)

	m.spinner.Style = lipgloss.NewStyle().Foreground(p.accent)
	m.paginator.ActiveDot = lipgloss.NewStyle().Foreground(p.accent).Render("•")
	m.paginator.InactiveDot = lipgloss.NewStyle().Foreground(p.muted).Render("•")
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(p.accent)
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(p.muted)
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = m.help.Styles.ShortDesc

	if m.mode == ModeInspect || m.mode == ModeConfirmDetok {
		m.refreshInspectContent()
	}
}

// columns splits width between the unit columns; 0 uses the minimums
func columns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Unit", Width: ColumnWidthID},
		{Title: "Project", Width: ColumnWidthProject},
		{Title: "Registry ID", Width: ColumnWidthOwner},
		{Title: "Vintage", Width: ColumnWidthNarrow},
		{Title: "Count", Width: ColumnWidthNarrow},
		{Title: "Owner", Width: ColumnWidthOwner},
	}

	used := 0
	for _, c := range cols {
		used += c.Width + 2 // cell padding
	}
	if extra := width - used; extra > 0 {
		cols[1].Width += extra
	}
	return cols
}

// updateTable rebuilds the rows and the paginator from the snapshot
func (m *Model) updateTable() {
	units := m.units()
	rows := make([]table.Row, 0, len(units))
	for _, u := range units {
		project := u.ProjectName
		if project == "" {
			project = u.WarehouseProjectID()
		}
		rows = append(rows, table.Row{
			u.WarehouseUnitID,
			project,
			u.RegistryProjectID,
			fmt.Sprint(u.VintageYear),
			fmt.Sprint(u.UnitCount),
			u.UnitOwner,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}

	m.paginator.TotalPages = max(m.totalPages(), 1)
	m.paginator.Page = min(m.page, m.paginator.TotalPages-1)
}

func (m *Model) updateLayout() {
	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(m.height-MainViewHeightOffset, 3))

	m.inspect.Width = max(m.width-ModalWidthMargin, 20)
	m.inspect.Height = max(m.height-ModalOverheadLines-2, 3)

	m.help.Width = m.width
}

func (m *Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.state.Units(m.tab) == nil {
		b.WriteString(m.styles.muted.Render("  Loading units..."))
	} else if len(m.units()) == 0 {
		b.WriteString(m.styles.muted.Render("  No units"))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	parts := []string{m.styles.title.Render("tokenctl")}

	switch {
	case m.client.Mocked():
		parts = append(parts, m.styles.muted.Render("mocked data"))
	case m.state.SignedIn():
		parts = append(parts, m.styles.muted.Render("signed in to "+*m.state.ServerAddress))
	default:
		parts = append(parts, m.styles.muted.Render(m.settings.APIHost))
	}

	if m.state.HomeOrgUID != nil {
		parts = append(parts, m.styles.muted.Render("org "+*m.state.HomeOrgUID))
	}
	if !m.state.ConnectionCheck {
		parts = append(parts, m.styles.err.Render("offline"))
	}
	if m.state.ShowProgressOverlay {
		parts = append(parts, m.spinner.View())
	}

	return strings.Join(parts, "  ")
}

func (m *Model) renderTabs() string {
	label := func(name string, count *int) string {
		if count == nil {
			return name
		}
		return fmt.Sprintf("%s (%d)", name, *count)
	}

	untokenized := label("Untokenized units", m.state.UntokenizedUnitsCount)
	tokens := label("Tokens", m.state.TokensCount)

	if m.tab == types.UnitsTokens {
		return m.styles.tab.Render(untokenized) + m.styles.activeTab.Render(tokens)
	}
	return m.styles.activeTab.Render(untokenized) + m.styles.tab.Render(tokens)
}

func (m *Model) renderFooter() string {
	var lines []string

	status := []string{m.paginator.View()}
	if pages := m.totalPages(); pages > 0 {
		status = append(status, m.styles.muted.Render(fmt.Sprintf("page %d/%d", m.page+1, pages)))
	}
	if m.search != "" {
		status = append(status, m.styles.muted.Render(fmt.Sprintf("search %q", m.search)))
	}
	if m.order != "" {
		status = append(status, m.styles.muted.Render("vintage "+strings.ToLower(string(m.order))))
	}
	lines = append(lines, strings.Join(status, "  "))

	switch m.mode {
	case ModeSearch:
		lines = append(lines, m.styles.label.Render("Search: ")+m.searchInput.View())
	case ModeImportOrg:
		lines = append(lines, m.styles.label.Render("Home org: ")+m.orgInput.View())
	case ModeTokenize:
		id := ""
		if m.tokenizing != nil {
			id = m.tokenizing.WarehouseUnitID
		}
		lines = append(lines, m.styles.label.Render("Tokenize "+id+" to: ")+m.toInput.View())
	case ModeDetokenize:
		lines = append(lines, m.styles.label.Render("Detokenize: ")+m.detokInput.View())
	default:
		lines = append(lines, m.renderMessageLine())
	}

	lines = append(lines, m.help.ShortHelpView(m.shortHelp()))
	return strings.Join(lines, "\n")
}

// renderMessageLine shows the toast, then the global error, then status
func (m *Model) renderMessageLine() string {
	switch {
	case m.toast != "" && m.toastError:
		return m.styles.err.Render(m.toast)
	case m.toast != "":
		return m.styles.success.Render(m.toast)
	case m.state.ErrorMessage != nil:
		return m.styles.err.Render(*m.state.ErrorMessage)
	}
	return m.styles.muted.Render(m.statusMsg)
}

func (m *Model) renderSignIn() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Sign in"))
	b.WriteString("\n\n")
	labels := []string{"API key", "Server address"}
	for i, in := range m.signIn {
		b.WriteString(m.styles.label.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	b.WriteString(m.help.ShortHelpView(m.bindingsFor(keybinds.ContextTextInput,
		keybinds.ActionTextNextField, keybinds.ActionTextSubmit, keybinds.ActionTextCancel)))

	return m.styles.modal.Width(max(m.width-ModalWidthMargin, InputWidth)).Render(b.String())
}

func (m *Model) renderInspect() string {
	id := ""
	if m.inspected != nil {
		id = m.inspected.WarehouseUnitID
	}
	title := m.styles.title.Render("Unit " + id)
	footer := m.help.ShortHelpView(m.bindingsFor(keybinds.ContextInspect,
		keybinds.ActionScrollDown, keybinds.ActionScrollUp, keybinds.ActionCopyUnitID, keybinds.ActionCloseModal))
	return m.styles.modal.Render(title + "\n\n" + m.inspect.View() + "\n" + footer)
}

func (m *Model) renderConfirmDetok() string {
	title := m.styles.title.Render("Confirm detokenization")
	footer := m.help.ShortHelpView(m.bindingsFor(keybinds.ContextConfirm,
		keybinds.ActionConfirm, keybinds.ActionCancel, keybinds.ActionScrollDown))
	return m.styles.modal.Render(title + "\n\n" + m.inspect.View() + "\n" + footer)
}

func (m *Model) renderHelp() string {
	groups := [][]key.Binding{
		m.bindingsFor(keybinds.ContextNormal,
			keybinds.ActionNavigateUp, keybinds.ActionNavigateDown,
			keybinds.ActionGoToTop, keybinds.ActionGoToBottom,
			keybinds.ActionNextPage, keybinds.ActionPrevPage, keybinds.ActionSwitchTab),
		m.bindingsFor(keybinds.ContextNormal,
			keybinds.ActionRefresh, keybinds.ActionOpenSearch, keybinds.ActionClearSearch,
			keybinds.ActionToggleOrder, keybinds.ActionToggleTheme,
			keybinds.ActionOpenInspect, keybinds.ActionCopyUnitID),
		m.bindingsFor(keybinds.ContextNormal,
			keybinds.ActionSignIn, keybinds.ActionSignOut, keybinds.ActionImportOrg,
			keybinds.ActionTokenize, keybinds.ActionDetokenize,
			keybinds.ActionQuit, keybinds.ActionQuitForce),
	}
	title := m.styles.title.Render("Keys")
	return m.styles.modal.Render(title + "\n\n" + m.help.FullHelpView(groups))
}

// shortHelp lists the bindings shown under the table
func (m *Model) shortHelp() []key.Binding {
	switch m.mode {
	case ModeSearch, ModeImportOrg, ModeTokenize, ModeDetokenize:
		return m.bindingsFor(keybinds.ContextTextInput, keybinds.ActionTextSubmit, keybinds.ActionTextCancel)
	}
	return m.bindingsFor(keybinds.ContextNormal,
		keybinds.ActionNextPage, keybinds.ActionSwitchTab, keybinds.ActionOpenSearch,
		keybinds.ActionOpenInspect, keybinds.ActionTokenize, keybinds.ActionToggleTheme,
		keybinds.ActionOpenHelp, keybinds.ActionQuit)
}

// bindingsFor turns registry entries into help bindings
func (m *Model) bindingsFor(context keybinds.Context, acts ...keybinds.Action) []key.Binding {
	out := make([]key.Binding, 0, len(acts))
	for _, a := range acts {
		keys := m.keybinds.Keys(context, a)
		if len(keys) == 0 {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(m.keybinds.KeyString(context, a), keybinds.Descriptions[a]),
		))
	}
	return out
}

// highlightJSON pretty prints v and colors it for the current theme.
// On any failure the indented JSON is returned uncolored.
func (m *Model) highlightJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(data), "json", "terminal256", m.styles.palette.chroma); err != nil {
		return string(data)
	}
	return buf.String()
}
