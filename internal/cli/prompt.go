package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/tokenctl/internal/types"
)

// ErrSelectionCancelled is returned when the unit picker is closed without
// a choice
var ErrSelectionCancelled = errors.New("selection cancelled")

var pickerTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

type pickerKeys struct {
	choose key.Binding
	cancel key.Binding
}

var selectorKeys = pickerKeys{
	choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "tokenize")),
	cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// unitItem adapts a unit to the list component
type unitItem struct {
	unit types.Unit
}

func (i unitItem) FilterValue() string {
	return i.unit.WarehouseUnitID + " " + i.unit.ProjectName + " " + i.unit.UnitOwner
}

func (i unitItem) Title() string { return i.unit.WarehouseUnitID }

func (i unitItem) Description() string {
	project := i.unit.ProjectName
	if project == "" {
		project = i.unit.WarehouseProjectID()
	}
	return fmt.Sprintf("%s · vintage %d · %d units", project, i.unit.VintageYear, i.unit.UnitCount)
}

type selectorModel struct {
	list   list.Model
	choice *types.Unit
	done   bool
}

func newSelector(units []types.Unit) selectorModel {
	items := make([]list.Item, len(units))
	for i, u := range units {
		items[i] = unitItem{unit: u}
	}

	l := list.New(items, list.NewDefaultDelegate(), 100, 20)
	l.Title = "Select the unit to tokenize"
	l.Styles.Title = pickerTitleStyle
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{selectorKeys.choose, selectorKeys.cancel}
	}

	return selectorModel{list: l}
}

func (m selectorModel) Init() tea.Cmd { return nil }

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, selectorKeys.cancel):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, selectorKeys.choose):
			if it, ok := m.list.SelectedItem().(unitItem); ok {
				u := it.unit
				m.choice = &u
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// promptForUnit lets the user pick one of units on the terminal. The picker
// renders on stderr so stdout stays clean for the command output.
func promptForUnit(units []types.Unit) (types.Unit, error) {
	final, err := tea.NewProgram(newSelector(units), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return types.Unit{}, fmt.Errorf("failed to run unit picker: %w", err)
	}

	if m := final.(selectorModel); m.choice != nil {
		return *m.choice, nil
	}
	return types.Unit{}, ErrSelectionCancelled
}
