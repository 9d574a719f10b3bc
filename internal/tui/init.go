package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Options wire the TUI to its collaborators
type Options struct {
	Settings config.Settings
	Storage  storage.Storage
	Fetcher  api.Fetcher
	Keybinds *keybinds.Registry // nil uses the defaults
	Logger   zerolog.Logger
}

// New creates a TUI model with a running store built from the settings
// and durable storage
func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	s := store.New(actions.Bootstrap(opts.Settings, opts.Storage),
		store.WithLogger(opts.Logger),
		store.WithEffect(store.PersistTheme(opts.Storage, opts.Logger)),
		store.WithEffect(store.LogNotifications(opts.Logger)),
	)

	m := &Model{
		store:    s,
		storage:  opts.Storage,
		settings: opts.Settings,
		keybinds: registry,
		log:      opts.Logger,
		mode:     ModeNormal,
		ctx:      ctx,
		cancel:   cancel,
		state:    s.State(),
		tab:      types.UnitsUntokenized,
		client: actions.NewClient(opts.Fetcher, opts.Storage,
			actions.WithTableRows(opts.Settings.TableRows),
			actions.WithLogger(opts.Logger),
		),
		table: table.New(
			table.WithColumns(columns(0)),
			table.WithFocused(true),
			table.WithHeight(opts.Settings.TableRows+1),
		),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		paginator: paginator.New(),
		help:      help.New(),
		inspect:   viewport.New(80, 20),

		searchInput: newInput("search units", 128),
		orgInput:    newInput("organization uid", 128),
		toInput:     newInput("wallet address (xch...)", 128),
		detokInput:  newInput("detokenization file content or @path", 0),
	}

	apiKey := newInput("api key", 256)
	apiKey.EchoMode = textinput.EchoPassword
	server := newInput("server address, e.g. https://warehouse.example/v1", 256)
	m.signIn = []textinput.Model{apiKey, server}

	m.paginator.Type = paginator.Dots

	// subscribe before starting so no snapshot is missed
	m.sub = newSubscription(s)
	s.Start(ctx)

	m.applyTheme(m.state.Theme)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = InputWidth
	return ti
}

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	m := New(opts)
	defer m.Cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
