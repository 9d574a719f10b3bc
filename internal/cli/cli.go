// Package cli implements the one-shot commands: each dispatches a thunk,
// waits for it and prints the resulting state slice.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/locale"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Options control how results are printed
type Options struct {
	OutputFormat string // json, yaml, table
	Filter       string // JMESPath filter expression
	Query        string // JMESPath query or $(bash command)
	Out          io.Writer
	ErrOut       io.Writer
}

// Runner executes commands against the backend configured in settings
type Runner struct {
	settings config.Settings
	storage  storage.Storage
	client   *actions.Client
	opts     Options
	log      zerolog.Logger
}

// NewRunner creates a runner. The fetcher decides between the real backend
// and fixtures.
func NewRunner(settings config.Settings, st storage.Storage, fetcher api.Fetcher, opts Options, log zerolog.Logger) *Runner {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	return &Runner{
		settings: settings,
		storage:  st,
		client: actions.NewClient(fetcher, st,
			actions.WithTableRows(settings.TableRows),
			actions.WithLogger(log),
		),
		opts: opts,
		log:  log,
	}
}

// NewFetcher returns the fixture fetcher in mocked mode and the HTTP
// fetcher otherwise
func NewFetcher(settings config.Settings, st storage.Storage, log zerolog.Logger) api.Fetcher {
	if settings.Mocked {
		return api.NewFixtureFetcher()
	}
	return api.NewHTTPFetcher(settings.APIHost, st, api.WithFetchLogger(log))
}

// run starts a store from the bootstrapped state, runs the thunks one
// after another and returns the final state. An error notification left in
// the state is returned as an error.
func (r *Runner) run(ctx context.Context, thunks ...actions.Thunk) (store.State, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	s := store.New(actions.Bootstrap(r.settings, r.storage),
		store.WithLogger(r.log),
		store.WithEffect(store.PersistTheme(r.storage, r.log)),
		store.WithEffect(store.LogNotifications(r.log)),
	)
	s.Start(ctx)
	defer s.Close()

	for _, t := range thunks {
		r.client.Run(ctx, s, t)
		r.client.Wait()
		if err := s.Sync(ctx); err != nil {
			return s.State(), err
		}
	}

	state := s.State()
	if err := r.report(state); err != nil {
		return state, err
	}
	return state, nil
}

// report prints a success notification and turns an error notification
// or a lost connection into an error
func (r *Runner) report(state store.State) error {
	if n := state.Notification; n != nil {
		text := locale.Message(r.locale(state), n.ID)
		if n.Type == types.NotificationError {
			return fmt.Errorf("%s", text)
		}
		fmt.Fprintln(r.opts.ErrOut, successStyle.Render(text))
	}
	if !state.ConnectionCheck {
		return fmt.Errorf("cannot reach the tokenization server at %s", r.serverAddress(state))
	}
	return nil
}

func (r *Runner) locale(state store.State) string {
	if state.Locale != nil {
		return *state.Locale
	}
	return locale.Default
}

func (r *Runner) serverAddress(state store.State) string {
	if state.ServerAddress != nil {
		return *state.ServerAddress
	}
	return r.settings.APIHost
}

// promptForValue asks for a single value on stderr
func promptForValue(w io.Writer, name string) (string, error) {
	fmt.Fprintf(w, "Enter value for '%s': ", name)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
