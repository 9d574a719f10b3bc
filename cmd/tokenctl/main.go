package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/studiowebux/tokenctl/internal/cli"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/logging"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/tui"
	"github.com/studiowebux/tokenctl/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tokenctl",
	Short: "tokenctl - carbon unit tokenization client",
	Long: `tokenctl lists carbon units from a climate warehouse, tokenizes them and
confirms detokenizations, through an interactive TUI or single commands.

Run without arguments to start the TUI.

Examples:
  tokenctl                                   # Start interactive TUI
  tokenctl --mocked                          # TUI on built-in fixtures
  tokenctl units --page 2 -o json            # Second page of untokenized units
  tokenctl tokens --query '[].warehouseUnitId'
  tokenctl signin --api-key KEY --server https://host/v1
  tokenctl tokenize --unit-id ID --to xch1...
  tokenctl confirm-detok @detok.txt
  tokenctl mock-server --port 31310`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// Flags shared by every command
var (
	flagOutput   string
	flagFilter   string
	flagQuery    string
	flagMocked   bool
	flagLogLevel string
	flagAPIHost  string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutput, "output", "o", "table", "Output format (table/json/yaml)")
	pf.StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the result")
	pf.StringVar(&flagQuery, "query", "", "JMESPath query or $(command) applied to the result")
	pf.BoolVar(&flagMocked, "mocked", false, "Answer from built-in fixtures instead of the backend")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.StringVar(&flagAPIHost, "api-host", "", "Tokenization backend address")

	registerCommands()
}

// environment is what every command needs: settings with flag overrides,
// durable storage and a logger
type environment struct {
	settings config.Settings
	storage  *storage.SQLite
	log      zerolog.Logger
}

func setup(cmd *cobra.Command) (*environment, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("mocked") {
		settings.Mocked = flagMocked
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}
	if flagAPIHost != "" {
		settings.APIHost = flagAPIHost
	}

	st, err := storage.NewSQLite(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &environment{settings: settings, storage: st}, nil
}

func (e *environment) close() {
	if err := e.storage.Close(); err != nil {
		e.log.Warn().Err(err).Msg("failed to close storage")
	}
}

// runTUI starts the interactive TUI, logging to the log file
func runTUI(cmd *cobra.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	closer, err := logging.InitFile(env.settings.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()
	env.log = logging.Component("tui")

	registry, err := keybinds.LoadOrDefault(keybinds.DefaultConfigPath())
	if err != nil {
		env.log.Warn().Err(err).Msg("invalid keybinds, using defaults")
		registry = keybinds.NewDefaultRegistry()
	}

	return tui.Run(tui.Options{
		Settings: env.settings,
		Storage:  env.storage,
		Fetcher:  cli.NewFetcher(env.settings, env.storage, logging.Component("api")),
		Keybinds: registry,
		Logger:   env.log,
	})
}

// withRunner wires a command runner logging to stderr
func withRunner(fn func(ctx context.Context, r *cli.Runner) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		logging.Init(env.settings.LogLevel, os.Stderr)
		env.log = logging.Component("cli")

		runner := cli.NewRunner(env.settings, env.storage,
			cli.NewFetcher(env.settings, env.storage, logging.Component("api")),
			cli.Options{
				OutputFormat: flagOutput,
				Filter:       flagFilter,
				Query:        flagQuery,
			},
			env.log,
		)

		return fn(cmd.Context(), runner)
	}
}
