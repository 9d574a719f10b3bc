package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/tokenctl/internal/cli"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/keybinds"
	"github.com/studiowebux/tokenctl/internal/logging"
	"github.com/studiowebux/tokenctl/internal/mock"
	"github.com/studiowebux/tokenctl/internal/types"
	"github.com/studiowebux/tokenctl/internal/version"
)

// Flags for units/tokens
var listFlags cli.ListOptions

// Flags for signin
var (
	signInAPIKey string
	signInServer string
)

// Flags for tokenize
var (
	tokenizeFile string
	tokenizeReq  types.TokenizeRequest
)

// Flags for mock-server
var (
	mockConfigPath string
	mockPort       int
	mockOrgUID     string
	mockAPIKey     string
	mockWriteCfg   string
)

// Flags for version
var versionCheck bool

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List untokenized units",
	Args:  cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Units(ctx, listFlags)
	}),
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List tokenized units",
	Args:  cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Tokens(ctx, listFlags)
	}),
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Estimate the number of untokenized units and tokens",
	Args:  cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Count(ctx)
	}),
}

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Store an API key and server address",
	Args:  cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.SignIn(ctx, signInAPIKey, signInServer)
	}),
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored credentials",
	Args:  cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.SignOut(ctx)
	}),
}

var importOrgCmd = &cobra.Command{
	Use:   "import-org <org-uid>",
	Short: "Connect the backend to a home organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.ImportHomeOrg(ctx, args[0])
		})(cmd, args)
	},
}

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize",
	Short: "Tokenize a unit",
	Long: `Tokenize a unit to a wallet address.

Fields may come from flags or from a JSON request file (--file); flags win.
Without --unit-id an interactive unit picker is shown.`,
	Args: cobra.NoArgs,
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		req := tokenizeReq
		if tokenizeFile != "" {
			fromFile, err := cli.ReadTokenizeRequest(tokenizeFile)
			if err != nil {
				return err
			}
			req = mergeTokenizeRequest(fromFile, tokenizeReq)
		}
		return r.Tokenize(ctx, req)
	}),
}

var detokenizeCmd = &cobra.Command{
	Use:   "detokenize <content|@file|->",
	Short: "Parse a detokenization file and print the pending record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		detok, err := cli.ReadDetokString(args[0])
		if err != nil {
			return err
		}
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.Detokenize(ctx, detok)
		})(cmd, args)
	},
}

var confirmDetokCmd = &cobra.Command{
	Use:   "confirm-detok <content|@file|->",
	Short: "Parse a detokenization file and confirm it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		detok, err := cli.ReadDetokString(args[0])
		if err != nil {
			return err
		}
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.ConfirmDetokenization(ctx, detok)
		})(cmd, args)
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Print or change the theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		want := ""
		if len(args) > 0 {
			want = args[0]
		}
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.Theme(ctx, want)
		})(cmd, args)
	},
}

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve a local tokenization backend",
	Long: `Serve an in-memory tokenization backend for development.

Static routes from --config (.yaml, .json or .jsonc) are matched before
the built-in backend. --write-config writes an example file and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMockServer(cmd.Context())
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Manage TUI key bindings",
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default bindings to the keybinds file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := keybinds.DefaultConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := keybinds.SaveConfig(keybinds.ExportDefaults(keybinds.NewDefaultRegistry()), path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var keybindsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the keybinds file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		cfg, err := keybinds.LoadConfig(keybinds.DefaultConfigPath())
		if err != nil {
			return err
		}
		result := keybinds.NewValidator().ValidateConfig(cfg)
		fmt.Fprint(cmd.OutOrStdout(), result.String())
		if result.HasErrors() {
			return fmt.Errorf("invalid keybinds")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		if !versionCheck {
			return nil
		}
		update, err := version.NewChecker().CheckForUpdate(cmd.Context(), version.Version)
		if err != nil {
			return err
		}
		if update.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "Version %s is available: %s\n", update.Latest, update.URL)
		}
		return nil
	},
}

func registerCommands() {
	for _, c := range []*cobra.Command{unitsCmd, tokensCmd} {
		c.Flags().IntVar(&listFlags.Page, "page", 1, "Page number")
		c.Flags().IntVar(&listFlags.Limit, "limit", 0, "Units per page (default from settings)")
		c.Flags().StringVarP(&listFlags.Search, "search", "s", "", "Search query")
		c.Flags().StringVar(&listFlags.Order, "order", "", "Vintage order (asc/desc)")
	}

	signInCmd.Flags().StringVar(&signInAPIKey, "api-key", "", "API key")
	signInCmd.Flags().StringVar(&signInServer, "server", "", "Server address")

	tf := tokenizeCmd.Flags()
	tf.StringVarP(&tokenizeFile, "file", "f", "", "JSON request file")
	tf.StringVar(&tokenizeReq.WarehouseUnitID, "unit-id", "", "Warehouse unit id")
	tf.StringVar(&tokenizeReq.OrgUID, "org-uid", "", "Organization uid (default from the unit)")
	tf.StringVar(&tokenizeReq.WarehouseProjectID, "project-id", "", "Warehouse project id (default from the unit)")
	tf.IntVar(&tokenizeReq.VintageYear, "vintage", 0, "Vintage year (default from the unit)")
	tf.IntVar(&tokenizeReq.SequenceNum, "sequence", 0, "Sequence number")
	tf.StringVar(&tokenizeReq.ToAddress, "to", "", "Wallet address")
	tf.IntVar(&tokenizeReq.Amount, "amount", 0, "Amount (default the unit count)")

	mf := mockServerCmd.Flags()
	mf.StringVarP(&mockConfigPath, "config", "c", "", "Mock configuration file")
	mf.IntVarP(&mockPort, "port", "p", 0, "Port (overrides the config)")
	mf.StringVar(&mockOrgUID, "org-uid", "", "Home organization reported by the backend")
	mf.StringVar(&mockAPIKey, "api-key", "", "Require this x-api-key")
	mf.StringVar(&mockWriteCfg, "write-config", "", "Write an example configuration to this path")

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for a newer release")

	keybindsCmd.AddCommand(keybindsInitCmd, keybindsCheckCmd)

	rootCmd.AddCommand(
		unitsCmd,
		tokensCmd,
		countCmd,
		signInCmd,
		signOutCmd,
		importOrgCmd,
		tokenizeCmd,
		detokenizeCmd,
		confirmDetokCmd,
		themeCmd,
		mockServerCmd,
		keybindsCmd,
		versionCmd,
	)
}

// mergeTokenizeRequest overlays the non-zero fields of flags onto base
func mergeTokenizeRequest(base, flags types.TokenizeRequest) types.TokenizeRequest {
	if flags.OrgUID != "" {
		base.OrgUID = flags.OrgUID
	}
	if flags.WarehouseProjectID != "" {
		base.WarehouseProjectID = flags.WarehouseProjectID
	}
	if flags.VintageYear != 0 {
		base.VintageYear = flags.VintageYear
	}
	if flags.SequenceNum != 0 {
		base.SequenceNum = flags.SequenceNum
	}
	if flags.WarehouseUnitID != "" {
		base.WarehouseUnitID = flags.WarehouseUnitID
	}
	if flags.ToAddress != "" {
		base.ToAddress = flags.ToAddress
	}
	if flags.Amount != 0 {
		base.Amount = flags.Amount
	}
	return base
}

// runMockServer serves the mock backend until interrupted
func runMockServer(ctx context.Context) error {
	if mockWriteCfg != "" {
		if _, err := os.Stat(mockWriteCfg); err == nil {
			return fmt.Errorf("%s already exists", mockWriteCfg)
		}
		return mock.SaveConfig(mock.ExampleConfig(), mockWriteCfg)
	}

	logLevel := flagLogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Init(logLevel, os.Stderr)
	log := logging.Component("mock")

	cfg := mock.DefaultConfig()
	workdir, err := os.Getwd()
	if err != nil {
		return err
	}
	if mockConfigPath != "" {
		if cfg, err = mock.LoadConfig(mockConfigPath); err != nil {
			return err
		}
		workdir = filepath.Dir(mockConfigPath)
	}
	if mockPort != 0 {
		cfg.Port = mockPort
	}
	if mockOrgUID != "" {
		cfg.OrgUID = mockOrgUID
	}
	if mockAPIKey != "" {
		cfg.APIKey = mockAPIKey
	}

	server := mock.NewServer(cfg, workdir, log)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Mock backend on %s (set apiHost or %s to use it)\n", server.GetAddress(), config.APIHostEnv)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return server.Stop()
}
