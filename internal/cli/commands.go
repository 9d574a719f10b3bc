package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/studiowebux/tokenctl/internal/actions"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// ListOptions selects a page of units from the command line. Page is one
// based here, as shown to users.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Order  string // asc, desc or empty
}

func (o ListOptions) toActions(defaultLimit int) (actions.ListOptions, error) {
	opts := actions.ListOptions{
		Page:         o.Page - 1,
		ResultsLimit: o.Limit,
		SearchQuery:  o.Search,
	}
	if opts.Page < 0 {
		opts.Page = 0
	}
	if opts.ResultsLimit <= 0 {
		opts.ResultsLimit = defaultLimit
	}
	switch strings.ToLower(o.Order) {
	case "":
	case "asc", "ascending":
		opts.SortOrder = types.SortAscending
	case "desc", "descending":
		opts.SortOrder = types.SortDescending
	default:
		return opts, fmt.Errorf("invalid order %q (use asc or desc)", o.Order)
	}
	return opts, nil
}

// Units lists untokenized units
func (r *Runner) Units(ctx context.Context, o ListOptions) error {
	opts, err := o.toActions(r.settings.TableRows)
	if err != nil {
		return err
	}
	state, err := r.run(ctx, r.client.GetUntokenizedUnits(opts))
	if err != nil {
		return err
	}
	r.printPagination(opts, state)
	return r.printUnits(state.UntokenizedUnits)
}

// Tokens lists tokenized units
func (r *Runner) Tokens(ctx context.Context, o ListOptions) error {
	opts, err := o.toActions(r.settings.TableRows)
	if err != nil {
		return err
	}
	state, err := r.run(ctx, r.client.GetTokens(opts))
	if err != nil {
		return err
	}
	r.printPagination(opts, state)
	return r.printUnits(state.Tokens)
}

func (r *Runner) printPagination(opts actions.ListOptions, state store.State) {
	if state.PaginationNrOfPages == nil {
		return
	}
	fmt.Fprintf(r.opts.ErrOut, "Page %d of %d\n", opts.Page+1, *state.PaginationNrOfPages)
}

// Counts is the output of the count command
type Counts struct {
	Untokenized int `json:"untokenized" yaml:"untokenized"`
	Tokens      int `json:"tokens" yaml:"tokens"`
}

// Count estimates the number of untokenized units and tokens
func (r *Runner) Count(ctx context.Context) error {
	state, err := r.run(ctx, r.client.GetCountForTokensAndUntokenizedUnits())
	if err != nil {
		return err
	}
	var c Counts
	if state.UntokenizedUnitsCount != nil {
		c.Untokenized = *state.UntokenizedUnitsCount
	}
	if state.TokensCount != nil {
		c.Tokens = *state.TokensCount
	}
	return r.print(c, func() ([]string, [][]string) {
		return []string{"Collection", "Count"}, [][]string{
			{"untokenized", fmt.Sprint(c.Untokenized)},
			{"tokens", fmt.Sprint(c.Tokens)},
		}
	})
}

// SignIn stores the credentials. Both values are required.
func (r *Runner) SignIn(ctx context.Context, apiKey, serverAddress string) error {
	if apiKey == "" || serverAddress == "" {
		return fmt.Errorf("both an api key and a server address are required")
	}
	state, err := r.run(ctx, r.client.SignIn(apiKey, serverAddress))
	if err != nil {
		return err
	}
	if !state.SignedIn() {
		return fmt.Errorf("sign in failed, see %s", r.logHint())
	}
	fmt.Fprintln(r.opts.ErrOut, successStyle.Render("Signed in to "+serverAddress))
	return nil
}

// SignOut removes the stored credentials
func (r *Runner) SignOut(ctx context.Context) error {
	if _, err := r.run(ctx, r.client.SignOut()); err != nil {
		return err
	}
	fmt.Fprintln(r.opts.ErrOut, successStyle.Render("Signed out"))
	return nil
}

// ImportHomeOrg connects the backend to an organization
func (r *Runner) ImportHomeOrg(ctx context.Context, orgUID string) error {
	state, err := r.run(ctx, r.client.ImportHomeOrg(orgUID))
	if err != nil {
		return err
	}
	if state.HomeOrgUID != nil {
		fmt.Fprintf(r.opts.Out, "%s\n", *state.HomeOrgUID)
	}
	return nil
}

// Tokenize mints tokens for a unit. Missing fields are filled from the
// unit itself, or prompted for when stdin is a terminal.
func (r *Runner) Tokenize(ctx context.Context, req types.TokenizeRequest) error {
	if req.WarehouseUnitID == "" {
		unit, err := r.selectUnit(ctx)
		if err != nil {
			return err
		}
		fillFromUnit(&req, unit)
	}
	if req.ToAddress == "" {
		if !isInteractive() {
			return fmt.Errorf("missing --to address (non-interactive mode)")
		}
		value, err := promptForValue(r.opts.ErrOut, "to_address")
		if err != nil {
			return fmt.Errorf("failed to read input for 'to_address': %w", err)
		}
		req.ToAddress = value
	}

	_, err := r.run(ctx, r.client.TokenizeUnit(req))
	return err
}

func (r *Runner) selectUnit(ctx context.Context) (types.Unit, error) {
	if !isInteractive() {
		return types.Unit{}, fmt.Errorf("missing --unit-id (non-interactive mode)")
	}
	state, err := r.run(ctx, r.client.GetUntokenizedUnits(actions.ListOptions{ResultsLimit: 100}))
	if err != nil {
		return types.Unit{}, err
	}
	if len(state.UntokenizedUnits) == 0 {
		return types.Unit{}, fmt.Errorf("no untokenized units available")
	}
	return promptForUnit(state.UntokenizedUnits)
}

func fillFromUnit(req *types.TokenizeRequest, u types.Unit) {
	req.WarehouseUnitID = u.WarehouseUnitID
	if req.OrgUID == "" {
		req.OrgUID = u.OrgUID
	}
	if req.WarehouseProjectID == "" {
		req.WarehouseProjectID = u.WarehouseProjectID()
	}
	if req.VintageYear == 0 {
		req.VintageYear = u.VintageYear
	}
	if req.Amount == 0 {
		req.Amount = u.UnitCount
	}
}

// Detokenize parses a detokenization file and prints the parsed record
func (r *Runner) Detokenize(ctx context.Context, detokString string) error {
	state, err := r.run(ctx, r.client.DetokenizeUnit(detokString))
	if err != nil {
		return err
	}
	return r.printDetok(state.UnitToBeDetokenized)
}

// ConfirmDetokenization parses the file and confirms the detokenization
// in one go
func (r *Runner) ConfirmDetokenization(ctx context.Context, detokString string) error {
	state, err := r.run(ctx, r.client.DetokenizeUnit(detokString))
	if err != nil {
		return err
	}
	pending := state.UnitToBeDetokenized
	if pending == nil {
		return fmt.Errorf("detokenization file could not be parsed")
	}

	_, err = r.run(ctx, r.client.ConfirmDetokanization(pending))
	return err
}

// Theme prints the theme, or changes it to light, dark or the other one
// with "toggle"
func (r *Runner) Theme(ctx context.Context, want string) error {
	current := actions.Bootstrap(r.settings, r.storage).Theme

	toggle := false
	switch want {
	case "":
	case "toggle":
		toggle = true
	default:
		theme := types.Theme(want)
		if !theme.Valid() {
			return fmt.Errorf("invalid theme %q (use light, dark or toggle)", want)
		}
		toggle = theme != current
	}

	if toggle {
		state, err := r.run(ctx, dispatch(store.ToggleTheme{}))
		if err != nil {
			return err
		}
		current = state.Theme
	}

	fmt.Fprintln(r.opts.Out, current)
	return nil
}

func dispatch(a store.Action) actions.Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		d.Dispatch(a)
	}
}

// ReadDetokString returns s, the content of the file when s starts with
// '@', or stdin when s is "-"
func ReadDetokString(s string) (string, error) {
	switch {
	case s == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case strings.HasPrefix(s, "@"):
		data, err := os.ReadFile(s[1:])
		if err != nil {
			return "", fmt.Errorf("failed to read detokenization file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return s, nil
}

// ReadTokenizeRequest decodes a tokenization request from a JSON file
func ReadTokenizeRequest(path string) (types.TokenizeRequest, error) {
	var req types.TokenizeRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read request file: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request file: %w", err)
	}
	return req, nil
}

func (r *Runner) logHint() string {
	if r.settings.LogLevel == "debug" {
		return "the log output above"
	}
	return "the log output (use --log-level debug)"
}
