package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Notification message ids
const (
	MsgOrganizationCreated         = "organization-created"
	MsgOrganizationNotCreated      = "organization-not-created"
	MsgProjectsNotLoaded           = "projects-not-loaded"
	MsgUntokenizedUnitsNotLoaded   = "untokenized-units-not-loaded"
	MsgTokensNotLoaded             = "tokens-not-loaded"
	MsgUnitWasTokenized            = "unit-was-tokenized"
	MsgUnitNotTokenized            = "unit-not-tokenized"
	MsgDetokFileParsed             = "detok-file-parsed"
	MsgDetokFileNotParsed          = "detok-file-not-parsed"
	MsgDetokanizationSuccessful    = "detokanization-successful"
	MsgDetokanizationNotSuccessful = "detokanization-not-successful"
)

// ListOptions selects a page of units
type ListOptions struct {
	// Page is zero based
	Page         int
	ResultsLimit int
	SearchQuery  string
	SortOrder    types.SortOrder
}

func (o ListOptions) query() api.Query {
	q := api.Query{}.
		Add("page", strconv.Itoa(o.Page+1)).
		Add("limit", strconv.Itoa(o.ResultsLimit))
	if o.SearchQuery != "" {
		q = q.Add("search", o.SearchQuery)
	}
	if order, ok := o.SortOrder.QueryValue(); ok {
		q = q.Add("order", order)
	}
	return q
}

// SignIn stores the credentials and signs the user in. Either value empty
// is a no-op.
func (c *Client) SignIn(apiKey, serverAddress string) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		if apiKey == "" || serverAddress == "" {
			return
		}
		if err := c.storage.Set(storage.KeyAPIKey, apiKey); err != nil {
			c.log.Error().Err(err).Msg("failed to store api key")
			return
		}
		if err := c.storage.Set(storage.KeyServerAddress, serverAddress); err != nil {
			c.log.Error().Err(err).Msg("failed to store server address")
			return
		}
		d.Dispatch(store.SignUserIn{APIKey: apiKey, ServerAddress: serverAddress})
		d.Dispatch(store.RefreshApp{Render: true})
	}
}

// SignOut forgets the stored credentials
func (c *Client) SignOut() Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		if err := c.storage.Remove(storage.KeyAPIKey, storage.KeyServerAddress); err != nil {
			c.log.Error().Err(err).Msg("failed to remove credentials")
		}
		d.Dispatch(store.SignUserOut{})
	}
}

// ImportHomeOrg connects the backend to an organization
func (c *Client) ImportHomeOrg(orgUID string) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		c.fetchWrapper(ctx, d, fetchParams{
			Request:          api.Post(api.PathConnect, map[string]string{"orgUid": orgUID}),
			SuccessMessageID: MsgOrganizationCreated,
			FailedMessageID:  MsgOrganizationNotCreated,
		})
	}
}

// GetCountForTokensAndUntokenizedUnits estimates both collection sizes from
// the first and the last page. Middle pages are not counted. Failures only
// clear the connectivity flag.
func (c *Client) GetCountForTokensAndUntokenizedUnits() Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			count, err := c.countUnits(gctx, api.PathUntokenizedUnits)
			if err != nil {
				return err
			}
			d.Dispatch(store.SetUntokenizedUnitsCount{Count: count})
			return nil
		})
		g.Go(func() error {
			count, err := c.countUnits(gctx, api.PathTokenizedUnits)
			if err != nil {
				return err
			}
			d.Dispatch(store.SetTokensCount{Count: count})
			return nil
		})

		if err := g.Wait(); err != nil {
			c.log.Error().Err(err).Msg("failed to count units")
			d.Dispatch(store.ConnectionCheck{Reachable: false})
		}
	}
}

func (c *Client) countUnits(ctx context.Context, path string) (int, error) {
	first, err := c.fetchPage(ctx, path, 1)
	if err != nil {
		return 0, err
	}
	count := len(first.Data)
	if first.PageCount > 1 {
		last, err := c.fetchPage(ctx, path, first.PageCount)
		if err != nil {
			return 0, err
		}
		count += len(last.Data)
	}
	return count, nil
}

func (c *Client) fetchPage(ctx context.Context, path string, page int) (types.Page[types.Unit], error) {
	var result types.Page[types.Unit]
	q := api.Query{}.
		Add("page", strconv.Itoa(page)).
		Add("limit", strconv.Itoa(c.tableRows))

	resp, err := c.fetcher.Fetch(ctx, api.Get(path, q))
	if err != nil {
		return result, fmt.Errorf("failed to fetch %s page %d: %w", path, page, err)
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return result, fmt.Errorf("failed to decode %s page %d: %w", path, page, err)
	}
	return result, nil
}

// AddProjectDetailsToUnits joins project name, link and registry id onto
// units and stores them in the slice selected by unitsType. Projects are
// fetched once for all referenced ids.
func (c *Client) AddProjectDetailsToUnits(units []types.Unit, unitsType types.UnitsType) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		ids := projectIDs(units)
		if len(ids) == 0 {
			dispatchUnits(d, units, unitsType)
			return
		}

		q := api.Query{}
		for _, id := range ids {
			q = q.Add("projectIds", id)
		}

		c.fetchWrapper(ctx, d, fetchParams{
			Request:         api.Get(api.PathProjects, q),
			FailedMessageID: MsgProjectsNotLoaded,
			OnSuccess: func(body []byte) error {
				var projects []types.Project
				if err := json.Unmarshal(body, &projects); err != nil {
					return fmt.Errorf("failed to decode projects: %w", err)
				}
				d.Dispatch(store.SetProjects{Projects: projects})
				dispatchUnits(d, EnrichUnits(units, projects), unitsType)
				return nil
			},
		})
	}
}

// EnrichUnits returns a copy of units with project details filled in.
// Units without a matching project are returned unchanged.
func EnrichUnits(units []types.Unit, projects []types.Project) []types.Unit {
	byID := make(map[string]types.Project, len(projects))
	for _, p := range projects {
		byID[p.WarehouseProjectID] = p
	}

	out := make([]types.Unit, len(units))
	for i, u := range units {
		if p, ok := byID[u.WarehouseProjectID()]; ok && u.Issuance != nil {
			u.ProjectName = p.ProjectName
			u.ProjectLink = p.ProjectLink
			u.RegistryProjectID = p.ProjectID
		}
		out[i] = u
	}
	return out
}

func projectIDs(units []types.Unit) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, u := range units {
		id := u.WarehouseProjectID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func dispatchUnits(d store.Dispatcher, units []types.Unit, unitsType types.UnitsType) {
	switch unitsType {
	case types.UnitsUntokenized:
		d.Dispatch(store.SetUntokenizedUnits{Units: units})
	case types.UnitsTokens:
		d.Dispatch(store.SetTokens{Units: units})
	}
}

// GetUntokenizedUnits loads one page of units that can be tokenized
func (c *Client) GetUntokenizedUnits(opts ListOptions) Thunk {
	return c.listUnits(api.PathUntokenizedUnits, types.UnitsUntokenized, MsgUntokenizedUnitsNotLoaded, opts)
}

// GetTokens loads one page of tokenized units
func (c *Client) GetTokens(opts ListOptions) Thunk {
	return c.listUnits(api.PathTokenizedUnits, types.UnitsTokens, MsgTokensNotLoaded, opts)
}

func (c *Client) listUnits(path string, unitsType types.UnitsType, failedID string, opts ListOptions) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		if opts.ResultsLimit <= 0 || opts.Page < 0 {
			return
		}

		c.fetchWrapper(ctx, d, fetchParams{
			Request:         api.Get(path, opts.query()),
			FailedMessageID: failedID,
			OnSuccess: func(body []byte) error {
				var page types.Page[types.Unit]
				if err := json.Unmarshal(body, &page); err != nil {
					return fmt.Errorf("failed to decode units: %w", err)
				}
				d.Dispatch(store.SetPaginationNrOfPages{Pages: page.PageCount})
				c.AddProjectDetailsToUnits(page.Data, unitsType)(ctx, d)
				return nil
			},
		})
	}
}

// TokenizeUnit asks the backend to mint tokens for a unit
func (c *Client) TokenizeUnit(req types.TokenizeRequest) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		c.fetchWrapper(ctx, d, fetchParams{
			Request:          api.Post(api.PathTokenize, req),
			SuccessMessageID: MsgUnitWasTokenized,
			FailedMessageID:  MsgUnitNotTokenized,
		})
	}
}

// DetokenizeUnit parses a detokenization file and keeps the result as the
// pending detokenization
func (c *Client) DetokenizeUnit(detokString string) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		c.fetchWrapper(ctx, d, fetchParams{
			Request:          api.Post(api.PathParseDetokFile, map[string]string{"detokString": detokString}),
			SuccessMessageID: MsgDetokFileParsed,
			FailedMessageID:  MsgDetokFileNotParsed,
			OnSuccess: func(body []byte) error {
				var result types.DetokenizationResult
				if err := json.Unmarshal(body, &result); err != nil {
					return fmt.Errorf("failed to decode detokenization result: %w", err)
				}
				d.Dispatch(store.SetUnitToBeDetokenized{Unit: result})
				return nil
			},
		})
	}
}

// ConfirmDetokanization submits the detokenization and clears the pending
// record on success
func (c *Client) ConfirmDetokanization(req any) Thunk {
	return func(ctx context.Context, d store.Dispatcher) {
		c.fetchWrapper(ctx, d, fetchParams{
			Request:          api.Post(api.PathConfirmDetokanization, req),
			SuccessMessageID: MsgDetokanizationSuccessful,
			FailedMessageID:  MsgDetokanizationNotSuccessful,
			OnSuccess: func([]byte) error {
				d.Dispatch(store.SetUnitToBeDetokenized{})
				return nil
			},
		})
	}
}
