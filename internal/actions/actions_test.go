package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/fixtures"
	"github.com/studiowebux/tokenctl/internal/mock"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/store/storetest"
	"github.com/studiowebux/tokenctl/internal/types"
)

const (
	loaderOn  = "ACTIVATE_PROGRESS_INDICATOR"
	loaderOff = "DEACTIVATE_PROGRESS_INDICATOR"
	notify    = "SET_NOTIFICATION"
)

type testBackend struct {
	mock   *mock.Server
	server *httptest.Server
	client *Client
	store  *storage.Memory
}

func newTestBackend(t *testing.T, cfg *mock.Config) *testBackend {
	t.Helper()
	if cfg == nil {
		cfg = mock.DefaultConfig()
	}
	m := mock.NewServer(cfg, t.TempDir(), zerolog.Nop())
	ts := httptest.NewServer(m.Handler())
	t.Cleanup(ts.Close)

	st := storage.NewMemory()
	fetcher := api.NewHTTPFetcher(ts.URL+mock.DefaultPrefix, st)
	return &testBackend{
		mock:   m,
		server: ts,
		client: NewClient(fetcher, st),
		store:  st,
	}
}

func (b *testBackend) requests(path string) []mock.RequestLog {
	var out []mock.RequestLog
	for _, l := range b.mock.GetLogs() {
		if l.Path == mock.DefaultPrefix+path {
			out = append(out, l)
		}
	}
	return out
}

func newRecorder() *storetest.Recorder {
	return storetest.NewRecorder(store.InitialState(types.ThemeLight))
}

func TestSignInRequiresBothValues(t *testing.T) {
	tests := []struct {
		name, apiKey, address string
	}{
		{"empty key", "", "http://srv"},
		{"empty address", "key", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storage.NewMemory()
			c := NewClient(api.NewFixtureFetcher(), st)
			rec := newRecorder()

			c.SignIn(tt.apiKey, tt.address)(context.Background(), rec)

			assert.Empty(t, rec.Actions())
			assert.Zero(t, st.Writes())
		})
	}
}

func TestSignInAndOut(t *testing.T) {
	st := storage.NewMemory()
	c := NewClient(api.NewFixtureFetcher(), st)
	rec := newRecorder()

	c.SignIn("key", "http://srv")(context.Background(), rec)

	assert.Equal(t, []string{"SIGN_USER_IN", "REFRESH_APP"}, rec.Types())
	assert.True(t, rec.State().SignedIn())
	assert.True(t, rec.State().Refresh)
	key, address, ok := storage.Credentials(st)
	require.True(t, ok)
	assert.Equal(t, "key", key)
	assert.Equal(t, "http://srv", address)

	c.SignOut()(context.Background(), rec)

	assert.False(t, rec.State().SignedIn())
	_, _, ok = storage.Credentials(st)
	assert.False(t, ok)
}

func TestSetNotificationMessageGuards(t *testing.T) {
	tests := []struct {
		name    string
		typ     types.NotificationType
		id      string
		want    int
		cleared bool
	}{
		{"error", types.NotificationError, "tokens-not-loaded", 1, false},
		{"success", types.NotificationSuccess, "unit-was-tokenized", 1, false},
		{"null with id", types.NotificationNull, "x", 1, false},
		{"null clears", types.NotificationNull, "", 1, true},
		{"unknown type", types.NotificationType("warning"), "x", 0, false},
		{"empty error id", types.NotificationError, "", 1, false},
		{"empty success id", types.NotificationSuccess, "", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			SetNotificationMessage(tt.typ, tt.id)(context.Background(), rec)

			require.Equal(t, tt.want, rec.Count(notify))
			if tt.want == 0 {
				return
			}
			n := rec.State().Notification
			if tt.cleared {
				assert.Nil(t, n)
				return
			}
			require.NotNil(t, n)
			assert.Equal(t, tt.id, n.ID)
			assert.Equal(t, tt.typ, n.Type)
			assert.NotEmpty(t, n.Key)
		})
	}
}

func TestSetThemeFromStorage(t *testing.T) {
	st := storage.NewMemory()
	rec := newRecorder()

	SetThemeFromStorage(st)(context.Background(), rec)
	assert.Empty(t, rec.Actions())

	require.NoError(t, st.Set(storage.KeyTheme, "purple"))
	SetThemeFromStorage(st)(context.Background(), rec)
	assert.Empty(t, rec.Actions())

	require.NoError(t, st.Set(storage.KeyTheme, "dark"))
	SetThemeFromStorage(st)(context.Background(), rec)
	assert.Equal(t, types.ThemeDark, rec.State().Theme)
}

func TestGetUntokenizedUnitsBuildsQuery(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.GetUntokenizedUnits(ListOptions{Page: 0, ResultsLimit: 20})(context.Background(), rec)

	reqs := b.requests(api.PathUntokenizedUnits)
	require.Len(t, reqs, 1)
	assert.Equal(t, "page=1&limit=20", reqs[0].Query)

	st := rec.State()
	require.NotNil(t, st.PaginationNrOfPages)
	assert.Equal(t, 2, *st.PaginationNrOfPages)
	assert.Len(t, st.UntokenizedUnits, 20)
}

func TestGetTokensQueryWithSearchAndOrder(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.GetTokens(ListOptions{
		Page:         2,
		ResultsLimit: 5,
		SearchQuery:  "acme offsets",
		SortOrder:    types.SortDescending,
	})(context.Background(), rec)

	reqs := b.requests(api.PathTokenizedUnits)
	require.Len(t, reqs, 1)
	assert.Equal(t, "page=3&limit=5&search=acme+offsets&order=DESC", reqs[0].Query)
	assert.Equal(t, 1, rec.Count("SET_TOKENS"))
	assert.NotNil(t, rec.State().Tokens)
}

func TestListingRejectsNonPositiveLimit(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.GetUntokenizedUnits(ListOptions{ResultsLimit: 0})(context.Background(), rec)

	assert.Empty(t, rec.Actions())
	assert.Empty(t, b.mock.GetLogs())
}

func TestAddProjectDetailsSingleRequest(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	projects := fixtures.Projects()
	units := []types.Unit{
		{WarehouseUnitID: "u1", Issuance: &types.Issuance{WarehouseProjectID: projects[0].WarehouseProjectID}},
		{WarehouseUnitID: "u2", Issuance: &types.Issuance{WarehouseProjectID: projects[1].WarehouseProjectID}},
		{WarehouseUnitID: "u3", Issuance: &types.Issuance{WarehouseProjectID: projects[0].WarehouseProjectID}},
		{WarehouseUnitID: "u4", Issuance: &types.Issuance{WarehouseProjectID: "unknown-project"}},
		{WarehouseUnitID: "u5"},
	}

	b.client.AddProjectDetailsToUnits(units, types.UnitsUntokenized)(context.Background(), rec)

	reqs := b.requests(api.PathProjects)
	require.Len(t, reqs, 1)
	q, err := url.ParseQuery(reqs[0].Query)
	require.NoError(t, err)
	assert.Equal(t, []string{
		projects[0].WarehouseProjectID,
		projects[1].WarehouseProjectID,
		"unknown-project",
	}, q["projectIds"])

	got := rec.State().UntokenizedUnits
	require.Len(t, got, len(units))
	assert.Equal(t, projects[0].ProjectName, got[0].ProjectName)
	assert.Equal(t, projects[0].ProjectLink, got[0].ProjectLink)
	assert.Equal(t, projects[0].ProjectID, got[0].RegistryProjectID)
	assert.Equal(t, projects[1].ProjectName, got[1].ProjectName)
	assert.Equal(t, units[3], got[3])
	assert.Equal(t, units[4], got[4])
	assert.Len(t, rec.State().Projects, 2)
	// no success id, so a successful fetch shows no toast
	assert.Zero(t, rec.Count(notify))
}

func TestAddProjectDetailsWithoutProjectIDs(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	units := []types.Unit{{WarehouseUnitID: "u1"}, {WarehouseUnitID: "u2", Issuance: &types.Issuance{}}}
	b.client.AddProjectDetailsToUnits(units, types.UnitsTokens)(context.Background(), rec)

	assert.Empty(t, b.mock.GetLogs())
	assert.Equal(t, []string{"SET_TOKENS"}, rec.Types())
	assert.Equal(t, units, rec.State().Tokens)
}

func TestMockedListingSkipsLoaderAndNotifications(t *testing.T) {
	c := NewClient(api.NewFixtureFetcher(), storage.NewMemory())
	rec := newRecorder()

	c.GetUntokenizedUnits(ListOptions{Page: 0, ResultsLimit: 10})(context.Background(), rec)

	assert.Zero(t, rec.Count(loaderOn))
	assert.Zero(t, rec.Count(loaderOff))
	assert.Zero(t, rec.Count(notify))

	st := rec.State()
	assert.Len(t, st.UntokenizedUnits, 10)
	require.NotNil(t, st.PaginationNrOfPages)
	assert.Equal(t, fixtures.MockedPageCount, *st.PaginationNrOfPages)
}

func TestMockedPostSkipsNotifications(t *testing.T) {
	c := NewClient(api.NewFixtureFetcher(), storage.NewMemory())
	rec := newRecorder()

	c.TokenizeUnit(types.TokenizeRequest{WarehouseUnitID: "u1", ToAddress: "xch1"})(context.Background(), rec)
	c.DetokenizeUnit("anything")(context.Background(), rec)

	assert.Zero(t, rec.Count(loaderOn))
	assert.Zero(t, rec.Count(notify))
	assert.NotNil(t, rec.State().UnitToBeDetokenized)
}

func TestRealPathDeactivatesLoaderOnce(t *testing.T) {
	failing := mock.DefaultConfig()
	failing.Routes = []mock.Route{{
		Method: "POST",
		Path:   api.PathTokenize,
		Status: http.StatusInternalServerError,
		Body:   `{"error":"database is locked"}`,
	}}

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	tests := []struct {
		name    string
		client  func(t *testing.T) *Client
		success bool
	}{
		{"success", func(t *testing.T) *Client { return newTestBackend(t, nil).client }, true},
		{"http failure", func(t *testing.T) *Client { return newTestBackend(t, failing).client }, false},
		{"transport failure", func(t *testing.T) *Client {
			return NewClient(api.NewHTTPFetcher(downURL, nil), storage.NewMemory())
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			unit := fixtures.Units()[0]

			tt.client(t).TokenizeUnit(types.TokenizeRequest{
				WarehouseUnitID: unit.WarehouseUnitID,
				ToAddress:       "xch1qqq",
			})(context.Background(), rec)

			assert.Equal(t, 1, rec.Count(loaderOn))
			assert.Equal(t, 1, rec.Count(loaderOff))
			assert.Equal(t, loaderOff, rec.Types()[len(rec.Types())-1])
			assert.False(t, rec.State().ShowProgressOverlay)

			n := rec.State().Notification
			require.NotNil(t, n)
			if tt.success {
				assert.Equal(t, types.NotificationSuccess, n.Type)
				assert.Equal(t, MsgUnitWasTokenized, n.ID)
				assert.True(t, rec.State().ConnectionCheck)
				return
			}
			assert.Equal(t, types.NotificationError, n.Type)
		})
	}
}

func TestHTTPFailureUsesErrorBody(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.TokenizeUnit(types.TokenizeRequest{})(context.Background(), rec)

	n := rec.State().Notification
	require.NotNil(t, n)
	assert.Equal(t, "Invalid tokenization request: warehouse_unit_id is required ; to_address is required ; ", n.ID)
}

func TestTransportFailureClearsConnectivity(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	c := NewClient(api.NewHTTPFetcher(down.URL, nil), storage.NewMemory())
	rec := newRecorder()

	var failed bool
	c.fetchWrapper(context.Background(), rec, fetchParams{
		Request:         api.Get(api.PathProjects, nil),
		FailedMessageID: MsgProjectsNotLoaded,
		OnFailed:        func() { failed = true },
	})

	assert.True(t, failed)
	assert.False(t, rec.State().ConnectionCheck)
	require.NotNil(t, rec.State().Notification)
	assert.Equal(t, MsgProjectsNotLoaded, rec.State().Notification.ID)
	assert.Zero(t, rec.Count("SET_HOME_ORG"))
}

func TestUnreadableBodyClearsConnectivity(t *testing.T) {
	tests := []struct {
		name   string
		status int
		list   func(c *Client) Thunk
		failed string
	}{
		{"2xx html", http.StatusOK, func(c *Client) Thunk {
			return c.GetUntokenizedUnits(ListOptions{ResultsLimit: 5})
		}, MsgUntokenizedUnitsNotLoaded},
		{"5xx html", http.StatusBadGateway, func(c *Client) Thunk {
			return c.GetTokens(ListOptions{ResultsLimit: 5})
		}, MsgTokensNotLoaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mock.DefaultConfig()
			cfg.Routes = []mock.Route{{
				Method:   "GET",
				Path:     "/units/",
				PathType: "prefix",
				Status:   tt.status,
				Headers:  map[string]string{"Content-Type": "text/html"},
				Body:     "<html>proxy</html>",
			}}
			b := newTestBackend(t, cfg)
			rec := newRecorder()

			tt.list(b.client)(context.Background(), rec)

			st := rec.State()
			assert.False(t, st.ConnectionCheck)
			require.NotNil(t, st.Notification)
			assert.Equal(t, types.NotificationError, st.Notification.Type)
			assert.Equal(t, tt.failed, st.Notification.ID)
			assert.Empty(t, st.UntokenizedUnits)
			assert.Empty(t, st.Tokens)
			assert.Equal(t, 1, rec.Count(loaderOff))
		})
	}
}

func TestOnSuccessErrorRunsOnFailed(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	var failed bool
	b.client.fetchWrapper(context.Background(), rec, fetchParams{
		Request:         api.Get(api.PathProjects, nil),
		FailedMessageID: MsgProjectsNotLoaded,
		OnSuccess:       func([]byte) error { return assert.AnError },
		OnFailed:        func() { failed = true },
	})

	assert.True(t, failed)
	assert.False(t, rec.State().ConnectionCheck)
	require.NotNil(t, rec.State().Notification)
	assert.Equal(t, MsgProjectsNotLoaded, rec.State().Notification.ID)
}

func TestImportHomeOrgReadsOrgHeader(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.ImportHomeOrg("org-42")(context.Background(), rec)

	st := rec.State()
	require.NotNil(t, st.HomeOrgUID)
	assert.Equal(t, "org-42", *st.HomeOrgUID)
	require.NotNil(t, st.Notification)
	assert.Equal(t, MsgOrganizationCreated, st.Notification.ID)
	assert.Equal(t, "org-42", b.mock.Backend().OrgUID())
}

func TestMissingOrgHeaderClearsHomeOrg(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := storetest.NewRecorder(store.Reduce(store.InitialState(types.ThemeLight), store.NewSetHomeOrg("org-1")))

	b.client.GetTokens(ListOptions{ResultsLimit: 10})(context.Background(), rec)

	assert.Nil(t, rec.State().HomeOrgUID)
}

func TestDetokenizationFlow(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()
	ctx := context.Background()
	unit := fixtures.Units()[3]

	b.client.TokenizeUnit(types.TokenizeRequest{WarehouseUnitID: unit.WarehouseUnitID, ToAddress: "xch1abc"})(ctx, rec)
	b.client.DetokenizeUnit("xch1abc")(ctx, rec)

	pending := rec.State().UnitToBeDetokenized
	require.NotNil(t, pending)
	require.NotNil(t, rec.State().Notification)
	assert.Equal(t, MsgDetokFileParsed, rec.State().Notification.ID)

	var parsed types.Unit
	require.NoError(t, pending.Field("unit", &parsed))
	assert.Equal(t, unit.WarehouseUnitID, parsed.WarehouseUnitID)

	b.client.ConfirmDetokanization(pending)(ctx, rec)

	assert.Nil(t, rec.State().UnitToBeDetokenized)
	assert.Equal(t, MsgDetokanizationSuccessful, rec.State().Notification.ID)
	untokenized, tokenized := b.mock.Backend().Counts()
	assert.Equal(t, len(fixtures.Units()), untokenized)
	assert.Zero(t, tokenized)
}

func TestDetokenizeUnknownFile(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.DetokenizeUnit("does-not-exist")(context.Background(), rec)

	assert.Nil(t, rec.State().UnitToBeDetokenized)
	require.NotNil(t, rec.State().Notification)
	assert.Equal(t, types.NotificationError, rec.State().Notification.Type)
}

func TestCountUsesFirstAndLastPage(t *testing.T) {
	b := newTestBackend(t, nil)
	rec := newRecorder()

	b.client.GetCountForTokensAndUntokenizedUnits()(context.Background(), rec)

	st := rec.State()
	require.NotNil(t, st.UntokenizedUnitsCount)
	require.NotNil(t, st.TokensCount)
	// 30 units over 3 pages of 10: the middle page is not counted
	assert.Equal(t, 20, *st.UntokenizedUnitsCount)
	assert.Equal(t, 0, *st.TokensCount)
	assert.Zero(t, rec.Count(loaderOn))
	assert.True(t, st.ConnectionCheck)

	assert.Len(t, b.requests(api.PathUntokenizedUnits), 2)
	assert.Len(t, b.requests(api.PathTokenizedUnits), 1)
}

func TestCountTransportFailure(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	c := NewClient(api.NewHTTPFetcher(down.URL, nil), storage.NewMemory(), WithTableRows(5))
	rec := newRecorder()

	c.GetCountForTokensAndUntokenizedUnits()(context.Background(), rec)

	assert.False(t, rec.State().ConnectionCheck)
	assert.Equal(t, 1, rec.Count("CONNECTION_CHECK"))
}

func TestRunAndWait(t *testing.T) {
	c := NewClient(api.NewFixtureFetcher(), storage.NewMemory())
	rec := newRecorder()
	ctx := context.Background()

	c.Run(ctx, rec, c.GetUntokenizedUnits(ListOptions{ResultsLimit: 5}))
	c.Run(ctx, rec, c.GetTokens(ListOptions{ResultsLimit: 5}))
	c.Wait()

	assert.Len(t, rec.State().UntokenizedUnits, 5)
	assert.Len(t, rec.State().Tokens, 5)
	assert.True(t, c.Mocked())
}

func TestFormatAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message and errors", `{"message":"Bad","errors":["a","b"]}`, "Bad: a ; b ; "},
		{"error field", `{"error":"boom"}`, "boom"},
		{"message only falls back to error", `{"message":"Bad","error":"boom"}`, "boom"},
		{"errors only", `{"errors":["a"]}`, "fallback"},
		{"empty object", `{}`, "fallback"},
		{"not json", `<html>`, "fallback"},
		{"empty body", ``, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAPIError([]byte(tt.body), "fallback"))
		})
	}
}

func TestEnrichUnitsDoesNotMutateInput(t *testing.T) {
	projects := fixtures.Projects()
	units := []types.Unit{{WarehouseUnitID: "u1", Issuance: &types.Issuance{WarehouseProjectID: projects[0].WarehouseProjectID}}}

	out := EnrichUnits(units, projects)

	assert.Empty(t, units[0].ProjectName)
	assert.Equal(t, projects[0].ProjectName, out[0].ProjectName)
}

func TestEnrichUnitsKeepsBackendFields(t *testing.T) {
	projects := []types.Project{{WarehouseProjectID: "p1", ProjectName: "Forest"}}
	var units []types.Unit
	require.NoError(t, json.Unmarshal([]byte(`[
		{"warehouseUnitId":"u1","unitTags":"tag","token":{"asset_id":"0xabc"},"issuance":{"warehouseProjectId":"p1"}},
		{"warehouseUnitId":"u2","unitTags":"other","issuance":{"warehouseProjectId":"p9"}}
	]`), &units))

	out, err := json.Marshal(EnrichUnits(units, projects))
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"warehouseUnitId":"u1","unitTags":"tag","token":{"asset_id":"0xabc"},"issuance":{"warehouseProjectId":"p1"},"projectName":"Forest"},
		{"warehouseUnitId":"u2","unitTags":"other","issuance":{"warehouseProjectId":"p9"}}
	]`, string(out))
}

func TestBootstrap(t *testing.T) {
	st := storage.NewMemory()
	settings := config.Defaults()
	settings.Theme = "dark"
	settings.Locale = "pt-BR"

	s := Bootstrap(settings, st)
	assert.Equal(t, types.ThemeDark, s.Theme)
	require.NotNil(t, s.Locale)
	assert.Equal(t, "en-US", *s.Locale)
	assert.False(t, s.SignedIn())

	require.NoError(t, st.Set(storage.KeyTheme, "light"))
	require.NoError(t, st.Set(storage.KeyAPIKey, "k"))
	require.NoError(t, st.Set(storage.KeyServerAddress, "http://srv"))

	s = Bootstrap(settings, st)
	assert.Equal(t, types.ThemeLight, s.Theme)
	assert.True(t, s.SignedIn())
	assert.True(t, s.ConnectionCheck)
}
