package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/studiowebux/tokenctl/internal/fixtures"
	"github.com/studiowebux/tokenctl/internal/types"
)

const (
	defaultLimit     = 10
	tokenMarketplace = "Tokenized on Chia"
)

// Backend holds the mutable state of the mock tokenization backend.
// Units start untokenized; POST /tokenize moves them to the tokenized list
// and a confirmed detokenization moves them back.
type Backend struct {
	mu          sync.RWMutex
	orgUID      string
	untokenized []types.Unit
	tokenized   []types.Unit
	projects    []types.Project
}

// NewBackend seeds a backend from the embedded fixtures
func NewBackend(orgUID string) *Backend {
	return &Backend{
		orgUID:      orgUID,
		untokenized: fixtures.Units(),
		tokenized:   []types.Unit{},
		projects:    fixtures.Projects(),
	}
}

// OrgUID returns the imported home organization
func (b *Backend) OrgUID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.orgUID
}

// Counts returns the size of both collections
func (b *Backend) Counts() (untokenized, tokenized int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.untokenized), len(b.tokenized)
}

// serve answers path (already stripped of the prefix) and returns the
// rule name used in request logs
func (b *Backend) serve(w http.ResponseWriter, method, path string, query url.Values, body []byte) string {
	if org := b.OrgUID(); org != "" {
		w.Header().Set("x-org-uid", org)
	}

	switch {
	case method == http.MethodGet && path == "/units/untokenized":
		b.list(w, query, false)
		return "list untokenized"
	case method == http.MethodGet && path == "/units/tokenized":
		b.list(w, query, true)
		return "list tokenized"
	case method == http.MethodGet && path == "/projects":
		b.listProjects(w, query["projectIds"])
		return "list projects"
	case method == http.MethodPost && path == "/connect":
		b.connect(w, body)
		return "connect"
	case method == http.MethodPost && path == "/tokenize":
		b.tokenize(w, body)
		return "tokenize"
	case method == http.MethodPost && path == "/parse-detok-file":
		b.parseDetokFile(w, body)
		return "parse detok file"
	case method == http.MethodPost && path == "/confirm-detokanization":
		b.confirmDetokanization(w, body)
		return "confirm detokanization"
	}

	writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("no route for %s %s", method, path)))
	return "none"
}

func (b *Backend) list(w http.ResponseWriter, query url.Values, tokenized bool) {
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}

	b.mu.RLock()
	source := b.untokenized
	if tokenized {
		source = b.tokenized
	}
	units := filterUnits(source, query.Get("search"))
	b.mu.RUnlock()

	switch strings.ToUpper(query.Get("order")) {
	case "ASC":
		sort.SliceStable(units, func(i, j int) bool { return units[i].VintageYear < units[j].VintageYear })
	case "DESC":
		sort.SliceStable(units, func(i, j int) bool { return units[i].VintageYear > units[j].VintageYear })
	}

	pageCount := (len(units) + limit - 1) / limit
	start := (page - 1) * limit
	data := []types.Unit{}
	if start < len(units) {
		end := min(start+limit, len(units))
		data = units[start:end]
	}

	writeJSON(w, http.StatusOK, types.Page[types.Unit]{Data: data, PageCount: pageCount})
}

func filterUnits(units []types.Unit, search string) []types.Unit {
	out := make([]types.Unit, 0, len(units))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, u := range units {
		if needle == "" || unitMatches(u, needle) {
			out = append(out, u)
		}
	}
	return out
}

func unitMatches(u types.Unit, needle string) bool {
	for _, field := range []string{
		u.WarehouseUnitID,
		u.UnitOwner,
		u.SerialNumberBlock,
		u.CountryJurisdictionOfOwner,
		u.UnitType,
		u.MarketplaceIdentifier,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (b *Backend) listProjects(w http.ResponseWriter, ids []string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, b.projects)
		return
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []types.Project{}
	for _, p := range b.projects {
		if want[p.WarehouseProjectID] {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) connect(w http.ResponseWriter, body []byte) {
	var req struct {
		OrgUID string `json:"orgUid"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.OrgUID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("orgUid is required"))
		return
	}

	b.mu.Lock()
	b.orgUID = req.OrgUID
	b.mu.Unlock()

	w.Header().Set("x-org-uid", req.OrgUID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "organization imported"})
}

func (b *Backend) tokenize(w http.ResponseWriter, body []byte) {
	var req types.TokenizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, validationError("Invalid tokenization request", err.Error()))
		return
	}

	var problems []string
	if req.WarehouseUnitID == "" {
		problems = append(problems, "warehouse_unit_id is required")
	}
	if req.ToAddress == "" {
		problems = append(problems, "to_address is required")
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, validationError("Invalid tokenization request", problems...))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := indexOf(b.untokenized, req.WarehouseUnitID)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("unit %s is not available for tokenization", req.WarehouseUnitID)))
		return
	}

	unit := b.untokenized[i]
	unit.Marketplace = tokenMarketplace
	unit.MarketplaceIdentifier = req.ToAddress
	b.untokenized = append(b.untokenized[:i:i], b.untokenized[i+1:]...)
	b.tokenized = append(b.tokenized, unit)

	writeJSON(w, http.StatusOK, map[string]any{"message": "unit tokenized", "unit": unit})
}

func (b *Backend) parseDetokFile(w http.ResponseWriter, body []byte) {
	var req struct {
		DetokString string `json:"detokString"`
	}
	if err := json.Unmarshal(body, &req); err != nil || strings.TrimSpace(req.DetokString) == "" {
		writeJSON(w, http.StatusBadRequest, validationError("Invalid detokenization file", "detokString is required"))
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	// the mock accepts either a tokenized unit id or a marketplace identifier
	for _, u := range b.tokenized {
		if u.WarehouseUnitID == req.DetokString || u.MarketplaceIdentifier == req.DetokString {
			writeJSON(w, http.StatusOK, map[string]any{
				"unit":        u,
				"detokString": req.DetokString,
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody("no tokenized unit matches the detokenization file"))
}

func (b *Backend) confirmDetokanization(w http.ResponseWriter, body []byte) {
	var req struct {
		Unit struct {
			WarehouseUnitID string `json:"warehouseUnitId"`
		} `json:"unit"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Unit.WarehouseUnitID == "" {
		writeJSON(w, http.StatusBadRequest, validationError("Invalid detokenization", "unit.warehouseUnitId is required"))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := indexOf(b.tokenized, req.Unit.WarehouseUnitID)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("unit %s is not tokenized", req.Unit.WarehouseUnitID)))
		return
	}

	unit := b.tokenized[i]
	unit.Marketplace = ""
	unit.MarketplaceIdentifier = ""
	b.tokenized = append(b.tokenized[:i:i], b.tokenized[i+1:]...)
	b.untokenized = append(b.untokenized, unit)

	writeJSON(w, http.StatusOK, map[string]string{"message": "unit detokenized"})
}

func indexOf(units []types.Unit, warehouseUnitID string) int {
	for i, u := range units {
		if u.WarehouseUnitID == warehouseUnitID {
			return i
		}
	}
	return -1
}

func errorBody(msg string) types.APIError {
	return types.APIError{Err: msg}
}

func validationError(msg string, problems ...string) types.APIError {
	return types.APIError{Message: msg, Errors: problems}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
