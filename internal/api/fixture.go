package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/studiowebux/tokenctl/internal/fixtures"
	"github.com/studiowebux/tokenctl/internal/types"
)

// Backend paths
const (
	PathUntokenizedUnits      = "/units/untokenized"
	PathTokenizedUnits        = "/units/tokenized"
	PathProjects              = "/projects"
	PathConnect               = "/connect"
	PathTokenize              = "/tokenize"
	PathParseDetokFile        = "/parse-detok-file"
	PathConfirmDetokanization = "/confirm-detokanization"
)

// FixtureFetcher answers every request from the embedded fixtures without
// touching the network. Listings return a random contiguous slice of
// `limit` units and a page count of fixtures.MockedPageCount.
type FixtureFetcher struct{}

// NewFixtureFetcher creates a fixture backed fetcher
func NewFixtureFetcher() *FixtureFetcher {
	return &FixtureFetcher{}
}

// Stubbed always reports true
func (FixtureFetcher) Stubbed() bool { return true }

// Fetch serves req from fixtures
func (FixtureFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload any
	switch req.Path {
	case PathUntokenizedUnits, PathTokenizedUnits:
		limit, err := strconv.Atoi(req.Query.Get("limit"))
		if err != nil {
			limit = 0
		}
		payload = types.Page[types.Unit]{
			Data:      fixtures.RandomSlice(limit),
			PageCount: fixtures.MockedPageCount,
		}
	case PathProjects:
		payload = filterProjects(fixtures.Projects(), req.Query.Values("projectIds"))
	case PathParseDetokFile:
		units := fixtures.Units()
		payload = map[string]any{
			"unit":    units[0],
			"content": req.Body,
		}
	case PathConnect, PathTokenize, PathConfirmDetokanization:
		payload = map[string]string{"message": "ok"}
	default:
		return jsonResponse(http.StatusNotFound, types.APIError{
			Err: fmt.Sprintf("no fixture for %s %s", req.Method, req.Path),
		})
	}

	return jsonResponse(http.StatusOK, payload)
}

func filterProjects(projects []types.Project, ids []string) []types.Project {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]types.Project, 0, len(ids))
	for _, p := range projects {
		if want[p.WarehouseProjectID] {
			out = append(out, p)
		}
	}
	return out
}

func jsonResponse(status int, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fixture: %w", err)
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &Response{Status: status, Header: header, Body: body}, nil
}
