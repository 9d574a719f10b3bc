// Package fixtures embeds the unit and project records served in mocked
// mode and by the local mock backend.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/studiowebux/tokenctl/internal/types"
)

// MockedPageCount is the page count reported by mocked listings
const MockedPageCount = 3

var (
	//go:embed data/units.json
	unitsJSON []byte

	//go:embed data/projects.json
	projectsJSON []byte
)

// Units returns a fresh copy of the unit fixtures
func Units() []types.Unit {
	var units []types.Unit
	if err := json.Unmarshal(unitsJSON, &units); err != nil {
		panic(fmt.Sprintf("fixtures: invalid units.json: %v", err))
	}
	return units
}

// Projects returns a fresh copy of the project fixtures
func Projects() []types.Project {
	var projects []types.Project
	if err := json.Unmarshal(projectsJSON, &projects); err != nil {
		panic(fmt.Sprintf("fixtures: invalid projects.json: %v", err))
	}
	return projects
}

// RandomSlice returns limit contiguous units starting at a random offset.
// When limit exceeds the fixture set the whole set is returned.
func RandomSlice(limit int) []types.Unit {
	units := Units()
	if limit <= 0 {
		return []types.Unit{}
	}
	if limit >= len(units) {
		return units
	}
	start := rand.IntN(len(units) - limit + 1)
	return units[start : start+limit]
}
