package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// ReleasesURL is the GitHub endpoint for the latest tokenctl release
	ReleasesURL  = "https://api.github.com/repos/studiowebux/tokenctl/releases/latest"
	checkTimeout = 5 * time.Second
)

// Version is set at build time with -ldflags "-X .../internal/version.Version=x.y.z"
var Version = "0.1.0"

// release is the subset of the GitHub release payload the check reads
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the outcome of a release check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Checker looks up the latest release
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker checks against the public GitHub releases
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// CheckForUpdate checks if a release newer than currentVersion exists
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "tokenctl/"+currentVersion)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("release check returned %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Update{}, fmt.Errorf("failed to decode release: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	return Update{
		Available: latest != "" && isNewerVersion(latest, currentVersion),
		Latest:    latest,
		URL:       rel.HTMLURL,
	}, nil
}

// isNewerVersion reports whether latest is ahead of current
func isNewerVersion(latest, current string) bool {
	return compareVersions(latest, current) > 0
}

// compareVersions compares the numeric parts of two versions, padding the
// shorter one with zeros. Pre-release and build suffixes are ignored.
func compareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	n := max(len(pa), len(pb))
	pa = append(pa, make([]int, n-len(pa))...)
	pb = append(pb, make([]int, n-len(pb))...)
	return slices.Compare(pa, pb)
}

func versionParts(v string) []int {
	v, _, _ = strings.Cut(strings.TrimPrefix(v, "v"), "-")
	v, _, _ = strings.Cut(v, "+")

	var parts []int
	for _, field := range strings.Split(v, ".") {
		if n, err := strconv.Atoi(field); err == nil {
			parts = append(parts, n)
		}
	}
	return parts
}
