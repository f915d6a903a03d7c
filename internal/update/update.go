// Package update checks GitHub releases for a newer toolkit build.
package update

import (
	"context"
	"net/http"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"golang.org/x/mod/semver"
)

// ReleasesURL is the latest-release endpoint for this repository.
const ReleasesURL = "https://api.github.com/repos/unifai-network/unifai-toolkits/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check asks url (ReleasesURL when empty) for the latest release and
// returns it when it is newer than currentVersion. Any failure returns nil:
// an update check never blocks the CLI.
func Check(ctx context.Context, url, currentVersion string) *Result {
	if url == "" {
		url = ReleasesURL
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release ghRelease
	if err := gojson.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if latest == "" || !Newer(latest, currentVersion) {
		return nil
	}
	return &Result{LatestVersion: latest, URL: release.HTMLURL}
}

// Newer reports whether version a is greater than b under semver ordering.
// The leading "v" is optional and "1.2" means "1.2.0". An invalid b such as
// "dev" is older than any release.
func Newer(a, b string) bool {
	va, vb := canonical(a), canonical(b)
	if !semver.IsValid(va) {
		return false
	}
	if !semver.IsValid(vb) {
		return true
	}
	return semver.Compare(va, vb) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	return v
}
