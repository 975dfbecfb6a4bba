package ocdids

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultRepo is the Open Civic Data division identifier repository.
	DefaultRepo = "opencivicdata/ocd-division-ids"

	defaultAPIBase = "https://api.github.com"
	defaultRawBase = "https://raw.githubusercontent.com"

	defaultHTTPTimeout = 30 * time.Second
)

// GitHubSource fetches the catalogue through the GitHub API and raw
// file endpoints, without a local clone.
type GitHubSource struct {
	// Repo is the owner/name pair, DefaultRepo when empty.
	Repo string

	// APIBase and RawBase override the GitHub endpoints, for tests.
	APIBase string
	RawBase string

	Client *http.Client
}

func (s *GitHubSource) repo() string {
	if s.Repo == "" {
		return DefaultRepo
	}
	return s.Repo
}

func (s *GitHubSource) apiBase() string {
	if s.APIBase == "" {
		return defaultAPIBase
	}
	return s.APIBase
}

func (s *GitHubSource) rawBase() string {
	if s.RawBase == "" {
		return defaultRawBase
	}
	return s.RawBase
}

func (s *GitHubSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (s *GitHubSource) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp, nil
}

// LatestCommitTime returns the committer timestamp of the most recent
// commit touching relPath.
func (s *GitHubSource) LatestCommitTime(ctx context.Context, relPath string) (time.Time, error) {
	u := fmt.Sprintf("%s/repos/%s/commits?path=%s&per_page=1",
		s.apiBase(), s.repo(), url.QueryEscape(relPath))
	resp, err := s.get(ctx, u)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query commits: %w", err)
	}
	defer resp.Body.Close()

	var commits []struct {
		Commit struct {
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode commits response: %w", err)
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("no commits found for %s", relPath)
	}
	return commits[0].Commit.Committer.Date, nil
}

// Download streams the raw catalogue file from the default branch.
func (s *GitHubSource) Download(ctx context.Context, relPath string, dst io.Writer) error {
	u := fmt.Sprintf("%s/%s/master/%s", s.rawBase(), s.repo(), relPath)
	resp, err := s.get(ctx, u)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", relPath, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return nil
}

// BlobSHA returns the Git blob SHA of name inside dir on the default
// branch, or "" when the file is not listed.
func (s *GitHubSource) BlobSHA(ctx context.Context, dir, name string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s", s.apiBase(), s.repo(), dir)
	resp, err := s.get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}
	defer resp.Body.Close()

	var entries []struct {
		Name string `json:"name"`
		SHA  string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("failed to decode directory listing: %w", err)
	}
	for _, entry := range entries {
		if entry.Name == name {
			return entry.SHA, nil
		}
	}
	return "", nil
}
