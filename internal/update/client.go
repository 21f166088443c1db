// Package update checks GitHub Releases for a newer focuserve build.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v57/github"
)

// Sentinel errors for update check operations.
var (
	ErrInvalidRepo    = errors.New("repository must be in format 'owner/repo'")
	ErrNoReleases     = errors.New("no releases found")
	ErrInvalidTag     = errors.New("release tag is not a valid version")
	ErrInvalidCurrent = errors.New("current version is not a valid version")
)

// DefaultRepository is where focuserve releases are published.
const DefaultRepository = "aiam-project/focuserve"

// Client wraps the GitHub API client for release lookups. Lookups are
// read-only and work unauthenticated; a GITHUB_TOKEN is used when
// present to avoid anonymous rate limits.
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// Result describes the outcome of an update check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// NewClient creates a release-lookup client for the given repository,
// which must be in "owner/repo" format.
func NewClient(repository string) (*Client, error) {
	owner, repo, err := parseRepository(repository)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// Check fetches the latest published release and compares it with the
// running version. Returns ErrNoReleases when the repository has no
// releases and ErrInvalidCurrent for unversioned development builds.
func (c *Client) Check(ctx context.Context, currentVersion string) (*Result, error) {
	current, err := semver.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrent, currentVersion)
	}

	release, resp, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, ErrNoReleases
		}
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	tag := release.GetTagName()
	latest, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}

	return &Result{
		CurrentVersion:  current.String(),
		LatestVersion:   latest.String(),
		UpdateAvailable: latest.GreaterThan(current),
		ReleaseURL:      release.GetHTMLURL(),
	}, nil
}

// parseRepository splits "owner/repo" into its components.
func parseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidRepo, repository)
	}
	return parts[0], parts[1], nil
}
