package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"
)

// newMockClient starts an httptest server answering the latest-release
// endpoint and returns a Client pointed at it.
func newMockClient(t *testing.T, statusCode int, release *github.RepositoryRelease) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/releases/latest") {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if release != nil {
			if err := json.NewEncoder(w).Encode(release); err != nil {
				t.Errorf("failed to encode mock release: %v", err)
			}
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewTestClient(server.Client(), server.URL, "aiam-project/focuserve")
	if err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name           string
		currentVersion string
		statusCode     int
		release        *github.RepositoryRelease
		wantErr        error
		wantAvailable  bool
		wantLatest     string
	}{
		{
			name:           "newer release available",
			currentVersion: "1.2.0",
			statusCode:     http.StatusOK,
			release: &github.RepositoryRelease{
				TagName: github.String("v1.3.0"),
				HTMLURL: github.String("https://github.com/aiam-project/focuserve/releases/tag/v1.3.0"),
			},
			wantAvailable: true,
			wantLatest:    "1.3.0",
		},
		{
			name:           "already up to date",
			currentVersion: "1.3.0",
			statusCode:     http.StatusOK,
			release: &github.RepositoryRelease{
				TagName: github.String("v1.3.0"),
			},
			wantAvailable: false,
			wantLatest:    "1.3.0",
		},
		{
			name:           "running ahead of latest release",
			currentVersion: "2.0.0",
			statusCode:     http.StatusOK,
			release: &github.RepositoryRelease{
				TagName: github.String("v1.3.0"),
			},
			wantAvailable: false,
			wantLatest:    "1.3.0",
		},
		{
			name:           "tag without v prefix",
			currentVersion: "1.0.0",
			statusCode:     http.StatusOK,
			release: &github.RepositoryRelease{
				TagName: github.String("1.1.0"),
			},
			wantAvailable: true,
			wantLatest:    "1.1.0",
		},
		{
			name:           "no releases published",
			currentVersion: "1.0.0",
			statusCode:     http.StatusNotFound,
			wantErr:        ErrNoReleases,
		},
		{
			name:           "malformed release tag",
			currentVersion: "1.0.0",
			statusCode:     http.StatusOK,
			release: &github.RepositoryRelease{
				TagName: github.String("nightly-build"),
			},
			wantErr: ErrInvalidTag,
		},
		{
			name:           "development build",
			currentVersion: "dev",
			statusCode:     http.StatusOK,
			wantErr:        ErrInvalidCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t, tt.statusCode, tt.release)

			result, err := client.Check(context.Background(), tt.currentVersion)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}

			if result.UpdateAvailable != tt.wantAvailable {
				t.Errorf("expected UpdateAvailable=%v, got %v", tt.wantAvailable, result.UpdateAvailable)
			}
			if result.LatestVersion != tt.wantLatest {
				t.Errorf("expected latest %s, got %s", tt.wantLatest, result.LatestVersion)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		repository string
		wantErr    bool
	}{
		{"aiam-project/focuserve", false},
		{"missing-repo", true},
		{"/repo", true},
		{"owner/", true},
		{"", true},
	}

	for _, tt := range tests {
		_, err := NewClient(tt.repository)
		if tt.wantErr && !errors.Is(err, ErrInvalidRepo) {
			t.Errorf("NewClient(%q): expected ErrInvalidRepo, got %v", tt.repository, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("NewClient(%q): unexpected error %v", tt.repository, err)
		}
	}
}
