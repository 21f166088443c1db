package cli

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aiam-project/focuserve/internal/update"
)

// checkUpdate implements the check-update command.
func checkUpdate(c *cli.Context) error {
	repo := c.String("repo")
	if repo == "" {
		repo = update.DefaultRepository
	}

	client, err := update.NewClient(repo)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	result, err := client.Check(c.Context, Version)
	switch {
	case errors.Is(err, update.ErrNoReleases):
		fmt.Printf("no releases published for %s yet\n", repo)
		return nil
	case errors.Is(err, update.ErrInvalidCurrent):
		fmt.Printf("running an unversioned build (%s); skipping update check\n", Version)
		return nil
	case err != nil:
		// Network trouble should not look like a broken tool.
		logger := NewLogger(ParseLogLevelOrDefault(c.String("log-level")))
		logger.Warn("update check failed", "error", err)
		return nil
	}

	if result.UpdateAvailable {
		fmt.Printf("focuserve %s is available (running %s)\n", result.LatestVersion, result.CurrentVersion)
		if result.ReleaseURL != "" {
			fmt.Printf("download: %s\n", result.ReleaseURL)
		}
		return nil
	}

	fmt.Printf("focuserve %s is up to date\n", result.CurrentVersion)
	return nil
}
