package cli

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aiam-project/focuserve/internal/assets"
	"github.com/aiam-project/focuserve/internal/doctor"
)

// runDoctor implements the doctor command: preflight checks for the UI
// build toolchain and the build directory.
func runDoctor(c *cli.Context) error {
	buildDir := c.String("dir")
	if buildDir == "" {
		resolved, err := assets.Resolve()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		buildDir = resolved
	}

	report, err := doctor.New(buildDir).Run(c.Context)
	if err != nil && !errors.Is(err, doctor.ErrChecksFailed) {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf("platform: %s\n", report.Platform)
	for _, check := range report.Checks {
		status := "ok"
		if !check.OK {
			status = "fail"
		}
		fmt.Printf("[%4s] %s: %s\n", status, check.Name, check.Detail)
	}

	if !report.OK() {
		return cli.Exit("doctor found problems", 1)
	}
	fmt.Println("all checks passed")
	return nil
}
