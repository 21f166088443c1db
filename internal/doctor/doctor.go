// Package doctor runs preflight checks for the UI build toolchain:
// whether node and npm are installed and new enough to build the UI, and
// whether the build directory is in a servable state.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/aiam-project/focuserve/internal/assets"
	"github.com/aiam-project/focuserve/internal/platform"
)

// Minimum toolchain versions the UI build is known to work with.
const (
	MinNodeVersion = "18.0.0"
	MinNPMVersion  = "9.0.0"
)

// ErrChecksFailed is returned by Run when one or more checks fail.
var ErrChecksFailed = errors.New("one or more checks failed")

// Check is the outcome of a single preflight probe.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Report aggregates all check outcomes for one doctor run.
type Report struct {
	Platform platform.Platform
	Checks   []Check
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Doctor performs the preflight checks.
type Doctor struct {
	runner   CommandRunner
	buildDir string
	minNode  *semver.Version
	minNPM   *semver.Version
}

// New creates a doctor that checks the toolchain against the stock
// minimum versions and inspects buildDir.
func New(buildDir string) *Doctor {
	return NewWithRunner(buildDir, NewRealCommandRunner())
}

// NewWithRunner creates a doctor with a custom command runner for tests.
func NewWithRunner(buildDir string, runner CommandRunner) *Doctor {
	return &Doctor{
		runner:   runner,
		buildDir: buildDir,
		minNode:  semver.MustParse(MinNodeVersion),
		minNPM:   semver.MustParse(MinNPMVersion),
	}
}

// Run executes every check and returns the aggregated report. All checks
// run even when an early one fails. The error is ErrChecksFailed when
// any check failed, nil otherwise; the report is always valid.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Platform: platform.Current(),
	}

	report.Checks = append(report.Checks,
		d.checkTool(ctx, "node", d.minNode),
		d.checkTool(ctx, "npm", d.minNPM),
		d.checkBuildDir(),
	)

	if !report.OK() {
		return report, ErrChecksFailed
	}
	return report, nil
}

// checkTool probes a toolchain binary with --version and compares the
// reported version against the minimum.
func (d *Doctor) checkTool(ctx context.Context, name string, minimum *semver.Version) Check {
	out, err := d.runner.Run(ctx, name, "--version")
	if err != nil {
		return Check{
			Name:   name,
			OK:     false,
			Detail: fmt.Sprintf("not found (%v): install %s %s or newer", err, name, minimum),
		}
	}

	version, err := parseToolVersion(out)
	if err != nil {
		return Check{
			Name:   name,
			OK:     false,
			Detail: fmt.Sprintf("could not parse version from %q: %v", strings.TrimSpace(string(out)), err),
		}
	}

	if version.LessThan(minimum) {
		return Check{
			Name:   name,
			OK:     false,
			Detail: fmt.Sprintf("version %s is older than required %s", version, minimum),
		}
	}

	return Check{
		Name:   name,
		OK:     true,
		Detail: fmt.Sprintf("version %s (minimum %s)", version, minimum),
	}
}

// checkBuildDir reports whether the build directory exists and contains
// an index.html to serve.
func (d *Doctor) checkBuildDir() Check {
	if err := assets.Validate(d.buildDir); err != nil {
		return Check{
			Name:   "build directory",
			OK:     false,
			Detail: err.Error(),
		}
	}

	index := filepath.Join(d.buildDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return Check{
			Name:   "build directory",
			OK:     false,
			Detail: fmt.Sprintf("%s exists but has no index.html; rerun the UI build", d.buildDir),
		}
	}

	return Check{
		Name:   "build directory",
		OK:     true,
		Detail: d.buildDir,
	}
}

// parseToolVersion extracts a semver from tool output such as "v22.1.0\n"
// (node) or "10.2.3\n" (npm).
func parseToolVersion(out []byte) (*semver.Version, error) {
	raw := strings.TrimSpace(string(out))
	raw = strings.TrimPrefix(raw, "v")
	if i := strings.IndexAny(raw, " \n"); i >= 0 {
		raw = raw[:i]
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version %q: %w", raw, err)
	}
	return version, nil
}
