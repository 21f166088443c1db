// Package assets locates and validates the pre-built web UI directory.
// The UI is built by the front-end toolchain into ui/build next to the
// focuserve binary; this package never builds or modifies assets itself.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for build directory validation.
var (
	ErrBuildDirMissing = errors.New("build directory does not exist")
	ErrBuildDirNotDir  = errors.New("build directory path is not a directory")
)

// BuildSubdir is the fixed location of the built UI relative to the
// directory containing the focuserve executable.
var BuildSubdir = []string{"ui", "build"}

// Resolve returns the absolute path of the expected build directory,
// derived from the location of the running executable. It performs no
// check that the directory actually exists; use Validate for that.
func Resolve() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}

	// Symlinked installs should resolve to the real install directory.
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	parts := append([]string{filepath.Dir(exe)}, BuildSubdir...)
	return filepath.Join(parts...), nil
}

// Validate checks that dir exists and is a directory. It returns
// ErrBuildDirMissing (wrapped with the path) when the directory is
// absent, and ErrBuildDirNotDir when the path exists but is a file.
func Validate(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrBuildDirMissing, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat build directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrBuildDirNotDir, dir)
	}
	return nil
}

// RemediationMessage returns the instructions printed when the build
// directory is missing. Kept in one place so the CLI and tests agree on
// the exact wording.
func RemediationMessage(dir string) string {
	return fmt.Sprintf(`UI build not found at %s.
Make sure you run:
    cd ui
    npm install
    npm run build
`, dir)
}
