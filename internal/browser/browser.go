// Package browser opens URLs in the user's default browser. Opening is
// strictly best-effort: headless machines, sandboxes, and hosts without
// a registered browser are expected failure modes that callers log and
// ignore.
package browser

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

func init() {
	// The launched browser inherits our stdout/stderr by default, which
	// garbles the status lines this tool prints. Discard it.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Open asks the operating system to open url in the default browser.
// The error, if any, describes why the request could not be delivered;
// it says nothing about whether a page actually rendered.
func Open(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser for %s: %w", url, err)
	}
	return nil
}
