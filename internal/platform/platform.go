// Package platform identifies the host OS/architecture combination for
// doctor reports.
package platform

import (
	"fmt"
	"runtime"
)

// Platform represents a host OS/Architecture combination
type Platform struct {
	OS         string // windows, linux, mac
	Arch       string // x64, aarch64
	Classifier string // e.g. linux-x64
}

// Current returns the platform for the running system
func Current() Platform {
	os := mapOS(runtime.GOOS)
	arch := mapArch(runtime.GOARCH)

	return Platform{
		OS:         os,
		Arch:       arch,
		Classifier: fmt.Sprintf("%s-%s", os, arch),
	}
}

// String returns the classifier form, e.g. "mac-aarch64"
func (p Platform) String() string {
	return p.Classifier
}

// mapOS converts Go's GOOS to our platform OS naming
func mapOS(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "darwin":
		return "mac"
	default:
		return "linux"
	}
}

// mapArch converts Go's GOARCH to our platform architecture naming
func mapArch(goarch string) string {
	switch goarch {
	case "arm64":
		return "aarch64"
	default:
		return "x64"
	}
}
