// Package doctor runs preflight checks for the UI build toolchain.
package doctor

import (
	"context"
	"os/exec"
)

// CommandRunner executes external commands.
// This interface enables testing without actual command execution.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealCommandRunner executes actual system commands.
type RealCommandRunner struct{}

// NewRealCommandRunner creates a command runner that executes real commands.
func NewRealCommandRunner() *RealCommandRunner {
	return &RealCommandRunner{}
}

// Run executes a command and returns combined stdout/stderr output.
func (r *RealCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// MockCommandRunner is a test double for CommandRunner. Outputs are keyed
// by command name so a single doctor run can see different tools.
type MockCommandRunner struct {
	Outputs map[string][]byte
	Errs    map[string]error
	Calls   [][]string // Track calls for debugging
}

// Run returns the configured output and error for the command name.
func (m *MockCommandRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	m.Calls = append(m.Calls, call)
	return m.Outputs[name], m.Errs[name]
}
