package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newBuildDir creates a valid build directory with an index.html.
func newBuildDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "build")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create build dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}
	return dir
}

// healthyRunner reports modern node and npm versions.
func healthyRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Outputs: map[string][]byte{
			"node": []byte("v22.1.0\n"),
			"npm":  []byte("10.2.3\n"),
		},
		Errs: map[string]error{},
	}
}

func checkByName(t *testing.T, report *Report, name string) Check {
	t.Helper()

	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("report has no check named %q", name)
	return Check{}
}

func TestRunAllHealthy(t *testing.T) {
	d := NewWithRunner(newBuildDir(t), healthyRunner())

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("expected healthy run, got %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected all checks to pass: %+v", report.Checks)
	}
	if report.Platform.Classifier == "" {
		t.Errorf("expected platform to be reported")
	}
	if len(report.Checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(report.Checks))
	}
}

func TestRunToolFailures(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*MockCommandRunner)
		failedTool string
		wantDetail string
	}{
		{
			name: "node missing",
			mutate: func(m *MockCommandRunner) {
				m.Errs["node"] = errors.New("executable file not found in $PATH")
			},
			failedTool: "node",
			wantDetail: "not found",
		},
		{
			name: "node too old",
			mutate: func(m *MockCommandRunner) {
				m.Outputs["node"] = []byte("v16.20.2\n")
			},
			failedTool: "node",
			wantDetail: "older than required",
		},
		{
			name: "npm too old",
			mutate: func(m *MockCommandRunner) {
				m.Outputs["npm"] = []byte("8.19.4\n")
			},
			failedTool: "npm",
			wantDetail: "older than required",
		},
		{
			name: "garbage version output",
			mutate: func(m *MockCommandRunner) {
				m.Outputs["npm"] = []byte("command not understood")
			},
			failedTool: "npm",
			wantDetail: "could not parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := healthyRunner()
			tt.mutate(runner)

			d := NewWithRunner(newBuildDir(t), runner)
			report, err := d.Run(context.Background())
			if !errors.Is(err, ErrChecksFailed) {
				t.Fatalf("expected ErrChecksFailed, got %v", err)
			}

			check := checkByName(t, report, tt.failedTool)
			if check.OK {
				t.Fatalf("expected %s check to fail", tt.failedTool)
			}
			if !strings.Contains(check.Detail, tt.wantDetail) {
				t.Errorf("expected detail containing %q, got %q", tt.wantDetail, check.Detail)
			}

			// A failed tool check must not suppress the others.
			if len(report.Checks) != 3 {
				t.Errorf("expected all 3 checks to run, got %d", len(report.Checks))
			}
		})
	}
}

func TestRunBuildDirProblems(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		d := NewWithRunner(filepath.Join(t.TempDir(), "absent"), healthyRunner())

		report, err := d.Run(context.Background())
		if !errors.Is(err, ErrChecksFailed) {
			t.Fatalf("expected ErrChecksFailed, got %v", err)
		}
		if checkByName(t, report, "build directory").OK {
			t.Errorf("expected build directory check to fail")
		}
	})

	t.Run("directory without index", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "build")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}

		d := NewWithRunner(dir, healthyRunner())
		report, err := d.Run(context.Background())
		if !errors.Is(err, ErrChecksFailed) {
			t.Fatalf("expected ErrChecksFailed, got %v", err)
		}

		check := checkByName(t, report, "build directory")
		if check.OK {
			t.Fatalf("expected check to fail for missing index.html")
		}
		if !strings.Contains(check.Detail, "index.html") {
			t.Errorf("expected detail to mention index.html, got %q", check.Detail)
		}
	})
}

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "v22.1.0\n", want: "22.1.0"},
		{in: "10.2.3\n", want: "10.2.3"},
		{in: "v18.20.8 (LTS)\n", want: "18.20.8"},
		{in: "not-a-version", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		version, err := parseToolVersion([]byte(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseToolVersion(%q): expected error, got %s", tt.in, version)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseToolVersion(%q): unexpected error %v", tt.in, err)
			continue
		}
		if version.String() != tt.want {
			t.Errorf("parseToolVersion(%q) = %s, want %s", tt.in, version, tt.want)
		}
	}
}
