// Package testutil runs the gnssmask binary for end-to-end tests.
package testutil

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// ExecResult holds the result of a CLI command execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// binaryCandidates are tried in order, relative to the test's working directory.
var binaryCandidates = []string{"./gnssmask", "../../gnssmask"}

// RunCLI executes the gnssmask binary with the given arguments and returns the result.
// The binary must be built first (go build -o gnssmask ./cmd/gnssmask).
// GNSSMASK_* variables of the calling environment are not passed through.
func RunCLI(tb testing.TB, args ...string) ExecResult {
	tb.Helper()
	return RunCLIWithInput(tb, "", nil, args...)
}

// RunCLIWithInput is RunCLI with standard input and extra environment variables.
func RunCLIWithInput(tb testing.TB, stdin string, env map[string]string, args ...string) ExecResult {
	tb.Helper()

	binary := findBinary(tb)

	cmd := exec.Command(binary, args...)
	cmd.Dir = tb.TempDir() // keeps a stray .env file out of the run
	cmd.Env = cleanEnv(env)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		tb.Fatalf("failed to run gnssmask: %v", err)
	}

	return ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

func findBinary(tb testing.TB) string {
	tb.Helper()
	for _, candidate := range binaryCandidates {
		if _, err := os.Stat(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				tb.Fatalf("resolve %s: %v", candidate, err)
			}
			return abs
		}
	}
	tb.Fatalf("gnssmask binary not found - run 'go build -o gnssmask ./cmd/gnssmask' first")
	return ""
}

func cleanEnv(extra map[string]string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "GNSSMASK_") {
			env = append(env, kv)
		}
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

// WriteFile writes content to name inside a fresh temporary directory and returns its path.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
