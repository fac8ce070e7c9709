package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// newCheckCmd builds the command first so the flag registration resets the
// package globals, then tests override individual flags.
func newCheckCmd() *cobra.Command {
	return checkCmd()
}

func writePython(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func checkExitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *CheckExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *CheckExitError, got %T: %v", err, err)
	}
	return exitErr.Code
}

func TestCheckExitErrorMessage(t *testing.T) {
	err := &CheckExitError{Code: 2, Message: "no paths specified"}
	if err.Error() != "no paths specified" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRunCheckNoPaths(t *testing.T) {
	cmd := newCheckCmd()

	err := runCheck(cmd, nil)
	if code := checkExitCode(t, err); code != 2 {
		t.Errorf("Exit code = %d, expected 2", code)
	}
}

func TestRunCheckPasses(t *testing.T) {
	cmd := newCheckCmd()

	dir := t.TempDir()
	writePython(t, dir, "clean.py", "def double(x):\n    return x * 2\n")

	if err := runCheck(cmd, []string{dir}); err != nil {
		t.Errorf("Expected a passing check, got %v", err)
	}
}

func TestRunCheckFailsBelowMinScore(t *testing.T) {
	cmd := newCheckCmd()
	checkMinScore = 100

	dir := t.TempDir()
	// One unused import keeps the score below a perfect 100.
	writePython(t, dir, "messy.py", "import os\n\ndef double(x):\n    return x * 2\n")

	err := runCheck(cmd, []string{dir})
	if code := checkExitCode(t, err); code != 1 {
		t.Errorf("Exit code = %d, expected 1", code)
	}
}

func TestRunCheckFailsOnSecurityIssue(t *testing.T) {
	cmd := newCheckCmd()
	checkMinScore = 0

	dir := t.TempDir()
	writePython(t, dir, "risky.py", "user = input(\"name: \")\neval(user)\n")

	err := runCheck(cmd, []string{dir})
	if code := checkExitCode(t, err); code != 1 {
		t.Errorf("Exit code = %d, expected 1", code)
	}
}

func TestRunCheckAllowSecurity(t *testing.T) {
	cmd := newCheckCmd()
	checkMinScore = 0
	checkAllowSecurity = true

	dir := t.TempDir()
	writePython(t, dir, "risky.py", "user = input(\"name: \")\neval(user)\n")

	if err := runCheck(cmd, []string{dir}); err != nil {
		t.Errorf("Expected security findings to be allowed, got %v", err)
	}
}

func TestRunCheckParseFailure(t *testing.T) {
	cmd := newCheckCmd()
	checkMinScore = 0

	dir := t.TempDir()
	writePython(t, dir, "broken.py", "def broken(:\n    pass\n")

	err := runCheck(cmd, []string{dir})
	if code := checkExitCode(t, err); code != 1 {
		t.Errorf("Exit code = %d, expected 1", code)
	}
}

func TestOpenBrowserOverSSH(t *testing.T) {
	t.Setenv("SSH_CONNECTION", "10.0.0.1 50000 10.0.0.2 22")

	if err := openBrowser("file:///tmp/report.html"); err != nil {
		t.Errorf("openBrowser should be a no-op over SSH, got %v", err)
	}
}
