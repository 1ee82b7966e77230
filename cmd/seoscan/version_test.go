package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("expected non-empty version")
	}
}

// TestGetCommit tests commit hash resolution.
func TestGetCommit(t *testing.T) {
	t.Parallel()

	if getCommit() == "" {
		t.Error("expected non-empty commit")
	}
}

// TestGetDate tests build date resolution.
func TestGetDate(t *testing.T) {
	t.Parallel()

	if getDate() == "" {
		t.Error("expected non-empty date")
	}
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	out := buf.String()
	if !strings.Contains(out, "seoscan version") {
		t.Errorf("expected version banner, got %q", out)
	}
	if !strings.Contains(out, "commit:") {
		t.Error("expected commit line")
	}
	if !strings.Contains(out, "built:") {
		t.Error("expected build date line")
	}
}

// TestLdflagsOverride tests that build-time values take priority.
func TestLdflagsOverride(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = origVersion, origCommit, origDate
	})

	version = "1.2.3"
	commit = "abcdef1"
	date = "2026-08-26"

	if getVersion() != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", getVersion())
	}
	if getCommit() != "abcdef1" {
		t.Errorf("commit = %q, want abcdef1", getCommit())
	}
	if getDate() != "2026-08-26" {
		t.Errorf("date = %q, want 2026-08-26", getDate())
	}
}
