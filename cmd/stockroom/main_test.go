package main

import (
	"bytes"
	"testing"

	"github.com/felixgeelhaar/stockroom/internal/exitcode"
)

func TestRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STOCKROOM_STORAGE_BACKEND", "memory")

	tests := []struct {
		name       string
		args       []string
		want       int
		wantStderr string
	}{
		{"version", []string{"version"}, exitcode.Success, ""},
		{"unknown command", []string{"frobnicate"}, exitcode.UsageError, "unknown command"},
		{"unknown route", []string{"open", "/nowhere"}, exitcode.NotFound, "NAV-001"},
		{"protected view signed out", []string{"inventory"}, exitcode.AuthError, "AUTH-002"},
		{"invalid output", []string{"status", "-o", "xml"}, exitcode.ConfigError, "CONFIG-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(tt.args, &stderr); got != tt.want {
				t.Errorf("run(%v) = %d (%s), want %d; stderr: %s",
					tt.args, got, exitcode.GetExitCodeDescription(got), tt.want, stderr.String())
			}
			if tt.wantStderr != "" && !bytes.Contains(stderr.Bytes(), []byte(tt.wantStderr)) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
