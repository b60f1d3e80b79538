package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateAcceptsScaffoldedConfig(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir)

	var out, errOut bytes.Buffer
	code := Run([]string{"validate", "--config", filepath.Join(dir, "drill.yml")}, &out, &errOut)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr: %s)", ExitOK, code, errOut.String())
	}
	if !strings.Contains(out.String(), "Config OK") {
		t.Fatalf("expected Config OK, got %q", out.String())
	}
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drill.yml")
	broken := "version: 1\nrate_limit:\n  requests_per_minute: -5\n"
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out, errOut bytes.Buffer
	code := Run([]string{"validate", "--config", path}, &out, &errOut)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errOut.String(), "Validation failed") {
		t.Fatalf("expected validation failure, got %q", errOut.String())
	}
}

func TestValidateMissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"validate", "--config", filepath.Join(t.TempDir(), "missing.yml")}, &out, &errOut)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
}

func TestValidateRejectsExtraArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"validate", "stray"}, &out, &errOut)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errOut.String(), "unexpected arguments") {
		t.Fatalf("expected argument error, got %q", errOut.String())
	}
}
