package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.py")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranslateToStdout(t *testing.T) {
	input := writeInput(t, "x: int = 42\n")

	stdout, stderr, err := runCmd(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr)
	}
	if stdout != "int x = 42;\n" {
		t.Errorf("stdout = %q, want %q", stdout, "int x = 42;\n")
	}
}

func TestCheckMode(t *testing.T) {
	input := writeInput(t, "x: int = 42\n")

	stdout, _, err := runCmd(t, "--check", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "translates cleanly") {
		t.Errorf("expected check confirmation, got %q", stdout)
	}
}

func TestOutputFile(t *testing.T) {
	input := writeInput(t, "x: int = 42\n")
	outPath := filepath.Join(t.TempDir(), "out.c")

	_, _, err := runCmd(t, "-o", outPath, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "int x = 42;\n" {
		t.Errorf("output file = %q, want %q", string(data), "int x = 42;\n")
	}
}

func TestMissingInputFails(t *testing.T) {
	_, stderr, err := runCmd(t, filepath.Join(t.TempDir(), "absent.py"))
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
	if !strings.Contains(stderr, "E-IO") {
		t.Errorf("expected E-IO diagnostic on stderr, got %q", stderr)
	}
}

func TestLoweringErrorRendersDiagnostic(t *testing.T) {
	input := writeInput(t, "def f() -> void:\n    x = a < b < c\n")

	_, stderr, err := runCmd(t, input)
	if err == nil {
		t.Fatal("expected an error for a chained comparison")
	}
	if !strings.Contains(stderr, "E-PATTERN") {
		t.Errorf("expected E-PATTERN diagnostic on stderr, got %q", stderr)
	}
}

func TestParseErrorRendersDiagnostic(t *testing.T) {
	input := writeInput(t, "x = = 1\n")

	_, stderr, err := runCmd(t, input)
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
	if !strings.Contains(stderr, "error") {
		t.Errorf("expected a parse diagnostic on stderr, got %q", stderr)
	}
}
