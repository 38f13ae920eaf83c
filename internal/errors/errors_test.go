package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	base := stderrors.New("storage not initialized")
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: stderrors.New("something went wrong"), expected: "Error: something went wrong"},
		{
			name:     "hinted error",
			err:      WithHint(base, "run 'posy init' first"),
			expected: "Error: storage not initialized\n  hint: run 'posy init' first",
		},
		{
			name:     "wrapped hinted error",
			err:      fmt.Errorf("loading entries: %w", WithHint(base, "run 'posy init' first")),
			expected: "Error: loading entries: storage not initialized\n  hint: run 'posy init' first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	if WithHint(nil, "ignored") != nil {
		t.Error("WithHint(nil) should return nil")
	}

	base := stderrors.New("locked")
	err := WithHint(base, "close the other session")
	if !stderrors.Is(err, base) {
		t.Error("hinted error should unwrap to the original error")
	}
	if HintOf(stderrors.New("plain")) != "" {
		t.Error("plain error should carry no hint")
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("unknown mood %q", "Grumpy")
	want := `Error: unknown mood "Grumpy"`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

// TestFatal runs Fatal in a helper process and checks the exit status
func TestFatal(t *testing.T) {
	if os.Getenv("POSY_TEST_FATAL") == "1" {
		Fatal(WithHint(stderrors.New("test error"), "try again"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "POSY_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	e, ok := err.(*exec.ExitError)
	if !ok || e.Success() {
		t.Fatalf("Fatal() did not exit with error: %v", err)
	}
	if e.ExitCode() != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
	}
	out := stderr.String()
	if !strings.Contains(out, "Error: test error") || !strings.Contains(out, "hint: try again") {
		t.Errorf("Fatal() stderr = %q", out)
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("POSY_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "POSY_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
