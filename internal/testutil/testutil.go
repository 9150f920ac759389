// Package testutil provides shared test helpers for generated command files.
package testutil

import (
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Lines splits newline-terminated output into its lines. Every line,
// including the last, must end in "\n"; the test fails otherwise.
func Lines(t *testing.T, data []byte) []string {
	t.Helper()
	s := string(data)
	if s == "" {
		return nil
	}
	if !strings.HasSuffix(s, "\n") {
		t.Fatalf("output does not end in a newline: %q", tail(s))
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// AssertLine checks that lines[i] equals want.
func AssertLine(t *testing.T, lines []string, i int, want string) {
	t.Helper()
	if i < 0 || i >= len(lines) {
		t.Errorf("line %d out of range (have %d lines)", i, len(lines))
		return
	}
	if lines[i] != want {
		t.Errorf("line %d = %q, want %q", i, lines[i], want)
	}
}

func tail(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
