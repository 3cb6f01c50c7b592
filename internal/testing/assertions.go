package testing

import (
	"strings"
	"testing"
)

// AssertOutput provides assertion helpers for generated source
type AssertOutput struct {
	t *testing.T
}

// NewAssertOutput creates a new output assertion helper
func NewAssertOutput(t *testing.T) *AssertOutput {
	return &AssertOutput{t: t}
}

// Contains asserts that the output contains a substring
func (a *AssertOutput) Contains(output, expected string) {
	a.t.Helper()
	if !strings.Contains(output, expected) {
		a.t.Errorf("Output does not contain expected string\nExpected: %s\nActual output:\n%s", expected, output)
	}
}

// NotContains asserts that the output does not contain a substring
func (a *AssertOutput) NotContains(output, unexpected string) {
	a.t.Helper()
	if strings.Contains(output, unexpected) {
		a.t.Errorf("Output contains unexpected string\nUnexpected: %s\nActual output:\n%s", unexpected, output)
	}
}

// Count asserts the number of occurrences of a substring
func (a *AssertOutput) Count(output, substr string, expected int) {
	a.t.Helper()
	if actual := strings.Count(output, substr); actual != expected {
		a.t.Errorf("Expected %d occurrences of %q, got %d\nActual output:\n%s", expected, substr, actual, output)
	}
}

// NoTemplateResidue asserts that no template delimiters or missing values leaked into
// the output
func (a *AssertOutput) NoTemplateResidue(output string) {
	a.t.Helper()
	for _, residue := range []string{"[[", "<no value>"} {
		if strings.Contains(output, residue) {
			a.t.Errorf("Output contains template residue %q\nActual output:\n%s", residue, output)
		}
	}
}
