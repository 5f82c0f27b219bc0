package normalization

import (
	"strings"
	"testing"
)

type testEnum string

const (
	testEnumAlpha      testEnum = "alpha"
	testEnumBeta       testEnum = "beta"
	testEnumDocSidebar testEnum = "docSidebar"
)

func newTestNormalizer() *Normalizer[testEnum] {
	return NewNormalizer(map[string]testEnum{
		"alpha":      testEnumAlpha,
		"beta":       testEnumBeta,
		"docSidebar": testEnumDocSidebar,
	}, testEnumAlpha)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "beta", testEnumBeta},
		{"case insensitive", "BETA", testEnumBeta},
		{"with spaces", "  beta  ", testEnumBeta},
		{"camel case", "docSidebar", testEnumDocSidebar},
		{"snake case", "doc_sidebar", testEnumDocSidebar},
		{"kebab case", "Doc-Sidebar", testEnumDocSidebar},
		{"invalid input", "invalid", testEnumAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_Lookup(t *testing.T) {
	n := newTestNormalizer()
	if _, ok := n.Lookup("gamma"); ok {
		t.Fatal("expected gamma to be unknown")
	}
	if v, ok := n.Lookup("ALPHA"); !ok || v != testEnumAlpha {
		t.Fatalf("Lookup(ALPHA) = %v, %v", v, ok)
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := newTestNormalizer()
	_, err := n.NormalizeWithError("gamma")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "alpha, beta, docSidebar") {
		t.Errorf("error should list valid keys, got %v", err)
	}
	if n.Default() != testEnumAlpha {
		t.Errorf("Default() = %v", n.Default())
	}
}
