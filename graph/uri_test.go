package graph

import (
	"strings"
	"testing"
)

func TestGenerateURI(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		baseURI    string
		prefix     string
		want       string
	}{
		{"version operator", "My Dep (>=2.0)", "https://x/", "dependency", "https://x/dependency/my-dep-ge-2.0"},
		{"base without slash", "numpy", "https://x", "dependency", "https://x/dependency/numpy"},
		{"hash base", "Jane Doe", "https://x/#", "person", "https://x/#person/jane-doe"},
		{"no base", "numpy", "", "dependency", "undefined:dependency/numpy"},
		{"no prefix", "numpy", "https://x/", "", "https://x/numpy"},
		{"prefix with slashes", "numpy", "https://x/", "/dependency/", "https://x/dependency/numpy"},
		{"caret and plus", "lib^1.2+cpu", "https://x/", "dep", "https://x/dep/lib-caret-1.2-plus-cpu"},
		{"compatible release", "pkg~=1.4", "https://x/", "dep", "https://x/dep/pkg-compat-1.4"},
		{"ampersand", "Smith & Sons", "https://x/", "org", "https://x/org/smith-and-sons"},
		{"inequality list", "a!=1, <3", "https://x/", "dep", "https://x/dep/a-ne-1-lt-3"},
		{"alternatives", "numpy ^1.2 || ~=3", "", "dependency", "undefined:dependency/numpy-caret-1.2-or-compat-3"},
		{"tilde and pipe", "pkg ~1.0|2.x", "https://x/", "dep", "https://x/dep/pkg-tilde-1.0-2.x"},
		{"quotes and braces", `"frog" {x}\y`, "https://x/", "dep", "https://x/dep/frog-x-y"},
		{"scoped name", "@scope/pkg:extra;x", "https://x/", "dep", "https://x/dep/@scope-pkg-extra-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateURI(tt.identifier, tt.baseURI, tt.prefix)
			if got != tt.want {
				t.Errorf("GenerateURI(%q, %q, %q) = %q, want %q", tt.identifier, tt.baseURI, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestGenerateURIDeterministic(t *testing.T) {
	first := GenerateURI("My Dep (>=2.0)", "https://x/", "dependency")
	for i := 0; i < 10; i++ {
		if got := GenerateURI("My Dep (>=2.0)", "https://x/", "dependency"); got != first {
			t.Fatalf("call %d returned %q, want %q", i, got, first)
		}
	}
}

func TestGenerateURIRandomWithoutIdentifier(t *testing.T) {
	a := GenerateURI("", "https://x/", "stub")
	b := GenerateURI("", "https://x/", "stub")
	if a == b {
		t.Fatalf("expected distinct random URIs, got %q twice", a)
	}
	if !strings.HasPrefix(a, "https://x/stub/N") {
		t.Errorf("random URI %q lacks stub prefix", a)
	}
	if len(strings.TrimPrefix(a, "https://x/stub/N")) != 32 {
		t.Errorf("random URI %q should carry 128 bits of hex", a)
	}
}
