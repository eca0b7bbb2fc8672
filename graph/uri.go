package graph

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// uriReplacements is applied in order; multi-character operators come before
// the single characters they contain.
var uriReplacements = []struct{ from, to string }{
	{">=", "-ge-"},
	{"<=", "-le-"},
	{"==", "-eq-"},
	{"!=", "-ne-"},
	{"~=", "-compat-"},
	{">", "-gt-"},
	{"<", "-lt-"},
	{"~", "-tilde-"},
	{"^", "-caret-"},
	{"||", "-or-"},
	{"|", "-"},
	{"\\", "-"},
	{"\"", ""},
	{"{", ""},
	{"}", ""},
	{"(", ""},
	{")", ""},
	{",", ""},
	{" ", "-"},
	{"&", "-and-"},
	{"/", "-"},
	{"+", "-plus-"},
	{":", "-"},
	{";", "-"},
}

// GenerateURI builds a URI for an entity without a natural one, such as a
// dependency or an author. Identical inputs always yield the identical URI, so
// repeated mentions across parser runs converge on one resource. An empty
// identifier yields a random, non-deterministic URI. An empty baseURI falls back
// to the "undefined:" sentinel.
func GenerateURI(identifier, baseURI, prefix string) string {
	if identifier == "" {
		id := uuid.New()
		identifier = "N" + hex.EncodeToString(id[:])
	} else {
		identifier = SanitizeIdentifier(identifier)
	}
	if baseURI == "" {
		baseURI = codemeta.UndefinedBase
	}

	uri := baseURI
	if prefix != "" {
		uri = joinSegment(uri, strings.Trim(prefix, "/#"))
	}
	return joinSegment(uri, identifier)
}

// SanitizeIdentifier lower-cases an identifier and rewrites characters that are
// illegal or ambiguous in URIs.
func SanitizeIdentifier(identifier string) string {
	s := strings.ToLower(strings.TrimSpace(identifier))
	for _, r := range uriReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// joinSegment appends segment to base with exactly one separator.
func joinSegment(base, segment string) string {
	if segment == "" {
		return base
	}
	switch {
	case strings.HasSuffix(base, "/"), strings.HasSuffix(base, "#"), strings.HasSuffix(base, ":"):
		return base + strings.TrimLeft(segment, "/")
	default:
		return base + "/" + strings.TrimLeft(segment, "/")
	}
}
