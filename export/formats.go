package export

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat resolves a format name. "ttl", "nt" and "json" are accepted as
// aliases.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTurtle, "ttl":
		return FormatTurtle, nil
	case FormatNTriples, "nt":
		return FormatNTriples, nil
	case FormatJSONLD, "json", "json-ld":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("format %q: %w", name, ErrUnsupportedFormat)
	}
}

// FormatForPath picks a format from a file extension. ".json" is read as JSON-LD.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return FormatJSONLD, true
	}
	for _, info := range FormatRegistry {
		if info.Extension == ext {
			return info.Name, true
		}
	}
	return "", false
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

// NewTurtleWriter creates a Turtle writer. The prefix map is copied.
func NewTurtleWriter(prefixes map[string]string) *TurtleWriter {
	if prefixes == nil {
		prefixes = codemeta.DefaultPrefixes()
	}
	return &TurtleWriter{prefixes: maps.Clone(prefixes)}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	for _, prefix := range slices.Sorted(maps.Keys(w.prefixes)) {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(subject graph.Term) {
	w.sb.WriteString(w.term(subject))
	w.sb.WriteString("\n")
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicate, object graph.Term, last bool) {
	terminator := " ;"
	if last {
		terminator = " ."
	}
	pred := w.term(predicate)
	if predicate.Value == codemeta.RDFType {
		pred = "a"
	}
	fmt.Fprintf(&w.sb, "    %s %s%s\n", pred, w.term(object), terminator)
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

func (w *TurtleWriter) term(t graph.Term) string {
	switch {
	case t.IsIRI():
		if name := prefixedName(w.prefixes, t.Value); name != "" {
			return name
		}
		return t.String()
	case t.IsLiteral():
		s := `"` + graph.EscapeLiteral(t.Value) + `"`
		switch {
		case t.Language != "":
			return s + "@" + t.Language
		case t.Datatype != "":
			if name := prefixedName(w.prefixes, t.Datatype); name != "" {
				return s + "^^" + name
			}
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return t.String()
	}
}
