// Package export serializes crosswalk graphs as Turtle, N-Triples and JSON-LD.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces flat JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ErrUnsupportedFormat is returned for a format outside FormatRegistry.
var ErrUnsupportedFormat = errors.New("unsupported format")

// RDFExporter writes graphs using the prefixes of a vocabulary.
type RDFExporter struct {
	vocab    *codemeta.Vocabulary
	prefixes map[string]string
}

// NewRDFExporter creates an exporter. A nil vocab uses the default vocabulary.
func NewRDFExporter(vocab *codemeta.Vocabulary) *RDFExporter {
	if vocab == nil {
		vocab = codemeta.NewVocabulary()
	}
	prefixes := vocab.Prefixes()
	if _, ok := prefixes["schema"]; !ok {
		prefixes["schema"] = codemeta.SchemaNamespace
	}
	return &RDFExporter{vocab: vocab, prefixes: prefixes}
}

// SetPrefix adds or replaces a Turtle prefix.
func (e *RDFExporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// Export serializes g to w in the given format.
func (e *RDFExporter) Export(w io.Writer, g *graph.Graph, format Format) error {
	var err error
	switch format {
	case FormatTurtle:
		err = e.writeTurtle(w, g)
	case FormatNTriples:
		err = writeNTriples(w, g)
	case FormatJSONLD:
		err = WriteJSONLD(w, document.CompactGraph(document.FromGraph(g), e.vocab))
	default:
		return fmt.Errorf("export %q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// Write serializes g with the default vocabulary prefixes.
func Write(w io.Writer, g *graph.Graph, format Format) error {
	return NewRDFExporter(nil).Export(w, g, format)
}

// WriteJSONLD pretty-prints a compacted JSON-LD document.
func WriteJSONLD(w io.Writer, doc *document.Object) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode JSON-LD: %w", err)
	}
	return nil
}

func writeNTriples(w io.Writer, g *graph.Graph) error {
	for t := range g.All() {
		if _, err := io.WriteString(w, t.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeTurtle writes one block per subject, in the order of the flat iterator.
func (e *RDFExporter) writeTurtle(w io.Writer, g *graph.Graph) error {
	tw := NewTurtleWriter(e.prefixes)
	tw.WritePrefixes()

	var (
		current graph.Term
		pending []graph.Triple
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		tw.WriteSubject(pending[0].Subject)
		for i, t := range pending {
			tw.WritePredicate(t.Predicate, t.Object, i == len(pending)-1)
		}
		tw.WriteBlank()
		pending = pending[:0]
	}
	for t := range g.All() {
		if t.Subject != current {
			flush()
			current = t.Subject
		}
		pending = append(pending, t)
	}
	flush()

	_, err := io.WriteString(w, tw.String())
	return err
}

// prefixedName returns the prefix:local form of iri, or "" when no prefix fits
// or the local part is not a safe Turtle local name.
func prefixedName(prefixes map[string]string, iri string) string {
	best, bestNS := "", ""
	for _, prefix := range slices.Sorted(maps.Keys(prefixes)) {
		ns := prefixes[prefix]
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return ""
	}
	local := strings.TrimPrefix(iri, bestNS)
	if !isTurtleLocal(local) {
		return ""
	}
	return best + ":" + local
}

func isTurtleLocal(s string) bool {
	if s == "" || s[0] == '-' || s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
