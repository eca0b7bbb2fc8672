package document

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

type termDef struct {
	iri      string
	typeID   bool
	datatype string
	list     bool
}

// activeContext is the subset of a JSON-LD context the reader understands:
// @vocab, prefixes and term definitions with @id, @type and @container @list.
type activeContext struct {
	vocab    string
	terms    map[string]termDef
	prefixes map[string]string
}

// builtinContext mirrors the CodeMeta context from the vocabulary.
func builtinContext(v *codemeta.Vocabulary) *activeContext {
	ctx := &activeContext{
		vocab:    codemeta.SchemaNamespace,
		terms:    make(map[string]termDef),
		prefixes: v.Prefixes(),
	}
	for _, p := range v.Predicates() {
		ctx.terms[p.Name] = termDef{iri: p.IRI, typeID: p.IRIRange, list: p.Ordered}
	}
	ctx.terms["id"] = termDef{iri: "@id"}
	ctx.terms["type"] = termDef{iri: "@type"}
	return ctx
}

func emptyContext() *activeContext {
	return &activeContext{
		terms:    make(map[string]termDef),
		prefixes: make(map[string]string),
	}
}

func (c *activeContext) clone() *activeContext {
	return &activeContext{
		vocab:    c.vocab,
		terms:    maps.Clone(c.terms),
		prefixes: maps.Clone(c.prefixes),
	}
}

// apply processes a @context value on top of c and returns the new context.
func (c *activeContext) apply(raw any, builtin *activeContext) (*activeContext, error) {
	switch v := raw.(type) {
	case nil:
		return emptyContext(), nil
	case string:
		if slices.Contains(codemeta.KnownContexts, strings.TrimSuffix(v, "/")) ||
			slices.Contains(codemeta.KnownContexts, v) {
			return mergeContexts(c, builtin), nil
		}
		return nil, fmt.Errorf("context %s: %w", v, ErrUnsupportedContext)
	case []any:
		out := c
		for _, item := range v {
			next, err := out.apply(item, builtin)
			if err != nil {
				return nil, err
			}
			out = next
		}
		return out, nil
	case map[string]any:
		return c.define(v)
	default:
		return nil, fmt.Errorf("context of type %T: %w", raw, ErrInvalidDocument)
	}
}

func mergeContexts(base, overlay *activeContext) *activeContext {
	out := base.clone()
	out.vocab = overlay.vocab
	maps.Copy(out.terms, overlay.terms)
	maps.Copy(out.prefixes, overlay.prefixes)
	return out
}

func (c *activeContext) define(defs map[string]any) (*activeContext, error) {
	out := c.clone()
	if vocab, ok := defs["@vocab"].(string); ok {
		out.vocab = out.expandIRI(vocab)
	}

	// Prefixes first so term definitions can use them.
	for _, key := range slices.Sorted(maps.Keys(defs)) {
		if iri, ok := defs[key].(string); ok && !strings.HasPrefix(key, "@") &&
			(strings.HasSuffix(iri, "/") || strings.HasSuffix(iri, "#")) {
			out.prefixes[key] = iri
		}
	}

	for _, key := range slices.Sorted(maps.Keys(defs)) {
		if strings.HasPrefix(key, "@") {
			continue
		}
		switch d := defs[key].(type) {
		case nil:
			delete(out.terms, key)
		case string:
			out.terms[key] = termDef{iri: out.expandTerm(d)}
		case map[string]any:
			def := termDef{iri: out.expandTerm(key)}
			if id, ok := d["@id"].(string); ok {
				def.iri = out.expandTerm(id)
			}
			if typ, ok := d["@type"].(string); ok {
				if typ == "@id" || typ == "@vocab" {
					def.typeID = true
				} else {
					def.datatype = out.expandIRI(typ)
				}
			}
			if container, ok := d["@container"].(string); ok && container == "@list" {
				def.list = true
			}
			out.terms[key] = def
		default:
			return nil, fmt.Errorf("term %s of type %T: %w", key, d, ErrInvalidDocument)
		}
	}
	return out, nil
}

// expandTerm expands a property or type name.
func (c *activeContext) expandTerm(key string) string {
	if strings.HasPrefix(key, "@") {
		return key
	}
	if def, ok := c.terms[key]; ok {
		return def.iri
	}
	if strings.Contains(key, ":") {
		return c.expandIRI(key)
	}
	return c.vocab + key
}

// expandIRI expands a compact IRI. Absolute IRIs, blank ids and unknown
// prefixes are returned unchanged.
func (c *activeContext) expandIRI(s string) string {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok || strings.HasPrefix(local, "//") || prefix == "_" {
		return s
	}
	if ns, known := c.prefixes[prefix]; known {
		return ns + local
	}
	return s
}

// compactContext builds the inline @context for a compacted document: @vocab,
// the vocabulary prefixes, and a definition for every used predicate that
// needs one. Ordered predicates get a @list container when lists is set.
func compactContext(v *codemeta.Vocabulary, used map[string]bool, lists bool) *Object {
	ctx := NewObject()
	ctx.Set("@vocab", codemeta.SchemaNamespace)
	prefixes := v.Prefixes()
	for _, prefix := range slices.Sorted(maps.Keys(prefixes)) {
		ctx.Set(prefix, prefixes[prefix])
	}

	for _, iri := range slices.Sorted(maps.Keys(used)) {
		p, ok := v.Lookup(iri)
		if !ok {
			continue
		}
		implicit := p.IRI == codemeta.SchemaNamespace+p.Name
		switch {
		case p.Ordered && lists:
			def := NewObject()
			def.Set("@id", p.IRI)
			def.Set("@container", "@list")
			ctx.Set(p.Name, def)
		case !implicit:
			ctx.Set(p.Name, p.IRI)
		}
	}
	return ctx
}
