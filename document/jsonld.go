package document

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// ParseJSONLD reads a JSON-LD document into nodes. It accepts a single node
// object, an array of node objects, or an object with @graph. Contexts may be
// inline objects, arrays, or the IRIs of the published CodeMeta and schema.org
// contexts, which resolve to the vocabulary. A nil vocab uses the default
// vocabulary.
func ParseJSONLD(r io.Reader, vocab *codemeta.Vocabulary) ([]*Node, error) {
	if vocab == nil {
		vocab = codemeta.NewVocabulary()
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON-LD: %w: %w", ErrInvalidDocument, err)
	}

	p := &jsonldParser{builtin: builtinContext(vocab)}
	nodes, err := p.document(raw)
	if err != nil {
		return nil, fmt.Errorf("parse JSON-LD: %w", err)
	}
	return nodes, nil
}

type jsonldParser struct {
	builtin *activeContext
}

func (p *jsonldParser) document(raw any) ([]*Node, error) {
	switch doc := raw.(type) {
	case []any:
		return p.nodeList(doc, p.builtin)
	case map[string]any:
		ctx, err := p.topContext(doc["@context"])
		if err != nil {
			return nil, err
		}
		rawGraph, hasGraph := doc["@graph"]
		if !hasGraph {
			n, err := p.node(doc, ctx)
			if err != nil {
				return nil, err
			}
			return []*Node{n}, nil
		}
		var graphItems []any
		switch g := rawGraph.(type) {
		case nil:
		case []any:
			graphItems = g
		case map[string]any:
			graphItems = []any{g}
		default:
			return nil, fmt.Errorf("@graph of type %T: %w", rawGraph, ErrInvalidDocument)
		}
		nodes, err := p.nodeList(graphItems, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := doc["@id"]; ok {
			top := maps.Clone(doc)
			delete(top, "@graph")
			n, err := p.node(top, ctx)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("top-level %T: %w", raw, ErrInvalidDocument)
	}
}

// topContext returns the context of a top-level object. A document without a
// context is read with the built-in one.
func (p *jsonldParser) topContext(raw any) (*activeContext, error) {
	if raw == nil {
		return p.builtin, nil
	}
	return emptyContext().apply(raw, p.builtin)
}

func (p *jsonldParser) nodeList(items []any, ctx *activeContext) ([]*Node, error) {
	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is %T: %w", i, item, ErrInvalidDocument)
		}
		n, err := p.node(obj, ctx)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *jsonldParser) node(obj map[string]any, ctx *activeContext) (*Node, error) {
	if raw, ok := obj["@context"]; ok && raw != nil {
		next, err := ctx.apply(raw, p.builtin)
		if err != nil {
			return nil, err
		}
		ctx = next
	}

	n := NewNode("")
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		raw := obj[key]
		keyword := key
		if def, ok := ctx.terms[key]; ok && strings.HasPrefix(def.iri, "@") {
			keyword = def.iri
		}

		switch keyword {
		case "@context", "@graph", "@reverse", "@index":
			continue
		case "@id":
			id, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("@id of type %T: %w", raw, ErrInvalidDocument)
			}
			n.ID = ctx.expandIRI(id)
		case "@type":
			for _, typ := range stringList(raw) {
				n.AddType(ctx.expandTerm(typ))
			}
		default:
			def := ctx.terms[key]
			vals, err := p.values(raw, def, ctx)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", key, err)
			}
			if len(vals) == 0 {
				continue
			}
			pred := ctx.expandTerm(key)
			if def.list && !isListObject(raw) {
				n.Add(pred, List(vals))
				continue
			}
			n.Add(pred, vals...)
		}
	}
	return n, nil
}

func (p *jsonldParser) values(raw any, def termDef, ctx *activeContext) ([]Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		var out []Value
		for _, item := range v {
			vals, err := p.values(item, def, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
		}
		return out, nil
	case string:
		switch {
		case def.typeID:
			return []Value{Ref{ID: ctx.expandIRI(v)}}, nil
		case def.datatype != "":
			return []Value{Literal{Value: v, Datatype: def.datatype}}, nil
		default:
			return []Value{String(v)}, nil
		}
	case json.Number, bool:
		return []Value{scalarLiteral(v)}, nil
	case map[string]any:
		return p.object(v, def, ctx)
	default:
		return nil, fmt.Errorf("value of type %T: %w", raw, ErrInvalidDocument)
	}
}

func (p *jsonldParser) object(obj map[string]any, def termDef, ctx *activeContext) ([]Value, error) {
	if raw, ok := obj["@value"]; ok {
		if raw == nil {
			return nil, nil
		}
		lit := scalarLiteral(raw)
		if typ, ok := obj["@type"].(string); ok {
			lit.Datatype = ctx.expandIRI(typ)
		}
		if lang, ok := obj["@language"].(string); ok {
			lit.Language = strings.ToLower(lang)
		}
		return []Value{lit}, nil
	}
	if raw, ok := obj["@list"]; ok {
		items, err := p.values(raw, termDef{typeID: def.typeID, datatype: def.datatype}, ctx)
		if err != nil {
			return nil, err
		}
		return []Value{List(items)}, nil
	}
	if id, ok := obj["@id"].(string); ok && len(obj) == 1 {
		return []Value{Ref{ID: ctx.expandIRI(id)}}, nil
	}
	n, err := p.node(obj, ctx)
	if err != nil {
		return nil, err
	}
	return []Value{n}, nil
}

// isListObject reports whether raw is an explicit {"@list": ...} object, which
// already reads as a List.
func isListObject(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj["@list"]
	return ok
}

// scalarLiteral converts a JSON scalar. Integers become xsd:integer, other
// numbers xsd:double.
func scalarLiteral(raw any) Literal {
	switch v := raw.(type) {
	case string:
		return String(v)
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return Literal{Value: s, Datatype: codemeta.XSDDouble}
		}
		return Literal{Value: s, Datatype: codemeta.XSDInteger}
	case bool:
		if v {
			return Literal{Value: "true", Datatype: codemeta.XSDBoolean}
		}
		return Literal{Value: "false", Datatype: codemeta.XSDBoolean}
	default:
		return String(fmt.Sprint(v))
	}
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
