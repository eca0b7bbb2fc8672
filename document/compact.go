package document

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// Compact rewrites a framed tree into a JSON-LD object with an inline @context.
//
// Predicate and type IRIs are shortened to vocabulary terms or prefixed names.
// Predicates in the internal namespace are dropped, and values under the
// unknown namespace are demoted to plain strings. Blank-node ids are removed
// unless something in the tree refers back to them. A node shared by several
// branches is written in full at its first occurrence and as {"@id": ...}
// afterwards. Numeric and boolean literals become JSON numbers and booleans.
func Compact(root *Node, vocab *codemeta.Vocabulary) *Object {
	if vocab == nil {
		vocab = codemeta.NewVocabulary()
	}
	c := newCompactor(vocab, false)
	c.markShared(root, make(map[*Node]bool))
	c.written[root] = true
	body := c.node(root)

	out := NewObject()
	out.Set("@context", compactContext(vocab, c.used, true))
	for _, k := range body.keys {
		out.Set(k, body.values[k])
	}
	return out
}

// CompactGraph writes flat nodes as a document with a @graph array. Blank-node
// ids are kept and lists are written as explicit @list objects, so the document
// reads back into the same graph shape.
func CompactGraph(nodes []*Node, vocab *codemeta.Vocabulary) *Object {
	if vocab == nil {
		vocab = codemeta.NewVocabulary()
	}
	c := newCompactor(vocab, true)
	items := make([]any, 0, len(nodes))
	for _, n := range nodes {
		c.written[n] = true
		items = append(items, c.node(n))
	}

	out := NewObject()
	out.Set("@context", compactContext(vocab, c.used, false))
	out.Set("@graph", items)
	return out
}

type compactor struct {
	vocab      *codemeta.Vocabulary
	flat       bool
	used       map[string]bool
	written    map[*Node]bool
	referenced map[string]bool
}

func newCompactor(vocab *codemeta.Vocabulary, flat bool) *compactor {
	return &compactor{
		vocab:      vocab,
		flat:       flat,
		used:       make(map[string]bool),
		written:    make(map[*Node]bool),
		referenced: make(map[string]bool),
	}
}

// markShared records the ids that will be written as references: targets of
// bare Refs and nodes reached more than once.
func (c *compactor) markShared(n *Node, seen map[*Node]bool) {
	if seen[n] {
		c.referenced[n.ID] = true
		return
	}
	seen[n] = true
	for _, k := range n.keys {
		for _, v := range n.fields[k] {
			c.markValue(v, seen)
		}
	}
}

func (c *compactor) markValue(v Value, seen map[*Node]bool) {
	switch v := v.(type) {
	case Ref:
		c.referenced[v.ID] = true
	case *Node:
		c.markShared(v, seen)
	case List:
		for _, item := range v {
			c.markValue(item, seen)
		}
	}
}

type compactField struct {
	predicate string
	term      string
}

func (c *compactor) node(n *Node) *Object {
	o := NewObject()
	if id := c.nodeID(n); id != "" {
		o.Set("@id", id)
	}

	var types []string
	for _, typ := range n.Types {
		if strings.HasPrefix(typ, codemeta.InternalNamespace) {
			continue
		}
		types = append(types, c.vocab.CompactIRI(typ))
	}
	slices.Sort(types)
	switch len(types) {
	case 0:
	case 1:
		o.Set("@type", types[0])
	default:
		o.Set("@type", types)
	}

	// Values are compacted in output order so the first written occurrence
	// of a shared node is also the first one in the document.
	var fields []compactField
	for _, pred := range n.keys {
		if strings.HasPrefix(pred, codemeta.InternalNamespace) {
			continue
		}
		fields = append(fields, compactField{predicate: pred, term: c.vocab.CompactIRI(pred)})
	}
	slices.SortFunc(fields, func(a, b compactField) int { return cmp.Compare(a.term, b.term) })

	for _, f := range fields {
		var vals []any
		for _, v := range n.fields[f.predicate] {
			if out := c.value(f.predicate, v); out != nil {
				vals = append(vals, out)
			}
		}
		switch len(vals) {
		case 0:
			continue
		case 1:
			o.Set(f.term, vals[0])
		default:
			o.Set(f.term, vals)
		}
		c.used[f.predicate] = true
	}
	return o
}

func (c *compactor) nodeID(n *Node) string {
	if n.ID == "" {
		return ""
	}
	if strings.HasPrefix(n.ID, graph.BlankPrefix) && !c.flat && !c.referenced[n.ID] {
		return ""
	}
	return c.compactID(n.ID)
}

func (c *compactor) compactID(id string) string {
	if strings.HasPrefix(id, graph.BlankPrefix) {
		return id
	}
	return c.vocab.CompactPrefixed(id)
}

func (c *compactor) value(pred string, v Value) any {
	switch v := v.(type) {
	case Literal:
		return c.literal(v)
	case Ref:
		if rest, ok := strings.CutPrefix(v.ID, codemeta.UnknownNamespace); ok {
			return rest
		}
		return idObject(c.compactID(v.ID))
	case *Node:
		if c.written[v] && v.ID != "" {
			return idObject(c.compactID(v.ID))
		}
		c.written[v] = true
		return c.node(v)
	case List:
		items := make([]any, 0, len(v))
		for _, item := range v {
			if out := c.value(pred, item); out != nil {
				items = append(items, out)
			}
		}
		if !c.flat && c.vocab.IsOrdered(pred) {
			return items
		}
		list := NewObject()
		list.Set("@list", items)
		return list
	default:
		return nil
	}
}

func (c *compactor) literal(l Literal) any {
	if l.Language != "" {
		o := NewObject()
		o.Set("@value", l.Value)
		o.Set("@language", l.Language)
		return o
	}

	switch l.Datatype {
	case "":
		if rest, ok := strings.CutPrefix(l.Value, codemeta.UnknownNamespace); ok {
			return rest
		}
		return l.Value
	case codemeta.XSDInteger:
		if isJSONNumber(l.Value) && !strings.ContainsAny(l.Value, ".eE") {
			return json.Number(l.Value)
		}
	case codemeta.XSDDouble:
		if isJSONNumber(l.Value) {
			return json.Number(l.Value)
		}
	case codemeta.XSDDecimal:
		// A bare JSON number reads back as xsd:double.
		if !c.flat && isJSONNumber(l.Value) {
			return json.Number(l.Value)
		}
	case codemeta.XSDBoolean:
		switch l.Value {
		case "true":
			return true
		case "false":
			return false
		}
	}

	o := NewObject()
	o.Set("@value", l.Value)
	o.Set("@type", c.vocab.CompactPrefixed(l.Datatype))
	return o
}

func isJSONNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil && json.Valid([]byte(s))
}

func idObject(id string) *Object {
	o := NewObject()
	o.Set("@id", id)
	return o
}
