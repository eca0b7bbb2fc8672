// Package document converts between the flat triple store and JSON-LD shaped
// documents. It frames a flat, possibly cyclic set of nodes into one nested tree
// rooted at a resource, and compacts that tree back into public vocabulary.
package document

import (
	"slices"

	"github.com/c360studio/crosswalk/graph"
)

// Value is a field value of a Node: Ref, Literal, List or *Node.
type Value interface {
	isValue()
}

// Ref is a bare reference to a node by id.
type Ref struct {
	ID string
}

// Literal is a data value.
type Literal struct {
	Value    string
	Datatype string
	Language string
}

// List is an ordered collection. Framing never reorders its members.
type List []Value

func (Ref) isValue() {}
func (Literal) isValue() {}
func (List) isValue() {}
func (*Node) isValue() {}

// String returns a plain literal.
func String(s string) Literal {
	return Literal{Value: s}
}

// Node is a resource record with an optional id, its types and its fields.
// Field keys are predicate IRIs and keep their insertion order.
type Node struct {
	ID    string
	Types []string

	keys   []string
	fields map[string][]Value
}

// NewNode creates a node with the given id and types.
func NewNode(id string, types ...string) *Node {
	return &Node{
		ID:     id,
		Types:  slices.Clone(types),
		fields: make(map[string][]Value),
	}
}

// Add appends values to a field.
func (n *Node) Add(predicate string, values ...Value) {
	if n.fields == nil {
		n.fields = make(map[string][]Value)
	}
	if _, ok := n.fields[predicate]; !ok {
		n.keys = append(n.keys, predicate)
	}
	n.fields[predicate] = append(n.fields[predicate], values...)
}

// Set replaces a field's values.
func (n *Node) Set(predicate string, values ...Value) {
	if _, ok := n.fields[predicate]; ok {
		n.fields[predicate] = nil
	}
	n.Add(predicate, values...)
}

// Delete removes a field.
func (n *Node) Delete(predicate string) {
	if _, ok := n.fields[predicate]; !ok {
		return
	}
	delete(n.fields, predicate)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == predicate })
}

// Values returns a field's values.
func (n *Node) Values(predicate string) []Value {
	return n.fields[predicate]
}

// First returns the first value of a field.
func (n *Node) First(predicate string) (Value, bool) {
	vals := n.fields[predicate]
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// Text returns the first literal value of a field.
func (n *Node) Text(predicate string) (string, bool) {
	for _, v := range n.fields[predicate] {
		if lit, ok := v.(Literal); ok {
			return lit.Value, true
		}
	}
	return "", false
}

// Predicates returns the field keys in insertion order.
func (n *Node) Predicates() []string {
	return slices.Clone(n.keys)
}

// Len returns the number of fields.
func (n *Node) Len() int { return len(n.keys) }

// HasType reports whether the node carries the type IRI.
func (n *Node) HasType(typ string) bool {
	return slices.Contains(n.Types, typ)
}

// AddType adds a type IRI unless already present.
func (n *Node) AddType(types ...string) {
	for _, typ := range types {
		if !n.HasType(typ) {
			n.Types = append(n.Types, typ)
		}
	}
}

// IsReference reports whether the node carries nothing but an id.
func (n *Node) IsReference() bool {
	return n.ID != "" && len(n.Types) == 0 && len(n.keys) == 0
}

// shallowClone copies the node's types and field slices but not nested values.
func (n *Node) shallowClone() *Node {
	c := NewNode(n.ID, n.Types...)
	for _, k := range n.keys {
		c.Add(k, n.fields[k]...)
	}
	return c
}

// mergeFrom folds other into n: types are unioned, and other's fields replace
// n's fields of the same predicate.
func (n *Node) mergeFrom(other *Node) {
	n.AddType(other.Types...)
	for _, k := range other.keys {
		n.Set(k, other.fields[k]...)
	}
}

// TermLiteral converts a graph literal.
func TermLiteral(t graph.Term) Literal {
	return Literal{Value: t.Value, Datatype: t.Datatype, Language: t.Language}
}

// Term converts a literal back to a graph term.
func (l Literal) Term() graph.Term {
	switch {
	case l.Language != "":
		return graph.LangLiteral(l.Value, l.Language)
	case l.Datatype != "":
		return graph.TypedLiteral(l.Value, l.Datatype)
	default:
		return graph.Literal(l.Value)
	}
}
