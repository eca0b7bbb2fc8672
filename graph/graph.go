// Package graph provides the in-memory triple store underneath the crosswalk:
// insertion policy, deterministic URI generation, skolemization of blank nodes
// and graph merging.
//
// Nothing in this package is safe for concurrent mutation; callers own a Graph
// for the duration of one run.
package graph

import (
	"iter"
	"slices"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

type tripleSet map[Triple]struct{}

// Graph is a set of triples indexed by subject and object.
type Graph struct {
	triples   tripleSet
	bySubject map[Term]tripleSet
	byObject  map[Term]tripleSet
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		triples:   make(tripleSet),
		bySubject: make(map[Term]tripleSet),
		byObject:  make(map[Term]tripleSet),
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Has reports whether the triple is present.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

// Add inserts a triple. Adding an existing triple is a no-op and returns false.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	index(g.bySubject, t.Subject, t)
	index(g.byObject, t.Object, t)
	return true
}

// Remove deletes a triple and reports whether it was present.
func (g *Graph) Remove(t Triple) bool {
	if _, ok := g.triples[t]; !ok {
		return false
	}
	delete(g.triples, t)
	unindex(g.bySubject, t.Subject, t)
	unindex(g.byObject, t.Object, t)
	return true
}

// RemoveMatching deletes every triple matching the pattern and returns how many
// were removed. Zero terms are wildcards.
func (g *Graph) RemoveMatching(s, p, o Term) int {
	matches := g.Match(s, p, o)
	for _, t := range matches {
		g.Remove(t)
	}
	return len(matches)
}

// Set replaces every (s, p, *) triple with (s, p, o).
func (g *Graph) Set(s, p, o Term) {
	for _, t := range g.Match(s, p, Term{}) {
		if t.Object != o {
			g.Remove(t)
		}
	}
	g.Add(T(s, p, o))
}

// Match returns the triples matching the pattern in sorted order. Zero terms are
// wildcards.
func (g *Graph) Match(s, p, o Term) []Triple {
	var candidates tripleSet
	switch {
	case !s.IsZero():
		candidates = g.bySubject[s]
	case !o.IsZero():
		candidates = g.byObject[o]
	default:
		candidates = g.triples
	}

	var out []Triple
	for t := range candidates {
		if (s.IsZero() || t.Subject == s) &&
			(p.IsZero() || t.Predicate == p) &&
			(o.IsZero() || t.Object == o) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, compareTriples)
	return out
}

// Objects returns the objects of (s, p, *) in sorted order.
func (g *Graph) Objects(s, p Term) []Term {
	matches := g.Match(s, p, Term{})
	out := make([]Term, len(matches))
	for i, t := range matches {
		out[i] = t.Object
	}
	return out
}

// Value returns the first object of (s, p, *).
func (g *Graph) Value(s, p Term) (Term, bool) {
	objs := g.Objects(s, p)
	if len(objs) == 0 {
		return Term{}, false
	}
	return objs[0], true
}

// Subjects returns the distinct subjects in sorted order.
func (g *Graph) Subjects() []Term {
	out := make([]Term, 0, len(g.bySubject))
	for s := range g.bySubject {
		out = append(out, s)
	}
	slices.SortFunc(out, compareTerms)
	return out
}

// HasSubject reports whether t has outgoing edges.
func (g *Graph) HasSubject(t Term) bool {
	return len(g.bySubject[t]) > 0
}

// Outgoing returns the triples with subject s in sorted order.
func (g *Graph) Outgoing(s Term) []Triple {
	return g.Match(s, Term{}, Term{})
}

// Incoming returns the triples with object o in sorted order.
func (g *Graph) Incoming(o Term) []Triple {
	return g.Match(Term{}, Term{}, o)
}

// All iterates over every triple in deterministic order. The graph must not be
// mutated during iteration.
func (g *Graph) All() iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, t := range g.Triples() {
			if !yield(t) {
				return
			}
		}
	}
}

// Triples returns all triples in sorted order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	slices.SortFunc(out, compareTriples)
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for t := range g.triples {
		c.Add(t)
	}
	return c
}

// Difference returns the triples of g that are not in other, in sorted order.
func (g *Graph) Difference(other *Graph) []Triple {
	var out []Triple
	for t := range g.triples {
		if !other.Has(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, compareTriples)
	return out
}

// AddList links s to a new rdf:first/rdf:rest chain holding items in order and
// returns the head of the chain. An empty list links s to rdf:nil.
func (g *Graph) AddList(s, p Term, items []Term) Term {
	head := IRI(codemeta.RDFNil)
	for i := len(items) - 1; i >= 0; i-- {
		cell := NewBlank()
		g.Add(T(cell, IRI(codemeta.RDFFirst), items[i]))
		g.Add(T(cell, IRI(codemeta.RDFRest), head))
		head = cell
	}
	g.Add(T(s, p, head))
	return head
}

func index(idx map[Term]tripleSet, key Term, t Triple) {
	set, ok := idx[key]
	if !ok {
		set = make(tripleSet)
		idx[key] = set
	}
	set[t] = struct{}{}
}

func unindex(idx map[Term]tripleSet, key Term, t Triple) {
	set := idx[key]
	delete(set, t)
	if len(set) == 0 {
		delete(idx, key)
	}
}
