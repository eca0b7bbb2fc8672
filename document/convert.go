package document

import (
	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

var (
	rdfType  = graph.IRI(codemeta.RDFType)
	rdfFirst = graph.IRI(codemeta.RDFFirst)
	rdfRest  = graph.IRI(codemeta.RDFRest)
	rdfNil   = graph.IRI(codemeta.RDFNil)
)

// FromGraph returns one flat node per subject of g, in subject order. rdf:type
// objects become Types, and rdf:first/rdf:rest chains are folded into List
// values; list cells do not appear as nodes of their own.
func FromGraph(g *graph.Graph) []*Node {
	var nodes []*Node
	for _, s := range g.Subjects() {
		if isListCell(g, s) {
			continue
		}
		n := NewNode(s.ID())
		for _, t := range g.Outgoing(s) {
			if t.Predicate == rdfType && t.Object.IsIRI() {
				n.AddType(t.Object.Value)
				continue
			}
			n.Add(t.Predicate.Value, objectValue(g, t.Object))
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func objectValue(g *graph.Graph, o graph.Term) Value {
	switch {
	case o.IsLiteral():
		return TermLiteral(o)
	case o == rdfNil:
		return List{}
	case isListCell(g, o):
		return readList(g, o)
	default:
		return Ref{ID: o.ID()}
	}
}

func isListCell(g *graph.Graph, t graph.Term) bool {
	if !t.IsResource() {
		return false
	}
	_, ok := g.Value(t, rdfFirst)
	return ok
}

// readList walks a list chain. A chain that loops back on itself is cut at the
// first repeated cell.
func readList(g *graph.Graph, head graph.Term) List {
	list := List{}
	seen := make(map[graph.Term]bool)
	for cell := head; cell != rdfNil && !seen[cell]; {
		seen[cell] = true
		first, ok := g.Value(cell, rdfFirst)
		if !ok {
			break
		}
		list = append(list, objectValue(g, first))
		rest, ok := g.Value(cell, rdfRest)
		if !ok {
			break
		}
		cell = rest
	}
	return list
}

// ToGraph is the inverse of FromGraph. Nested nodes without an id get fresh blank
// nodes, and List values become rdf:first/rdf:rest chains. A node reachable
// through several pointers is written once.
func ToGraph(nodes []*Node) *graph.Graph {
	g := graph.New()
	w := &graphWriter{graph: g, seen: make(map[*Node]graph.Term)}
	for _, n := range nodes {
		w.node(n)
	}
	return g
}

type graphWriter struct {
	graph *graph.Graph
	seen  map[*Node]graph.Term
}

func (w *graphWriter) node(n *Node) graph.Term {
	if s, ok := w.seen[n]; ok {
		return s
	}
	s := graph.NewBlank()
	if n.ID != "" {
		s = graph.TermFromID(n.ID)
	}
	w.seen[n] = s

	for _, typ := range n.Types {
		w.graph.Add(graph.T(s, rdfType, graph.TermFromID(typ)))
	}
	for _, pred := range n.keys {
		p := graph.IRI(pred)
		for _, v := range n.fields[pred] {
			if list, ok := v.(List); ok {
				w.graph.AddList(s, p, w.items(list))
				continue
			}
			w.graph.Add(graph.T(s, p, w.value(v)))
		}
	}
	return s
}

func (w *graphWriter) value(v Value) graph.Term {
	switch v := v.(type) {
	case Ref:
		return graph.TermFromID(v.ID)
	case Literal:
		return v.Term()
	case *Node:
		return w.node(v)
	case List:
		head := rdfNil
		items := w.items(v)
		for i := len(items) - 1; i >= 0; i-- {
			cell := graph.NewBlank()
			w.graph.Add(graph.T(cell, rdfFirst, items[i]))
			w.graph.Add(graph.T(cell, rdfRest, head))
			head = cell
		}
		return head
	default:
		return graph.Term{}
	}
}

func (w *graphWriter) items(list List) []graph.Term {
	out := make([]graph.Term, 0, len(list))
	for _, v := range list {
		out = append(out, w.value(v))
	}
	return out
}
