package graph

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// cycleMarker stands in for a blank object that is already on the recursion
// path, so back-edges contribute to the hash without re-entering the cycle.
const cycleMarker = "\x00cycle"

// Skolemize rewrites every blank node in g to a URI, in place, and returns the
// number of blank nodes rewritten.
//
// A blank node with outgoing edges becomes baseURI/stub/H<hash>, where the hash
// covers its reachable content and not its label. Blank nodes with identical
// reachable content therefore collapse onto the same URI, including two
// unrelated resources that happen to carry the same facts. A blank node with no
// outgoing edges has no content to hash and gets a random stub URI.
//
// Running Skolemize on a graph without blank nodes changes nothing.
func Skolemize(g *Graph, baseURI string) int {
	h := newHasher(g)

	rewrite := make(map[Term]Term)
	for t := range g.triples {
		for _, n := range []Term{t.Subject, t.Object} {
			if !n.IsBlank() {
				continue
			}
			if _, done := rewrite[n]; done {
				continue
			}
			if g.HasSubject(n) {
				rewrite[n] = IRI(StubURI(baseURI, h.hash(n)))
			} else {
				rewrite[n] = IRI(GenerateURI("", baseURI, "stub"))
			}
		}
	}
	if len(rewrite) == 0 {
		return 0
	}

	var affected []Triple
	for t := range g.triples {
		if t.Subject.IsBlank() || t.Object.IsBlank() {
			affected = append(affected, t)
		}
	}
	for _, t := range affected {
		g.Remove(t)
	}
	for _, t := range affected {
		if r, ok := rewrite[t.Subject]; ok {
			t.Subject = r
		}
		if r, ok := rewrite[t.Object]; ok {
			t.Object = r
		}
		g.Add(t)
	}
	return len(rewrite)
}

// StubURI returns the skolem URI for a content hash.
func StubURI(baseURI string, hash uint64) string {
	if baseURI == "" {
		baseURI = codemeta.UndefinedBase
	}
	return joinSegment(joinSegment(baseURI, "stub"), fmt.Sprintf("H%016x", hash))
}

// ContentHash returns the content hash of a blank node in g.
func ContentHash(g *Graph, b Term) uint64 {
	h := newHasher(g)
	return h.hash(b)
}

type hasher struct {
	graph *Graph

	// cache holds top-level hashes; acyclic holds digests of blank nodes that
	// reach no cycle, which are the same on every recursion path.
	cache   map[Term]uint64
	acyclic map[Term]uint64
}

func newHasher(g *Graph) *hasher {
	return &hasher{graph: g, cache: make(map[Term]uint64), acyclic: make(map[Term]uint64)}
}

// hash computes the top-level hash of b, caching per blank node.
func (h *hasher) hash(b Term) uint64 {
	if v, ok := h.cache[b]; ok {
		return v
	}
	v, _ := h.digest(b, map[Term]bool{})
	h.cache[b] = v
	return v
}

// digest hashes b below the recursion path. The second result reports whether
// the computation met a back-edge; without one the digest does not depend on
// the path and is shared by every later visit, so structure reached along many
// paths is hashed once.
func (h *hasher) digest(b Term, path map[Term]bool) (uint64, bool) {
	if v, ok := h.acyclic[b]; ok {
		return v, false
	}
	path[b] = true
	defer delete(path, b)

	cyclic := false
	out := h.graph.Outgoing(b)
	parts := make([]string, 0, len(out))
	for _, t := range out {
		obj := t.Object.String()
		if t.Object.IsBlank() {
			switch {
			case path[t.Object]:
				obj = cycleMarker
				cyclic = true
			case !h.graph.HasSubject(t.Object):
				obj = "_:"
			default:
				v, c := h.digest(t.Object, path)
				cyclic = cyclic || c
				obj = fmt.Sprintf("_:H%016x", v)
			}
		}
		parts = append(parts, t.Predicate.String()+" "+obj)
	}
	slices.Sort(parts)

	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.WriteString("\n")
	}
	v := d.Sum64()
	if !cyclic {
		h.acyclic[b] = v
	}
	return v, cyclic
}
