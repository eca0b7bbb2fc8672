package graph

import (
	"strings"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// Singular reports which predicates hold at most one value per subject.
// *codemeta.Vocabulary satisfies it.
type Singular interface {
	IsSingular(iri string) bool
}

// SingularFunc adapts a function to Singular.
type SingularFunc func(iri string) bool

// IsSingular implements Singular.
func (f SingularFunc) IsSingular(iri string) bool { return f(iri) }

// MergeStats reports what a merge did.
type MergeStats struct {
	// Merged is the number of triples added to the target.
	Merged int
	// Superseded is the number of target triples removed because an incoming
	// singular value replaced them.
	Superseded int
	// Remapped is the number of incoming triples rewritten by a remap.
	Remapped int
}

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

type mergeOptions struct {
	remaps map[Term]Term
}

// WithRemap rewrites any subject or object in the source equal to from into to
// before it is merged. It unifies a placeholder used while parsing with the
// canonical URI resolved later.
func WithRemap(from, to Term) MergeOption {
	return func(o *mergeOptions) {
		if o.remaps == nil {
			o.remaps = make(map[Term]Term)
		}
		o.remaps[from] = to
	}
}

// Merge adds every triple of source that target lacks into target. Objects under
// the unknown namespace are demoted to plain literals, and singular predicates
// replace the target's existing value. Merging a graph with itself changes
// nothing. Source is not modified.
func Merge(target, source *Graph, singular Singular, opts ...MergeOption) MergeStats {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var stats MergeStats
	for _, t := range source.Triples() {
		if target.Has(t) {
			continue
		}

		if len(o.remaps) > 0 {
			remapped := false
			if to, ok := o.remaps[t.Subject]; ok {
				t.Subject = to
				remapped = true
			}
			if to, ok := o.remaps[t.Object]; ok {
				t.Object = to
				remapped = true
			}
			if remapped {
				stats.Remapped++
			}
		}
		t.Object = demoteUnknown(t.Object)

		if target.Has(t) {
			continue
		}
		if singular != nil && singular.IsSingular(t.Predicate.Value) {
			for _, old := range target.Match(t.Subject, t.Predicate, Term{}) {
				target.Remove(old)
				stats.Superseded++
			}
		}
		target.Add(t)
		stats.Merged++
	}
	return stats
}

// demoteUnknown strips the unknown-namespace placeholder from an object,
// leaving the bare value as a plain literal.
func demoteUnknown(o Term) Term {
	if o.IsIRI() || (o.IsLiteral() && o.Datatype == "" && o.Language == "") {
		if rest, ok := strings.CutPrefix(o.Value, codemeta.UnknownNamespace); ok {
			return Literal(rest)
		}
	}
	return o
}
