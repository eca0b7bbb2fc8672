package document

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

const (
	namePredicate     = codemeta.SchemaNamespace + codemeta.Name
	positionPredicate = codemeta.SchemaNamespace + codemeta.Position
)

// sortValues orders a multi-valued field so output is stable across runs. When
// every member is a node with a numeric position, members are sorted by
// position. Otherwise literals come first ordered by value, then resources
// ordered by name and id.
func sortValues(vals []Value) []Value {
	if len(vals) < 2 {
		return vals
	}
	if positions, ok := allPositions(vals); ok {
		idx := make([]int, len(vals))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(positions[a], positions[b]) })
		out := make([]Value, len(vals))
		for i, j := range idx {
			out[i] = vals[j]
		}
		return out
	}
	slices.SortStableFunc(vals, compareValues)
	return vals
}

func allPositions(vals []Value) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		n, ok := v.(*Node)
		if !ok {
			return nil, false
		}
		text, ok := n.Text(positionPredicate)
		if !ok {
			return nil, false
		}
		pos, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, false
		}
		out[i] = pos
	}
	return out, true
}

func valueRank(v Value) int {
	switch v.(type) {
	case Literal:
		return 0
	case List:
		return 1
	default:
		return 2
	}
}

func compareValues(a, b Value) int {
	if c := cmp.Compare(valueRank(a), valueRank(b)); c != 0 {
		return c
	}
	switch a := a.(type) {
	case Literal:
		b := b.(Literal)
		return cmp.Or(
			strings.Compare(a.Value, b.Value),
			strings.Compare(a.Datatype, b.Datatype),
			strings.Compare(a.Language, b.Language),
		)
	case List:
		return cmp.Compare(len(a), len(b.(List)))
	default:
		an, aid := resourceKey(a)
		bn, bid := resourceKey(b)
		return cmp.Or(strings.Compare(an, bn), strings.Compare(aid, bid))
	}
}

func resourceKey(v Value) (name, id string) {
	switch v := v.(type) {
	case *Node:
		name, _ = v.Text(namePredicate)
		return name, v.ID
	case Ref:
		return "", v.ID
	}
	return "", ""
}
