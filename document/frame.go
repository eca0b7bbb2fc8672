package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// ItemMap maps a resource id to its canonical node.
type ItemMap map[string]*Node

// FrameOption configures Frame.
type FrameOption func(*framer)

// WithLogger sets the logger used for framing diagnostics.
func WithLogger(logger *slog.Logger) FrameOption {
	return func(f *framer) { f.logger = logger }
}

// WithVocabulary takes the no-embed predicates from vocab instead of the default
// vocabulary.
func WithVocabulary(vocab *codemeta.Vocabulary) FrameOption {
	return func(f *framer) { f.noEmbed = noEmbedSet(vocab) }
}

// WithNoEmbed adds predicates whose values stay references.
func WithNoEmbed(predicates ...string) FrameOption {
	return func(f *framer) { f.extraNoEmbed = append(f.extraNoEmbed, predicates...) }
}

type framer struct {
	items        ItemMap
	done         map[string]*Node
	noEmbed      map[string]bool
	extraNoEmbed []string
	logger       *slog.Logger
}

// Gather registers every node carrying an id, at any depth, into an ItemMap.
// When an id occurs more than once the occurrences are shallow-merged: types
// are unioned and later fields replace earlier ones. Input nodes are not
// modified.
func Gather(nodes []*Node) ItemMap {
	items := make(ItemMap)
	for _, n := range nodes {
		gatherNode(items, n)
	}
	return items
}

func gatherNode(items ItemMap, n *Node) {
	if n.ID != "" {
		if existing, ok := items[n.ID]; ok {
			existing.mergeFrom(n)
		} else {
			items[n.ID] = n.shallowClone()
		}
	}
	for _, k := range n.keys {
		for _, v := range n.fields[k] {
			gatherValue(items, v)
		}
	}
}

func gatherValue(items ItemMap, v Value) {
	switch v := v.(type) {
	case *Node:
		gatherNode(items, v)
	case List:
		for _, item := range v {
			gatherValue(items, item)
		}
	}
}

// Frame builds the nested tree rooted at rootID from a flat node collection.
//
// References are replaced by the full node. An id already on the current branch
// stays a Ref, so cycles end in a bare back-reference. A node that has been
// fully embedded once is reused by pointer wherever it occurs again. Values of
// no-embed predicates, and references to ids that were never gathered, stay
// Refs. Multi-valued fields are sorted; List values keep their order.
//
// Frame returns ErrRootNotFound when rootID was not gathered.
func Frame(nodes []*Node, rootID string, opts ...FrameOption) (*Node, error) {
	f := &framer{
		items: Gather(nodes),
		done:  make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.noEmbed == nil {
		f.noEmbed = noEmbedSet(nil)
	}
	for _, p := range f.extraNoEmbed {
		f.noEmbed[p] = true
	}

	root, ok := f.items[rootID]
	if !ok {
		return nil, fmt.Errorf("frame %s: %w", rootID, ErrRootNotFound)
	}
	return f.embedNode(root, make(map[string]bool)), nil
}

func (f *framer) embedNode(n *Node, history map[string]bool) *Node {
	if n.ID != "" {
		history[n.ID] = true
		defer delete(history, n.ID)
	}

	out := NewNode(n.ID, n.Types...)
	for _, k := range n.keys {
		vals := make([]Value, 0, len(n.fields[k]))
		for _, v := range n.fields[k] {
			vals = append(vals, f.embedValue(k, v, history))
		}
		out.Add(k, sortValues(vals)...)
	}

	if n.ID != "" {
		f.done[n.ID] = out
	}
	return out
}

func (f *framer) embedValue(predicate string, v Value, history map[string]bool) Value {
	switch v := v.(type) {
	case Ref:
		return f.resolve(predicate, v.ID, history)
	case *Node:
		if v.ID == "" {
			return f.embedNode(v, history)
		}
		return f.resolve(predicate, v.ID, history)
	case List:
		out := make(List, 0, len(v))
		for _, item := range v {
			out = append(out, f.embedValue(predicate, item, history))
		}
		return out
	default:
		return v
	}
}

func (f *framer) resolve(predicate, id string, history map[string]bool) Value {
	if f.noEmbed[predicate] || history[id] {
		return Ref{ID: id}
	}
	if done, ok := f.done[id]; ok {
		return done
	}
	item, ok := f.items[id]
	if !ok {
		if strings.HasPrefix(id, graph.BlankPrefix) {
			f.logger.Warn("Dangling blank node reference", "id", id, "predicate", predicate)
		} else {
			f.logger.Debug("Unresolved reference left bare", "id", id, "predicate", predicate)
		}
		return Ref{ID: id}
	}
	return f.embedNode(item, history)
}

func noEmbedSet(vocab *codemeta.Vocabulary) map[string]bool {
	if vocab == nil {
		vocab = codemeta.NewVocabulary()
	}
	set := make(map[string]bool)
	for _, p := range vocab.Predicates() {
		if p.NoEmbed {
			set[p.IRI] = true
		}
	}
	return set
}
