package crosswalk

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/export"
	"github.com/c360studio/crosswalk/graph"
)

// Assignment sets a property of the root resource after merging. Values of
// the same predicate from the inputs are dropped.
type Assignment struct {
	Predicate string
	Value     string
}

// ParseAssignment parses "predicate=value".
func ParseAssignment(s string) (Assignment, error) {
	pred, value, ok := strings.Cut(s, "=")
	pred = strings.TrimSpace(pred)
	if !ok || pred == "" {
		return Assignment{}, fmt.Errorf("%q: %w", s, ErrInvalidAssignment)
	}
	return Assignment{Predicate: pred, Value: value}, nil
}

// Request describes one pipeline run.
type Request struct {
	// Inputs are file paths or doublestar patterns.
	Inputs []string
	// Root is the id of the root resource. Empty uses the configured root,
	// then FindRoot.
	Root string
	// Unify rewrites the root of every input to Root before merging.
	Unify bool
	// Set is applied to the root through the insertion policy.
	Set []Assignment
	// Format defaults to the configured output format.
	Format export.Format
	// Flat writes JSON-LD as a flat @graph instead of a framed tree.
	Flat bool
	// Output receives the serialized result. Nil skips emitting.
	Output io.Writer
}

// Result is the outcome of Run.
type Result struct {
	Files      []string
	Graph      *graph.Graph
	RootID     string
	Document   *document.Node
	Skolemized int
}

// Run resolves inputs, then loads, merges, skolemizes, frames and emits them.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	format := req.Format
	if format == "" {
		var err error
		if format, err = export.ParseFormat(e.config.Output.Format); err != nil {
			return nil, err
		}
	}
	framed := format == export.FormatJSONLD && !req.Flat

	files, err := ResolveInputs(req.Inputs)
	if err != nil {
		return nil, err
	}
	graphs, err := e.LoadFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	res := &Result{Files: files}

	rootID := req.Root
	if rootID == "" {
		rootID = e.config.Framing.Root
	}
	if req.Unify {
		if rootID == "" {
			root, err := FindRoot(graphs[0])
			if err != nil {
				return nil, fmt.Errorf("unify roots of %s: %w", files[0], err)
			}
			rootID = root.ID()
		}
		res.Graph = e.MergeAs(rootID, graphs...)
	} else {
		res.Graph = e.Merge(graphs...)
	}

	res.Skolemized = e.Skolemize(res.Graph)

	// A blank root does not survive skolemization.
	if rootID == "" || graph.TermFromID(rootID).IsBlank() {
		rootID = ""
		if root, err := FindRoot(res.Graph); err == nil {
			rootID = root.ID()
		} else if framed || len(req.Set) > 0 {
			return nil, fmt.Errorf("run: %w", err)
		}
	}
	res.RootID = rootID

	if err := e.assign(res.Graph, rootID, req.Set); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	if framed {
		if res.Document, err = e.Frame(res.Graph, rootID); err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
	}

	if req.Output == nil {
		return res, nil
	}
	if framed {
		err = export.WriteJSONLD(req.Output, e.Compact(res.Document))
	} else {
		err = export.NewRDFExporter(e.vocab).Export(req.Output, res.Graph, format)
	}
	if err != nil {
		return nil, fmt.Errorf("emit %s: %w", format, err)
	}
	return res, nil
}

func (e *Engine) assign(g *graph.Graph, rootID string, set []Assignment) error {
	if len(set) == 0 {
		return nil
	}
	in := e.NewInserter(g)
	root := graph.TermFromID(rootID)
	cleared := make(map[string]bool)
	for _, a := range set {
		// Assigned values replace what the inputs said.
		if p, ok := e.vocab.Lookup(a.Predicate); ok && !cleared[p.IRI] {
			g.RemoveMatching(root, graph.IRI(p.IRI), graph.Term{})
			cleared[p.IRI] = true
		}
		if err := in.Insert(root, a.Predicate, a.Value); err != nil {
			return fmt.Errorf("set %s: %w", a.Predicate, err)
		}
	}
	return nil
}
