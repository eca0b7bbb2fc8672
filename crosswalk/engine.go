// Package crosswalk runs the metadata pipeline: load JSON-LD documents, merge
// them into one graph, skolemize blank nodes, frame the graph around a root
// resource, compact it to public JSON-LD and emit the result.
package crosswalk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/crosswalk/config"
	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/metric"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// Engine holds the configuration and shared state of the pipeline.
// It is not safe for concurrent use.
type Engine struct {
	config  *config.Config
	vocab   *codemeta.Vocabulary
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine validates cfg and builds its vocabulary. A nil cfg uses
// config.DefaultConfig.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	vocab, err := cfg.BuildVocabulary()
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	e := &Engine{
		config: cfg,
		vocab:  vocab,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Vocabulary returns the engine's vocabulary.
func (e *Engine) Vocabulary() *codemeta.Vocabulary { return e.vocab }

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config { return e.config }

// NewInserter returns an inserter over g that reports to the engine's logger
// and metrics.
func (e *Engine) NewInserter(g *graph.Graph) *graph.Inserter {
	return graph.NewInserter(g, e.vocab, graph.WithLogger(e.logger), graph.WithObserver(e.metrics))
}

// LoadFile reads one input into a graph. .json and .jsonld files are read as
// JSON-LD; .html and .htm pages contribute every embedded JSON-LD script.
// Blank nodes get fresh labels so separately loaded files never share one.
func (e *Engine) LoadFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	var g *graph.Graph
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonld":
		nodes, err := document.ParseJSONLD(f, e.vocab)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		g = document.ToGraph(nodes)
	case ".html", ".htm":
		g, err = e.loadHTML(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedInput)
	}

	e.logger.Debug("Loaded input", "path", path, "triples", g.Len())
	return isolate(g), nil
}

func (e *Engine) loadHTML(r io.Reader) (*graph.Graph, error) {
	scripts, err := document.ExtractJSONLD(r)
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		e.logger.Warn("HTML page has no JSON-LD scripts")
	}

	g := graph.New()
	for i, script := range scripts {
		nodes, err := document.ParseJSONLD(strings.NewReader(script), e.vocab)
		if err != nil {
			return nil, fmt.Errorf("script %d: %w", i, err)
		}
		graph.Merge(g, document.ToGraph(nodes), e.vocab)
	}
	return g, nil
}

// isolate relabels every blank node of g with a fresh identifier.
func isolate(g *graph.Graph) *graph.Graph {
	var opts []graph.MergeOption
	seen := make(map[graph.Term]bool)
	for t := range g.All() {
		for _, term := range []graph.Term{t.Subject, t.Object} {
			if term.IsBlank() && !seen[term] {
				seen[term] = true
				opts = append(opts, graph.WithRemap(term, graph.NewBlank()))
			}
		}
	}
	if len(opts) == 0 {
		return g
	}
	out := graph.New()
	graph.Merge(out, g, nil, opts...)
	return out
}

// LoadFiles loads every path in order. It stops at the first error or when
// ctx is done.
func (e *Engine) LoadFiles(ctx context.Context, paths []string) ([]*graph.Graph, error) {
	graphs := make([]*graph.Graph, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load inputs: %w", err)
		}
		g, err := e.LoadFile(path)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Merge merges graphs in order into a new graph. Later graphs win on
// singular predicates.
func (e *Engine) Merge(graphs ...*graph.Graph) *graph.Graph {
	target := graph.New()
	for _, g := range graphs {
		e.mergeInto(target, g)
	}
	return target
}

// MergeAs merges graphs like Merge, first rewriting the root resource of each
// graph to rootID so descriptions of the same software from different
// manifests land on one subject. Graphs without a root are merged unchanged.
func (e *Engine) MergeAs(rootID string, graphs ...*graph.Graph) *graph.Graph {
	to := graph.TermFromID(rootID)
	target := graph.New()
	for _, g := range graphs {
		var opts []graph.MergeOption
		if root, err := FindRoot(g); err == nil && root != to {
			opts = append(opts, graph.WithRemap(root, to))
		} else if err != nil {
			e.logger.Debug("Merging graph without a root", "triples", g.Len())
		}
		e.mergeInto(target, g, opts...)
	}
	return target
}

func (e *Engine) mergeInto(target, source *graph.Graph, opts ...graph.MergeOption) {
	stats := graph.Merge(target, source, e.vocab, opts...)
	e.metrics.RecordMerge(stats)
	e.logger.Debug("Merged graph",
		"merged", stats.Merged,
		"superseded", stats.Superseded,
		"remapped", stats.Remapped)
}

// Skolemize replaces the blank nodes of g with URIs under the configured base.
func (e *Engine) Skolemize(g *graph.Graph) int {
	n := graph.Skolemize(g, e.config.BaseURI)
	e.metrics.RecordSkolemize(n)
	if n > 0 {
		e.logger.Debug("Skolemized blank nodes", "count", n, "base", e.config.BaseURI)
	}
	return n
}

// Frame builds the nested tree of g rooted at rootID.
func (e *Engine) Frame(g *graph.Graph, rootID string) (*document.Node, error) {
	start := time.Now()
	root, err := document.Frame(document.FromGraph(g), rootID,
		document.WithLogger(e.logger),
		document.WithVocabulary(e.vocab),
		document.WithNoEmbed(e.config.Framing.NoEmbed...))
	if err != nil {
		return nil, err
	}
	e.metrics.RecordFrame(time.Since(start))
	return root, nil
}

// Compact rewrites a framed tree into public JSON-LD.
func (e *Engine) Compact(root *document.Node) *document.Object {
	return document.Compact(root, e.vocab)
}

// FindRoot picks the root resource of g: a SoftwareSourceCode subject that no
// other triple points at. When every candidate is referenced the first one
// wins. Candidates are ordered by id.
func FindRoot(g *graph.Graph) (graph.Term, error) {
	typed := g.Match(graph.Term{}, graph.IRI(codemeta.RDFType), graph.IRI(codemeta.ClassSoftwareSourceCode))
	if len(typed) == 0 {
		return graph.Term{}, ErrNoRoot
	}
	for _, t := range typed {
		if len(g.Incoming(t.Subject)) == 0 {
			return t.Subject, nil
		}
	}
	return typed[0].Subject, nil
}
