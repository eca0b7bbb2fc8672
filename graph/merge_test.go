package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

func frogGraph() *graph.Graph {
	g := graph.New()
	g.Add(graph.T(root, schema("name"), graph.Literal("frog")))
	g.Add(graph.T(root, schema("version"), graph.Literal("1.0")))
	g.Add(graph.T(root, schema("keywords"), graph.Literal("pond")))
	return g
}

func TestMergeWithItselfIsNoop(t *testing.T) {
	g := frogGraph()
	before := g.Triples()

	stats := graph.Merge(g, g, codemeta.NewVocabulary())

	assert.Equal(t, graph.MergeStats{}, stats)
	assert.Equal(t, before, g.Triples())
}

func TestMergeSingularSupersedes(t *testing.T) {
	target := frogGraph()
	source := graph.New()
	source.Add(graph.T(root, schema("version"), graph.Literal("2.0")))
	source.Add(graph.T(root, schema("keywords"), graph.Literal("toad")))

	stats := graph.Merge(target, source, codemeta.NewVocabulary())

	assert.Equal(t, graph.MergeStats{Merged: 2, Superseded: 1}, stats)
	assert.Equal(t, []graph.Term{graph.Literal("2.0")}, target.Objects(root, schema("version")))
	assert.Equal(t, []graph.Term{graph.Literal("pond"), graph.Literal("toad")}, target.Objects(root, schema("keywords")))
}

func TestMergeRemap(t *testing.T) {
	placeholder := graph.IRI("undefined:software/frog")
	target := frogGraph()
	source := graph.New()
	source.Add(graph.T(placeholder, schema("keywords"), graph.Literal("amphibian")))
	source.Add(graph.T(graph.IRI("https://example.org/jane"), schema("author"), placeholder))

	stats := graph.Merge(target, source, codemeta.NewVocabulary(), graph.WithRemap(placeholder, root))

	assert.Equal(t, 2, stats.Remapped)
	assert.Equal(t, 2, stats.Merged)
	assert.True(t, target.Has(graph.T(root, schema("keywords"), graph.Literal("amphibian"))))
	assert.True(t, target.Has(graph.T(graph.IRI("https://example.org/jane"), schema("author"), root)))
	assert.False(t, target.HasSubject(placeholder))
}

func TestMergeDemotesUnknownNamespace(t *testing.T) {
	target := graph.New()
	source := graph.New()
	source.Add(graph.T(root, schema("programmingLanguage"), graph.IRI(codemeta.UnknownNamespace+"Fortran")))
	source.Add(graph.T(root, schema("runtimePlatform"), graph.Literal(codemeta.UnknownNamespace+"JVM")))

	graph.Merge(target, source, codemeta.NewVocabulary())

	assert.Equal(t, []graph.Term{graph.Literal("Fortran")}, target.Objects(root, schema("programmingLanguage")))
	assert.Equal(t, []graph.Term{graph.Literal("JVM")}, target.Objects(root, schema("runtimePlatform")))
}

func TestMergeWithoutSingularAccumulates(t *testing.T) {
	target := frogGraph()
	source := graph.New()
	source.Add(graph.T(root, schema("version"), graph.Literal("2.0")))

	stats := graph.Merge(target, source, nil)

	assert.Equal(t, 1, stats.Merged)
	assert.Len(t, target.Objects(root, schema("version")), 2)
}

func TestMergeSingularFunc(t *testing.T) {
	target := frogGraph()
	source := graph.New()
	source.Add(graph.T(root, schema("keywords"), graph.Literal("toad")))

	onlyKeywords := graph.SingularFunc(func(iri string) bool { return iri == codemeta.SchemaNamespace+"keywords" })
	stats := graph.Merge(target, source, onlyKeywords)

	assert.Equal(t, 1, stats.Superseded)
	assert.Equal(t, []graph.Term{graph.Literal("toad")}, target.Objects(root, schema("keywords")))
}
