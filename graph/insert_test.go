package graph_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

var root = graph.IRI("https://example.org/frog")

func schema(local string) graph.Term {
	return graph.IRI(codemeta.SchemaNamespace + local)
}

func newInserter(t *testing.T, opts ...graph.InserterOption) (*graph.Graph, *graph.Inserter) {
	t.Helper()
	g := graph.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]graph.InserterOption{graph.WithLogger(logger)}, opts...)
	return g, graph.NewInserter(g, codemeta.NewVocabulary(), opts...)
}

type countingObserver struct {
	inserted int
	rejected []string
}

func (c *countingObserver) ObserveInsert(_ string, added int) { c.inserted += added }
func (c *countingObserver) ObserveReject(predicate string) { c.rejected = append(c.rejected, predicate) }

func TestInsertSingularReplaces(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Name, "toad"))
	require.NoError(t, in.Insert(root, codemeta.Name, "frog"))

	assert.Equal(t, []graph.Term{graph.Literal("frog")}, g.Objects(root, schema("name")))
	assert.Equal(t, 1, g.Len())
}

func TestInsertNonSingularAccumulates(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Keywords, "amphibian"))
	require.NoError(t, in.Insert(root, codemeta.Keywords, "pond"))
	require.NoError(t, in.Insert(root, codemeta.Keywords, "pond"))

	assert.Equal(t, []graph.Term{graph.Literal("amphibian"), graph.Literal("pond")},
		g.Objects(root, schema("keywords")))
}

func TestInsertUnknownPredicate(t *testing.T) {
	obs := &countingObserver{}
	g, in := newInserter(t, graph.WithObserver(obs))

	err := in.Insert(root, "favouriteColour", "green")
	require.ErrorIs(t, err, graph.ErrUnknownPredicate)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, []string{"favouriteColour"}, obs.rejected)
}

func TestInsertRejectsLiteralSubject(t *testing.T) {
	_, in := newInserter(t)
	err := in.Insert(graph.Literal("frog"), codemeta.Name, "frog")
	assert.ErrorIs(t, err, graph.ErrInvalidSubject)
}

func TestInsertIgnoresEmptyValues(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Name, ""))
	require.NoError(t, in.Insert(root, codemeta.Name, "   "))
	require.NoError(t, in.Insert(root, codemeta.Keywords, []string{}))
	require.NoError(t, in.Insert(root, codemeta.Version, nil))

	assert.Equal(t, 0, g.Len())
}

func TestInsertSpecialEncodings(t *testing.T) {
	tests := []struct {
		name      string
		predicate string
		value     any
		want      []graph.Term
	}{
		{
			name:      "license resolved to SPDX",
			predicate: codemeta.License,
			value:     "License :: OSI Approved :: MIT License",
			want:      []graph.Term{graph.IRI(codemeta.SPDXNamespace + "MIT")},
		},
		{
			name:      "unresolved license stays literal",
			predicate: codemeta.License,
			value:     "Proprietary, ask first",
			want:      []graph.Term{graph.Literal("Proprietary, ask first")},
		},
		{
			name:      "trove status resolved",
			predicate: codemeta.DevelopmentStatus,
			value:     "Development Status :: 5 - Production/Stable",
			want:      []graph.Term{graph.IRI(codemeta.StatusActive.IRI())},
		},
		{
			name:      "unknown status stays literal",
			predicate: codemeta.DevelopmentStatus,
			value:     "it depends",
			want:      []graph.Term{graph.Literal("it depends")},
		},
		{
			name:      "delimited keywords split",
			predicate: codemeta.Keywords,
			value:     "frog, pond;toad",
			want:      []graph.Term{graph.Literal("frog"), graph.Literal("pond"), graph.Literal("toad")},
		},
		{
			name:      "IRI range stores IRI",
			predicate: codemeta.CodeRepository,
			value:     "https://github.com/example/frog",
			want:      []graph.Term{graph.IRI("https://github.com/example/frog")},
		},
		{
			name:      "integer becomes typed literal",
			predicate: codemeta.Position,
			value:     3,
			want:      []graph.Term{graph.TypedLiteral("3", codemeta.XSDInteger)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, in := newInserter(t)
			require.NoError(t, in.Insert(root, tt.predicate, tt.value))

			pred, ok := codemeta.NewVocabulary().Lookup(tt.predicate)
			require.True(t, ok)
			assert.Equal(t, tt.want, g.Objects(root, graph.IRI(pred.IRI)))
		})
	}
}

func TestInsertAudienceCreatesNode(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Audience, "Developers"))

	audiences := g.Objects(root, schema("audience"))
	require.Len(t, audiences, 1)
	node := audiences[0]
	assert.True(t, node.IsBlank())
	assert.Equal(t, []graph.Term{graph.IRI(codemeta.ClassAudience)}, g.Objects(node, graph.IRI(codemeta.RDFType)))
	assert.Equal(t, []graph.Term{graph.Literal("Developers")}, g.Objects(node, schema("audienceType")))
}

func TestInsertHTMLDescription(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Description, "<p>A <strong>tiny</strong> frog</p>"))
	desc, ok := g.Value(root, schema("description"))
	require.True(t, ok)
	assert.Equal(t, "A **tiny** frog", desc.Value)

	require.NoError(t, in.Insert(root, codemeta.Description, "2 < 3 is plain text"))
	desc, _ = g.Value(root, schema("description"))
	assert.Equal(t, "2 < 3 is plain text", desc.Value)
}

func TestInsertOptions(t *testing.T) {
	g, in := newInserter(t)

	require.NoError(t, in.Insert(root, codemeta.Keywords, "grenouille", graph.WithLanguage("FR")))
	require.NoError(t, in.Insert(root, codemeta.DateCreated, "2024-01-02", graph.WithDatatype(codemeta.XSDDate)))
	require.NoError(t, in.Insert(root, codemeta.Identifier, "urn:frog:1", graph.AsIRI()))
	require.NoError(t, in.Insert(root, codemeta.Identifier, "urn:frog:2", graph.AsIRI(), graph.Replace()))

	assert.Equal(t, []graph.Term{graph.LangLiteral("grenouille", "fr")}, g.Objects(root, schema("keywords")))
	assert.Equal(t, []graph.Term{graph.TypedLiteral("2024-01-02", codemeta.XSDDate)}, g.Objects(root, schema("dateCreated")))
	assert.Equal(t, []graph.Term{graph.IRI("urn:frog:2")}, g.Objects(root, schema("identifier")))
}

func TestInsertObserverCounts(t *testing.T) {
	obs := &countingObserver{}
	_, in := newInserter(t, graph.WithObserver(obs))

	require.NoError(t, in.Insert(root, codemeta.Name, "frog"))
	require.NoError(t, in.Insert(root, codemeta.Name, "frog"))
	require.NoError(t, in.Insert(root, codemeta.Keywords, "a;b"))

	assert.Equal(t, 3, obs.inserted)
	assert.Empty(t, obs.rejected)
}
