package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

const (
	frogID    = "https://example.org/frog"
	maartenID = "https://example.org/maarten"
)

func schema(local string) string { return codemeta.SchemaNamespace + local }

func iri(s string) graph.Term { return graph.IRI(s) }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestFrameFrogEndToEnd(t *testing.T) {
	g := graph.New()
	g.Add(graph.T(iri(frogID), iri(schema("name")), graph.Literal("frog")))
	g.Add(graph.T(iri(frogID), iri(schema("author")), iri(maartenID)))
	g.Add(graph.T(iri(maartenID), iri(schema("givenName")), graph.Literal("Maarten")))

	root, err := document.Frame(document.FromGraph(g), frogID)
	require.NoError(t, err)

	assert.Equal(t, frogID, root.ID)
	name, ok := root.Text(schema("name"))
	require.True(t, ok)
	assert.Equal(t, "frog", name)

	author, ok := root.First(schema("author"))
	require.True(t, ok)
	person, ok := author.(*document.Node)
	require.True(t, ok, "author should be embedded, got %T", author)
	assert.Equal(t, maartenID, person.ID)
	given, _ := person.Text(schema("givenName"))
	assert.Equal(t, "Maarten", given)

	doc := document.Compact(root, codemeta.NewVocabulary())
	assert.Equal(t, []string{"@context", "@id", "author", "name"}, doc.Keys())
	authorJSON, _ := doc.Get("author")
	assert.JSONEq(t, `{"@id":"https://example.org/maarten","givenName":"Maarten"}`, mustJSON(t, authorJSON))
	nameJSON, _ := doc.Get("name")
	assert.Equal(t, "frog", nameJSON)
}

func TestFrameCycleEndsInReference(t *testing.T) {
	a, b, c := "https://example.org/a", "https://example.org/b", "https://example.org/c"
	knows := schema("knows")
	nodes := []*document.Node{
		nodeWith(a, knows, document.Ref{ID: b}),
		nodeWith(b, knows, document.Ref{ID: c}),
		nodeWith(c, knows, document.Ref{ID: a}),
	}

	root, err := document.Frame(nodes, a)
	require.NoError(t, err)

	nb := mustNode(t, root, knows)
	assert.Equal(t, b, nb.ID)
	nc := mustNode(t, nb, knows)
	assert.Equal(t, c, nc.ID)
	back, ok := nc.First(knows)
	require.True(t, ok)
	assert.Equal(t, document.Ref{ID: a}, back)

	doc := document.Compact(root, nil)
	assert.Contains(t, mustJSON(t, doc), `"knows":{"@id":"https://example.org/a"}`)
}

func TestFrameSharedNodeEmbeddedOnce(t *testing.T) {
	maintainer := codemeta.CodeMetaNamespace + "maintainer"
	g := graph.New()
	g.Add(graph.T(iri(frogID), iri(schema("author")), iri(maartenID)))
	g.Add(graph.T(iri(frogID), iri(maintainer), iri(maartenID)))
	g.Add(graph.T(iri(maartenID), iri(schema("givenName")), graph.Literal("Maarten")))

	root, err := document.Frame(document.FromGraph(g), frogID)
	require.NoError(t, err)

	author := mustNode(t, root, schema("author"))
	kept := mustNode(t, root, maintainer)
	assert.Same(t, author, kept)

	doc := document.Compact(root, nil)
	authorJSON, _ := doc.Get("author")
	maintainerJSON, _ := doc.Get("maintainer")
	assert.JSONEq(t, `{"@id":"https://example.org/maarten","givenName":"Maarten"}`, mustJSON(t, authorJSON))
	assert.JSONEq(t, `{"@id":"https://example.org/maarten"}`, mustJSON(t, maintainerJSON))
}

func TestFrameRootNotFound(t *testing.T) {
	nodes := []*document.Node{nodeWith(frogID, schema("name"), document.String("frog"))}

	_, err := document.Frame(nodes, "https://example.org/missing")
	assert.ErrorIs(t, err, document.ErrRootNotFound)
}

func TestFrameUnresolvedReferenceStaysBare(t *testing.T) {
	nodes := []*document.Node{
		nodeWith(frogID, schema("license"), document.Ref{ID: codemeta.SPDXNamespace + "MIT"}),
	}

	root, err := document.Frame(nodes, frogID)
	require.NoError(t, err)
	lic, _ := root.First(schema("license"))
	assert.Equal(t, document.Ref{ID: codemeta.SPDXNamespace + "MIT"}, lic)
}

func TestFrameNoEmbedPredicates(t *testing.T) {
	broader := codemeta.SKOSNamespace + "broader"
	games, software := "https://example.org/games", "https://example.org/software"
	nodes := []*document.Node{
		nodeWith(frogID, schema("applicationCategory"), document.Ref{ID: games}),
		nodeWith(games, broader, document.Ref{ID: software}),
		nodeWith(software, schema("name"), document.String("Software")),
	}

	root, err := document.Frame(nodes, frogID)
	require.NoError(t, err)
	category := mustNode(t, root, schema("applicationCategory"))
	parent, _ := category.First(broader)
	assert.Equal(t, document.Ref{ID: software}, parent)

	root, err = document.Frame(nodes, frogID, document.WithNoEmbed(schema("applicationCategory")))
	require.NoError(t, err)
	ref, _ := root.First(schema("applicationCategory"))
	assert.Equal(t, document.Ref{ID: games}, ref)
}

func TestGatherMergesDuplicates(t *testing.T) {
	first := document.NewNode(maartenID, schema("Person"))
	first.Add(schema("givenName"), document.String("M."))
	first.Add(schema("email"), document.String("m@example.org"))
	nested := document.NewNode(maartenID, schema("Researcher"))
	nested.Add(schema("givenName"), document.String("Maarten"))
	frog := nodeWith(frogID, schema("author"), nested)

	items := document.Gather([]*document.Node{first, frog})

	got := items[maartenID]
	require.NotNil(t, got)
	assert.ElementsMatch(t, []string{schema("Person"), schema("Researcher")}, got.Types)
	given, _ := got.Text(schema("givenName"))
	assert.Equal(t, "Maarten", given)
	email, _ := got.Text(schema("email"))
	assert.Equal(t, "m@example.org", email)

	original, _ := first.Text(schema("givenName"))
	assert.Equal(t, "M.", original, "input nodes must not be modified")
}

func TestFrameSortsMultiValuedFields(t *testing.T) {
	t.Run("by position", func(t *testing.T) {
		root := document.NewNode(frogID)
		for _, p := range []struct{ name, pos string }{{"Zed", "1"}, {"Amy", "3"}, {"Bob", "2"}} {
			person := document.NewNode("")
			person.Add(schema("name"), document.String(p.name))
			person.Add(schema("position"), document.Literal{Value: p.pos, Datatype: codemeta.XSDInteger})
			root.Add(schema("contributor"), person)
		}

		framed, err := document.Frame([]*document.Node{root}, frogID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Zed", "Bob", "Amy"}, names(framed.Values(schema("contributor"))))
	})

	t.Run("by name then id", func(t *testing.T) {
		root := document.NewNode(frogID)
		for _, n := range []string{"Zed", "Amy", "Bob"} {
			person := document.NewNode("https://example.org/" + n)
			person.Add(schema("name"), document.String(n))
			root.Add(schema("contributor"), person)
		}
		root.Add(schema("keywords"), document.String("pond"), document.String("amphibian"))

		framed, err := document.Frame([]*document.Node{root}, frogID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Amy", "Bob", "Zed"}, names(framed.Values(schema("contributor"))))
		assert.Equal(t, []document.Value{document.String("amphibian"), document.String("pond")},
			framed.Values(schema("keywords")))
	})
}

func TestFrameKeepsListOrder(t *testing.T) {
	g := graph.New()
	bob, alice := iri("https://example.org/bob"), iri("https://example.org/alice")
	g.AddList(iri(frogID), iri(schema("author")), []graph.Term{bob, alice})
	g.Add(graph.T(bob, iri(schema("name")), graph.Literal("Bob")))
	g.Add(graph.T(alice, iri(schema("name")), graph.Literal("Alice")))

	nodes := document.FromGraph(g)
	require.Len(t, nodes, 3, "list cells are folded away")

	root, err := document.Frame(nodes, frogID)
	require.NoError(t, err)
	authors, ok := root.First(schema("author"))
	require.True(t, ok)
	list, ok := authors.(document.List)
	require.True(t, ok)
	assert.Equal(t, []string{"Bob", "Alice"}, names(list))

	doc := document.Compact(root, nil)
	authorJSON, _ := doc.Get("author")
	assert.JSONEq(t,
		`[{"@id":"https://example.org/bob","name":"Bob"},{"@id":"https://example.org/alice","name":"Alice"}]`,
		mustJSON(t, authorJSON))
}

func nodeWith(id, predicate string, values ...document.Value) *document.Node {
	n := document.NewNode(id)
	n.Add(predicate, values...)
	return n
}

func mustNode(t *testing.T, n *document.Node, predicate string) *document.Node {
	t.Helper()
	v, ok := n.First(predicate)
	require.True(t, ok, "missing %s", predicate)
	child, ok := v.(*document.Node)
	require.True(t, ok, "%s is %T, want *Node", predicate, v)
	return child
}

func names(vals []document.Value) []string {
	var out []string
	for _, v := range vals {
		if n, ok := v.(*document.Node); ok {
			name, _ := n.Text(schema("name"))
			out = append(out, name)
		}
	}
	return out
}
