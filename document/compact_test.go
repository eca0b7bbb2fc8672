package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crosswalk/document"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

func TestCompactCleansUp(t *testing.T) {
	root := document.NewNode(frogID, codemeta.ClassSoftwareSourceCode)
	root.Add(schema("name"), document.String("frog"))
	root.Add(codemeta.InternalNamespace+"parsedFrom", document.String("setup.py"))
	root.Add(schema("programmingLanguage"), document.Ref{ID: codemeta.UnknownNamespace + "Fortran"})
	root.Add(schema("runtimePlatform"), document.String(codemeta.UnknownNamespace+"JVM"))
	root.Add(schema("license"), document.Ref{ID: codemeta.SPDXNamespace + "MIT"})
	root.Add(codemeta.CodeMetaNamespace+"developmentStatus", document.Ref{ID: codemeta.StatusActive.IRI()})
	root.Add(schema("position"), document.Literal{Value: "3", Datatype: codemeta.XSDInteger})
	root.Add(schema("isAccessibleForFree"), document.Literal{Value: "true", Datatype: codemeta.XSDBoolean})
	root.Add(schema("dateCreated"), document.Literal{Value: "2024-01-02", Datatype: codemeta.XSDDate})
	root.Add(schema("alternateName"), document.Literal{Value: "kikker", Language: "nl"})

	doc := document.Compact(root, codemeta.NewVocabulary())

	want := `{
		"@id": "https://example.org/frog",
		"@type": "SoftwareSourceCode",
		"alternateName": {"@value": "kikker", "@language": "nl"},
		"dateCreated": {"@value": "2024-01-02", "@type": "xsd:date"},
		"developmentStatus": {"@id": "repostatus:active"},
		"isAccessibleForFree": true,
		"license": {"@id": "spdx:MIT"},
		"name": "frog",
		"position": 3,
		"programmingLanguage": "Fortran",
		"runtimePlatform": "JVM"
	}`
	assert.JSONEq(t, want, mustJSON(t, withoutContext(t, doc)))

	ctx, ok := doc.Get("@context")
	require.True(t, ok)
	ctxObj := ctx.(*document.Object)
	vocab, _ := ctxObj.Get("@vocab")
	assert.Equal(t, codemeta.SchemaNamespace, vocab)
	status, _ := ctxObj.Get("developmentStatus")
	assert.Equal(t, codemeta.CodeMetaNamespace+"developmentStatus", status)
	spdx, _ := ctxObj.Get("spdx")
	assert.Equal(t, codemeta.SPDXNamespace, spdx)
	_, hasName := ctxObj.Get("name")
	assert.False(t, hasName, "schema.org terms resolve through @vocab")
}

func TestCompactBlankNodeIDs(t *testing.T) {
	root := document.NewNode(frogID)
	audience := document.NewNode("_:b1", codemeta.ClassAudience)
	audience.Add(schema("audienceType"), document.String("Developers"))
	root.Add(schema("audience"), audience)

	doc := document.Compact(root, nil)
	got, _ := doc.Get("audience")
	assert.JSONEq(t, `{"@type":"Audience","audienceType":"Developers"}`, mustJSON(t, got))

	// A back-reference keeps the blank id on both ends.
	loop := document.NewNode("_:b2")
	loop.Add(schema("knows"), document.Ref{ID: "_:b2"})
	root = document.NewNode(frogID)
	root.Add(schema("author"), loop)

	doc = document.Compact(root, nil)
	got, _ = doc.Get("author")
	assert.JSONEq(t, `{"@id":"_:b2","knows":{"@id":"_:b2"}}`, mustJSON(t, got))
}

func TestCompactUnorderedList(t *testing.T) {
	root := document.NewNode(frogID)
	root.Add(schema("keywords"), document.List{document.String("b"), document.String("a")})

	doc := document.Compact(root, nil)
	got, _ := doc.Get("keywords")
	assert.JSONEq(t, `{"@list":["b","a"]}`, mustJSON(t, got))
}

func TestCompactGraphKeepsFlatShape(t *testing.T) {
	a := document.NewNode("_:a")
	a.Add(schema("name"), document.String("Frog Labs"))
	b := document.NewNode(frogID)
	b.Add(schema("author"), document.List{document.Ref{ID: "_:a"}})

	doc := document.CompactGraph([]*document.Node{a, b}, nil)
	items, ok := doc.Get("@graph")
	require.True(t, ok)
	assert.JSONEq(t,
		`[{"@id":"_:a","name":"Frog Labs"},{"@id":"https://example.org/frog","author":{"@list":[{"@id":"_:a"}]}}]`,
		mustJSON(t, items))
}

func TestObjectKeepsKeyOrder(t *testing.T) {
	o := document.NewObject()
	o.Set("z", 1)
	o.Set("a", "<b>")
	o.Set("z", 2)

	b, err := o.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":2,"a":"<b>"}`, string(b))
	assert.Equal(t, []string{"z", "a"}, o.Keys())
}

func withoutContext(t *testing.T, doc *document.Object) *document.Object {
	t.Helper()
	out := document.NewObject()
	for _, k := range doc.Keys() {
		if k == "@context" {
			continue
		}
		v, _ := doc.Get(k)
		out.Set(k, v)
	}
	return out
}
