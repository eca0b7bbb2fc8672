package codemeta

// Namespaces used by the crosswalk vocabulary.
const (
	// SchemaNamespace is the schema.org namespace as used by the CodeMeta context.
	SchemaNamespace = "http://schema.org/"

	// CodeMetaNamespace holds CodeMeta terms that have no schema.org equivalent.
	CodeMetaNamespace = "https://codemeta.github.io/terms/"

	// RDFNamespace is the RDF syntax namespace.
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// RDFSNamespace is the RDF Schema namespace.
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"

	// XSDNamespace is the XML Schema datatype namespace.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

	// SKOSNamespace is the SKOS namespace used by software category taxonomies.
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"

	// RepoStatusNamespace holds the repostatus.org development status terms.
	RepoStatusNamespace = "https://www.repostatus.org/#"

	// SPDXNamespace holds SPDX license IRIs.
	SPDXNamespace = "http://spdx.org/licenses/"

	// CustomNamespace is the extensible namespace for predicates not covered by
	// schema.org or CodeMeta.
	CustomNamespace = "https://crosswalk.dev/terms/"

	// UnknownNamespace marks values a parser could not classify yet. Merging
	// demotes IRIs under this namespace to plain literals.
	UnknownNamespace = "https://crosswalk.dev/unknown/"

	// InternalNamespace holds bookkeeping predicates that never leave the process.
	InternalNamespace = "https://crosswalk.dev/internal#"

	// UndefinedBase is the sentinel base URI used when no base URI is configured.
	UndefinedBase = "undefined:"
)

// Context IRIs of published CodeMeta contexts. They resolve to the built-in
// vocabulary; nothing is fetched.
const (
	CodeMetaContextV2 = "https://doi.org/10.5063/schema/codemeta-2.0"
	CodeMetaContextV3 = "https://w3id.org/codemeta/3.0"
)

// KnownContexts lists context IRIs that map onto the built-in vocabulary.
var KnownContexts = []string{
	CodeMetaContextV2,
	CodeMetaContextV3,
	"https://w3id.org/codemeta/v3.0",
	"https://raw.githubusercontent.com/codemeta/codemeta/2.0/codemeta.jsonld",
	"https://schema.org",
	"https://schema.org/",
	"http://schema.org",
	"http://schema.org/",
}

// Class IRIs.
const (
	ClassSoftwareSourceCode  = SchemaNamespace + "SoftwareSourceCode"
	ClassSoftwareApplication = SchemaNamespace + "SoftwareApplication"
	ClassSoftwareLibrary     = CustomNamespace + "SoftwareLibrary"
	ClassPerson              = SchemaNamespace + "Person"
	ClassOrganization        = SchemaNamespace + "Organization"
	ClassAudience            = SchemaNamespace + "Audience"
	ClassRole                = SchemaNamespace + "Role"
	ClassCreativeWork        = SchemaNamespace + "CreativeWork"
	ClassConcept             = SKOSNamespace + "Concept"
	ClassList                = RDFNamespace + "List"
)

// Structural IRIs.
const (
	RDFType  = RDFNamespace + "type"
	RDFFirst = RDFNamespace + "first"
	RDFRest  = RDFNamespace + "rest"
	RDFNil   = RDFNamespace + "nil"
)

// Datatype IRIs.
const (
	XSDString   = XSDNamespace + "string"
	XSDInteger  = XSDNamespace + "integer"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDDate     = XSDNamespace + "date"
	XSDDateTime = XSDNamespace + "dateTime"
)

// DefaultPrefixes returns the public prefixes restored by cleanup. schema.org
// terms are written without a prefix through @vocab.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"codemeta":   CodeMetaNamespace,
		"rdf":        RDFNamespace,
		"rdfs":       RDFSNamespace,
		"xsd":        XSDNamespace,
		"skos":       SKOSNamespace,
		"repostatus": RepoStatusNamespace,
		"spdx":       SPDXNamespace,
		"crosswalk":  CustomNamespace,
	}
}
