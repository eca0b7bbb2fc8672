package codemeta

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Predicate names accepted by the insertion policy.
const (
	Name                   = "name"
	Version                = "version"
	Description            = "description"
	DevelopmentStatus      = "developmentStatus"
	DateCreated            = "dateCreated"
	DateModified           = "dateModified"
	DatePublished          = "datePublished"
	Position               = "position"
	Type                   = "type"
	Identifier             = "identifier"
	Author                 = "author"
	Contributor            = "contributor"
	Maintainer             = "maintainer"
	Producer               = "producer"
	Provider               = "provider"
	Funder                 = "funder"
	Funding                = "funding"
	CopyrightHolder        = "copyrightHolder"
	CopyrightYear          = "copyrightYear"
	GivenName              = "givenName"
	FamilyName             = "familyName"
	Email                  = "email"
	Affiliation            = "affiliation"
	MemberOf               = "memberOf"
	RoleName               = "roleName"
	License                = "license"
	Audience               = "audience"
	AudienceType           = "audienceType"
	Keywords               = "keywords"
	CodeRepository         = "codeRepository"
	URL                    = "url"
	DownloadURL            = "downloadUrl"
	IssueTracker           = "issueTracker"
	ContinuousIntegration  = "continuousIntegration"
	Readme                 = "readme"
	BuildInstructions      = "buildInstructions"
	ReleaseNotes           = "releaseNotes"
	SoftwareHelp           = "softwareHelp"
	ReferencePublication   = "referencePublication"
	ProgrammingLanguage    = "programmingLanguage"
	RuntimePlatform        = "runtimePlatform"
	OperatingSystem        = "operatingSystem"
	SoftwareRequirements   = "softwareRequirements"
	SoftwareSuggestions    = "softwareSuggestions"
	ApplicationCategory    = "applicationCategory"
	ApplicationSubCategory = "applicationSubCategory"
	TargetProduct          = "targetProduct"
	IsPartOf               = "isPartOf"
	HasPart                = "hasPart"
	SameAs                 = "sameAs"
	ThumbnailURL           = "thumbnailUrl"
	PrefLabel              = "prefLabel"
	Broader                = "broader"
	Narrower               = "narrower"
	InScheme               = "inScheme"
	HasTopConcept          = "hasTopConcept"
	TopConceptOf           = "topConceptOf"
	SubClassOf             = "subClassOf"
)

// Common vocabulary errors.
var (
	// ErrDuplicatePredicate is returned when a name or IRI is registered twice.
	ErrDuplicatePredicate = errors.New("predicate already registered")

	// ErrInvalidPredicate is returned when a registration lacks a name.
	ErrInvalidPredicate = errors.New("invalid predicate")
)

// Predicate describes one registered predicate and its insertion policy.
type Predicate struct {
	// Name is the short property name used by parsers and in compacted output.
	Name string

	// IRI is the full predicate IRI stored in the graph.
	IRI string

	// Description is a human-readable summary.
	Description string

	// Singular predicates hold at most one value per subject.
	Singular bool

	// Ordered predicates preserve value order as a list.
	Ordered bool

	// NoEmbed predicates stay bare references during framing.
	NoEmbed bool

	// IRIRange predicates store string values as IRIs.
	IRIRange bool
}

// Option configures a predicate registration.
type Option func(*Predicate)

// WithIRI sets the predicate IRI. Without it the predicate lands in CustomNamespace.
func WithIRI(iri string) Option {
	return func(p *Predicate) { p.IRI = iri }
}

// WithDescription sets the predicate description.
func WithDescription(desc string) Option {
	return func(p *Predicate) { p.Description = desc }
}

// WithSingular marks the predicate as single-valued.
func WithSingular() Option {
	return func(p *Predicate) { p.Singular = true }
}

// WithOrdered marks the predicate as order-preserving.
func WithOrdered() Option {
	return func(p *Predicate) { p.Ordered = true }
}

// WithNoEmbed excludes the predicate from embedding during framing.
func WithNoEmbed() Option {
	return func(p *Predicate) { p.NoEmbed = true }
}

// WithIRIRange marks the predicate's values as resources.
func WithIRIRange() Option {
	return func(p *Predicate) { p.IRIRange = true }
}

// Vocabulary is a registry of predicates and namespace prefixes.
// It is not safe for concurrent registration.
type Vocabulary struct {
	byName   map[string]*Predicate
	byIRI    map[string]*Predicate
	prefixes map[string]string
}

// NewVocabulary returns a vocabulary with the default CodeMeta predicates registered.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		byName:   make(map[string]*Predicate),
		byIRI:    make(map[string]*Predicate),
		prefixes: DefaultPrefixes(),
	}
	registerDefaults(v)
	return v
}

// Register adds a predicate to the vocabulary.
func (v *Vocabulary) Register(name string, opts ...Option) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("register predicate: %w: empty name", ErrInvalidPredicate)
	}

	p := &Predicate{Name: name}
	for _, opt := range opts {
		opt(p)
	}
	if p.IRI == "" {
		p.IRI = CustomNamespace + name
	}

	if _, exists := v.byName[name]; exists {
		return fmt.Errorf("register %s: %w", name, ErrDuplicatePredicate)
	}
	if _, exists := v.byIRI[p.IRI]; exists {
		return fmt.Errorf("register %s (%s): %w", name, p.IRI, ErrDuplicatePredicate)
	}

	v.byName[name] = p
	v.byIRI[p.IRI] = p
	return nil
}

// Lookup resolves a predicate by short name or full IRI.
func (v *Vocabulary) Lookup(nameOrIRI string) (Predicate, bool) {
	if p, ok := v.byName[nameOrIRI]; ok {
		return *p, true
	}
	if p, ok := v.byIRI[nameOrIRI]; ok {
		return *p, true
	}
	return Predicate{}, false
}

// IsSingular reports whether the predicate IRI is single-valued.
func (v *Vocabulary) IsSingular(iri string) bool {
	p, ok := v.byIRI[iri]
	return ok && p.Singular
}

// IsOrdered reports whether the predicate IRI preserves value order.
func (v *Vocabulary) IsOrdered(iri string) bool {
	p, ok := v.byIRI[iri]
	return ok && p.Ordered
}

// IsNoEmbed reports whether framing must leave values of the predicate IRI as references.
func (v *Vocabulary) IsNoEmbed(iri string) bool {
	p, ok := v.byIRI[iri]
	return ok && p.NoEmbed
}

// Predicates returns all registered predicates sorted by name.
func (v *Vocabulary) Predicates() []Predicate {
	out := make([]Predicate, 0, len(v.byName))
	for _, p := range v.byName {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetPrefix registers a namespace prefix used when compacting IRIs.
func (v *Vocabulary) SetPrefix(prefix, namespace string) {
	v.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the registered namespace prefixes.
func (v *Vocabulary) Prefixes() map[string]string {
	out := make(map[string]string, len(v.prefixes))
	for k, ns := range v.prefixes {
		out[k] = ns
	}
	return out
}

// CompactIRI shortens an IRI to a registered term, a bare schema.org local name,
// or a prefixed name. IRIs that match nothing are returned unchanged.
func (v *Vocabulary) CompactIRI(iri string) string {
	if p, ok := v.byIRI[iri]; ok {
		return p.Name
	}
	if local, ok := strings.CutPrefix(iri, SchemaNamespace); ok && isLocalName(local) {
		return local
	}
	return v.CompactPrefixed(iri)
}

// CompactPrefixed shortens an IRI to prefix:local form using the longest
// matching namespace.
func (v *Vocabulary) CompactPrefixed(iri string) string {
	best, bestNS := "", ""
	for prefix, ns := range v.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return iri
	}
	local := strings.TrimPrefix(iri, bestNS)
	if !isLocalName(local) {
		return iri
	}
	return best + ":" + local
}

// ExpandIRI is the inverse of CompactIRI.
func (v *Vocabulary) ExpandIRI(term string) string {
	if p, ok := v.byName[term]; ok {
		return p.IRI
	}
	if prefix, local, ok := strings.Cut(term, ":"); ok {
		if ns, known := v.prefixes[prefix]; known {
			return ns + local
		}
		return term
	}
	return SchemaNamespace + term
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '-' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

type defaultPredicate struct {
	name string
	iri  string
	desc string
	opts []Option
}

func registerDefaults(v *Vocabulary) {
	for _, d := range defaultPredicates() {
		opts := append([]Option{WithIRI(d.iri), WithDescription(d.desc)}, d.opts...)
		if err := v.Register(d.name, opts...); err != nil {
			panic("register default predicate: " + err.Error())
		}
	}
}

func defaultPredicates() []defaultPredicate {
	s := SchemaNamespace
	c := CodeMetaNamespace
	return []defaultPredicate{
		// Singular properties
		{Name, s + "name", "Name of the item", []Option{WithSingular()}},
		{Version, s + "version", "Version of the software", []Option{WithSingular()}},
		{Description, s + "description", "Description of the item", []Option{WithSingular()}},
		{DevelopmentStatus, c + "developmentStatus", "Development status (repostatus.org)", []Option{WithSingular(), WithIRIRange()}},
		{DateCreated, s + "dateCreated", "Creation date", []Option{WithSingular()}},
		{DateModified, s + "dateModified", "Last modification date", []Option{WithSingular()}},
		{Position, s + "position", "Ordinal position within a collection", []Option{WithSingular()}},

		{DatePublished, s + "datePublished", "Publication date", nil},
		{Type, RDFType, "Resource type", []Option{WithIRIRange()}},
		{Identifier, s + "identifier", "Identifier of the item", nil},

		// Agents
		{Author, s + "author", "Author of the software", []Option{WithOrdered()}},
		{Contributor, s + "contributor", "Contributor to the software", nil},
		{Maintainer, c + "maintainer", "Maintainer of the software", nil},
		{Producer, s + "producer", "Producer of the software", nil},
		{Provider, s + "provider", "Provider of the software", nil},
		{Funder, s + "funder", "Funder of the software", nil},
		{Funding, c + "funding", "Funding source", nil},
		{CopyrightHolder, s + "copyrightHolder", "Copyright holder", nil},
		{CopyrightYear, s + "copyrightYear", "Copyright year", nil},
		{GivenName, s + "givenName", "Given name of a person", nil},
		{FamilyName, s + "familyName", "Family name of a person", nil},
		{Email, s + "email", "Email address", nil},
		{Affiliation, s + "affiliation", "Organization a person is affiliated with", nil},
		{MemberOf, s + "memberOf", "Organization a person is a member of", nil},
		{RoleName, s + "roleName", "Role played by an agent", nil},

		// Licensing and classification
		{License, s + "license", "License (SPDX IRI where resolvable)", []Option{WithIRIRange()}},
		{Audience, s + "audience", "Intended audience", nil},
		{AudienceType, s + "audienceType", "Kind of audience", nil},
		{Keywords, s + "keywords", "Keyword", nil},
		{ApplicationCategory, s + "applicationCategory", "Application category", nil},
		{ApplicationSubCategory, s + "applicationSubCategory", "Application subcategory", nil},

		// Locations
		{CodeRepository, s + "codeRepository", "Source code repository", []Option{WithIRIRange()}},
		{URL, s + "url", "Homepage", []Option{WithIRIRange()}},
		{DownloadURL, s + "downloadUrl", "Download location", []Option{WithIRIRange()}},
		{IssueTracker, c + "issueTracker", "Issue tracker", []Option{WithIRIRange()}},
		{ContinuousIntegration, c + "continuousIntegration", "Continuous integration service", []Option{WithIRIRange()}},
		{Readme, c + "readme", "README location", []Option{WithIRIRange()}},
		{BuildInstructions, c + "buildInstructions", "Build instructions location", []Option{WithIRIRange()}},
		{ReleaseNotes, s + "releaseNotes", "Release notes", nil},
		{SoftwareHelp, s + "softwareHelp", "Software documentation", nil},
		{ReferencePublication, c + "referencePublication", "Reference publication", nil},
		{ThumbnailURL, s + "thumbnailUrl", "Thumbnail image", []Option{WithIRIRange()}},
		{SameAs, s + "sameAs", "Equivalent resource", []Option{WithIRIRange()}},

		// Technical
		{ProgrammingLanguage, s + "programmingLanguage", "Programming language", nil},
		{RuntimePlatform, s + "runtimePlatform", "Runtime platform", nil},
		{OperatingSystem, s + "operatingSystem", "Supported operating system", nil},
		{SoftwareRequirements, s + "softwareRequirements", "Required dependency", nil},
		{SoftwareSuggestions, c + "softwareSuggestions", "Optional dependency", nil},
		{TargetProduct, s + "targetProduct", "Interface or artifact provided", nil},
		{IsPartOf, s + "isPartOf", "Containing work", nil},
		{HasPart, s + "hasPart", "Contained work", nil},

		// Taxonomy
		{PrefLabel, SKOSNamespace + "prefLabel", "Preferred label", nil},
		{Broader, SKOSNamespace + "broader", "Broader concept", []Option{WithNoEmbed(), WithIRIRange()}},
		{Narrower, SKOSNamespace + "narrower", "Narrower concept", []Option{WithNoEmbed(), WithIRIRange()}},
		{InScheme, SKOSNamespace + "inScheme", "Concept scheme", []Option{WithNoEmbed(), WithIRIRange()}},
		{HasTopConcept, SKOSNamespace + "hasTopConcept", "Top concept of a scheme", []Option{WithNoEmbed(), WithIRIRange()}},
		{TopConceptOf, SKOSNamespace + "topConceptOf", "Scheme of a top concept", []Option{WithNoEmbed(), WithIRIRange()}},
		{SubClassOf, RDFSNamespace + "subClassOf", "Superclass", []Option{WithNoEmbed(), WithIRIRange()}},
	}
}
