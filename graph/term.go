package graph

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// TermKind discriminates the Term variants.
type TermKind uint8

const (
	// KindIRI is a resource identified by an IRI.
	KindIRI TermKind = iota + 1
	// KindBlank is an anonymous resource with store-local identity.
	KindBlank
	// KindLiteral is a data value with optional datatype or language tag.
	KindLiteral
)

// BlankPrefix prefixes blank-node identifiers in their string form.
const BlankPrefix = "_:"

// Term is a node or value in the graph. The zero Term acts as a wildcard in Match.
// Terms are comparable and can be used as map keys.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Language string
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank-node term with the given identifier. A leading "_:" is stripped.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, BlankPrefix)}
}

// NewBlank returns a blank-node term with a random 128-bit identifier.
func NewBlank() Term {
	id := uuid.New()
	return Term{Kind: KindBlank, Value: "b" + hex.EncodeToString(id[:])}
}

// Literal returns a plain string literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// TypedLiteral returns a literal with a datatype IRI. xsd:string is normalized away.
func TypedLiteral(value, datatype string) Term {
	if datatype == codemeta.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Language: strings.ToLower(lang)}
}

// IsZero reports whether t is the wildcard term.
func (t Term) IsZero() bool { return t.Kind == 0 }

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsResource reports whether t is an IRI or a blank node.
func (t Term) IsResource() bool { return t.Kind == KindIRI || t.Kind == KindBlank }

// ID returns the identifier used for t in documents: the IRI, or "_:" plus the
// blank-node label. Literals return their lexical value.
func (t Term) ID() string {
	if t.Kind == KindBlank {
		return BlankPrefix + t.Value
	}
	return t.Value
}

// String returns the N-Triples form of the term.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return BlankPrefix + t.Value
	case KindLiteral:
		s := `"` + EscapeLiteral(t.Value) + `"`
		if t.Language != "" {
			return s + "@" + t.Language
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return "*"
	}
}

// EscapeLiteral escapes a lexical value for a quoted N-Triples or Turtle string.
func EscapeLiteral(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TermFromID parses a document identifier: "_:x" becomes a blank node, anything
// else an IRI.
func TermFromID(id string) Term {
	if strings.HasPrefix(id, BlankPrefix) {
		return Blank(id)
	}
	return IRI(id)
}

// Triple is a single (subject, predicate, object) statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T is shorthand for constructing a triple.
func T(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String returns the N-Triples line for the triple, without a trailing newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

func compareTerms(a, b Term) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Language, b.Language)
}

func compareTriples(a, b Triple) int {
	if c := compareTerms(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := compareTerms(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	return compareTerms(a.Object, b.Object)
}
