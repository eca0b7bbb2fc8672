package graph

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

// InsertObserver receives insertion outcomes, typically for metrics.
type InsertObserver interface {
	ObserveInsert(predicate string, added int)
	ObserveReject(predicate string)
}

// InserterOption configures an Inserter.
type InserterOption func(*Inserter)

// WithLogger sets the logger used for insertion diagnostics.
func WithLogger(logger *slog.Logger) InserterOption {
	return func(in *Inserter) { in.logger = logger }
}

// WithObserver registers an observer for insertion outcomes.
func WithObserver(o InsertObserver) InserterOption {
	return func(in *Inserter) { in.observer = o }
}

// InsertOption adjusts a single insertion.
type InsertOption func(*insertOptions)

type insertOptions struct {
	datatype string
	language string
	asIRI    bool
	replace  bool
}

// WithDatatype stores string values as literals of the given datatype.
func WithDatatype(datatype string) InsertOption {
	return func(o *insertOptions) { o.datatype = datatype }
}

// WithLanguage stores string values as language-tagged literals.
func WithLanguage(lang string) InsertOption {
	return func(o *insertOptions) { o.language = lang }
}

// AsIRI stores string values as IRIs.
func AsIRI() InsertOption {
	return func(o *insertOptions) { o.asIRI = true }
}

// Replace forces replace semantics for a non-singular predicate.
func Replace() InsertOption {
	return func(o *insertOptions) { o.replace = true }
}

// Inserter writes facts into a graph following the vocabulary's insertion
// policy: singular predicates replace, everything else accumulates, and a few
// predicates get special encoding before they are stored.
type Inserter struct {
	graph    *Graph
	vocab    *codemeta.Vocabulary
	logger   *slog.Logger
	observer InsertObserver
	markdown *md.Converter
}

// NewInserter creates an inserter over g.
func NewInserter(g *Graph, vocab *codemeta.Vocabulary, opts ...InserterOption) *Inserter {
	in := &Inserter{
		graph: g,
		vocab: vocab,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	return in
}

// Graph returns the graph the inserter writes to.
func (in *Inserter) Graph() *Graph { return in.graph }

// Insert adds a fact about subject. The predicate is a vocabulary name or IRI;
// unknown predicates are logged and rejected with ErrUnknownPredicate, leaving
// the graph untouched. Empty values are ignored.
func (in *Inserter) Insert(subject Term, predicate string, value any, opts ...InsertOption) error {
	pred, ok := in.vocab.Lookup(predicate)
	if !ok {
		in.logger.Warn("Rejected unknown predicate",
			"predicate", predicate,
			"subject", subject.ID())
		if in.observer != nil {
			in.observer.ObserveReject(predicate)
		}
		return fmt.Errorf("insert %s: %w", predicate, ErrUnknownPredicate)
	}
	if !subject.IsResource() {
		return fmt.Errorf("insert %s on %s: %w", predicate, subject, ErrInvalidSubject)
	}

	var o insertOptions
	for _, opt := range opts {
		opt(&o)
	}

	added, err := in.insert(subject, pred, value, o)
	if err != nil {
		return err
	}
	if in.observer != nil && added > 0 {
		in.observer.ObserveInsert(pred.Name, added)
	}
	return nil
}

func (in *Inserter) insert(subject Term, pred codemeta.Predicate, value any, o insertOptions) (int, error) {
	if values, ok := value.([]string); ok {
		total := 0
		for _, v := range values {
			n, err := in.insert(subject, pred, v, o)
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	}

	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		switch pred.Name {
		case codemeta.DevelopmentStatus:
			if iri, ok := codemeta.StatusIRI(s); ok {
				return in.store(subject, pred, IRI(iri), o), nil
			}
			return in.store(subject, pred, Literal(s), o), nil

		case codemeta.License:
			if iri, ok := codemeta.LicenseIRI(s); ok {
				return in.store(subject, pred, IRI(iri), o), nil
			}
			if looksLikeIRI(s) {
				return in.store(subject, pred, IRI(s), o), nil
			}
			return in.store(subject, pred, Literal(s), o), nil

		case codemeta.Audience:
			return in.addAudience(subject, pred, s), nil

		case codemeta.Keywords:
			if strings.ContainsAny(s, ",;") {
				keywords := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
				return in.insert(subject, pred, keywords, o)
			}

		case codemeta.Description:
			value = in.normalizeDescription(s)
		}
	}

	obj, err := in.toTerm(pred, value, o)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", pred.Name, err)
	}
	if obj.IsZero() {
		return 0, nil
	}
	return in.store(subject, pred, obj, o), nil
}

// store applies replace-vs-accumulate and returns the number of triples added.
func (in *Inserter) store(subject Term, pred codemeta.Predicate, obj Term, o insertOptions) int {
	p := IRI(pred.IRI)
	if pred.Singular || o.replace {
		if in.graph.Has(T(subject, p, obj)) && len(in.graph.Objects(subject, p)) == 1 {
			return 0
		}
		in.graph.Set(subject, p, obj)
		return 1
	}
	if in.graph.Add(T(subject, p, obj)) {
		return 1
	}
	return 0
}

// addAudience creates an anonymous schema:Audience resource and links it.
func (in *Inserter) addAudience(subject Term, pred codemeta.Predicate, audienceType string) int {
	node := NewBlank()
	in.graph.Add(T(node, IRI(codemeta.RDFType), IRI(codemeta.ClassAudience)))
	in.graph.Add(T(node, IRI(codemeta.SchemaNamespace+codemeta.AudienceType), Literal(audienceType)))
	in.graph.Add(T(subject, IRI(pred.IRI), node))
	return 3
}

func (in *Inserter) toTerm(pred codemeta.Predicate, value any, o insertOptions) (Term, error) {
	switch v := value.(type) {
	case nil:
		return Term{}, nil
	case Term:
		if v.IsLiteral() && strings.TrimSpace(v.Value) == "" {
			return Term{}, nil
		}
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		switch {
		case s == "":
			return Term{}, nil
		case o.asIRI, pred.IRIRange && looksLikeIRI(s):
			return TermFromID(s), nil
		case o.language != "":
			return LangLiteral(s, o.language), nil
		case o.datatype != "":
			return TypedLiteral(s, o.datatype), nil
		default:
			return Literal(s), nil
		}
	case int:
		return TypedLiteral(strconv.Itoa(v), codemeta.XSDInteger), nil
	case int64:
		return TypedLiteral(strconv.FormatInt(v, 10), codemeta.XSDInteger), nil
	case float64:
		return TypedLiteral(strconv.FormatFloat(v, 'f', -1, 64), codemeta.XSDDecimal), nil
	case bool:
		return TypedLiteral(strconv.FormatBool(v), codemeta.XSDBoolean), nil
	case time.Time:
		if v.IsZero() {
			return Term{}, nil
		}
		if v.Equal(v.Truncate(24 * time.Hour)) {
			return TypedLiteral(v.UTC().Format(time.DateOnly), codemeta.XSDDate), nil
		}
		return TypedLiteral(v.Format(time.RFC3339), codemeta.XSDDateTime), nil
	default:
		return Term{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// normalizeDescription converts HTML descriptions to Markdown.
func (in *Inserter) normalizeDescription(s string) string {
	if !containsMarkup(s) {
		return s
	}
	if in.markdown == nil {
		in.markdown = md.NewConverter("", true, nil)
		in.markdown.Use(plugin.GitHubFlavored())
	}
	out, err := in.markdown.ConvertString(s)
	if err != nil {
		in.logger.Debug("Keeping HTML description", "error", err)
		return s
	}
	return strings.TrimSpace(out)
}

// markupTags are the elements that identify a description as HTML.
var markupTags = map[string]bool{
	"p": true, "a": true, "div": true, "br": true, "ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "em": true, "strong": true,
	"code": true, "pre": true, "span": true, "b": true, "i": true, "img": true,
	"table": true, "blockquote": true,
}

func containsMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if markupTags[string(name)] {
				return true
			}
		}
	}
}

func looksLikeIRI(s string) bool {
	if strings.ContainsAny(s, " \t\n<>\"") {
		return false
	}
	if strings.Contains(s, "://") {
		return true
	}
	for _, scheme := range []string{"urn:", "mailto:", "doi:", "undefined:"} {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
