package codemeta

import "strings"

// Status is a repostatus.org status term.
type Status string

const (
	// StatusConcept: minimal or no implementation, limited to examples or design.
	StatusConcept Status = "concept"

	// StatusWIP: initial development in progress, no stable release yet.
	StatusWIP Status = "wip"

	// StatusSuspended: initial development started but paused.
	StatusSuspended Status = "suspended"

	// StatusAbandoned: initial development started, then abandoned.
	StatusAbandoned Status = "abandoned"

	// StatusActive: stable, usable state under active development.
	StatusActive Status = "active"

	// StatusInactive: stable, usable state with no active development.
	StatusInactive Status = "inactive"

	// StatusUnsupported: no longer supported or maintained.
	StatusUnsupported Status = "unsupported"

	// StatusMoved: the project moved to another location.
	StatusMoved Status = "moved"
)

// IRI returns the repostatus.org IRI of the status.
func (s Status) IRI() string {
	return RepoStatusNamespace + string(s)
}

// troveStatus maps Trove "Development Status :: N - Label" buckets.
var troveStatus = map[string]Status{
	"1 - planning":          StatusConcept,
	"2 - pre-alpha":         StatusWIP,
	"3 - alpha":             StatusWIP,
	"4 - beta":              StatusActive,
	"5 - production/stable": StatusActive,
	"6 - mature":            StatusActive,
	"7 - inactive":          StatusInactive,
}

// statusRule maps a free-text fragment onto a status. Fragments match on word
// boundaries and the first match wins, so negated phrases ("not active") come
// before the words they contain.
type statusRule struct {
	fragment string
	status   Status
}

var statusRules = []statusRule{
	{"no longer maintained", StatusUnsupported},
	{"not maintained", StatusUnsupported},
	{"no longer supported", StatusUnsupported},
	{"not supported", StatusUnsupported},
	{"not actively maintained", StatusInactive},
	{"not actively developed", StatusInactive},
	{"no longer developed", StatusInactive},
	{"no longer active", StatusInactive},
	{"not active", StatusInactive},
	{"inactive", StatusInactive},
	{"unmaintained", StatusInactive},
	{"unsupported", StatusUnsupported},
	{"deprecated", StatusUnsupported},
	{"obsolete", StatusUnsupported},
	{"abandoned", StatusAbandoned},
	{"suspended", StatusSuspended},
	{"moved", StatusMoved},
	{"concept", StatusConcept},
	{"planning", StatusConcept},
	{"pre-alpha", StatusWIP},
	{"alpha", StatusWIP},
	{"work in progress", StatusWIP},
	{"wip", StatusWIP},
	{"experimental", StatusWIP},
	{"prototype", StatusWIP},
	{"beta", StatusActive},
	{"stable", StatusActive},
	{"production", StatusActive},
	{"mature", StatusActive},
	{"maintained", StatusActive},
	{"active", StatusActive},
}

// StatusIRI maps a development status value onto a repostatus.org IRI.
// It returns false when the value is not recognized.
func StatusIRI(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}

	if term, ok := strings.CutPrefix(v, strings.ToLower(RepoStatusNamespace)); ok {
		return StatusFromTerm(term)
	}
	if term, ok := strings.CutPrefix(v, "repostatus:"); ok {
		return StatusFromTerm(term)
	}

	if rest, ok := strings.CutPrefix(v, "development status ::"); ok {
		v = strings.TrimSpace(rest)
		if s, ok := troveStatus[v]; ok {
			return s.IRI(), true
		}
	}

	if s, ok := StatusFromTerm(v); ok {
		return s, true
	}

	for _, rule := range statusRules {
		if containsWord(v, rule.fragment) {
			return rule.status.IRI(), true
		}
	}
	return "", false
}

// StatusFromTerm resolves an exact repostatus term such as "active".
func StatusFromTerm(term string) (string, bool) {
	switch s := Status(strings.ToLower(term)); s {
	case StatusConcept, StatusWIP, StatusSuspended, StatusAbandoned,
		StatusActive, StatusInactive, StatusUnsupported, StatusMoved:
		return s.IRI(), true
	}
	return "", false
}
