package graph

import "errors"

// Common graph errors.
var (
	// ErrUnknownPredicate is returned when an insertion names a predicate that is
	// not in the vocabulary.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrInvalidSubject is returned when an insertion subject is not a resource.
	ErrInvalidSubject = errors.New("subject must be an IRI or blank node")

	// ErrUnsupportedValue is returned when an insertion value has no term mapping.
	ErrUnsupportedValue = errors.New("unsupported value type")
)
