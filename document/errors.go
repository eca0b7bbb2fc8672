package document

import "errors"

// Common document errors.
var (
	// ErrRootNotFound is returned when the framing root is absent from the
	// gathered nodes.
	ErrRootNotFound = errors.New("root node not found")

	// ErrInvalidDocument is returned for JSON-LD input that cannot be read as a
	// node collection.
	ErrInvalidDocument = errors.New("invalid JSON-LD document")

	// ErrUnsupportedContext is returned for remote contexts that are not built in.
	// Contexts are never fetched.
	ErrUnsupportedContext = errors.New("unsupported remote context")
)
