package crosswalk

import "errors"

// Engine errors.
var (
	// ErrNoInputs is returned when the input patterns match no files.
	ErrNoInputs = errors.New("no input files")

	// ErrUnsupportedInput is returned for a file that is neither JSON-LD nor HTML.
	ErrUnsupportedInput = errors.New("unsupported input file")

	// ErrNoRoot is returned when no root resource is given and none can be found.
	ErrNoRoot = errors.New("no root resource")

	// ErrInvalidAssignment is returned for a property assignment without "=".
	ErrInvalidAssignment = errors.New("invalid property assignment")
)
