package driver

import (
	"fmt"
)

// Kind classifies a driver failure. Kinds are errors themselves so callers
// can match them with errors.Is.
type Kind int

const (
	InvalidInputFormat Kind = iota + 1
	InvalidAlgorithm
	UnsupportedConfiguration
	FileCreationError
	UnimplementedFeature
)

func (k Kind) Error() string {
	switch k {
	case InvalidInputFormat:
		return "invalid input format"
	case InvalidAlgorithm:
		return "invalid algorithm"
	case UnsupportedConfiguration:
		return "unsupported configuration"
	case FileCreationError:
		return "file creation error"
	case UnimplementedFeature:
		return "unimplemented feature"
	default:
		return fmt.Sprintf("driver error %d", int(k))
	}
}

// Error is a failure of a given Kind with its cause.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}
