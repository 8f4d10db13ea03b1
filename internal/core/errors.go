package core

import (
	"errors"
	"fmt"
)

// Pipeline error kinds. The first five abort a run.
var (
	ErrRouting              = errors.New("routing error")
	ErrProvider             = errors.New("provider error")
	ErrChunking             = errors.New("chunking error")
	ErrEmbedding            = errors.New("embedding error")
	ErrStorage              = errors.New("storage error")
	ErrEnrichment           = errors.New("enrichment error")
	ErrDownstreamExtraction = errors.New("downstream extraction error")
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid job transition")
)

// StageError tags a failure with its kind and the operation that produced it.
type StageError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns err tagged with kind. A nil err yields nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a StageError of the given kind from a formatted message.
func Errorf(kind error, op, format string, args ...any) error {
	return &StageError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err must abort a pipeline run.
// Untagged errors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrEnrichment) && !errors.Is(err, ErrDownstreamExtraction)
}

// InvalidInput wraps a validation message so it matches ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
