package generator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies orchestration failures that did not come from the
// model call itself.
type ErrorKind int

const (
	// GenerationFailed covers invalid parameters, storage errors and
	// anything unexpected, recovered panics included.
	GenerationFailed ErrorKind = iota + 1
)

// ErrGenerationFailed matches every *Error via errors.Is.
var ErrGenerationFailed = errors.New("story generation failed")

// String returns the snake_case kind name.
func (k ErrorKind) String() string {
	if k == GenerationFailed {
		return "generation_failed"
	}
	return "unknown"
}

// Error is returned by GenerateStory for failures outside the model call.
// Model failures are returned as *llm.Failure instead.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return ErrGenerationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGenerationFailed, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrGenerationFailed.
func (e *Error) Is(target error) bool {
	return target == ErrGenerationFailed && e.Kind == GenerationFailed
}

func failed(err error) *Error {
	return &Error{Kind: GenerationFailed, Message: err.Error(), Err: err}
}

func failedf(err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Kind: GenerationFailed, Message: msg, Err: err}
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
