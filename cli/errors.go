package cli

import (
	"errors"
	"fmt"

	"github.com/richinex/tinytales/generator"
	"github.com/richinex/tinytales/llm"
	"github.com/richinex/tinytales/storage"
	"github.com/richinex/tinytales/story"
)

// describeError turns a command error into a message for the terminal.
func describeError(err error) string {
	if f, ok := llm.AsFailure(err); ok {
		switch f.Kind {
		case llm.ConfigurationMissing:
			return fmt.Sprintf("%s is not configured: %s", f.Provider, f.Message)
		case llm.ProviderRejected:
			return fmt.Sprintf("%s declined to write this story (%s). Try a different description.", f.Provider, f.Message)
		case llm.TransportError:
			return fmt.Sprintf("could not reach %s: %s", f.Provider, f.Message)
		case llm.EmptyResponse:
			return fmt.Sprintf("%s returned no story text. Please try again.", f.Provider)
		}
	}

	var verr *story.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrAmbiguous):
		return err.Error()
	}

	if genErr, ok := generator.AsError(err); ok {
		return genErr.Error()
	}
	return err.Error()
}

// reportedError wraps an error that has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// fail prints err and marks it reported so main exits without printing it
// again.
func (a *App) fail(err error) error {
	a.Printer.Error("%s", describeError(err))
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
