package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies why a model call produced no story text.
type FailureKind int

const (
	// ConfigurationMissing means no credential was available. No request was sent.
	ConfigurationMissing FailureKind = iota + 1
	// ProviderRejected means the endpoint declined to return content.
	ProviderRejected
	// TransportError covers network failures, timeouts and 5xx responses.
	TransportError
	// EmptyResponse means the call succeeded but carried no text.
	EmptyResponse
)

// Sentinels for errors.Is. A *Failure matches the sentinel of its kind.
var (
	ErrConfigurationMissing = errors.New("model configuration missing")
	ErrProviderRejected     = errors.New("provider rejected request")
	ErrTransport            = errors.New("model transport error")
	ErrEmptyResponse        = errors.New("empty model response")
)

// String returns the snake_case name used in logs and metric labels.
func (k FailureKind) String() string {
	switch k {
	case ConfigurationMissing:
		return "configuration_missing"
	case ProviderRejected:
		return "provider_rejected"
	case TransportError:
		return "transport_error"
	case EmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case ConfigurationMissing:
		return ErrConfigurationMissing
	case ProviderRejected:
		return ErrProviderRejected
	case TransportError:
		return ErrTransport
	case EmptyResponse:
		return ErrEmptyResponse
	default:
		return nil
	}
}

// Failure is the typed error returned for every unsuccessful model call.
type Failure struct {
	Kind     FailureKind
	Provider string
	// Message is the provider-supplied reason when one exists.
	Message string
	Err     error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	msg := f.Kind.sentinel()
	text := "model call failed"
	if msg != nil {
		text = msg.Error()
	}
	if f.Provider != "" {
		text = f.Provider + ": " + text
	}
	if f.Message != "" {
		text += ": " + f.Message
	}
	return text
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel for the failure kind.
func (f *Failure) Is(target error) bool {
	s := f.Kind.sentinel()
	return s != nil && target == s
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func newFailure(kind FailureKind, provider, message string, err error) *Failure {
	return &Failure{Kind: kind, Provider: provider, Message: message, Err: err}
}

func missingKey(provider, envVar string) *Failure {
	return newFailure(ConfigurationMissing, provider,
		fmt.Sprintf("%s environment variable not set", envVar), nil)
}

// statusFailure maps an HTTP status onto a failure kind. Request timeouts
// and rate limiting are transient and count as transport errors.
func statusFailure(provider string, status int, message string, err error) *Failure {
	if message == "" {
		message = http.StatusText(status)
	}
	message = fmt.Sprintf("HTTP %d: %s", status, message)

	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return newFailure(TransportError, provider, message, err)
	case status >= 400 && status < 500:
		return newFailure(ProviderRejected, provider, message, err)
	default:
		return newFailure(TransportError, provider, message, err)
	}
}

// transportFailure wraps errors that carry no HTTP status.
func transportFailure(provider string, err error) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}
	return newFailure(TransportError, provider, msg, err)
}
