package geocode

import (
	"errors"
	"fmt"
)

// Kind represents the category of a geocoding failure.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindInvalidArgument indicates the query was rejected before any lookup.
	KindInvalidArgument
	// KindUpstreamHTTP indicates Nominatim answered with a non-2xx status.
	KindUpstreamHTTP
	// KindNetwork indicates Nominatim could not be reached, including timeouts.
	KindNetwork
	// KindUnexpectedResponse indicates Nominatim answered with data of the wrong shape.
	KindUnexpectedResponse
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUpstreamHTTP:
		return "upstream_http_error"
	case KindNetwork:
		return "network_error"
	case KindUnexpectedResponse:
		return "unexpected_response"
	default:
		return "unknown"
	}
}

// Error is a geocoding failure with a typed Kind. Message is the
// human-readable text shown to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidArgument creates a validation error.
func InvalidArgument(message string) *Error {
	return newError(KindInvalidArgument, message, nil)
}

// NetworkError wraps a failure to reach the geocoding service.
func NetworkError(err error) *Error {
	return newError(KindNetwork,
		fmt.Sprintf("Network error: Unable to connect to geocoding service - %v", err), err)
}

// UnexpectedResponse wraps a malformed upstream payload.
func UnexpectedResponse(err error) *Error {
	return newError(KindUnexpectedResponse,
		fmt.Sprintf("Unexpected response from geocoding service: %v", err), err)
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is present.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
