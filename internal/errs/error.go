package errs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without probing optional fields.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork: the request could not complete.
	KindNetwork
	// KindRequestFailed: the backend answered with a non-2xx status.
	KindRequestFailed
	// KindMalformedResponse: the body could not be parsed.
	KindMalformedResponse
	// KindValidation: a client-side check failed; nothing was sent.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkFailure"
	case KindRequestFailed:
		return "RequestFailed"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindValidation:
		return "ValidationFailure"
	default:
		return "Unknown"
	}
}

// Error is the tagged error returned by the API client and facades.
type Error struct {
	Kind    Kind
	Status  int             // HTTP status, RequestFailed only
	Message string          // backend or validation message, may be empty
	Body    json.RawMessage // raw error body when the backend sent one
	Err     error           // underlying cause
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRequestFailed && e.Message != "":
		return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Message)
	case e.Kind == KindRequestFailed:
		return fmt.Sprintf("request failed: status %d", e.Status)
	case e.Kind == KindValidation:
		return e.Message
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String() + ": " + e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Network wraps a transport failure.
func Network(err error) *Error { return &Error{Kind: KindNetwork, Err: err} }

// Malformed wraps a body parsing failure.
func Malformed(err error) *Error { return &Error{Kind: KindMalformedResponse, Err: err} }

// Validation reports a client-side validation failure with a user-facing message.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns the message to show a user for err: the backend or validation message when
// present, the text of a known sentinel, otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	for _, s := range []error{ErrPurchaseFailed, ErrNotAuthenticated, ErrForbidden} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return fallback
}
