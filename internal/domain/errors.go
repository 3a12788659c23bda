package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// The API client and services wrap these so the gateway can map them to
// HTTP status codes and views without looking at transport details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownRole  = errors.New("unknown role")
	ErrTransport    = errors.New("transport failure")
)

// GenericFailure is shown when the server gave no specific message.
const GenericFailure = "operation failed"

// UserMessage returns the message a user should see for err: the
// server-provided detail when one exists, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var d interface{ ServerDetail() string }
	if errors.As(err, &d) {
		if msg := d.ServerDetail(); msg != "" {
			return msg
		}
	}
	if fallback == "" {
		return GenericFailure
	}
	return fallback
}
