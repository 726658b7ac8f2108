// Package apperr defines the closed error taxonomy shared by every service
// operation. Callers branch on Kind instead of matching message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	// KindUnauthenticated means no principal could be resolved from the request.
	KindUnauthenticated Kind = "unauthenticated"

	// KindForbidden means the principal lacks a required role.
	KindForbidden Kind = "forbidden"

	// KindNotFound means the mutation or read target does not exist.
	KindNotFound Kind = "not_found"

	// KindConflict means a domain precondition failed (e.g. duplicate rating
	// for the same year and client).
	KindConflict Kind = "conflict"

	// KindValidation means the input was malformed.
	KindValidation Kind = "validation"

	// KindStorage means an object-storage write did not succeed.
	KindStorage Kind = "storage"

	// KindUnsupportedMedia means a file was rejected by the upload allow-list.
	KindUnsupportedMedia Kind = "unsupported_media"

	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// Error carries a Kind alongside the human-readable message. The message is
// what the route layer renders in the {error} envelope.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that keeps the underlying cause for logging while
// exposing only the message to callers.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for errors
// that did not originate in a service operation.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
