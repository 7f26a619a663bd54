package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streakd/internal/models"
)

// Kind classifies a service failure for callers that need to map it onto a
// transport (HTTP status, CLI exit code) without parsing messages.
type Kind string

const (
	// KindUnauthorized means no identity was supplied. A caller bug, not a
	// domain outcome.
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound covers missing resources.
	KindNotFound Kind = "not_found"
	// KindForbidden is an ownership mismatch. Its message is identical to
	// KindNotFound so a non-owner learns nothing about existence.
	KindForbidden Kind = "forbidden"
	// KindValidation is a violated field constraint, surfaced verbatim.
	KindValidation Kind = "validation"
	// KindConflict is a normal, expected domain outcome: duplicate habit
	// name, duplicate follow edge, already checked in this period.
	KindConflict Kind = "conflict"
	// KindTransient is a store failure; never partially applied, the caller
	// may retry manually.
	KindTransient Kind = "transient"
)

// Error is the typed failure every service entry point returns. Message is
// safe to show to the user; Err holds the internal cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindTransient for anything untyped.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

// UserMessage returns the user-facing message for err.
func UserMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "something went wrong"
}

func errUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "unauthorized"}
}

func errHabitNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "habit not found"}
}

// errHabitForbidden carries the not-found message on purpose: ownership
// mismatches must not leak existence to non-owners.
func errHabitForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "habit not found"}
}

func errAlreadyCheckedIn(cadence models.Cadence) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("already checked in for this %s period", strings.ToLower(string(cadence))),
	}
}

func errConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func errValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func errTransient(message string, cause error) *Error {
	return &Error{Kind: KindTransient, Message: message, Err: cause}
}
