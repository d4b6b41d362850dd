package service

import (
	"errors"
	"fmt"
)

// Kind 错误类别 — stable machine-readable kinds for every operation.
type Kind string

const (
	KindValidation            Kind = "ValidationError"
	KindQuantityMismatch      Kind = "QuantityMismatch"
	KindQuantityExceedsTarget Kind = "QuantityExceedsTarget"
	KindNotFound              Kind = "NotFound"
	KindConflict              Kind = "Conflict"
	KindNoActorFound          Kind = "NoActorFound"
	KindPersistence           Kind = "PersistenceError"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func quantityMismatchErr(format string, args ...interface{}) *Error {
	return newError(KindQuantityMismatch, format, args...)
}

func quantityExceedsErr(format string, args ...interface{}) *Error {
	return newError(KindQuantityExceedsTarget, format, args...)
}

func notFoundErr(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func conflictErr(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func noActorErr(format string, args ...interface{}) *Error {
	return newError(KindNoActorFound, format, args...)
}

func persistenceErr(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf extracts the error kind; unknown errors map to
// KindPersistence so callers always get a stable kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}
