// Package errors wraps pkg/errors with error codes so every layer of the
// ingestion run can report one uniform error kind.
package errors

import (
	"github.com/pkg/errors"
)

// Code classifies an ingestion failure.
type Code string

const (
	ErrUncoded          Code = "Uncoded"
	ErrConfiguration    Code = "Configuration"
	ErrConnectivity     Code = "Connectivity"
	ErrDatabaseNotFound Code = "DatabaseNotFound"
	ErrEmptyResult      Code = "EmptyResult"
	ErrQuery            Code = "Query"
	ErrStorage          Code = "Storage"
)

// New returns a coded error with a stack trace.
func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...interface{}) error {
	return New(code, errors.Errorf(format, args...).Error())
}

// Wrap attaches code and context to cause. A nil cause returns nil.
func Wrap(code Code, cause error, context string) error {
	if cause == nil {
		return nil
	}
	return errors.WithStack(codedError{
		Code:    code,
		Message: context,
		cause:   cause,
	})
}

// Wrapf is Wrap with a format string.
func Wrapf(code Code, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return Wrap(code, cause, errors.Errorf(format, args...).Error())
}

// WithMessage adds call-site context without changing the code.
func WithMessage(err error, message string) error {
	return errors.WithMessage(err, message)
}

// Is reports whether any error in err's chain carries target.
func Is(err error, target Code) bool {
	return errors.Is(err, codedError{Code: target})
}

// As is errors.As from pkg/errors.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// CodeOf returns the outermost code in err's chain, or ErrUncoded.
func CodeOf(err error) Code {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUncoded
}

// Cause returns the innermost non-coded error, the original failure.
func Cause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

type codedError struct {
	Code    Code
	Message string
	cause   error
}

func (ce codedError) Error() string {
	if ce.cause == nil {
		return ce.Message
	}
	if ce.Message == "" {
		return ce.cause.Error()
	}
	return ce.Message + ": " + ce.cause.Error()
}

func (ce codedError) Unwrap() error { return ce.cause }

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}
