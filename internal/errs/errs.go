// Package errs separates failures the user can act on from failures caused
// by an input page that did not match any known layout.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnknown is any error that was not produced through this package.
	KindUnknown Kind = iota
	// KindUser covers problems the user fixes by changing the selection.
	KindUser
	// KindApplication covers pages whose structure did not match.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func User(format string, args ...any) *Error {
	return &Error{Kind: KindUser, Message: fmt.Sprintf(format, args...)}
}

// App wraps err as an application error. Message may be empty, in which
// case the wrapped error text is used alone.
func App(err error, message string) *Error {
	return &Error{Kind: KindApplication, Message: message, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

const UnknownMessage = "An unknown error occurred."

// Render formats err as the single result line shown to the user.
func Render(err error) string {
	if err == nil {
		return ""
	}
	if IsPanic(err) {
		return UnknownMessage
	}

	var e *Error
	if !errors.As(err, &e) {
		return "Error: " + err.Error()
	}

	switch e.Kind {
	case KindUser:
		return err.Error()
	case KindApplication:
		return "Application error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// FromPanic converts a recovered panic value into an error that renders
// with the generic message.
func FromPanic(v any) error {
	if err, ok := v.(error); ok {
		return &panicError{cause: err}
	}

	return &panicError{cause: fmt.Errorf("%v", v)}
}

type panicError struct {
	cause error
}

func (p *panicError) Error() string { return UnknownMessage }

func (p *panicError) Unwrap() error { return p.cause }

func IsPanic(err error) bool {
	var p *panicError
	return errors.As(err, &p)
}
