package errors

import (
	"errors"
	"runtime"

	errorsGo "github.com/go-errors/errors"
)

// error kinds, attached with Kind and tested with Is
var (
	ErrConfig   = errors.New(`display configuration error`)
	ErrResource = errors.New(`resource creation error`)
	ErrPresent  = errors.New(`present submission error`)
	ErrRender   = errors.New(`renderer error`)

	ErrFlipPending  = errors.New(`flip already pending`)
	ErrNotPending   = errors.New(`no flip pending`)
	ErrDrainTimeout = errors.New(`timed out draining pending flip`)
	ErrClosed       = errors.New(`session closed`)
)

var ErrUnsupported = errors.ErrUnsupported

func As(err error, target any) bool { return errorsGo.As(err, target) }

func Is(err, target error) bool { return errorsGo.Is(err, target) }

func Join(errs ...error) error {
	// not implemented by github.com/go-errors/errors
	if err := errorsGo.Join(errs...); err != nil {
		if errGo, okErrGo := err.(*errorsGo.Error); okErrGo {
			return errGo
		}
		return errorsGo.Wrap(err, 1)
	} else {
		return nil
	}
}

func New(obj any) *Error {
	// return nil for nil unlike github.com/go-errors/errors.New()
	if obj == nil {
		return nil
	}
	// don't overwrite origin of failure
	if errGo, okErrGo := obj.(*errorsGo.Error); okErrGo {
		return errGo
	}
	return errorsGo.Wrap(obj, 1)
}

func Unwrap(err error) error { return errorsGo.Unwrap(err) }

// Split returns the members of an error created by Join, or err itself.
// Errors carrying a kind are not split.
func Split(err error) []error {
	if err == nil {
		return nil
	}
	inner := err
	if errGo, ok := err.(*errorsGo.Error); ok && errGo.Err != nil {
		inner = errGo.Err
	}
	if _, isKind := inner.(*kindError); isKind {
		return []error{err}
	}
	joined, ok := inner.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var errs []error
	for _, e := range joined.Unwrap() {
		errs = append(errs, Split(e)...)
	}
	return errs
}

// Kind marks err as being of the given kind. The returned error matches both
// kind and err with Is. Kind returns nil for a nil err.
func Kind(kind, err error) error {
	if err == nil {
		return nil
	}
	if kind == nil || errors.Is(err, kind) {
		return New(err)
	}
	return errorsGo.Wrap(&kindError{kind: kind, err: err}, 1)
}

// Kindf is Kind with a formatted message.
func Kindf(kind error, format string, a ...any) error {
	return errorsGo.Wrap(&kindError{kind: kind, err: Errorf(format, a...)}, 1)
}

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.kind.Error() + `: ` + e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

// remaining "github.com/go-errors/errors" symbols

type Error = errorsGo.Error

func Errorf(format string, a ...interface{}) *Error { return errorsGo.Errorf(format, a...) }

func Wrap(e interface{}, skip int) *Error { return errorsGo.Wrap(e, skip+1) }

func WrapPrefix(e interface{}, prefix string, skip int) *Error {
	return errorsGo.WrapPrefix(e, prefix, skip+1)
}

// NilReceiver returns an error with the function name if any of the arguments are nil
func NilReceiver(args ...any) error {
	return errMsgNilTester(`nil receiver or struct field`, 3, args...)
}

// NilParam returns an error with the function name if any of the arguments are nil
func NilParam(args ...any) error {
	return errMsgNilTester(`nil parameter`, 3, args...)
}

func errMsgNilTester(msg string, skip int, args ...any) error {
	if len(args) == 0 {
		goto anyNil
	}
	for i := range args {
		if args[i] == nil {
			goto anyNil
		}
	}
	return nil
anyNil:
	return errMsg(msg, skip)
}

func errMsg(msg string, skip int) error {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return Wrap(msg, skip)
	}
	return Wrap(msg+`: `+runtime.FuncForPC(pc).Name()+`()`, skip)
}
