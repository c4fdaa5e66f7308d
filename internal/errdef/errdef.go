package errdef

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeSyntax     Code = "syntax"
	CodeName       Code = "name"
	CodeStructural Code = "structural"
	CodeRuntime    Code = "runtime"
	CodeArity      Code = "arity"
	CodeLimit      Code = "limit"
	CodeConfig     Code = "config"
	CodeFilesystem Code = "filesystem"
)

// Error is a message tagged with a Code, optionally wrapping a cause.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

type coded interface {
	ErrCode() Code
}

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) Code {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		switch e := cur.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.ErrCode()
		}
	}
	return CodeUnknown
}

// Message returns the human-facing text of err without the code prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
