package errors

import (
	"errors"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// appError implements the Error interface
type appError struct {
	code        ErrorCode
	description string
	help        string
	err         error
}

func (e *appError) Error() string {
	msg := GetErrorMessage(e.code)
	if e.description != "" {
		return msg + ": " + e.description
	}

	return msg
}

func (e *appError) Code() ErrorCode {
	return e.code
}

func (e *appError) Description() string {
	return e.description
}

func (e *appError) Help() string {
	return e.help
}

func (e *appError) WithDescription(desc string) Error {
	return &appError{
		code:        e.code,
		description: desc,
		help:        e.help,
		err:         e.err,
	}
}

func (e *appError) WithHelp(help string) Error {
	return &appError{
		code:        e.code,
		description: e.description,
		help:        help,
		err:         e.err,
	}
}

func (e *appError) Unwrap() error {
	return e.err
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return &appError{
		code: code,
	}
}

// Wrap uses the wrapped error's text as the description.
func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	e := &appError{
		code: code,
		err:  err,
	}
	if err != nil {
		e.description = err.Error()
	}

	return e
}

func (*defaultFactory) WithDescription(code ErrorCode, desc string) Error {
	return &appError{
		code:        code,
		description: desc,
	}
}

func (*defaultFactory) WithHelp(code ErrorCode, help, desc string) Error {
	return &appError{
		code:        code,
		description: desc,
		help:        help,
	}
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}

// CodeOf returns the code of the first Error in err's chain, or an empty
// code if there is none.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}

	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HelpOf returns the remediation hint attached to err, if any.
func HelpOf(err error) string {
	var e Error
	if errors.As(err, &e) {
		return e.Help()
	}

	return ""
}
