package upi

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/upi-engine/generator"
	"github.com/lixenwraith/upi-engine/progressive"
)

// Sentinels matched by (*Error).Is
var (
	ErrSyntax = errors.New("syntax error")
	ErrRange  = errors.New("range error")
	ErrState  = errors.New("state error")
)

// ErrorKind classifies parse failures
type ErrorKind int

const (
	ErrorSyntax ErrorKind = iota // unparseable expression
	ErrorRange                   // argument outside its bounds with no sane clamp
	ErrorState                   // progressive suffix incompatible with its base
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorSyntax:
		return "syntax"
	case ErrorRange:
		return "range"
	case ErrorState:
		return "state"
	}
	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorRange:
		return ErrRange
	case ErrorState:
		return ErrState
	}
	return ErrSyntax
}

// Error is the data carried by a KindError result
type Error struct {
	Kind  ErrorKind
	Msg   string
	Input string
	Err   error // underlying cause, may be nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

// Is matches the sentinel of the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func syntaxErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrorSyntax, Msg: fmt.Sprintf(format, args...)}
}

func rangeErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrorRange, Msg: fmt.Sprintf(format, args...)}
}

func stateErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrorState, Msg: fmt.Sprintf(format, args...)}
}

// classify converts a collaborator error into a parse error
func classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	kind := ErrorSyntax
	switch {
	case errors.Is(err, generator.ErrValueRange),
		errors.Is(err, progressive.ErrInvalidGrowth):
		kind = ErrorRange
	case errors.Is(err, progressive.ErrInvalidTarget),
		errors.Is(err, progressive.ErrEmptyBase),
		errors.Is(err, generator.ErrUnknownTransformer):
		kind = ErrorState
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}
