package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the run must react to it.
type Kind string

const (
	// Retrieval: a remote or local file is unavailable. Retried, then fatal.
	Retrieval Kind = "retrieval"
	// Parse: a malformed line. The record is skipped.
	Parse Kind = "parse"
	// Lookup: an expected-to-be-missing key is absent. The record is dropped.
	Lookup Kind = "lookup"
	// Invariant: a key guaranteed by construction is missing. Fatal.
	Invariant Kind = "invariant"
	// EmptyResult: the run produced nothing. Fatal.
	EmptyResult Kind = "empty_result"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Retrievalf(op string, format string, args ...any) *Error {
	return New(Retrieval, op, fmt.Errorf(format, args...))
}

func Parsef(op string, format string, args ...any) *Error {
	return New(Parse, op, fmt.Errorf(format, args...))
}

func Lookupf(op string, format string, args ...any) *Error {
	return New(Lookup, op, fmt.Errorf(format, args...))
}

func Invariantf(op string, format string, args ...any) *Error {
	return New(Invariant, op, fmt.Errorf(format, args...))
}

func Empty(op string) *Error {
	return New(EmptyResult, op, errors.New("no annotations generated"))
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsFatal reports whether err must abort the run. Errors outside the
// taxonomy are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	k, ok := KindOf(err)
	if !ok {
		return true
	}
	return k != Parse && k != Lookup
}
