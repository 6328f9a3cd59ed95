package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks a request the handlers rejected before calling the
// service.
var ErrBadRequest = errors.New("bad request")

var (
	errMissingKey    = errors.New("missing lever key")
	errMissingGameID = errors.New("missing game id")
	errMissingTeamID = errors.New("missing team id")
)

// opError records the handler operation that failed together with an error
// kind that callers can match with errors.Is.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *opError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// Wrap annotates err with op, keeping err as the kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, kind: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return &opError{op: op, kind: kind, err: err}
}
