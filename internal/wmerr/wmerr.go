// Package wmerr defines the error taxonomy shared by the fetch, command and
// refresh paths. Callers classify failures with errors.As or KindOf rather
// than by matching message text.
package wmerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for reporting.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindParse       Kind = "parse"
	KindValidation  Kind = "validation"
	KindCommand     Kind = "command"
	KindUnavailable Kind = "unavailable"
	KindUnknown     Kind = "unknown"
)

// ErrManagerUnavailable is reported when the probe finds no responsive
// window manager. It is user-actionable: start yabai and retry.
var ErrManagerUnavailable = errors.New("window manager unreachable")

// TransportError means the external process could not be run, exited
// non-zero, or did not finish before its deadline.
type TransportError struct {
	Args     []string
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	cmd := strings.Join(e.Args, " ")
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out", cmd)
	case e.Stderr != "":
		return fmt.Sprintf("%s: exit %d: %s", cmd, e.ExitCode, e.Stderr)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", cmd, e.Err)
	default:
		return fmt.Sprintf("%s: exit %d", cmd, e.ExitCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the process produced output that violates the expected
// schema.
type ParseError struct {
	Query  string // windows, displays or spaces
	Index  int    // record index, -1 for the document itself
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("query %s: %s", e.Query, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("query %s: record %d: %s", e.Query, e.Index, e.Reason)
	}
	return fmt.Sprintf("query %s: record %d: field %q: %s", e.Query, e.Index, e.Field, e.Reason)
}

// ValidationError is caller input rejected before any external call.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// CommandError is a mutating request the manager did not accept.
type CommandError struct {
	Kind    string // focus, move, rotate, profile, ...
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is one of the two fetch failure variants.
func IsFetchError(err error) bool {
	var te *TransportError
	var pe *ParseError
	return errors.As(err, &te) || errors.As(err, &pe)
}

// KindOf classifies err. CommandError wins over the transport error it wraps.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		ce *CommandError
		ve *ValidationError
		pe *ParseError
		te *TransportError
	)
	switch {
	case errors.Is(err, ErrManagerUnavailable):
		return KindUnavailable
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindCommand
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindUnknown
	}
}
