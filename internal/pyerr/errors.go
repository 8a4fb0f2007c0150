// Package pyerr defines the error taxonomy for sandboxed Python calls.
// Every failure a call can produce is one of a small set of kinds, so
// callers can tell "my script failed" apart from "the sandbox broke"
// without string matching.
package pyerr

import (
	"errors"
	"fmt"

	"github.com/outflow-labs/pysandbox/internal/codes"
)

type Kind string

const (
	// KindConfig: interpreter path missing or invalid. No resources were
	// created and no process was spawned.
	KindConfig Kind = "config"
	// KindSetup: temp directory/file creation or permission hardening
	// failed, or the process could not be started.
	KindSetup Kind = "setup"
	// KindTimeout: the bounded wait was exceeded and the process was
	// forcibly killed.
	KindTimeout Kind = "timeout"
	// KindExit: the process terminated within the bound but with a
	// non-zero status.
	KindExit Kind = "exit"
	// KindProtocol: the response could not be decoded into the expected
	// structure, or a required field was missing.
	KindProtocol Kind = "protocol"
	// KindScript: the sandboxed script itself reported a fault.
	KindScript Kind = "script"
	// KindEval: the sandboxed expression evaluation reported a fault.
	KindEval Kind = "eval"
)

type Error struct {
	Code       string
	Kind       Kind
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e == nil {
		return "python sandbox error"
	}
	if e.Code == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Underlying
}

func CodeForKind(kind Kind) string {
	switch kind {
	case KindConfig:
		return codes.Config
	case KindSetup:
		return codes.Setup
	case KindTimeout:
		return codes.Timeout
	case KindExit:
		return codes.Exit
	case KindProtocol:
		return codes.Protocol
	case KindScript:
		return codes.Script
	case KindEval:
		return codes.Eval
	default:
		return codes.Protocol
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Code: CodeForKind(kind), Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{Code: CodeForKind(kind), Kind: kind, Message: message, Underlying: err}
}

func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsKind reports whether err is a sandbox error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
