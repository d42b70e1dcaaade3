// Package errors provides the error taxonomy for csprojgen.
//
// It re-exports github.com/cockroachdb/errors for wrapping and inspection
// and adds a structured *Error carrying a Code plus the offending field or
// path, so callers can log a failure without re-deriving its context and can
// tell configuration problems apart from filesystem problems.
//
// Usage:
//
//	if err := gen.Generate(target, opts); err != nil {
//	    if errors.IsConfigError(err) {
//	        // bad name, world, or option combination
//	    }
//	}
package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New       = crdb.New
	Newf      = crdb.Newf
	Wrap      = crdb.Wrap
	Wrapf     = crdb.Wrapf
	WithStack = crdb.WithStack
)

// User-facing hints
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is = crdb.Is
	As = crdb.As
)

// Code identifies a class of failure.
type Code string

const (
	CodeInvalidIdentifier      Code = "INVALID_IDENTIFIER"
	CodeUnsupportedCombination Code = "UNSUPPORTED_COMBINATION"
	CodeIOFailure              Code = "IO_FAILURE"
	CodePartialWriteFailure    Code = "PARTIAL_WRITE_FAILURE"
)

// Error is a structured generation failure.
type Error struct {
	Code    Code
	Message string

	// Field names the offending input (e.g. "name", "world", "aot").
	Field string
	// Path is the filesystem path involved, if any.
	Path string
	// Artifact is the relative path of the artifact that failed to write.
	Artifact string
	// RolledBack lists artifacts removed or restored during rollback.
	RolledBack []string

	Underlying error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	switch {
	case e.Artifact != "":
		fmt.Fprintf(&b, " (artifact %s)", e.Artifact)
	case e.Path != "":
		fmt.Fprintf(&b, " (path %s)", e.Path)
	case e.Field != "":
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Underlying != nil {
		b.WriteString(": ")
		b.WriteString(e.Underlying.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// InvalidIdentifier reports a name that cannot be normalized.
func InvalidIdentifier(field, value string) *Error {
	msg := fmt.Sprintf("%s %q cannot be normalized to an identifier", field, value)
	if value == "" {
		msg = field + " must not be empty"
	}
	return &Error{Code: CodeInvalidIdentifier, Field: field, Message: msg}
}

// UnsupportedCombination reports an option that conflicts with the rest of the set.
func UnsupportedCombination(field, format string, args ...any) *Error {
	return &Error{
		Code:    CodeUnsupportedCombination,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IOFailure wraps a filesystem error for op on path.
func IOFailure(op, path string, err error) *Error {
	return &Error{
		Code:       CodeIOFailure,
		Path:       path,
		Message:    op + " failed",
		Underlying: err,
	}
}

// PartialWriteFailure reports that artifact could not be committed after
// others in the same batch were; rolledBack lists what was undone.
func PartialWriteFailure(artifact string, rolledBack []string, err error) *Error {
	return &Error{
		Code:       CodePartialWriteFailure,
		Artifact:   artifact,
		RolledBack: rolledBack,
		Message:    "artifact batch was not committed",
		Underlying: err,
	}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's outermost *Error carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsConfigError reports whether err stems from bad input rather than the filesystem.
func IsConfigError(err error) bool {
	c := CodeOf(err)
	return c == CodeInvalidIdentifier || c == CodeUnsupportedCombination
}

// IsIOError reports whether err stems from the filesystem.
func IsIOError(err error) bool {
	c := CodeOf(err)
	return c == CodeIOFailure || c == CodePartialWriteFailure
}
