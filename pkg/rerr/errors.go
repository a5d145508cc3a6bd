// Package rerr defines the typed error kinds raised by the record-merging
// engine (see the error-handling design in the project specification).
// Each kind is its own struct, following the same one-struct-per-failure
// pattern the rest of this codebase's domain errors use, rather than a
// single sentinel + errors.Is/wrap chain.
package rerr

import (
	"fmt"
	"io"

	pkgerrors "github.com/pingcap/errors"
)

// UnknownColumnError is raised whenever an operation references a column
// name absent from a Records' schema.
type UnknownColumnError struct {
	Column string
	Op     string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("%s: unknown column %q", e.Op, e.Column)
}

// NewUnknownColumn builds an UnknownColumnError.
func NewUnknownColumn(op, column string) *UnknownColumnError {
	return &UnknownColumnError{Op: op, Column: column}
}

// DuplicateColumnError is raised when construction or extension of a
// Columns collection would introduce a repeated name.
type DuplicateColumnError struct {
	Column string
	Op     string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: duplicate column %q", e.Op, e.Column)
}

// NewDuplicateColumn builds a DuplicateColumnError.
func NewDuplicateColumn(op, column string) *DuplicateColumnError {
	return &DuplicateColumnError{Op: op, Column: column}
}

// LengthMismatchError is raised when AppendColumn is given a values slice
// whose length differs from the row count of the target Records.
type LengthMismatchError struct {
	Op       string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: length mismatch, expected %d values, got %d", e.Op, e.Expected, e.Actual)
}

// NewLengthMismatch builds a LengthMismatchError.
func NewLengthMismatch(op string, expected, actual int) *LengthMismatchError {
	return &LengthMismatchError{Op: op, Expected: expected, Actual: actual}
}

// OutOfRangeError is raised when a row index is beyond the row count of a
// Records.
type OutOfRangeError struct {
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("row index %d out of range (len=%d)", e.Index, e.Len)
}

// NewOutOfRange builds an OutOfRangeError.
func NewOutOfRange(index, length int) *OutOfRangeError {
	return &OutOfRangeError{Index: index, Len: length}
}

// InvalidHowError is raised when a merge mode falls outside the set that
// merge accepts.
type InvalidHowError struct {
	How     string
	Allowed []string
}

func (e *InvalidHowError) Error() string {
	return fmt.Sprintf("invalid how %q, allowed: %v", e.How, e.Allowed)
}

// NewInvalidHow builds an InvalidHowError.
func NewInvalidHow(how string, allowed ...string) *InvalidHowError {
	return &InvalidHowError{How: how, Allowed: allowed}
}

// ProgrammerError represents an assertion-class invariant violation: code
// inside this package found itself in a state the public API should have
// made unreachable (e.g. a rename colliding with an existing column after
// precondition checks already passed). It is fatal by convention — callers
// that see one should treat it like a panic recovered for diagnostics,
// not a recoverable condition to branch on.
type ProgrammerError struct {
	Message string
	stack   error
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("programmer error: %s", e.Message)
}

// Format implements fmt.Formatter: "%+v" prints the stack captured at the
// point the invariant broke, the way the teacher's optimizer/parser layers
// annotate internal errors with github.com/pingcap/errors.
func (e *ProgrammerError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), e.stack)
		return
	}
	io.WriteString(s, e.Error())
}

// NewProgrammerError builds a ProgrammerError, capturing a stack trace at
// the call site via github.com/pingcap/errors.
func NewProgrammerError(format string, args ...interface{}) *ProgrammerError {
	msg := fmt.Sprintf(format, args...)
	return &ProgrammerError{Message: msg, stack: pkgerrors.AddStack(pkgerrors.New(msg))}
}

// Panic raises a ProgrammerError as a panic, for invariant checks that have
// no sane recovery path inside a single-threaded synchronous operation.
func Panic(format string, args ...interface{}) {
	panic(NewProgrammerError(format, args...))
}
