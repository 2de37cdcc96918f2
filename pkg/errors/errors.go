package errors

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// EngineError is the interface implemented by all engine-internal errors.
// Guest-visible errors are never EngineErrors: they are values thrown
// through the vm exception channel.
type EngineError interface {
	error
	Kind() string // e.g., "Borrow", "Contract", "NotConfigurable"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// BorrowMode names the kind of borrow that was requested or held.
type BorrowMode int

const (
	BorrowShared BorrowMode = iota
	BorrowExclusive
)

func (m BorrowMode) String() string {
	if m == BorrowExclusive {
		return "exclusive"
	}
	return "shared"
}

// BorrowError reports an access to a managed object that conflicts with a
// borrow already held on the same object. It is raised as a panic by the
// checked borrow operations and returned by their Try variants.
type BorrowError struct {
	ObjectID  uint64
	Requested BorrowMode
	Held      BorrowMode
	Cause     error
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("Borrow Error: %s", e.Message())
}
func (e *BorrowError) Kind() string { return "Borrow" }
func (e *BorrowError) Message() string {
	return fmt.Sprintf("object #%d: %s borrow requested while %s borrow is held", e.ObjectID, e.Requested, e.Held)
}
func (e *BorrowError) Unwrap() error { return e.Cause }

// ContractError reports misuse of an engine API, such as an invalid
// prototype value or reusing a builder after Build.
type ContractError struct {
	Op    string
	Msg   string
	Cause error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("Contract Error in %s: %s", e.Op, e.Msg)
}
func (e *ContractError) Kind() string    { return "Contract" }
func (e *ContractError) Message() string { return e.Msg }
func (e *ContractError) Unwrap() error   { return e.Cause }
func (e *ContractError) CausedBy(cause error) *ContractError {
	e.Cause = cause
	return e
}

// NotConfigurableError is returned when a property removal targets a
// non-configurable property.
type NotConfigurableError struct {
	Key   string
	Cause error
}

func (e *NotConfigurableError) Error() string {
	return fmt.Sprintf("NotConfigurable Error: %s", e.Message())
}
func (e *NotConfigurableError) Kind() string { return "NotConfigurable" }
func (e *NotConfigurableError) Message() string {
	return fmt.Sprintf("property '%s' is non-configurable", e.Key)
}
func (e *NotConfigurableError) Unwrap() error { return e.Cause }

// --- Helpers ---

// Contract builds a ContractError for op.
func Contract(op, format string, args ...any) *ContractError {
	return &ContractError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// --- Error Reporting ---

var (
	kindColor = color.New(color.FgRed, color.Bold)
	msgColor  = color.New(color.FgWhite)
)

// DisplayErrors prints a list of engine errors to w, one per line, with the
// kind highlighted.
func DisplayErrors(w io.Writer, errs []EngineError) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		kindColor.Fprintf(w, "%s Error", err.Kind())
		fmt.Fprint(w, ": ")
		msgColor.Fprintln(w, err.Message())
		if cause := err.Unwrap(); cause != nil {
			fmt.Fprintf(w, "  caused by: %v\n", cause)
		}
	}
}
