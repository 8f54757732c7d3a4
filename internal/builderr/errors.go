package builderr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrNotFound is the sentinel for unresolvable registry entries.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation is the sentinel for structurally invalid requests.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrBasic is the sentinel for any other failure surfaced by a pass.
	ErrBasic = errors.New("compilation failed")
)

// Error is the structured error carried through a compilation pass.
type Error struct {
	Kind  error  // one of the sentinels above
	Op    string // the operation that failed, e.g. "reconcile.resolve"
	Msg   string
	Err   error  // underlying cause, may be nil
	Stack []byte // captured for recovered panics only
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

// Unwrap returns the underlying cause so errors.As can reach foreign errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// NotFound builds a NotFound error.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidOperation builds an InvalidOperation error.
func InvalidOperation(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidOperation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Basic wraps cause as a Basic error. Errors that already belong to the
// taxonomy are returned unchanged.
func Basic(op string, cause error) error {
	if cause == nil {
		return nil
	}
	if IsKnown(cause) {
		return cause
	}
	return &Error{Kind: ErrBasic, Op: op, Err: cause}
}

// Recovered converts a recovered panic value into a Basic error carrying the
// current goroutine stack.
func Recovered(op string, r any) error {
	var cause error
	switch v := r.(type) {
	case error:
		if IsKnown(v) {
			return v
		}
		cause = v
	default:
		cause = fmt.Errorf("panic: %v", v)
	}
	return &Error{Kind: ErrBasic, Op: op, Err: cause, Stack: debug.Stack()}
}

// IsKnown reports whether err already carries one of the taxonomy kinds.
func IsKnown(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrBasic)
}

// KindOf returns the taxonomy sentinel for err, or nil when err is foreign.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidOperation, ErrBasic} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
