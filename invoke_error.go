package oneshot

import (
	"errors"
	"fmt"
	"runtime"
)

// InvokeError wraps a panic recovered from a wrapped legacy function during
// attach, together with the goroutine stack trace captured at the point of
// the panic.
//
// The bridge reports it to the attaching consumer as an error signal; the
// subscription ends in [PhaseErrored]. Each attach is independent, so a
// later attach re-invokes the wrapped function fresh.
type InvokeError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

// Error returns a human-readable representation of the failure,
// including the panic value and the full stack trace.
func (e *InvokeError) Error() string {
	return fmt.Sprintf("oneshot: wrapped function panicked: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it was itself an error, nil otherwise.
func (e *InvokeError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newInvokeError(v any) *InvokeError {
	// 8 KiB is enough for most stack traces. runtime.Stack truncates
	// gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &InvokeError{
		Value: v,
		Stack: string(buf[:n]),
	}
}

// IsInvokeError reports whether err (or any error in its chain) is a
// [*InvokeError].
func IsInvokeError(err error) bool {
	if err == nil {
		return false
	}
	var ie *InvokeError
	return errors.As(err, &ie)
}

// PanicValue extracts the recovered panic value from the first
// [*InvokeError] in err's chain. Returns false if none is found.
func PanicValue(err error) (any, bool) {
	if err == nil {
		return nil, false
	}

	var ie *InvokeError
	if errors.As(err, &ie) {
		return ie.Value, true
	}
	return nil, false
}
