// Package assert reports broken caller contracts inside the search engine.
//
// The mode decision code has no recoverable error surface: an empty candidate
// set or an out-of-range depth is a programming error in the caller, so the
// checks here panic with a stack trace instead of returning an error.
package assert

import (
	"fmt"
	"runtime/debug"
)

// That panics with the formatted message and the current stack when cond is
// false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic("assertion failed: " + fmt.Sprintf(format, args...) + "\n" + string(debug.Stack()))
	}
}
