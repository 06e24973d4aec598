// Package ice carries internal-consistency failures.
//
// Every failure raised through this package means compiler state is broken
// and execution must not continue down the same path: a mismatched signature,
// a type that escaped its environment, a substitution list of the wrong
// shape. These are bugs in the caller, never user errors, and they travel on
// a channel deliberately separate from user diagnostics so tests can trip an
// invariant and assert on it without conflating the two.
package ice

import "fmt"

// Error is an internal compiler error. It is the only value this package
// panics with, which lets Catch distinguish invariant violations from
// unrelated runtime panics.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return "internal compiler error: " + e.Msg
}

// Newf builds an internal error without raising it. Used where the invariant
// violation is reported through an error return rather than a panic.
func Newf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Bugf raises an internal error. Callers use it for conditions that are
// unreachable when the surrounding phases are correct.
func Bugf(format string, args ...any) {
	panic(Newf(format, args...))
}

// Assertf raises an internal error when cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		Bugf(format, args...)
	}
}

// Catch runs fn and converts an internal-error panic into a returned *Error.
// Panics that are not internal errors propagate unchanged.
func Catch(fn func()) (err *Error) {
	defer func() {
		switch r := recover().(type) {
		case nil:
		case *Error:
			err = r
		default:
			panic(r)
		}
	}()
	fn()
	return nil
}
