// Package diagnostics holds the findings, edits and failure helpers shared by
// the analyzer and the command line
package diagnostics

import (
	"fmt"
	"os"
)

// Fatal prints a fatal error message and exits if err is not nil
func Fatal(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Fatal: %s: %v\n", msg, err)
	os.Exit(1)
}

// AssertionError is raised when an internal invariant does not hold. Unlike
// resolver failures it is never treated as an ordinary "not convertible"
// outcome.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

// Assert panics with an AssertionError if cond is false
func Assert(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(&AssertionError{Message: fmt.Sprintf(format, args...)})
}
