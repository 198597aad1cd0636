// Package selection scores vault content against parsed job requirements
// and assembles a coverage-aware draft resume.
package selection

import "fmt"

// Error represents a failure while selecting content
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
