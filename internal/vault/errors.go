package vault

import "fmt"

// Error represents a failure reading the vault
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vault %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("vault %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
