// Package committee runs the Advocate, Critic and Writer review loop that
// iteratively revises a draft resume until the fit score converges.
package committee

import "fmt"

// RoundError reports a failed role invocation. The whole run is aborted;
// completed rounds are discarded.
type RoundError struct {
	Round int
	Role  Role
	Cause error
}

func (e *RoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("committee round %d: %s failed: %v", e.Round, e.Role, e.Cause)
	}
	return fmt.Sprintf("committee round %d: %s failed", e.Round, e.Role)
}

func (e *RoundError) Unwrap() error {
	return e.Cause
}
