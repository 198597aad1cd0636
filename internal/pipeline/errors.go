package pipeline

import "fmt"

// Pipeline stages named by StageError
const (
	StageSelector  = "selector"
	StageCommittee = "committee"
)

// StageError reports which stage of a run failed
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s stage failed", e.Stage)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
