package pipeline

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Step names carried by progress events
const (
	StepSelection      = "select_content"
	StepCommittee      = "committee"
	StepCommitteeRound = "committee_round"
	StepComplete       = "complete"
)

// Step categories
const (
	CategorySelection = "selection"
	CategoryCommittee = "committee"
	CategoryResult    = "result"
)
