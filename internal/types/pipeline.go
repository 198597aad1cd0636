// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// PipelineMetrics summarizes a pipeline run
type PipelineMetrics struct {
	VaultItemsConsidered int     `json:"vault_items_considered"`
	ItemsSelected        int     `json:"items_selected"`
	RequirementsCoverage float64 `json:"requirements_coverage"`
	InitialFitEstimate   float64 `json:"initial_fit_estimate"`
	FinalFit             float64 `json:"final_fit"`
	ProcessingTimeMs     int64   `json:"processing_time_ms"`
}

// PipelineResult is the final output of an optimization run
type PipelineResult struct {
	RunID       string           `json:"run_id"`
	Job         *JobPosting      `json:"job"`
	Selection   *SelectionResult `json:"selection"`
	Committee   *CommitteeResult `json:"committee,omitempty"`
	FinalResume string           `json:"final_resume"`
	Metrics     PipelineMetrics  `json:"metrics"`
	Warnings    []string         `json:"warnings,omitempty"`
	// CommitteeError holds the committee failure when the run fell back
	// to the Selector's draft
	CommitteeError string `json:"committee_error,omitempty"`
}
