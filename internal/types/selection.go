// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ScoredItem is a vault item annotated with its relevance to a job
type ScoredItem struct {
	Item           ContentItem `json:"item"`
	RelevanceScore float64     `json:"relevance_score"`
	Rationale      string      `json:"rationale"`
}

// GroupedItems partitions selected items by resume section
type GroupedItems struct {
	Jobs            []ScoredItem `json:"jobs"`
	Accomplishments []ScoredItem `json:"accomplishments"`
	Skills          []ScoredItem `json:"skills"`
	Education       []ScoredItem `json:"education"`
}

// Count returns the number of items across all groups
func (g *GroupedItems) Count() int {
	return len(g.Jobs) + len(g.Accomplishments) + len(g.Skills) + len(g.Education)
}

// SelectionResult is the Selector's output for one job
type SelectionResult struct {
	Requirements          *ParsedRequirements `json:"requirements"`
	SelectedItems         []ScoredItem        `json:"selected_items"`
	GroupedItems          GroupedItems        `json:"grouped_items"`
	CoverageScore         float64             `json:"coverage_score"`
	UnmatchedRequirements []Requirement       `json:"unmatched_requirements"`
	DraftResume           string              `json:"draft_resume"`
	Warnings              []string            `json:"warnings"`
}
