// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// JobPosting is the raw job input handed to the optimizer
type JobPosting struct {
	Title          string   `json:"title"`
	Company        string   `json:"company,omitempty"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`
}

// IsEmpty reports whether the posting carries no usable text
func (j *JobPosting) IsEmpty() bool {
	if j == nil {
		return true
	}
	if strings.TrimSpace(j.Title) != "" || strings.TrimSpace(j.Description) != "" {
		return false
	}
	for _, r := range j.Requirements {
		if strings.TrimSpace(r) != "" {
			return false
		}
	}
	for _, q := range j.Qualifications {
		if strings.TrimSpace(q) != "" {
			return false
		}
	}
	return true
}

// RequirementType classifies what kind of evidence satisfies a requirement
type RequirementType string

// Requirement types
const (
	RequirementSkill           RequirementType = "skill"
	RequirementExperience      RequirementType = "experience"
	RequirementEducation       RequirementType = "education"
	RequirementSoftSkill       RequirementType = "soft-skill"
	RequirementDomainKnowledge RequirementType = "domain-knowledge"
)

// Importance describes how strongly a posting asks for a requirement
type Importance string

// Importance levels
const (
	ImportanceMustHave   Importance = "must-have"
	ImportanceNiceToHave Importance = "nice-to-have"
	ImportanceImplicit   Importance = "implicit"
)

// Requirement is a single weighted requirement extracted from a job posting
type Requirement struct {
	Text       string          `json:"text"`
	Type       RequirementType `json:"type"`
	Importance Importance      `json:"importance"`
}

// ParsedRequirements is the structured view of a job posting's requirements.
// It is created once per pipeline run and not modified afterward.
type ParsedRequirements struct {
	Themes         []string      `json:"themes"`
	Domain         *string       `json:"domain"`
	SeniorityLevel *string       `json:"seniority_level"`
	Requirements   []Requirement `json:"requirements"`
}

// HasType reports whether any requirement is of the given type
func (p *ParsedRequirements) HasType(t RequirementType) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Requirements {
		if r.Type == t {
			return true
		}
	}
	return false
}
