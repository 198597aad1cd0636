// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ContentType identifies the kind of career content stored in the vault
type ContentType string

// Content types recognized in the vault
const (
	ContentJobEntry       ContentType = "job_entry"
	ContentAccomplishment ContentType = "accomplishment"
	ContentSkill          ContentType = "skill"
	ContentEducation      ContentType = "education"
	ContentCertification  ContentType = "certification"
	ContentJobTitle       ContentType = "job_title"
	ContentJobLocation    ContentType = "job_location"
	ContentJobDuration    ContentType = "job_duration"
)

// ContentTypes lists every valid content type in display order
var ContentTypes = []ContentType{
	ContentJobEntry,
	ContentAccomplishment,
	ContentSkill,
	ContentEducation,
	ContentCertification,
	ContentJobTitle,
	ContentJobLocation,
	ContentJobDuration,
}

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	for _, known := range ContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsJobAttribute reports whether the type describes a property of a job entry
// (title, location, duration) rather than standalone content.
func (t ContentType) IsJobAttribute() bool {
	return t == ContentJobTitle || t == ContentJobLocation || t == ContentJobDuration
}

// ContentItem is an atomic unit of career content from the user's vault.
// Items are read-only to the optimizer.
type ContentItem struct {
	ID       string         `json:"id"`
	Type     ContentType    `json:"type"`
	Content  string         `json:"content"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// ParentID weakly references the owning job_entry, if any
	ParentID string `json:"parent_id,omitempty"`
}

// HasTag reports whether the item carries the tag (case-insensitive)
func (c *ContentItem) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range c.Tags {
		if strings.ToLower(strings.TrimSpace(t)) == tag {
			return true
		}
	}
	return false
}
