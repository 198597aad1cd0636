// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// JobMetadata is the typed view of a job_entry's metadata
type JobMetadata struct {
	Company   string `mapstructure:"company"`
	Title     string `mapstructure:"title"`
	Location  string `mapstructure:"location"`
	StartDate string `mapstructure:"startdate"`
	EndDate   string `mapstructure:"enddate"`
	Current   bool   `mapstructure:"current"`
}

// SkillMetadata is the typed view of a skill's metadata
type SkillMetadata struct {
	Proficiency       string  `mapstructure:"proficiency"`
	YearsOfExperience float64 `mapstructure:"yearsofexperience"`
}

// EducationMetadata is the typed view of education and certification metadata
type EducationMetadata struct {
	Institution string `mapstructure:"institution"`
	Degree      string `mapstructure:"degree"`
	Field       string `mapstructure:"field"`
	StartDate   string `mapstructure:"startdate"`
	EndDate     string `mapstructure:"enddate"`
}

// JobMetadata decodes the item's metadata as job metadata.
// Keys are matched ignoring case, underscores and hyphens, so both
// "start_date" and "startDate" populate StartDate.
func (c *ContentItem) JobMetadata() (JobMetadata, error) {
	var md JobMetadata
	err := decodeMetadata(c.Metadata, &md)
	return md, err
}

// SkillMetadata decodes the item's metadata as skill metadata
func (c *ContentItem) SkillMetadata() (SkillMetadata, error) {
	var md SkillMetadata
	err := decodeMetadata(c.Metadata, &md)
	return md, err
}

// EducationMetadata decodes the item's metadata as education metadata
func (c *ContentItem) EducationMetadata() (EducationMetadata, error) {
	var md EducationMetadata
	err := decodeMetadata(c.Metadata, &md)
	return md, err
}

// DateRange returns the start and end dates found in the item's metadata.
// An end date of "present" or a current flag resolves to now. Zero times
// are returned for missing or unparseable dates.
func (c *ContentItem) DateRange(now time.Time) (start, end time.Time) {
	var md struct {
		StartDate string `mapstructure:"startdate"`
		EndDate   string `mapstructure:"enddate"`
		Current   bool   `mapstructure:"current"`
	}
	if err := decodeMetadata(c.Metadata, &md); err != nil {
		return time.Time{}, time.Time{}
	}

	start, _ = ParseDate(md.StartDate, now)
	if md.Current {
		end = now
	} else {
		end, _ = ParseDate(md.EndDate, now)
	}
	return start, end
}

// dateLayouts are tried in order when parsing vault dates
var dateLayouts = []string{"2006-01-02", "2006-01", "2006", "Jan 2006", "January 2006", "01/2006"}

// ParseDate parses the date formats used in vault metadata.
// "present", "current" and "now" resolve to now.
func ParseDate(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	switch strings.ToLower(value) {
	case "present", "current", "now":
		return now, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func decodeMetadata(metadata map[string]any, out any) error {
	if len(metadata) == 0 {
		return nil
	}

	normalized := make(map[string]any, len(metadata))
	for key, value := range metadata {
		normalized[normalizeMetadataKey(key)] = value
	}

	// Nested {"date_range": {"start": ..., "end": ...}} flattens into the
	// start/end fields unless they are set directly.
	if dateRange, ok := normalized["daterange"].(map[string]any); ok {
		for key, value := range dateRange {
			switch normalizeMetadataKey(key) {
			case "start", "startdate":
				if _, set := normalized["startdate"]; !set {
					normalized["startdate"] = value
				}
			case "end", "enddate":
				if _, set := normalized["enddate"]; !set {
					normalized["enddate"] = value
				}
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata decoder: %w", err)
	}
	if err := decoder.Decode(normalized); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	return nil
}

func normalizeMetadataKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}
