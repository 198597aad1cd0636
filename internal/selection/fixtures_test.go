package selection

import (
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// pythonLeadershipRequirements is the parsed form of a posting asking for
// Python, 5+ years and leadership
func pythonLeadershipRequirements() *types.ParsedRequirements {
	return &types.ParsedRequirements{
		Themes: []string{"Data platform"},
		Requirements: []types.Requirement{
			{Text: "Python", Type: types.RequirementSkill, Importance: types.ImportanceMustHave},
			{Text: "5+ years of experience", Type: types.RequirementExperience, Importance: types.ImportanceMustHave},
			{Text: "Leadership", Type: types.RequirementSoftSkill, Importance: types.ImportanceMustHave},
		},
	}
}

const pythonLeadershipJSON = `{
	"themes": ["Data platform"],
	"domain": null,
	"seniority_level": "senior",
	"requirements": [
		{"text": "Python", "type": "skill", "importance": "must-have"},
		{"text": "5+ years of experience", "type": "experience", "importance": "must-have"},
		{"text": "Leadership", "type": "soft-skill", "importance": "must-have"}
	]
}`

func pythonLeadershipJob() *types.JobPosting {
	return &types.JobPosting{
		Title:        "Senior Data Engineer",
		Company:      "Initech",
		Description:  "Lead our data platform team.",
		Requirements: []string{"Python", "5+ years of experience", "Leadership"},
	}
}

func sampleVault() []types.ContentItem {
	return []types.ContentItem{
		{
			ID:      "job-1",
			Type:    types.ContentJobEntry,
			Content: "Senior Software Engineer at Acme Data",
			Metadata: map[string]any{
				"company":    "Acme Data",
				"title":      "Senior Software Engineer",
				"location":   "Berlin",
				"start_date": "2019-01",
				"end_date":   "present",
			},
		},
		{ID: "title-1", Type: types.ContentJobTitle, Content: "Senior Software Engineer", ParentID: "job-1"},
		{
			ID:       "acc-1",
			Type:     types.ContentAccomplishment,
			Content:  "Led a team of five engineers to rebuild the ingestion platform",
			ParentID: "job-1",
		},
		{
			ID:       "acc-2",
			Type:     types.ContentAccomplishment,
			Content:  "Built a Python-based pipeline processing 2TB of events daily",
			ParentID: "job-1",
		},
		{ID: "skill-1", Type: types.ContentSkill, Content: "Python", Tags: []string{"backend"}},
		{ID: "skill-2", Type: types.ContentSkill, Content: "Photoshop"},
		{ID: "edu-1", Type: types.ContentEducation, Content: "B.S. Computer Science"},
	}
}

func itemIDs(items []types.ScoredItem) []string {
	ids := make([]string, 0, len(items))
	for _, si := range items {
		ids = append(ids, si.Item.ID)
	}
	return ids
}

func requirementTexts(reqs []types.Requirement) []string {
	texts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		texts = append(texts, r.Text)
	}
	return texts
}
