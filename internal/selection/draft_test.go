package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func scoredByID(vault []types.ContentItem, ids ...string) []types.ScoredItem {
	out := make([]types.ScoredItem, 0, len(ids))
	for _, id := range ids {
		for _, item := range vault {
			if item.ID == id {
				out = append(out, types.ScoredItem{Item: item})
			}
		}
	}
	return out
}

func TestRenderDraft(t *testing.T) {
	vault := sampleVault()
	vault[len(vault)-1].Metadata = map[string]any{"institution": "TU Berlin"}
	g := &types.GroupedItems{
		Jobs:            scoredByID(vault, "job-1"),
		Accomplishments: scoredByID(vault, "acc-1", "acc-2"),
		Skills:          scoredByID(vault, "skill-1", "skill-2"),
		Education:       scoredByID(vault, "edu-1"),
	}

	want := "# Resume\n" +
		"\n## Experience\n" +
		"\n### Senior Software Engineer | Acme Data\n" +
		"*Berlin | Jan 2019 to Present*\n" +
		"Senior Software Engineer at Acme Data\n" +
		"- Led a team of five engineers to rebuild the ingestion platform\n" +
		"- Built a Python-based pipeline processing 2TB of events daily\n" +
		"\n## Skills\n" +
		"Python, Photoshop\n" +
		"\n## Education\n" +
		"- B.S. Computer Science, TU Berlin\n"

	assert.Equal(t, want, RenderDraft(g, vault, fixedNow))
}

func TestRenderDraft_AttributeItems(t *testing.T) {
	vault := []types.ContentItem{
		{ID: "j", Type: types.ContentJobEntry, Content: "Globex"},
		{ID: "t", Type: types.ContentJobTitle, Content: "Staff Engineer", ParentID: "j"},
		{ID: "l", Type: types.ContentJobLocation, Content: "Remote", ParentID: "j"},
		{ID: "d", Type: types.ContentJobDuration, Content: "2 years", ParentID: "j"},
	}
	g := &types.GroupedItems{Jobs: scoredByID(vault, "j")}

	assert.Equal(t,
		"# Resume\n\n## Experience\n\n### Staff Engineer\n*Remote | 2 years*\nGlobex\n",
		RenderDraft(g, vault, fixedNow))
}

func TestRenderDraft_JobWithoutID(t *testing.T) {
	g := &types.GroupedItems{
		Jobs:            []types.ScoredItem{{Item: types.ContentItem{Type: types.ContentJobEntry, Content: "Globex"}}},
		Accomplishments: []types.ScoredItem{{Item: types.ContentItem{Type: types.ContentAccomplishment, Content: "Shipped the billing rewrite"}}},
	}

	assert.Equal(t,
		"# Resume\n\n## Experience\n\n### Globex\n\n## Additional Accomplishments\n- Shipped the billing rewrite\n",
		RenderDraft(g, nil, fixedNow))
}

func TestRenderDraft_Empty(t *testing.T) {
	assert.Equal(t, "# Resume\n", RenderDraft(&types.GroupedItems{}, nil, fixedNow))
}

func TestRenderDraft_Pure(t *testing.T) {
	vault := sampleVault()
	g := &types.GroupedItems{
		Jobs:            scoredByID(vault, "job-1"),
		Accomplishments: scoredByID(vault, "acc-2"),
	}
	assert.Equal(t, RenderDraft(g, vault, fixedNow), RenderDraft(g, vault, fixedNow))
}

func TestFormatDates(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{"range", map[string]any{"start_date": "2016-03", "end_date": "2018-11"}, "Mar 2016 to Nov 2018"},
		{"current flag", map[string]any{"start_date": "2021", "current": true}, "Jan 2021 to Present"},
		{"nested range", map[string]any{"date_range": map[string]any{"start": "2015-05", "end": "2017-02"}}, "May 2015 to Feb 2017"},
		{"start only", map[string]any{"start_date": "2022-07"}, "Jul 2022"},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := types.ContentItem{Type: types.ContentJobEntry, Metadata: tt.metadata}
			assert.Equal(t, tt.want, formatDates(&item, fixedNow))
		})
	}
}
