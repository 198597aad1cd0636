package selection

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/types"
)

func newTestSelector(client llm.Completer, opts ...Option) *Selector {
	return NewSelector(client, append([]Option{WithClock(clock)}, opts...)...)
}

func TestSelectContentForJob_PythonLeadership(t *testing.T) {
	client := llmtest.Replies(pythonLeadershipJSON)
	selector := newTestSelector(client)

	result, err := selector.SelectContentForJob(context.Background(), pythonLeadershipJob(), sampleVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"job-1"}, itemIDs(result.GroupedItems.Jobs))
	assert.ElementsMatch(t, []string{"acc-1", "acc-2"}, itemIDs(result.GroupedItems.Accomplishments))

	unmatched := requirementTexts(result.UnmatchedRequirements)
	assert.NotContains(t, unmatched, "Python")
	assert.NotContains(t, unmatched, "Leadership")

	assert.Equal(t, 1, client.Calls(), "requirement parsing is the only model call")
	assert.Contains(t, result.DraftResume, "Led a team of five engineers")
	assert.Contains(t, result.DraftResume, "## Skills\nPython")
}

func TestSelectWithRequirements_Scores(t *testing.T) {
	selector := newTestSelector(nil)

	result, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), sampleVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"job-1"}, itemIDs(result.GroupedItems.Jobs))
	assert.Equal(t, []string{"acc-1", "acc-2"}, itemIDs(result.GroupedItems.Accomplishments))
	assert.Equal(t, []string{"skill-1"}, itemIDs(result.GroupedItems.Skills))
	assert.Empty(t, result.GroupedItems.Education)

	assert.Equal(t, []string{"job-1", "acc-1", "acc-2", "skill-1"}, itemIDs(result.SelectedItems))

	job := result.GroupedItems.Jobs[0]
	leadership := result.GroupedItems.Accomplishments[0]
	assert.Equal(t, leadership.RelevanceScore, job.RelevanceScore, "job inherits its best accomplishment's score")
	assert.Contains(t, job.Rationale, "lifted by accomplishment acc-1")

	assert.InDelta(t, 2.0/3.0, result.CoverageScore, 1e-9)
	assert.Equal(t, []string{"5+ years of experience"}, requirementTexts(result.UnmatchedRequirements))
	assert.Empty(t, result.Warnings)
}

func TestSelectWithRequirements_Determinism(t *testing.T) {
	selector := newTestSelector(nil)
	vault := sampleVault()
	for i := 0; i < 6; i++ {
		vault = append(vault, types.ContentItem{
			ID:      fmt.Sprintf("py-%d", i),
			Type:    types.ContentSkill,
			Content: "Python",
		})
	}

	first, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), vault, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), vault, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, first.GroupedItems, again.GroupedItems)
		assert.Equal(t, first.DraftResume, again.DraftResume)
	}

	// equal scores fall back to vault order
	assert.Equal(t, []string{"skill-1", "py-0", "py-1", "py-2", "py-3", "py-4", "py-5"}, itemIDs(first.GroupedItems.Skills))
}

// largeVault builds jobs, each with several accomplishments, plus skills
func largeVault(jobs, perJob, skills int) []types.ContentItem {
	var vault []types.ContentItem
	for j := 0; j < jobs; j++ {
		jobID := fmt.Sprintf("job-%d", j)
		vault = append(vault, types.ContentItem{
			ID:      jobID,
			Type:    types.ContentJobEntry,
			Content: fmt.Sprintf("Engineer at Company %d", j),
			Metadata: map[string]any{
				"start_date": fmt.Sprintf("%d-01", 2010+j),
				"end_date":   fmt.Sprintf("%d-12", 2011+j),
			},
		})
		for a := 0; a < perJob; a++ {
			content := "Organized team offsites"
			if a%2 == 0 {
				content = "Led Python migration for the billing team"
			}
			vault = append(vault, types.ContentItem{
				ID:       fmt.Sprintf("%s-acc-%d", jobID, a),
				Type:     types.ContentAccomplishment,
				Content:  content,
				ParentID: jobID,
			})
		}
	}
	for s := 0; s < skills; s++ {
		content := "Python"
		if s%3 == 0 {
			content = "Watercolor painting"
		}
		vault = append(vault, types.ContentItem{ID: fmt.Sprintf("skill-%d", s), Type: types.ContentSkill, Content: content})
	}
	return vault
}

func TestSelectWithRequirements_FilteringAndCaps(t *testing.T) {
	selector := newTestSelector(nil)
	configs := []Config{
		DefaultConfig(),
		{MaxJobs: 1, MaxSkills: 2, MaxAccomplishmentsPerJob: 1, MaxEducation: 1, MinRelevanceScore: 0.5},
		{MaxJobs: 5, MaxSkills: 30, MaxAccomplishmentsPerJob: 10, MinRelevanceScore: 0},
		{MaxJobs: 2, MaxSkills: 4, MaxAccomplishmentsPerJob: 2, MinRelevanceScore: 0.9},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("%+v", cfg), func(t *testing.T) {
			result, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), largeVault(6, 5, 12), cfg)
			require.NoError(t, err)

			for _, si := range result.SelectedItems {
				assert.GreaterOrEqual(t, si.RelevanceScore, cfg.MinRelevanceScore, si.Item.ID)
				assert.LessOrEqual(t, si.RelevanceScore, 1.0)
			}

			g := result.GroupedItems
			assert.LessOrEqual(t, len(g.Jobs), cfg.MaxJobs)
			assert.LessOrEqual(t, len(g.Skills), cfg.MaxSkills)
			if cfg.MaxEducation > 0 {
				assert.LessOrEqual(t, len(g.Education), cfg.MaxEducation)
			}

			selectedJobs := make(map[string]bool)
			for _, j := range g.Jobs {
				selectedJobs[j.Item.ID] = true
			}
			perParent := make(map[string]int)
			for _, a := range g.Accomplishments {
				assert.True(t, selectedJobs[a.Item.ParentID], "accomplishment %s kept without its job", a.Item.ID)
				perParent[a.Item.ParentID]++
			}
			for parent, n := range perParent {
				assert.LessOrEqual(t, n, cfg.MaxAccomplishmentsPerJob, parent)
			}
		})
	}
}

func TestSelectWithRequirements_RecencyBreaksTies(t *testing.T) {
	selector := newTestSelector(nil)
	cfg := DefaultConfig()
	cfg.MaxJobs = 2

	result, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), largeVault(4, 2, 0), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"job-3", "job-2"}, itemIDs(result.GroupedItems.Jobs))
	assert.Equal(t, []string{"job-3-acc-0", "job-2-acc-0"}, itemIDs(result.GroupedItems.Accomplishments))
}

func TestSelectWithRequirements_ParentlessAccomplishments(t *testing.T) {
	selector := newTestSelector(nil)
	vault := []types.ContentItem{
		{ID: "a1", Type: types.ContentAccomplishment, Content: "Led a Python guild"},
		{ID: "a2", Type: types.ContentAccomplishment, Content: "Led Python workshops", ParentID: "missing-job"},
	}

	result, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), vault, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2"}, itemIDs(result.GroupedItems.Accomplishments))
	assert.Contains(t, result.DraftResume, "## Additional Accomplishments")
	assert.Contains(t, result.Warnings, "job lists experience requirements but no jobs items were selected")
}

func TestSelectWithRequirements_EmptyVault(t *testing.T) {
	selector := newTestSelector(nil)
	reqs := pythonLeadershipRequirements()

	result, err := selector.SelectWithRequirements(context.Background(), reqs, nil, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.CoverageScore)
	assert.Equal(t, reqs.Requirements, result.UnmatchedRequirements)
	assert.Empty(t, result.SelectedItems)
	assert.NotNil(t, result.SelectedItems)
	assert.Contains(t, result.Warnings, "vault is empty; nothing to select")
}

func TestSelectWithRequirements_EmptyRequirements(t *testing.T) {
	selector := newTestSelector(nil)

	result, err := selector.SelectWithRequirements(context.Background(), &types.ParsedRequirements{}, sampleVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.CoverageScore)
	assert.Empty(t, result.UnmatchedRequirements)
	assert.Empty(t, result.SelectedItems)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "no parsed requirements")
	assert.Contains(t, result.Warnings[1], "minimum relevance score")
}

func TestSelectWithRequirements_EverythingFiltered(t *testing.T) {
	selector := newTestSelector(nil)
	cfg := DefaultConfig()
	cfg.MinRelevanceScore = 1

	result, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), sampleVault(), cfg)
	require.NoError(t, err)

	assert.Empty(t, result.SelectedItems)
	assert.Equal(t, 0.0, result.CoverageScore)
	assert.Len(t, result.UnmatchedRequirements, 3)
	assert.Contains(t, result.Warnings, "no vault items scored at or above the minimum relevance score 1.00")
	assert.Contains(t, result.Warnings, "low requirement coverage: 0% of requirements matched")
}

func TestSelectContentForJob_InvalidConfig(t *testing.T) {
	client := &llmtest.MockCompleter{}
	selector := newTestSelector(client)

	bad := []Config{
		{MaxJobs: 0, MaxSkills: 1, MaxAccomplishmentsPerJob: 1},
		{MaxJobs: 1, MaxSkills: -1, MaxAccomplishmentsPerJob: 1},
		{MaxJobs: 1, MaxSkills: 1, MaxAccomplishmentsPerJob: 1, MinRelevanceScore: 1.5},
		{MaxJobs: 1, MaxSkills: 1, MaxAccomplishmentsPerJob: 1, MaxEducation: -2},
	}
	for _, cfg := range bad {
		_, err := selector.SelectContentForJob(context.Background(), pythonLeadershipJob(), sampleVault(), cfg)
		var invalid *llm.InvalidRequestError
		assert.ErrorAs(t, err, &invalid, "%+v", cfg)
	}
	assert.Equal(t, 0, client.Calls())
}

func TestSelectContentForJob_ParserErrorPropagates(t *testing.T) {
	client := &llmtest.MockCompleter{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, &llm.ProviderError{Provider: llm.ProviderOpenAI, StatusCode: 500}
		},
	}
	selector := newTestSelector(client)

	_, err := selector.SelectContentForJob(context.Background(), pythonLeadershipJob(), sampleVault(), DefaultConfig())

	var providerErr *llm.ProviderError
	assert.ErrorAs(t, err, &providerErr)
}

// failingScorer always fails
type failingScorer struct{ err error }

func (f failingScorer) ScoreItems(ctx context.Context, items []types.ContentItem, reqs *types.ParsedRequirements) ([]types.ScoredItem, error) {
	return nil, f.err
}

func TestSelectWithRequirements_ScorerError(t *testing.T) {
	cause := errors.New("scoring backend down")
	selector := newTestSelector(nil, WithScorer(failingScorer{err: cause}))

	_, err := selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), sampleVault(), DefaultConfig())

	var selErr *Error
	require.ErrorAs(t, err, &selErr)
	assert.ErrorIs(t, err, cause)
}

func TestSelectWithRequirements_RecordsCoverageMetric(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	selector := newTestSelector(nil, WithMetrics(m))

	_, err = selector.SelectWithRequirements(context.Background(), pythonLeadershipRequirements(), sampleVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.SelectorCovered))
}

func TestComputeCoverage_Formula(t *testing.T) {
	reqs := pythonLeadershipRequirements().Requirements
	items := []types.ScoredItem{
		{Item: types.ContentItem{Type: types.ContentSkill, Content: "Python"}},
		{Item: types.ContentItem{Type: types.ContentSkill, Content: "Leadership"}},
	}

	for n := 0; n <= len(items); n++ {
		coverage, unmatched := ComputeCoverage(items[:n], reqs)
		assert.InDelta(t, 1-float64(len(unmatched))/float64(len(reqs)), coverage, 1e-9)
	}

	coverage, unmatched := ComputeCoverage(items, nil)
	assert.Equal(t, 0.0, coverage)
	assert.Empty(t, unmatched)
}
