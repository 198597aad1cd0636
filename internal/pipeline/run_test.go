package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/committee"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/llm/llmtest"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/selection"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

const requirementsJSON = `{
	"themes": ["Data platform"],
	"seniority_level": "senior",
	"requirements": [
		{"text": "Python", "type": "skill", "importance": "must-have"},
		{"text": "5+ years of experience", "type": "experience", "importance": "must-have"},
		{"text": "Leadership", "type": "soft-skill", "importance": "must-have"}
	]
}`

func testJob() *types.JobPosting {
	return &types.JobPosting{
		Title:        "Senior Data Engineer",
		Company:      "Initech",
		Description:  "Lead our data platform team.",
		Requirements: []string{"Python", "5+ years of experience", "Leadership"},
	}
}

func testVault() []types.ContentItem {
	return []types.ContentItem{
		{
			ID:       "job-1",
			Type:     types.ContentJobEntry,
			Content:  "Senior Software Engineer at Acme Data",
			Metadata: map[string]any{"company": "Acme Data", "title": "Senior Software Engineer", "start_date": "2019-01", "end_date": "present"},
		},
		{ID: "acc-1", Type: types.ContentAccomplishment, Content: "Led a team of five engineers", ParentID: "job-1"},
		{ID: "acc-2", Type: types.ContentAccomplishment, Content: "Built a Python pipeline", ParentID: "job-1"},
		{ID: "skill-1", Type: types.ContentSkill, Content: "Python"},
	}
}

// fakeModel answers requirement parsing and committee prompts by system prompt
type fakeModel struct {
	criticScores []float64
	failRole     committee.Role
	// failErr replaces the default provider error for failRole
	failErr      error

	mu     sync.Mutex
	rounds map[string]int
}

func (f *fakeModel) completer() *llmtest.MockCompleter {
	f.rounds = make(map[string]int)
	system := func(file, key string) string { return prompts.MustGet(file, key) }
	return &llmtest.MockCompleter{
		CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			f.mu.Lock()
			defer f.mu.Unlock()

			switch req.SystemPrompt {
			case system("requirements.json", "system"):
				return &llm.Response{Content: requirementsJSON}, nil
			case system("committee.json", "advocate-system"):
				if f.failRole == committee.RoleAdvocate {
					return nil, f.roleErr()
				}
				return &llm.Response{Content: `{"fit_score": 0.95}`}, nil
			case system("committee.json", "critic-system"):
				if f.failRole == committee.RoleCritic {
					return nil, f.roleErr()
				}
				n := f.rounds["critic"]
				f.rounds["critic"]++
				return &llm.Response{Content: fmt.Sprintf(`{"fit_score": %v}`, f.criticScores[n])}, nil
			case system("committee.json", "writer-system"):
				f.rounds["writer"]++
				return &llm.Response{Content: fmt.Sprintf("# Revised Resume %d", f.rounds["writer"])}, nil
			}
			return nil, errors.New("unexpected prompt")
		},
	}
}

func (f *fakeModel) roleErr() error {
	if f.failErr != nil {
		return f.failErr
	}
	return &llm.ProviderError{Provider: llm.ProviderGemini, StatusCode: 500}
}

func newTestOrchestrator(client llm.Completer, opts ...Option) *Orchestrator {
	opts = append(opts, WithSelectorOptions(selection.WithClock(func() time.Time { return fixedNow })))
	return NewOrchestrator(client, opts...)
}

func TestBuildOptimizedResume(t *testing.T) {
	model := &fakeModel{criticScores: []float64{0.7, 0.9}}
	client := model.completer()
	var events []ProgressEvent
	o := newTestOrchestrator(client, WithProgress(func(e ProgressEvent) { events = append(events, e) }))

	result, err := o.BuildOptimizedResume(context.Background(), testJob(), testVault(), DefaultConfig())
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)

	sel := result.Selection
	require.NotNil(t, sel)
	assert.Len(t, sel.GroupedItems.Jobs, 1)
	assert.InDelta(t, 2.0/3.0, sel.CoverageScore, 1e-9)

	require.NotNil(t, result.Committee)
	assert.Equal(t, types.TerminationTargetReached, result.Committee.TerminationReason)
	assert.Equal(t, "# Revised Resume 2", result.FinalResume)
	assert.Empty(t, result.CommitteeError)

	m := result.Metrics
	assert.Equal(t, 4, m.VaultItemsConsidered)
	assert.Equal(t, len(sel.SelectedItems), m.ItemsSelected)
	assert.Equal(t, sel.CoverageScore, m.RequirementsCoverage)
	assert.Equal(t, sel.CoverageScore, m.InitialFitEstimate)
	assert.InDelta(t, 0.9, m.FinalFit, 1e-9)
	assert.GreaterOrEqual(t, m.ProcessingTimeMs, int64(0))

	assert.Equal(t, 1+3*2, client.Calls())

	var steps []string
	for _, e := range events {
		assert.Equal(t, result.RunID, e.RunID)
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []string{
		StepSelection, StepSelection,
		StepCommittee, StepCommitteeRound, StepCommitteeRound, StepCommittee,
		StepComplete,
	}, steps)
}

func TestBuildOptimizedResume_SkipCommittee(t *testing.T) {
	model := &fakeModel{}
	client := model.completer()
	cfg := DefaultConfig()
	cfg.SkipCommittee = true

	result, err := newTestOrchestrator(client).BuildOptimizedResume(context.Background(), testJob(), testVault(), cfg)
	require.NoError(t, err)

	assert.Nil(t, result.Committee)
	assert.Equal(t, result.Selection.DraftResume, result.FinalResume)
	assert.Equal(t, result.Metrics.InitialFitEstimate, result.Metrics.FinalFit)
	assert.Equal(t, 1, client.Calls())
}

func TestBuildOptimizedResume_CommitteeFallback(t *testing.T) {
	model := &fakeModel{failRole: committee.RoleCritic}
	client := model.completer()

	result, err := newTestOrchestrator(client).BuildOptimizedResume(context.Background(), testJob(), testVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Nil(t, result.Committee)
	assert.Equal(t, result.Selection.DraftResume, result.FinalResume)
	assert.Equal(t, result.Metrics.InitialFitEstimate, result.Metrics.FinalFit)
	assert.Contains(t, result.CommitteeError, "critic failed")
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "committee failed")
}

func TestBuildOptimizedResume_ProviderTimeoutFallsBack(t *testing.T) {
	model := &fakeModel{
		failRole: committee.RoleAdvocate,
		failErr:  &llm.ProviderError{Provider: llm.ProviderOpenAI, Cause: context.DeadlineExceeded},
	}

	result, err := newTestOrchestrator(model.completer()).BuildOptimizedResume(context.Background(), testJob(), testVault(), DefaultConfig())
	require.NoError(t, err)

	assert.Nil(t, result.Committee)
	assert.Equal(t, result.Selection.DraftResume, result.FinalResume)
	assert.Contains(t, result.CommitteeError, "advocate failed")
	assert.Contains(t, result.CommitteeError, "deadline exceeded")
}

func TestBuildOptimizedResume_FailOnCommitteeError(t *testing.T) {
	model := &fakeModel{failRole: committee.RoleAdvocate}
	cfg := DefaultConfig()
	cfg.FailOnCommitteeError = true

	result, err := newTestOrchestrator(model.completer()).BuildOptimizedResume(context.Background(), testJob(), testVault(), cfg)

	assert.Nil(t, result)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageCommittee, stageErr.Stage)
	var roundErr *committee.RoundError
	require.ErrorAs(t, err, &roundErr)
	assert.Equal(t, committee.RoleAdvocate, roundErr.Role)
}

func TestBuildOptimizedResume_SelectorFailure(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		client := &llmtest.MockCompleter{
			CompleteFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
				return nil, &llm.ProviderError{Provider: llm.ProviderOpenAI, StatusCode: 429}
			},
		}

		_, err := newTestOrchestrator(client).BuildOptimizedResume(context.Background(), testJob(), testVault(), DefaultConfig())

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageSelector, stageErr.Stage)
		var providerErr *llm.ProviderError
		assert.ErrorAs(t, err, &providerErr)
	})

	t.Run("invalid config", func(t *testing.T) {
		client := &llmtest.MockCompleter{}
		cfg := DefaultConfig()
		cfg.Selector.MaxJobs = 0

		_, err := newTestOrchestrator(client).BuildOptimizedResume(context.Background(), testJob(), testVault(), cfg)

		var invalid *llm.InvalidRequestError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, 0, client.Calls())
	})
}

func TestBuildOptimizedResume_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := &fakeModel{criticScores: []float64{0.5, 0.6, 0.7}}
	client := model.completer()
	o := newTestOrchestrator(client, WithProgress(func(e ProgressEvent) {
		if e.Step == StepCommittee {
			cancel()
		}
	}))

	_, err := o.BuildOptimizedResume(ctx, testJob(), testVault(), DefaultConfig())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageCommittee, stageErr.Stage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectContentForJob(t *testing.T) {
	model := &fakeModel{}
	client := model.completer()

	sel, err := newTestOrchestrator(client).SelectContentForJob(context.Background(), testJob(), testVault(), selection.DefaultConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, sel.SelectedItems)
	assert.Equal(t, 1, client.Calls())
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := &StageError{Stage: StageSelector, Cause: cause}
	assert.Equal(t, "selector stage failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "committee stage failed", (&StageError{Stage: StageCommittee}).Error())
}
