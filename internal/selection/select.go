package selection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/parsing"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// lowCoverageThreshold triggers a low-confidence warning
const lowCoverageThreshold = 0.5

// Selector scores vault content against a job and builds a draft resume
type Selector struct {
	client  llm.Completer
	scorer  Scorer
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Selector
type Option func(*Selector)

// WithScorer replaces the default LexicalScorer
func WithScorer(scorer Scorer) Option {
	return func(s *Selector) { s.scorer = scorer }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records selection coverage
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// WithClock fixes the clock used for dates and recency
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// NewSelector creates a Selector. client is used for requirement parsing.
func NewSelector(client llm.Completer, opts ...Option) *Selector {
	s := &Selector{
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = &LexicalScorer{Now: s.now}
	}
	return s
}

// SelectContentForJob parses the job's requirements with one completion
// call and selects vault content against them. An empty vault is not an
// error: the result has zero coverage and every requirement unmatched.
func (s *Selector) SelectContentForJob(ctx context.Context, job *types.JobPosting, vaultItems []types.ContentItem, cfg Config) (*types.SelectionResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reqs, err := parsing.ParseRequirements(ctx, s.client, job)
	if err != nil {
		return nil, err
	}

	return s.SelectWithRequirements(ctx, reqs, vaultItems, cfg)
}

// SelectWithRequirements runs selection against already parsed requirements
func (s *Selector) SelectWithRequirements(ctx context.Context, reqs *types.ParsedRequirements, vaultItems []types.ContentItem, cfg Config) (*types.SelectionResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = &types.ParsedRequirements{}
	}

	result := &types.SelectionResult{
		Requirements:  reqs,
		SelectedItems: []types.ScoredItem{},
		GroupedItems: types.GroupedItems{
			Jobs:            []types.ScoredItem{},
			Accomplishments: []types.ScoredItem{},
			Skills:          []types.ScoredItem{},
			Education:       []types.ScoredItem{},
		},
		Warnings: []string{},
	}

	if len(reqs.Requirements) == 0 {
		result.Warnings = append(result.Warnings, "job posting produced no parsed requirements; relevance scores are not meaningful")
	}
	if len(vaultItems) == 0 {
		result.Warnings = append(result.Warnings, "vault is empty; nothing to select")
		result.CoverageScore, result.UnmatchedRequirements = ComputeCoverage(nil, reqs.Requirements)
		s.metrics.ObserveSelection(result.CoverageScore)
		return result, nil
	}

	selectable, indexes := selectableItems(vaultItems)
	scored, err := s.scorer.ScoreItems(ctx, selectable, reqs)
	if err != nil {
		return nil, &Error{Message: "failed to score vault items", Cause: err}
	}
	if len(scored) != len(selectable) {
		return nil, &Error{Message: fmt.Sprintf("scorer returned %d scores for %d items", len(scored), len(selectable))}
	}
	liftJobScores(scored)

	now := s.now()
	byID := indexByID(vaultItems)
	cands := make([]candidate, 0, len(scored))
	for i, si := range scored {
		if si.RelevanceScore < cfg.MinRelevanceScore {
			continue
		}
		cands = append(cands, candidate{
			scored: si,
			date:   itemDate(&scored[i].Item, byID, now),
			index:  indexes[i],
		})
	}
	s.logger.Debug("Scored vault items",
		zap.Int("items", len(selectable)),
		zap.Int("above_threshold", len(cands)),
		zap.Float64("min_relevance_score", cfg.MinRelevanceScore),
	)

	if len(cands) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no vault items scored at or above the minimum relevance score %.2f", cfg.MinRelevanceScore))
	}

	result.GroupedItems = group(cands, byID, cfg)
	g := result.GroupedItems
	result.SelectedItems = append(result.SelectedItems, g.Jobs...)
	result.SelectedItems = append(result.SelectedItems, g.Accomplishments...)
	result.SelectedItems = append(result.SelectedItems, g.Skills...)
	result.SelectedItems = append(result.SelectedItems, g.Education...)

	result.CoverageScore, result.UnmatchedRequirements = ComputeCoverage(result.SelectedItems, reqs.Requirements)
	result.DraftResume = RenderDraft(&result.GroupedItems, vaultItems, now)
	result.Warnings = append(result.Warnings, typeWarnings(reqs, &result.GroupedItems)...)
	if len(reqs.Requirements) > 0 && result.CoverageScore < lowCoverageThreshold {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("low requirement coverage: %.0f%% of requirements matched", result.CoverageScore*100))
	}

	s.metrics.ObserveSelection(result.CoverageScore)
	s.logger.Info("Selected vault content",
		zap.Int("selected", len(result.SelectedItems)),
		zap.Float64("coverage", result.CoverageScore),
		zap.Int("unmatched", len(result.UnmatchedRequirements)),
	)
	return result, nil
}

// selectableItems drops job attribute items and returns the vault index of
// each remaining item
func selectableItems(items []types.ContentItem) ([]types.ContentItem, []int) {
	out := make([]types.ContentItem, 0, len(items))
	indexes := make([]int, 0, len(items))
	for i, item := range items {
		if item.Type.IsJobAttribute() || !item.Type.Valid() {
			continue
		}
		out = append(out, item)
		indexes = append(indexes, i)
	}
	return out, indexes
}

// liftJobScores raises each job entry to at least its best child
// accomplishment, since a job is selected for what was done in it
func liftJobScores(scored []types.ScoredItem) {
	best := make(map[string]int)
	for i, si := range scored {
		if si.Item.Type != types.ContentAccomplishment || si.Item.ParentID == "" {
			continue
		}
		if j, ok := best[si.Item.ParentID]; !ok || si.RelevanceScore > scored[j].RelevanceScore {
			best[si.Item.ParentID] = i
		}
	}

	for i := range scored {
		si := &scored[i]
		if si.Item.Type != types.ContentJobEntry {
			continue
		}
		j, ok := best[si.Item.ID]
		if !ok || scored[j].RelevanceScore <= si.RelevanceScore {
			continue
		}
		si.RelevanceScore = scored[j].RelevanceScore
		si.Rationale = fmt.Sprintf("%s; lifted by accomplishment %s", si.Rationale, scored[j].Item.ID)
	}
}

func indexByID(items []types.ContentItem) map[string]*types.ContentItem {
	byID := make(map[string]*types.ContentItem, len(items))
	for i := range items {
		if items[i].ID != "" {
			byID[items[i].ID] = &items[i]
		}
	}
	return byID
}

// group ranks candidates per type and applies the caps. Accomplishments are
// ordered by their parent job's rank; those pointing at an unselected job
// are dropped, and those without a resolvable parent come last.
func group(cands []candidate, byID map[string]*types.ContentItem, cfg Config) types.GroupedItems {
	var jobs, accomplishments, skills, education []candidate
	for _, c := range cands {
		switch c.scored.Item.Type {
		case types.ContentJobEntry:
			jobs = append(jobs, c)
		case types.ContentAccomplishment:
			accomplishments = append(accomplishments, c)
		case types.ContentSkill:
			skills = append(skills, c)
		case types.ContentEducation, types.ContentCertification:
			education = append(education, c)
		}
	}

	rankCandidates(jobs)
	rankCandidates(accomplishments)
	rankCandidates(skills)
	rankCandidates(education)

	jobs = capCandidates(jobs, cfg.MaxJobs)

	byParent := make(map[string][]candidate)
	var parentless []candidate
	for _, c := range accomplishments {
		parentID := c.scored.Item.ParentID
		if parent, ok := byID[parentID]; parentID != "" && ok && parent.Type == types.ContentJobEntry {
			byParent[parentID] = append(byParent[parentID], c)
			continue
		}
		parentless = append(parentless, c)
	}

	var orderedAccomplishments []candidate
	for _, job := range jobs {
		children := capCandidates(byParent[job.scored.Item.ID], cfg.MaxAccomplishmentsPerJob)
		orderedAccomplishments = append(orderedAccomplishments, children...)
	}
	orderedAccomplishments = append(orderedAccomplishments, capCandidates(parentless, cfg.MaxAccomplishmentsPerJob)...)

	return types.GroupedItems{
		Jobs:            scoredItems(jobs),
		Accomplishments: scoredItems(orderedAccomplishments),
		Skills:          scoredItems(capCandidates(skills, cfg.MaxSkills)),
		Education:       scoredItems(capCandidates(education, cfg.MaxEducation)),
	}
}

// typeWarnings flags requirement types that have no selected evidence of
// the matching content type
func typeWarnings(reqs *types.ParsedRequirements, g *types.GroupedItems) []string {
	var warnings []string
	checks := []struct {
		reqType types.RequirementType
		count   int
		section string
	}{
		{types.RequirementSkill, len(g.Skills), "skills"},
		{types.RequirementExperience, len(g.Jobs), "jobs"},
		{types.RequirementEducation, len(g.Education), "education"},
	}
	for _, c := range checks {
		if reqs.HasType(c.reqType) && c.count == 0 {
			warnings = append(warnings,
				fmt.Sprintf("job lists %s requirements but no %s items were selected", c.reqType, c.section))
		}
	}
	return warnings
}
