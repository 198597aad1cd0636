// Package pipeline provides the high-level orchestration of an optimization run:
// requirement parsing and content selection followed by the review committee.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/committee"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/selection"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Config holds per-run settings for both stages
type Config struct {
	Selector  selection.Config `json:"selector"`
	Committee committee.Config `json:"committee"`
	// SkipCommittee returns the Selector's draft as the final resume
	SkipCommittee bool `json:"skip_committee"`
	// FailOnCommitteeError returns a StageError instead of falling back to the draft
	FailOnCommitteeError bool `json:"fail_on_committee_error"`
}

// DefaultConfig returns the default settings for both stages
func DefaultConfig() Config {
	return Config{
		Selector:  selection.DefaultConfig(),
		Committee: committee.DefaultConfig(),
	}
}

// Orchestrator wires the Selector's output into the Committee
type Orchestrator struct {
	client   llm.Completer
	selector *selection.Selector
	logger   *zap.Logger
	metrics  *metrics.Metrics
	progress ProgressCallback

	selectorOpts []selection.Option
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger for the orchestrator and both stages
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records selection and committee metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProgress registers a callback for progress events
func WithProgress(callback ProgressCallback) Option {
	return func(o *Orchestrator) { o.progress = callback }
}

// WithSelectorOptions passes options through to the Selector, e.g. a
// different scorer or a fixed clock
func WithSelectorOptions(opts ...selection.Option) Option {
	return func(o *Orchestrator) { o.selectorOpts = append(o.selectorOpts, opts...) }
}

// NewOrchestrator creates an Orchestrator around a shared Completer
func NewOrchestrator(client llm.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	selectorOpts := append([]selection.Option{
		selection.WithLogger(o.logger),
		selection.WithMetrics(o.metrics),
	}, o.selectorOpts...)
	o.selector = selection.NewSelector(client, selectorOpts...)
	return o
}

// SelectContentForJob runs the selection stage alone
func (o *Orchestrator) SelectContentForJob(ctx context.Context, job *types.JobPosting, vaultItems []types.ContentItem, cfg selection.Config) (*types.SelectionResult, error) {
	return o.selector.SelectContentForJob(ctx, job, vaultItems, cfg)
}

// BuildOptimizedResume selects vault content for the job and refines the
// draft with the Committee. A committee failure falls back to the draft
// unless cfg.FailOnCommitteeError is set; cancellation is always returned.
func (o *Orchestrator) BuildOptimizedResume(ctx context.Context, job *types.JobPosting, vaultItems []types.ContentItem, cfg Config) (*types.PipelineResult, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := o.logger.With(zap.String("run_id", runID))

	o.emit(runID, StepSelection, CategorySelection,
		fmt.Sprintf("Selecting from %d vault items", len(vaultItems)), nil)

	sel, err := o.selector.SelectContentForJob(ctx, job, vaultItems, cfg.Selector)
	if err != nil {
		return nil, &StageError{Stage: StageSelector, Cause: err}
	}
	o.emit(runID, StepSelection, CategorySelection,
		fmt.Sprintf("Selected %d items covering %.0f%% of requirements", len(sel.SelectedItems), sel.CoverageScore*100), sel)

	result := &types.PipelineResult{
		RunID:       runID,
		Job:         job,
		Selection:   sel,
		FinalResume: sel.DraftResume,
		Warnings:    append([]string{}, sel.Warnings...),
		Metrics: types.PipelineMetrics{
			VaultItemsConsidered: len(vaultItems),
			ItemsSelected:        len(sel.SelectedItems),
			RequirementsCoverage: sel.CoverageScore,
			InitialFitEstimate:   sel.CoverageScore,
			FinalFit:             sel.CoverageScore,
		},
	}

	if cfg.SkipCommittee {
		logger.Info("Committee skipped")
	} else if err := o.runCommittee(ctx, runID, job, sel, cfg, result); err != nil {
		return nil, err
	}

	result.Metrics.ProcessingTimeMs = time.Since(start).Milliseconds()
	o.emit(runID, StepComplete, CategoryResult,
		fmt.Sprintf("Final fit %.2f (initial estimate %.2f)", result.Metrics.FinalFit, result.Metrics.InitialFitEstimate), result.Metrics)
	logger.Info("Optimization run complete",
		zap.Int("items_selected", result.Metrics.ItemsSelected),
		zap.Float64("coverage", result.Metrics.RequirementsCoverage),
		zap.Float64("final_fit", result.Metrics.FinalFit),
		zap.Int64("processing_time_ms", result.Metrics.ProcessingTimeMs),
	)
	return result, nil
}

// runCommittee fills the committee fields of result, or records the
// failure when falling back to the draft
func (o *Orchestrator) runCommittee(ctx context.Context, runID string, job *types.JobPosting, sel *types.SelectionResult, cfg Config, result *types.PipelineResult) error {
	o.emit(runID, StepCommittee, CategoryCommittee, "Starting committee review", nil)

	c := committee.NewCommittee(o.client,
		committee.WithLogger(o.logger.With(zap.String("run_id", runID))),
		committee.WithMetrics(o.metrics),
		committee.WithObserver(func(round types.CommitteeRound) {
			o.emit(runID, StepCommitteeRound, CategoryCommittee,
				fmt.Sprintf("Round %d: advocate %.2f, critic %.2f", round.Number, round.Advocate.FitScore, round.Critic.FitScore), round)
		}),
	)

	cr, err := c.Run(ctx, committee.Input{
		Draft:        sel.DraftResume,
		Job:          job,
		Requirements: sel.Requirements,
		Selection:    sel,
	}, cfg.Committee)
	if err != nil {
		// A timeout inside one provider call still falls back; only the
		// caller's own cancellation or deadline aborts the run.
		if cfg.FailOnCommitteeError || ctx.Err() != nil {
			return &StageError{Stage: StageCommittee, Cause: err}
		}
		o.logger.Warn("Committee failed; returning selector draft",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		result.CommitteeError = err.Error()
		result.Warnings = append(result.Warnings, fmt.Sprintf("committee failed, returning the selection draft: %v", err))
		return nil
	}

	result.Committee = cr
	result.FinalResume = cr.FinalResume
	result.Metrics.FinalFit = cr.FinalFit
	o.emit(runID, StepCommittee, CategoryCommittee, committee.Summary(cr), cr)
	return nil
}

func (o *Orchestrator) emit(runID, step, category, message string, content any) {
	if o.progress == nil {
		return
	}
	o.progress(ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		RunID:    runID,
		Content:  content,
	})
}
