package committee

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/parsing"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Input is what the Committee reviews
type Input struct {
	Draft        string
	Job          *types.JobPosting
	Requirements *types.ParsedRequirements
	// Selection is optional; its unmatched requirements are flagged in prompts
	Selection *types.SelectionResult
}

// Observer receives each completed round
type Observer func(round types.CommitteeRound)

// Committee runs the Advocate, Critic and Writer loop against a Completer
type Committee struct {
	client   llm.Completer
	logger   *zap.Logger
	metrics  *metrics.Metrics
	observer Observer
}

// Option configures a Committee
type Option func(*Committee)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Committee) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records rounds, termination reasons and fit improvement
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Committee) { c.metrics = m }
}

// WithObserver registers a callback invoked after every round
func WithObserver(observer Observer) Option {
	return func(c *Committee) { c.observer = observer }
}

// NewCommittee creates a Committee
func NewCommittee(client llm.Completer, opts ...Option) *Committee {
	c := &Committee{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run iterates review rounds over the draft until decideTermination stops
// the loop. Any role failure aborts the run with a RoundError and no result.
func (c *Committee) Run(ctx context.Context, in Input, cfg Config) (*types.CommitteeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Draft) == "" {
		return nil, &llm.InvalidRequestError{Message: "committee draft is empty"}
	}

	rc := roundContext{requirements: formatRequirements(in.Requirements, in.Selection)}
	if in.Job != nil {
		jobText, err := parsing.BuildJobText(in.Job)
		if err != nil {
			return nil, err
		}
		rc.job = jobText
	}

	state := StateInit
	resume := in.Draft
	var rounds []types.CommitteeRound
	var reason types.TerminationReason

	for n := 1; ; n++ {
		state = c.transition(state, StateAdvocating, n)
		if err := ctx.Err(); err != nil {
			return nil, &RoundError{Round: n, Role: RoleAdvocate, Cause: err}
		}
		adv, advModel, err := c.advocate(ctx, rc, resume, rounds, cfg)
		if err != nil {
			return nil, &RoundError{Round: n, Role: RoleAdvocate, Cause: err}
		}

		state = c.transition(state, StateCritiquing, n)
		if err := ctx.Err(); err != nil {
			return nil, &RoundError{Round: n, Role: RoleCritic, Cause: err}
		}
		crit, critModel, err := c.critic(ctx, rc, resume, adv, cfg)
		if err != nil {
			return nil, &RoundError{Round: n, Role: RoleCritic, Cause: err}
		}

		state = c.transition(state, StateWriting, n)
		if err := ctx.Err(); err != nil {
			return nil, &RoundError{Round: n, Role: RoleWriter, Cause: err}
		}
		revised, writerModel, err := c.writer(ctx, rc, resume, adv, crit, cfg)
		if err != nil {
			return nil, &RoundError{Round: n, Role: RoleWriter, Cause: err}
		}

		round := types.CommitteeRound{
			Number:        n,
			Advocate:      adv,
			Critic:        crit,
			RevisedResume: revised,
			AdvocateModel: advModel,
			CriticModel:   critModel,
			WriterModel:   writerModel,
		}
		if n > 1 {
			round.Improvement = crit.FitScore - rounds[n-2].Critic.FitScore
		}
		rounds = append(rounds, round)
		resume = revised

		c.logger.Info("Committee round complete",
			zap.Int("round", n),
			zap.Float64("advocate_fit", adv.FitScore),
			zap.Float64("critic_fit", crit.FitScore),
			zap.Float64("improvement", round.Improvement),
			zap.Int("challenges", len(crit.Challenges)),
		)
		if c.observer != nil {
			c.observer(round)
		}

		var done bool
		if reason, done = decideTermination(rounds, cfg); done {
			c.transition(state, StateTerminated, n)
			break
		}
		state = c.transition(state, StateContinue, n)
	}

	result := &types.CommitteeResult{
		Rounds:            len(rounds),
		RoundHistory:      rounds,
		InitialFit:        rounds[0].Critic.FitScore,
		FinalFit:          rounds[len(rounds)-1].Critic.FitScore,
		TerminationReason: reason,
		FinalResume:       resume,
		FitHistory:        make([]float64, 0, len(rounds)),
	}
	result.Improvement = result.FinalFit - result.InitialFit
	for _, r := range rounds {
		result.FitHistory = append(result.FitHistory, r.Critic.FitScore)
	}

	c.metrics.ObserveCommittee(result.Rounds, string(reason), result.Improvement)
	c.logger.Info("Committee finished",
		zap.Int("rounds", result.Rounds),
		zap.String("termination_reason", string(reason)),
		zap.Float64("initial_fit", result.InitialFit),
		zap.Float64("final_fit", result.FinalFit),
	)
	return result, nil
}

func (c *Committee) transition(from, to State, round int) State {
	c.logger.Debug("Committee state transition",
		zap.Int("round", round),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return to
}

// Summary renders a short summary for progress output
func Summary(result *types.CommitteeResult) string {
	if result == nil {
		return "committee skipped"
	}
	return fmt.Sprintf("%d round(s), fit %.2f -> %.2f (%s)",
		result.Rounds, result.InitialFit, result.FinalFit, result.TerminationReason)
}
