package selection

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultLLMScorerConcurrency bounds in-flight scoring calls
const DefaultLLMScorerConcurrency = 4

// LLMScorer asks the model to judge each item's relevance with one
// lite-tier call per item. Scores depend on model output and are not
// deterministic unless the gateway cache serves them.
type LLMScorer struct {
	client      llm.Completer
	concurrency int
}

// NewLLMScorer creates a model-backed scorer. concurrency <= 0 uses the default.
func NewLLMScorer(client llm.Completer, concurrency int) *LLMScorer {
	if concurrency <= 0 {
		concurrency = DefaultLLMScorerConcurrency
	}
	return &LLMScorer{client: client, concurrency: concurrency}
}

type llmScoreResponse struct {
	Score     *float64 `json:"score"`
	Rationale string   `json:"rationale"`
}

// ScoreItems scores items concurrently. The first failure cancels the rest
// and is returned.
func (s *LLMScorer) ScoreItems(ctx context.Context, items []types.ContentItem, reqs *types.ParsedRequirements) ([]types.ScoredItem, error) {
	scored := make([]types.ScoredItem, len(items))
	if len(items) == 0 {
		return scored, nil
	}

	requirements := formatRequirements(reqs)
	system := prompts.MustGet("selection.json", "score-item-system")
	template := prompts.MustGet("selection.json", "score-item-user")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range items {
		item := items[i]
		g.Go(func() error {
			user := prompts.Format(template, map[string]string{
				"Requirements": requirements,
				"ItemType":     string(item.Type),
				"Content":      item.Content,
				"Tags":         strings.Join(item.Tags, ", "),
			})

			resp, err := s.client.Complete(gctx, llm.UserPrompt(system, user, llm.TierLite))
			if err != nil {
				return &Error{Message: fmt.Sprintf("failed to score item %s", item.ID), Cause: err}
			}

			var out llmScoreResponse
			if err := llm.ParseJSONResponse(resp.Content, &out); err != nil {
				return &Error{Message: fmt.Sprintf("failed to parse score for item %s", item.ID), Cause: err}
			}
			if out.Score == nil {
				return &Error{
					Message: fmt.Sprintf("failed to parse score for item %s", item.ID),
					Cause:   llm.NewMalformedResponse("score reply has no score", resp.Content, nil),
				}
			}

			scored[i] = types.ScoredItem{
				Item:           item,
				RelevanceScore: normalizeScore(*out.Score),
				Rationale:      strings.TrimSpace(out.Rationale),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

// normalizeScore maps percentages onto [0,1] and clamps. Values below 2
// are an overshoot of the 0-1 scale, not percentages.
func normalizeScore(v float64) float64 {
	if v >= 2 && v <= 100 {
		v /= 100
	}
	return clamp01(v)
}

// formatRequirements renders requirements as a bullet list for prompts
func formatRequirements(reqs *types.ParsedRequirements) string {
	if reqs == nil || len(reqs.Requirements) == 0 {
		return "Not specified"
	}
	var sb strings.Builder
	for _, r := range reqs.Requirements {
		fmt.Fprintf(&sb, "- %s (%s, %s)\n", r.Text, r.Type, r.Importance)
	}
	return strings.TrimRight(sb.String(), "\n")
}
