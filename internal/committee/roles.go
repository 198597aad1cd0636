package committee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Sampling temperatures per role
const (
	assessTemperature = 0.2
	writerTemperature = 0.4
)

// roundContext is the per-run text shared by every role prompt
type roundContext struct {
	job          string
	requirements string
}

// advocateReply and criticReply decode fit_score as a pointer so a reply
// that omits it is rejected instead of read as 0
type advocateReply struct {
	types.AdvocateAssessment
	FitScore *float64 `json:"fit_score"`
}

type criticReply struct {
	types.CriticAssessment
	FitScore *float64 `json:"fit_score"`
}

// call sends one role prompt and returns the raw reply and the model that served it
func (c *Committee) call(ctx context.Context, role Role, user string, temperature float64, cfg Config) (string, string, error) {
	tier := cfg.Tier(role)
	req := llm.UserPrompt(prompts.MustGet("committee.json", string(role)+"-system"), user, tier)
	req.Temperature = &temperature

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		return "", "", err
	}
	model := resp.Model
	if model == "" {
		model = c.client.Model(tier)
	}
	return resp.Content, model, nil
}

func (c *Committee) advocate(ctx context.Context, rc roundContext, resume string, history []types.CommitteeRound, cfg Config) (types.AdvocateAssessment, string, error) {
	user := prompts.Format(prompts.MustGet("committee.json", "advocate-user"), map[string]string{
		"Job":          rc.job,
		"Requirements": rc.requirements,
		"Resume":       resume,
		"History":      formatHistory(history),
	})

	content, model, err := c.call(ctx, RoleAdvocate, user, assessTemperature, cfg)
	if err != nil {
		return types.AdvocateAssessment{}, "", err
	}

	var out advocateReply
	if err := llm.ParseJSONResponse(content, &out); err != nil {
		return types.AdvocateAssessment{}, "", err
	}
	if out.FitScore == nil {
		return types.AdvocateAssessment{}, "", llm.NewMalformedResponse("advocate reply has no fit_score", content, nil)
	}
	out.AdvocateAssessment.FitScore = *out.FitScore
	return normalizeAdvocate(out.AdvocateAssessment), model, nil
}

func (c *Committee) critic(ctx context.Context, rc roundContext, resume string, adv types.AdvocateAssessment, cfg Config) (types.CriticAssessment, string, error) {
	user := prompts.Format(prompts.MustGet("committee.json", "critic-user"), map[string]string{
		"Job":          rc.job,
		"Requirements": rc.requirements,
		"Resume":       resume,
		"Advocate":     toJSON(adv),
	})

	content, model, err := c.call(ctx, RoleCritic, user, assessTemperature, cfg)
	if err != nil {
		return types.CriticAssessment{}, "", err
	}

	var out criticReply
	if err := llm.ParseJSONResponse(content, &out); err != nil {
		return types.CriticAssessment{}, "", err
	}
	if out.FitScore == nil {
		return types.CriticAssessment{}, "", llm.NewMalformedResponse("critic reply has no fit_score", content, nil)
	}
	out.CriticAssessment.FitScore = *out.FitScore
	return normalizeCritic(out.CriticAssessment), model, nil
}

func (c *Committee) writer(ctx context.Context, rc roundContext, resume string, adv types.AdvocateAssessment, crit types.CriticAssessment, cfg Config) (string, string, error) {
	user := prompts.Format(prompts.MustGet("committee.json", "writer-user"), map[string]string{
		"Job":      rc.job,
		"Resume":   resume,
		"Advocate": toJSON(adv),
		"Critic":   toJSON(crit),
	})

	content, model, err := c.call(ctx, RoleWriter, user, writerTemperature, cfg)
	if err != nil {
		return "", "", err
	}

	revised := strings.TrimSpace(llm.StripCodeFence(content))
	if revised == "" {
		return "", "", llm.NewMalformedResponse("writer returned an empty resume", content, nil)
	}
	return revised, model, nil
}

// percentFloor is the smallest value read as a 0-100 score; anything
// below it is an overshoot of the 0-1 scale and is clamped
const percentFloor = 2

// NormalizeFit maps a fit score reported on a 0-100 scale onto [0,1] and clamps
func NormalizeFit(v float64) float64 {
	if v >= percentFloor && v <= 100 {
		v /= 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var knownStrengths = map[types.ConnectionStrength]bool{
	types.StrengthStrong:       true,
	types.StrengthModerate:     true,
	types.StrengthInferred:     true,
	types.StrengthTransferable: true,
}

var knownChallenges = map[types.ChallengeType]bool{
	types.ChallengeOverclaim:      true,
	types.ChallengeUnsupported:    true,
	types.ChallengeMissing:        true,
	types.ChallengeWeakEvidence:   true,
	types.ChallengeTerminologyGap: true,
	types.ChallengeBlandification: true,
}

var knownSeverities = map[types.Severity]bool{
	types.SeverityCritical: true,
	types.SeverityMajor:    true,
	types.SeverityMinor:    true,
}

// label lowercases a model-supplied enum value and joins words with underscores
func label(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func normalizeAdvocate(a types.AdvocateAssessment) types.AdvocateAssessment {
	a.FitScore = NormalizeFit(a.FitScore)
	for i := range a.Connections {
		conn := &a.Connections[i]
		conn.Strength = types.ConnectionStrength(label(string(conn.Strength)))
		if !knownStrengths[conn.Strength] {
			conn.Strength = types.StrengthModerate
		}
		conn.Confidence = NormalizeFit(conn.Confidence)
	}
	if a.Connections == nil {
		a.Connections = []types.Connection{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.ReframingOpportunities == nil {
		a.ReframingOpportunities = []types.Reframing{}
	}
	return a
}

func normalizeCritic(c types.CriticAssessment) types.CriticAssessment {
	c.FitScore = NormalizeFit(c.FitScore)
	for i := range c.Challenges {
		ch := &c.Challenges[i]
		ch.Type = types.ChallengeType(label(string(ch.Type)))
		if !knownChallenges[ch.Type] {
			ch.Type = types.ChallengeWeakEvidence
		}
		ch.Severity = types.Severity(label(string(ch.Severity)))
		if !knownSeverities[ch.Severity] {
			ch.Severity = types.SeverityMinor
		}
	}
	if c.Agreements == nil {
		c.Agreements = []string{}
	}
	if c.Challenges == nil {
		c.Challenges = []types.Challenge{}
	}
	if c.ValidatedStrengths == nil {
		c.ValidatedStrengths = []string{}
	}
	if c.GenuineGaps == nil {
		c.GenuineGaps = []types.Gap{}
	}
	return c
}

// formatHistory summarizes the previous round's critique for the Advocate
func formatHistory(rounds []types.CommitteeRound) string {
	if len(rounds) == 0 {
		return ""
	}
	last := rounds[len(rounds)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nFeedback from round %d (the draft above already reflects the Writer's revision):\n", last.Number)
	fmt.Fprintf(&sb, "Advocate fit score: %.2f\nCritic fit score: %.2f\n", last.Advocate.FitScore, last.Critic.FitScore)
	if len(last.Critic.Challenges) > 0 {
		sb.WriteString("Critic challenges:\n")
		for _, ch := range last.Critic.Challenges {
			fmt.Fprintf(&sb, "- [%s %s] %s: %s\n", ch.Severity, ch.Type, ch.Claim, ch.Reason)
		}
	}
	if len(last.Critic.GenuineGaps) > 0 {
		sb.WriteString("Genuine gaps:\n")
		for _, gap := range last.Critic.GenuineGaps {
			required := "soft"
			if gap.HardRequired {
				required = "hard"
			}
			fmt.Fprintf(&sb, "- %s (%s requirement)\n", gap.Requirement, required)
		}
	}
	return sb.String()
}

// formatRequirements lists parsed requirements and flags those the
// selection could not cover
func formatRequirements(reqs *types.ParsedRequirements, selection *types.SelectionResult) string {
	if reqs == nil && selection != nil {
		reqs = selection.Requirements
	}
	if reqs == nil || len(reqs.Requirements) == 0 {
		return "Not specified"
	}

	unmatched := make(map[string]bool)
	if selection != nil {
		for _, r := range selection.UnmatchedRequirements {
			unmatched[r.Text] = true
		}
	}

	var sb strings.Builder
	for _, r := range reqs.Requirements {
		fmt.Fprintf(&sb, "- %s (%s, %s)", r.Text, r.Type, r.Importance)
		if unmatched[r.Text] {
			sb.WriteString(" [no matching vault content]")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
