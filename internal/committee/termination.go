package committee

import (
	"math"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// scoreEpsilon absorbs float error when comparing fit gaps to thresholds
const scoreEpsilon = 1e-9

// decideTermination inspects the completed rounds and reports whether the
// loop stops, checking in order: target reached, consensus, round budget,
// then two consecutive non-improving rounds. Round 1 can neither reach
// consensus nor count toward no improvement.
func decideTermination(rounds []types.CommitteeRound, cfg Config) (types.TerminationReason, bool) {
	n := len(rounds)
	if n == 0 {
		return "", false
	}
	last := rounds[n-1]

	if last.Critic.FitScore >= cfg.TargetFit {
		return types.TerminationTargetReached, true
	}
	if n >= 2 && math.Abs(last.Advocate.FitScore-last.Critic.FitScore) <= cfg.ConsensusThreshold+scoreEpsilon {
		return types.TerminationConsensus, true
	}
	if n >= cfg.MaxRounds {
		return types.TerminationMaxRounds, true
	}
	if n >= 3 && rounds[n-1].Improvement <= 0 && rounds[n-2].Improvement <= 0 {
		return types.TerminationNoImprovement, true
	}
	return "", false
}
