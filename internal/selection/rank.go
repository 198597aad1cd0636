package selection

import (
	"sort"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// candidate is a scored item with the keys used for deterministic ordering
type candidate struct {
	scored types.ScoredItem
	date   time.Time
	index  int
}

// rankCandidates sorts by score descending, then most recent date, then
// original vault order
func rankCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.scored.RelevanceScore != b.scored.RelevanceScore {
			return a.scored.RelevanceScore > b.scored.RelevanceScore
		}
		if !a.date.Equal(b.date) {
			return a.date.After(b.date)
		}
		return a.index < b.index
	})
}

// capCandidates keeps at most limit candidates; limit <= 0 keeps all
func capCandidates(cands []candidate, limit int) []candidate {
	if limit <= 0 || len(cands) <= limit {
		return cands
	}
	return cands[:limit]
}

func scoredItems(cands []candidate) []types.ScoredItem {
	out := make([]types.ScoredItem, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.scored)
	}
	return out
}
