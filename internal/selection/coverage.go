package selection

import "github.com/jonathan/resume-optimizer/internal/types"

// ComputeCoverage returns the fraction of requirements matched by at least
// one selected item and the requirements left unmatched. With no
// requirements the coverage is 0.
func ComputeCoverage(selected []types.ScoredItem, reqs []types.Requirement) (float64, []types.Requirement) {
	unmatched := make([]types.Requirement, 0)
	if len(reqs) == 0 {
		return 0, unmatched
	}

	itemKeys := make([]map[string]bool, len(selected))
	for i := range selected {
		itemKeys[i] = itemKeywords(&selected[i].Item)
	}

	for _, req := range reqs {
		reqKeys := keywordSet(req.Text)
		matched := false
		for i := range selected {
			if requirementMatch(itemKeys[i], reqKeys, req.Type, selected[i].Item.Type) >= MatchThreshold {
				matched = true
				break
			}
		}
		if !matched {
			unmatched = append(unmatched, req)
		}
	}

	return 1 - float64(len(unmatched))/float64(len(reqs)), unmatched
}
