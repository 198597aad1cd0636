package selection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Scorer assigns each item a relevance score in [0,1] against the parsed
// requirements. Results are returned in input order.
type Scorer interface {
	ScoreItems(ctx context.Context, items []types.ContentItem, reqs *types.ParsedRequirements) ([]types.ScoredItem, error)
}

// Score composition for the lexical scorer
const (
	bestMatchWeight = 0.7
	breadthWeight   = 0.3
	maxRecencyBonus = 0.05
	recencyHorizon  = 10.0 // years until the recency bonus reaches zero
)

// LexicalScorer scores items by keyword overlap with requirement text,
// weighted by requirement importance and content-type compatibility.
// It makes no model calls and is deterministic for a fixed clock.
type LexicalScorer struct {
	// Now anchors recency; defaults to time.Now
	Now func() time.Time
}

// NewLexicalScorer creates the default scorer
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{Now: time.Now}
}

type preparedRequirement struct {
	req    types.Requirement
	keys   map[string]bool
	weight float64
}

// ScoreItems scores every item. Accomplishments without dates inherit the
// recency of their parent job when it is among items.
func (s *LexicalScorer) ScoreItems(ctx context.Context, items []types.ContentItem, reqs *types.ParsedRequirements) ([]types.ScoredItem, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var prepared []preparedRequirement
	if reqs != nil {
		prepared = make([]preparedRequirement, 0, len(reqs.Requirements))
		for _, r := range reqs.Requirements {
			keys := keywordSet(r.Text)
			if len(keys) == 0 {
				continue
			}
			prepared = append(prepared, preparedRequirement{req: r, keys: keys, weight: importanceWeight(r.Importance)})
		}
	}

	byID := make(map[string]*types.ContentItem, len(items))
	for i := range items {
		if items[i].ID != "" {
			byID[items[i].ID] = &items[i]
		}
	}

	scored := make([]types.ScoredItem, 0, len(items))
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := &items[i]
		score, rationale := s.scoreItem(item, prepared, recency(item, byID, now))
		scored = append(scored, types.ScoredItem{
			Item:           *item,
			RelevanceScore: score,
			Rationale:      rationale,
		})
	}
	return scored, nil
}

func (s *LexicalScorer) scoreItem(item *types.ContentItem, reqs []preparedRequirement, recencyFactor float64) (float64, string) {
	if len(reqs) == 0 {
		return 0, "no requirements to match"
	}

	itemKeys := itemKeywords(item)
	best := 0.0
	weighted := 0.0
	totalWeight := 0.0
	var matched []string

	for _, r := range reqs {
		m := requirementMatch(itemKeys, r.keys, r.req.Type, item.Type)
		if m*r.weight > best {
			best = m * r.weight
		}
		weighted += m * r.weight
		totalWeight += r.weight
		if m >= MatchThreshold {
			matched = append(matched, r.req.Text)
		}
	}

	breadth := 0.0
	if totalWeight > 0 {
		breadth = weighted / totalWeight
	}

	score := bestMatchWeight*best + breadthWeight*breadth
	if score > 0 {
		score += maxRecencyBonus * recencyFactor
	}
	score = clamp01(score)

	if len(matched) == 0 {
		return score, "no requirement keywords matched"
	}
	return score, fmt.Sprintf("matches %s", strings.Join(matched, ", "))
}

// recency returns 1 for current roles decaying linearly to 0 over the
// horizon. Only jobs and accomplishments carry recency.
func recency(item *types.ContentItem, byID map[string]*types.ContentItem, now time.Time) float64 {
	if item.Type != types.ContentJobEntry && item.Type != types.ContentAccomplishment {
		return 0
	}

	date := itemDate(item, byID, now)
	if date.IsZero() {
		return 0
	}

	years := now.Sub(date).Hours() / (24 * 365.25)
	if years <= 0 {
		return 1
	}
	if years >= recencyHorizon {
		return 0
	}
	return 1 - years/recencyHorizon
}

// itemDate is the item's most recent date (end, else start), falling back
// to its parent's dates
func itemDate(item *types.ContentItem, byID map[string]*types.ContentItem, now time.Time) time.Time {
	start, end := item.DateRange(now)
	if !end.IsZero() {
		return end
	}
	if !start.IsZero() {
		return start
	}
	if parent, ok := byID[item.ParentID]; ok && item.ParentID != "" && parent != item {
		pStart, pEnd := parent.DateRange(now)
		if !pEnd.IsZero() {
			return pEnd
		}
		return pStart
	}
	return time.Time{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
