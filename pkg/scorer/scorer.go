// Package scorer ranks capabilities against a free-text query using
// lexical signal matching. Scoring is a pure function over the static
// registry, so it doubles as the safety net when generative planning
// is unavailable.
package scorer

import (
	"sort"
	"strings"

	"github.com/suqilabs/suqi/pkg/registry"
)

const (
	// phraseWeight rewards exact signal matches proportionally to the
	// signal's word count, so longer phrases outrank single words.
	phraseWeight = 2.0

	// partialWeight is the weaker score for a query word contained in a
	// signal that has not already matched exactly.
	partialWeight = 1.0

	// minWordLen filters stop-word noise from the partial match path.
	minWordLen = 3

	// confidenceSaturation is the fraction of a capability's signals
	// that must match before confidence reaches 1.0.
	confidenceSaturation = 0.3

	// DefaultHighConfidenceThreshold is the confidence at which the top
	// candidate is considered a decisive match.
	DefaultHighConfidenceThreshold = 0.7
)

// Risk multipliers dampen scores for capabilities whose misfire is
// expensive. Policy data, kept together so it can be revisited.
var riskMultipliers = map[registry.Risk]float64{
	registry.RiskLow:    1.0,
	registry.RiskMedium: 0.8,
	registry.RiskHigh:   0.5,
}

// AgentScore is the transient ranking result for one capability
// against one query.
type AgentScore struct {
	Code           registry.Code `json:"code"`
	Score          float64       `json:"score"`
	SignalsMatched []string      `json:"signals_matched"`
	Confidence     float64       `json:"confidence"`
}

// Scorer ranks registry capabilities against queries.
type Scorer struct {
	reg *registry.Registry
}

// New creates a scorer over a registry.
func New(reg *registry.Registry) *Scorer {
	return &Scorer{reg: reg}
}

// Score returns one AgentScore per registered capability, sorted by
// descending score. The sort is stable, so ties keep registration order.
func (s *Scorer) Score(query string) []AgentScore {
	lowered := strings.ToLower(query)
	words := strings.Fields(lowered)

	caps := s.reg.List()
	scores := make([]AgentScore, 0, len(caps))
	for _, cap := range caps {
		scores = append(scores, scoreCapability(cap, lowered, words))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Top returns the highest-scoring candidates with score > 0, at most
// limit of them.
func (s *Scorer) Top(query string, limit int) []AgentScore {
	ranked := s.Score(query)
	out := make([]AgentScore, 0, limit)
	for _, as := range ranked {
		if as.Score <= 0 {
			break
		}
		out = append(out, as)
		if len(out) == limit {
			break
		}
	}
	return out
}

// HasHighConfidenceMatch reports whether the top-ranked capability's
// confidence meets the threshold. Pass 0 to use the default threshold.
func (s *Scorer) HasHighConfidenceMatch(query string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultHighConfidenceThreshold
	}
	ranked := s.Score(query)
	if len(ranked) == 0 {
		return false
	}
	return ranked[0].Confidence >= threshold
}

func scoreCapability(cap registry.Capability, lowered string, words []string) AgentScore {
	var raw float64
	matched := make(map[string]bool, len(cap.Signals))
	var matchedOrder []string

	// Exact phrase containment first: a multi-word signal found verbatim
	// in the query is the strongest evidence.
	for _, signal := range cap.Signals {
		sig := strings.ToLower(signal)
		if strings.Contains(lowered, sig) {
			matched[sig] = true
			matchedOrder = append(matchedOrder, signal)
			raw += float64(len(strings.Fields(sig))) * phraseWeight
		}
	}

	// Weaker partial path: a query word contained in a signal that has
	// not already matched. Skipping matched signals prevents double
	// counting.
	for _, word := range words {
		if len(word) < minWordLen {
			continue
		}
		for _, signal := range cap.Signals {
			sig := strings.ToLower(signal)
			if matched[sig] {
				continue
			}
			if strings.Contains(sig, word) {
				matched[sig] = true
				matchedOrder = append(matchedOrder, signal)
				raw += partialWeight
			}
		}
	}

	adjusted := raw - cap.Cost
	final := adjusted * riskMultipliers[cap.Risk]
	if final < 0 {
		final = 0
	}

	return AgentScore{
		Code:           cap.Code,
		Score:          final,
		SignalsMatched: matchedOrder,
		Confidence:     confidence(len(matched), len(cap.Signals)),
	}
}

// confidence is density-based: it saturates once roughly 30% of a
// capability's declared signals have matched.
func confidence(matchedCount, totalSignals int) float64 {
	denom := float64(totalSignals) * confidenceSaturation
	if denom < 1 {
		denom = 1
	}
	c := float64(matchedCount) / denom
	if c > 1 {
		c = 1
	}
	return c
}
