package planner

import (
	"strings"

	"github.com/suqilabs/suqi/pkg/registry"
)

// Fallback plan confidences. Fixed heuristics carried over from the
// original behavior; their contract is consistency, not optimality.
const (
	fallbackConfidenceGeo       = 0.6
	fallbackConfidenceAnalytics = 0.6
	fallbackConfidenceParity    = 0.7
	fallbackConfidenceSync      = 0.7
	fallbackConfidenceCatalog   = 0.5

	defaultParityLookbackDays = 30
)

// Keyword tables for the rule-based fallback. Geographic intent is
// tested before analytics: "map sales by city" must plan a map even
// though "sales" is an analytics keyword.
var (
	geoKeywords       = []string{"map", "geo", "region", "location"}
	analyticsKeywords = []string{"revenue", "sales", "transaction", "breakdown", "analysis", "show"}
	qualityKeywords   = []string{"parity", "check", "validate", "quality"}
	freshnessKeywords = []string{"sync", "refresh", "update", "latest"}
)

// fallback builds a deterministic single-step plan from keyword rules.
// cause describes why generative planning was bypassed.
func (p *Planner) fallback(query, cause string) *Plan {
	lowered := strings.ToLower(query)
	reason := "rule-based fallback: " + cause

	switch {
	case containsAny(lowered, geoKeywords):
		return &Plan{
			Intent:         "Map a metric geographically",
			Confidence:     fallbackConfidenceGeo,
			FallbackReason: reason,
			Steps: []Step{{
				Tool:   registry.GeoExport,
				Params: map[string]any{"level": "city", "metric": "revenue"},
				Reason: "geographic keywords detected in query",
			}},
		}
	case containsAny(lowered, analyticsKeywords):
		return &Plan{
			Intent:         "Aggregate transaction metrics",
			Confidence:     fallbackConfidenceAnalytics,
			FallbackReason: reason,
			Steps: []Step{{
				Tool: registry.SemanticQuery,
				Params: map[string]any{
					"dimensions": []string{"category"},
					"measures":   []string{"revenue", "transactions"},
				},
				Reason: "analytics keywords detected in query",
			}},
		}
	case containsAny(lowered, qualityKeywords):
		return &Plan{
			Intent:         "Check data quality parity",
			Confidence:     fallbackConfidenceParity,
			FallbackReason: reason,
			Steps: []Step{{
				Tool:   registry.ParityCheck,
				Params: map[string]any{"daysBack": defaultParityLookbackDays},
				Reason: "data quality keywords detected in query",
			}},
		}
	case containsAny(lowered, freshnessKeywords):
		return &Plan{
			Intent:         "Refresh the flat transaction table",
			Confidence:     fallbackConfidenceSync,
			FallbackReason: reason,
			Steps: []Step{{
				Tool:   registry.AutoSyncFlat,
				Params: map[string]any{},
				Reason: "freshness keywords detected in query",
			}},
		}
	default:
		return &Plan{
			Intent:         "Answer from the data catalog",
			Confidence:     fallbackConfidenceCatalog,
			FallbackReason: reason,
			Steps: []Step{{
				Tool:   registry.CatalogQA,
				Params: map[string]any{"question": query},
				Reason: "no tool keywords matched; defaulting to catalog answer",
			}},
		}
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
