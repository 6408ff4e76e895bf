package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/suqilabs/suqi/pkg/scorer"
)

// systemPrompt constrains the model to the five known tools and a
// strict JSON output contract. Kept as one block so prompt reviews see
// exactly what the model sees.
const systemPrompt = `You are the planning module of a retail analytics assistant.
You convert a user's question into an ordered plan of tool invocations.

Available tools (use ONLY these, exactly as named):
- SEMANTIC_QUERY: aggregate transaction metrics. params: {"dimensions": [string], "measures": [string], "filters"?: object, "timeRange"?: string, "grain"?: string, "rollup"?: bool}
- GEO_EXPORT: export metrics as GeoJSON for maps. params: {"level": string, "metric": string, "filters"?: object, "timeRange"?: string}
- PARITY_CHECK: compare flat vs crosstab counts for data quality. params: {"daysBack"?: number}
- AUTO_SYNC_FLAT: trigger a refresh of the flat transaction table. params: {}
- CATALOG_QA: answer questions about columns, models and docs. params: {"question": string}

Output rules:
1. Respond with valid JSON only. No prose, no markdown.
2. Shape: {"intent": string, "steps": [{"tool": string, "params": object, "reason": string}], "confidence": number}
3. Every step needs a non-empty "reason".
4. Never invent tool names or parameter field names.
5. Order steps by execution order; keep plans as short as possible.`

// buildUserPrompt assembles the user message: the raw query, any
// pass-through request context, and the scorer's top candidates so the
// model sees the lexical evidence.
func buildUserPrompt(query string, reqContext map[string]any, candidates []scorer.AgentScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n", query)

	if len(reqContext) > 0 {
		if ctxJSON, err := json.Marshal(reqContext); err == nil {
			fmt.Fprintf(&b, "Request context: %s\n", ctxJSON)
		}
	}

	if len(candidates) > 0 {
		b.WriteString("Top candidate tools by signal match:\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "- %s (score %.1f, confidence %.2f, matched: %s)\n",
				c.Code, c.Score, c.Confidence, strings.Join(c.SignalsMatched, ", "))
		}
	}

	b.WriteString("Produce the plan JSON now.")
	return b.String()
}
