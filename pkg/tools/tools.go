// Package tools defines the typed contracts for the five outbound
// collaborators the executor dispatches to. Each tool is an external
// component reached through this narrow interface; timeouts and retries
// belong to the implementations, not the callers.
package tools

import "context"

// Tool status values shared by the parity and sync contracts.
const (
	StatusOK        = "OK"
	StatusError     = "ERROR"
	StatusInitiated = "INITIATED"
)

// QueryParams is the input contract for SEMANTIC_QUERY.
type QueryParams struct {
	Dimensions []string       `json:"dimensions"`
	Measures   []string       `json:"measures"`
	Filters    map[string]any `json:"filters,omitempty"`
	TimeRange  string         `json:"timeRange,omitempty"`
	Grain      string         `json:"grain,omitempty"`
	Rollup     bool           `json:"rollup,omitempty"`
}

// QueryResult is the output contract for SEMANTIC_QUERY.
type QueryResult struct {
	Data      []map[string]any `json:"data"`
	RowCount  int              `json:"row_count"`
	HasRollup bool             `json:"has_rollup,omitempty"`
	Summary   string           `json:"summary,omitempty"`
	SQL       string           `json:"sql,omitempty"`
}

// GeoParams is the input contract for GEO_EXPORT.
type GeoParams struct {
	Level     string         `json:"level"`
	Metric    string         `json:"metric"`
	Filters   map[string]any `json:"filters,omitempty"`
	TimeRange string         `json:"timeRange,omitempty"`
}

// GeoFeature is one GeoJSON feature in a GEO_EXPORT result.
type GeoFeature struct {
	Type       string         `json:"type"`
	Geometry   map[string]any `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// GeoResult is the output contract for GEO_EXPORT.
type GeoResult struct {
	Features     []GeoFeature `json:"features"`
	FeatureCount int          `json:"feature_count"`
	Bounds       []float64    `json:"bounds,omitempty"`
	Summary      string       `json:"summary,omitempty"`
}

// ParityParams is the input contract for PARITY_CHECK.
type ParityParams struct {
	DaysBack int `json:"daysBack,omitempty"`
}

// ParityResult is the output contract for PARITY_CHECK.
type ParityResult struct {
	Status            string  `json:"status"`
	Summary           string  `json:"summary,omitempty"`
	DaysChecked       int     `json:"days_checked,omitempty"`
	FlatCount         int64   `json:"flat_count,omitempty"`
	CrosstabCount     int64   `json:"crosstab_count,omitempty"`
	Difference        int64   `json:"difference,omitempty"`
	DifferencePercent float64 `json:"difference_percent,omitempty"`
}

// SyncResult is the output contract for AUTO_SYNC_FLAT.
type SyncResult struct {
	Status           string `json:"status"`
	RunID            string `json:"run_id,omitempty"`
	RecordsProcessed int64  `json:"records_processed,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// CatalogAnswer is the output contract for CATALOG_QA.
type CatalogAnswer struct {
	Answer     string   `json:"answer"`
	Citations  []string `json:"citations,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// ToolSet is the closed set of tools the executor can dispatch to.
type ToolSet interface {
	SemanticQuery(ctx context.Context, params QueryParams) (*QueryResult, error)
	GeoExport(ctx context.Context, params GeoParams) (*GeoResult, error)
	ParityCheck(ctx context.Context, params ParityParams) (*ParityResult, error)
	AutoSyncFlat(ctx context.Context) (*SyncResult, error)
	CatalogQA(ctx context.Context, question string) (*CatalogAnswer, error)
}
