package registry

// defaultCatalog returns the built-in capability catalog. Signals are
// matched lexically against incoming queries; multi-word phrases carry
// more scoring weight than single words.
func defaultCatalog() []Capability {
	return []Capability{
		{
			Code:        SemanticQuery,
			Description: "Aggregate transaction metrics by dimension (category, brand, region, time).",
			Signals: []string{
				"revenue", "sales", "transactions", "breakdown", "analysis",
				"by category", "by brand", "by region", "top products",
				"average basket", "show me", "how much", "trend",
			},
			Inputs:  []string{"dimensions", "measures", "filters", "timeRange", "grain", "rollup"},
			Outputs: []string{"data", "row_count", "has_rollup", "summary", "sql"},
			Risk:    RiskLow,
			Cost:    1,
		},
		{
			Code:        GeoExport,
			Description: "Export metrics as GeoJSON features for map rendering.",
			Signals: []string{
				"map", "geojson", "choropleth", "geographic", "region map",
				"city level", "province", "location", "heatmap",
			},
			Inputs:  []string{"level", "metric", "filters", "timeRange"},
			Outputs: []string{"features", "feature_count", "bounds", "summary"},
			Risk:    RiskMedium,
			Cost:    2,
		},
		{
			Code:        ParityCheck,
			Description: "Compare flat and crosstab transaction counts for data quality parity.",
			Signals: []string{
				"parity", "data quality", "validate", "check", "crosstab",
				"mismatch", "discrepancy", "reconcile",
			},
			Inputs:  []string{"daysBack"},
			Outputs: []string{"status", "summary", "days_checked", "flat_count", "crosstab_count", "difference", "difference_percent"},
			Risk:    RiskLow,
			Cost:    1,
		},
		{
			Code:        AutoSyncFlat,
			Description: "Trigger a refresh of the flat transaction table from upstream sources.",
			Signals: []string{
				"sync", "refresh", "reload", "update data", "latest data",
				"re-run etl", "ingest",
			},
			Inputs:  []string{},
			Outputs: []string{"status", "run_id", "records_processed", "summary"},
			Risk:    RiskHigh,
			Cost:    3,
		},
		{
			Code:        CatalogQA,
			Description: "Answer questions about the data catalog, column meanings, and model docs.",
			Signals: []string{
				"what is", "what does", "define", "meaning", "column",
				"field", "catalog", "documentation", "explain",
			},
			Inputs:  []string{"question"},
			Outputs: []string{"answer", "citations", "confidence"},
			Risk:    RiskLow,
			Cost:    1,
		},
	}
}
