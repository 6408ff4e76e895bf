package executor

import (
	"fmt"

	"github.com/suqilabs/suqi/pkg/tools"
)

// Verification thresholds. Warnings flag suspicious-but-usable output;
// only structurally broken output fails.
const (
	rowCountWarningThreshold  = 5000
	parityWarningPercent      = 5.0
	catalogMinAnswerLen       = 10
	catalogConfidenceWarnsMin = 0.5
)

// verifySemanticQuery checks a SEMANTIC_QUERY result: a data array must
// exist; emptiness and oversized results warn; declared dimensions and
// measures should appear as keys in the first row.
func verifySemanticQuery(params tools.QueryParams, out *tools.QueryResult) Verification {
	v := Verification{Passed: true}
	if out == nil || out.Data == nil {
		v.Passed = false
		v.Warnings = append(v.Warnings, "result is missing the data array")
		return v
	}
	v.Metrics = map[string]any{"row_count": len(out.Data)}

	if len(out.Data) == 0 {
		v.Warnings = append(v.Warnings, "query returned no rows")
		return v
	}
	if len(out.Data) > rowCountWarningThreshold {
		v.Warnings = append(v.Warnings, fmt.Sprintf("result has %d rows, above the %d row threshold", len(out.Data), rowCountWarningThreshold))
	}

	first := out.Data[0]
	for _, field := range append(append([]string{}, params.Dimensions...), params.Measures...) {
		if _, ok := first[field]; !ok {
			v.Warnings = append(v.Warnings, fmt.Sprintf("declared field %q is absent from the first row", field))
		}
	}
	return v
}

// verifyGeoExport checks a GEO_EXPORT result: zero features is a hard
// failure (no silent empty maps); malformed features only warn.
func verifyGeoExport(out *tools.GeoResult) Verification {
	v := Verification{Passed: true}
	if out == nil || len(out.Features) == 0 {
		v.Passed = false
		v.Warnings = append(v.Warnings, "export produced no features")
		return v
	}
	v.Metrics = map[string]any{"feature_count": len(out.Features)}

	malformed := 0
	for _, f := range out.Features {
		if f.Type != "Feature" || f.Geometry == nil || f.Properties == nil {
			malformed++
		}
	}
	if malformed > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%d of %d features are malformed", malformed, len(out.Features)))
	}
	return v
}

// verifyParityCheck fails on an explicit ERROR status; a large
// difference ratio is only a warning.
func verifyParityCheck(out *tools.ParityResult) Verification {
	v := Verification{Passed: true}
	if out == nil {
		v.Passed = false
		v.Warnings = append(v.Warnings, "parity check returned no payload")
		return v
	}
	v.Metrics = map[string]any{"difference_percent": out.DifferencePercent}

	if out.Status == tools.StatusError {
		v.Passed = false
		v.Warnings = append(v.Warnings, "parity check reported an error status")
		return v
	}
	if out.DifferencePercent > parityWarningPercent {
		v.Warnings = append(v.Warnings, fmt.Sprintf("difference of %.1f%% exceeds the %.0f%% threshold", out.DifferencePercent, parityWarningPercent))
	}
	return v
}

// verifyAutoSync fails on an explicit ERROR status; an initiated run
// without a run identifier warns.
func verifyAutoSync(out *tools.SyncResult) Verification {
	v := Verification{Passed: true}
	if out == nil {
		v.Passed = false
		v.Warnings = append(v.Warnings, "sync returned no payload")
		return v
	}
	if out.Status == tools.StatusError {
		v.Passed = false
		v.Warnings = append(v.Warnings, "sync reported an error status")
		return v
	}
	if out.Status == tools.StatusInitiated && out.RunID == "" {
		v.Warnings = append(v.Warnings, "sync was initiated without a run identifier")
	}
	return v
}

// verifyCatalogQA never fails: the catalog tool is informational and
// low stakes. Short or low-confidence answers warn.
func verifyCatalogQA(out *tools.CatalogAnswer) Verification {
	v := Verification{Passed: true}
	if out == nil {
		v.Warnings = append(v.Warnings, "catalog returned no payload")
		return v
	}
	if len(out.Answer) < catalogMinAnswerLen {
		v.Warnings = append(v.Warnings, "answer is suspiciously short")
	}
	if out.Confidence > 0 && out.Confidence < catalogConfidenceWarnsMin {
		v.Warnings = append(v.Warnings, fmt.Sprintf("answer confidence %.2f is below %.1f", out.Confidence, catalogConfidenceWarnsMin))
	}
	return v
}
