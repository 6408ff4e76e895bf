package executor

import "github.com/suqilabs/suqi/pkg/registry"

// Tool failure policy. Kept as data rather than inline logic so the
// classification can be revisited without touching control flow.
//
// Critical tools produce the user-facing data: their failure (thrown or
// verification) aborts the remainder of the plan. Continuable tools are
// advisory background operations; execution proceeds past their
// failures.
var (
	criticalTools = map[registry.Code]bool{
		registry.SemanticQuery: true,
		registry.GeoExport:     true,
	}

	continuableTools = map[registry.Code]bool{
		registry.ParityCheck:  true,
		registry.AutoSyncFlat: true,
	}
)

// critical reports whether a verification failure on this tool fails
// the whole execution.
func critical(code registry.Code) bool {
	return criticalTools[code]
}

// continueAfterFailure reports whether execution proceeds past a
// failure of this tool.
func continueAfterFailure(code registry.Code) bool {
	return continuableTools[code]
}
