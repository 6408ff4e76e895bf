// Package registry holds the static catalog of capabilities the
// orchestrator can plan against. The catalog is built once at startup
// and is read-only afterwards, so it is safe to share across requests.
package registry

import "fmt"

// Code identifies a capability. The set of codes is closed: the planner
// drops steps referencing anything outside it and the executor treats an
// unknown code as a dispatch error.
type Code string

const (
	SemanticQuery Code = "SEMANTIC_QUERY"
	GeoExport     Code = "GEO_EXPORT"
	ParityCheck   Code = "PARITY_CHECK"
	AutoSyncFlat  Code = "AUTO_SYNC_FLAT"
	CatalogQA     Code = "CATALOG_QA"
)

// Risk classifies how cautious the scorer should be about a capability.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Capability describes one callable tool: how to match it against a
// free-text query and what it consumes and produces. Inputs and Outputs
// are contract documentation, not compile-time enforced.
type Capability struct {
	Code        Code     `json:"code" yaml:"code"`
	Description string   `json:"description" yaml:"description"`
	Signals     []string `json:"signals" yaml:"signals"`
	Inputs      []string `json:"inputs" yaml:"inputs"`
	Outputs     []string `json:"outputs" yaml:"outputs"`
	Risk        Risk     `json:"risk" yaml:"risk"`
	Cost        float64  `json:"cost" yaml:"cost"`
}

// Registry is an immutable, insertion-ordered capability catalog.
type Registry struct {
	caps    []Capability
	indexes map[Code]int
}

// New returns a registry with the built-in capability catalog.
func New() *Registry {
	reg, err := NewFromCapabilities(defaultCatalog())
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a bug.
		panic(fmt.Sprintf("registry: invalid built-in catalog: %v", err))
	}
	return reg
}

// NewFromCapabilities builds a registry from an explicit catalog,
// validating every entry.
func NewFromCapabilities(caps []Capability) (*Registry, error) {
	if len(caps) == 0 {
		return nil, fmt.Errorf("catalog has no capabilities")
	}
	indexes := make(map[Code]int, len(caps))
	for i, cap := range caps {
		if err := validate(cap); err != nil {
			return nil, err
		}
		if _, dup := indexes[cap.Code]; dup {
			return nil, fmt.Errorf("duplicate capability code %q", cap.Code)
		}
		indexes[cap.Code] = i
	}
	owned := make([]Capability, len(caps))
	copy(owned, caps)
	return &Registry{caps: owned, indexes: indexes}, nil
}

// Get returns the capability for a code. Absence is a normal result,
// not an error.
func (r *Registry) Get(code Code) (Capability, bool) {
	i, ok := r.indexes[code]
	if !ok {
		return Capability{}, false
	}
	return r.caps[i], true
}

// Contains reports whether the registry knows a code.
func (r *Registry) Contains(code Code) bool {
	_, ok := r.indexes[code]
	return ok
}

// List returns the capabilities in insertion order.
func (r *Registry) List() []Capability {
	out := make([]Capability, len(r.caps))
	copy(out, r.caps)
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.caps)
}

func validate(cap Capability) error {
	if cap.Code == "" {
		return fmt.Errorf("capability code is required")
	}
	if cap.Description == "" {
		return fmt.Errorf("capability %q missing description", cap.Code)
	}
	if len(cap.Signals) == 0 {
		return fmt.Errorf("capability %q has no signals", cap.Code)
	}
	switch cap.Risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return fmt.Errorf("capability %q has invalid risk %q", cap.Code, cap.Risk)
	}
	if cap.Cost <= 0 {
		return fmt.Errorf("capability %q must have positive cost", cap.Code)
	}
	return nil
}
