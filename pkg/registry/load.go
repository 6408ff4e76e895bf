package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape of a capability catalog override.
type catalogFile struct {
	Capabilities []Capability `yaml:"capabilities"`
}

// LoadFile reads a capability catalog from a YAML file. The file
// replaces the built-in catalog entirely, so operators can tune
// signals and costs without a rebuild.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed catalogFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	reg, err := NewFromCapabilities(parsed.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return reg, nil
}
