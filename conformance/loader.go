package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDataDir holds the YAML scenario fixtures, relative to this package.
const TestDataDir = "testdata"

// LoadScenarios reads every *.yaml fixture under TestDataDir.
func LoadScenarios() ([]Scenario, error) {
	entries, err := os.ReadDir(TestDataDir)
	if err != nil {
		return nil, fmt.Errorf("conformance: reading %s: %w", TestDataDir, err)
	}

	var all []Scenario
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(TestDataDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("conformance: reading %s: %w", e.Name(), err)
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("conformance: parsing %s: %w", e.Name(), err)
		}
		all = append(all, f.Scenarios...)
	}
	return all, nil
}
