package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plbatch/internal/enumerate"
)

// PlanSpec is a YAML plan file: a declarative dimension set replacing the
// built-in core/full level plans.
//
// Example:
//
//	levels: [state, county]
//	tables: [P1]
//	vintages: ["2020"]
//	exclude:
//	  - fips: "06"
//	    level: vtd
//	    vintage: "2020"
type PlanSpec struct {
	Levels   []string              `yaml:"levels"`
	Tables   []string              `yaml:"tables"`
	Vintages []string              `yaml:"vintages"`
	Exclude  []enumerate.Exclusion `yaml:"exclude"`
}

func LoadPlanFile(path string) (PlanSpec, error) {
	var spec PlanSpec
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read plan file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return spec, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	if len(spec.Levels) == 0 {
		return spec, fmt.Errorf("plan file %s declares no levels", path)
	}
	return spec, nil
}
