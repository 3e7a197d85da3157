package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative workload: named phases of insert, lookup and
// delete traffic against a heap-backed table.
//
//	name: churn
//	seed: 42
//	phases:
//	  - name: fill
//	    inserts: 5000
//	    value_size: 64
//	  - name: steady
//	    inserts: 1000
//	    lookups: 4000
//	    deletes: 1000
type Scenario struct {
	Name   string  `yaml:"name"`
	Seed   int64   `yaml:"seed"`
	Phases []Phase `yaml:"phases"`
}

// Phase is one step of a scenario. ValueSize is the payload block size per
// insert; it defaults to 32 bytes.
type Phase struct {
	Name      string `yaml:"name"`
	Inserts   int    `yaml:"inserts"`
	Deletes   int    `yaml:"deletes"`
	Lookups   int    `yaml:"lookups"`
	ValueSize int    `yaml:"value_size"`
}

func loadOrDefault(path string, ops int, seed int64) (*Scenario, error) {
	if path == "" {
		return defaultScenario(ops, seed), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	if sc.Seed == 0 {
		sc.Seed = seed
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if len(sc.Phases) == 0 {
		return fmt.Errorf("scenario %q has no phases", sc.Name)
	}
	for i := range sc.Phases {
		p := &sc.Phases[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("phase-%d", i)
		}
		if p.Inserts < 0 || p.Deletes < 0 || p.Lookups < 0 || p.ValueSize < 0 {
			return fmt.Errorf("phase %q has negative counts", p.Name)
		}
		if p.ValueSize == 0 {
			p.ValueSize = 32
		}
	}
	return nil
}

// defaultScenario is a fill, churn, drain workload sized by ops.
func defaultScenario(ops int, seed int64) *Scenario {
	return &Scenario{
		Name: "default",
		Seed: seed,
		Phases: []Phase{
			{Name: "fill", Inserts: ops, ValueSize: 32},
			{Name: "churn", Inserts: ops / 2, Deletes: ops / 2, Lookups: ops, ValueSize: 32},
			{Name: "drain", Deletes: ops, Lookups: ops / 2, ValueSize: 32},
		},
	}
}
