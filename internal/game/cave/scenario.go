package cave

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cavecombat/internal/game/combat"
)

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

// yamlScenario is the YAML representation of a scenario.
type yamlScenario struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Rules       *yamlRules   `yaml:"rules"`
	Map         string       `yaml:"map"`
	Expect      *Expectation `yaml:"expect"`
}

type yamlRules struct {
	HitPoints   int `yaml:"hit_points"`
	ElfPower    int `yaml:"elf_power"`
	GoblinPower int `yaml:"goblin_power"`
}

// Expectation holds known results for a scenario. Zero fields are not checked.
type Expectation struct {
	Rounds       int `yaml:"rounds"`
	RemainingHP  int `yaml:"remaining_hp"`
	Outcome      int `yaml:"outcome"`
	BoostPower   int `yaml:"boost_power"`
	BoostOutcome int `yaml:"boost_outcome"`
}

// Scenario is a named cave with optional rule overrides and expected results.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Map         *Map
	// Rules is nil when the scenario uses the caller's rules.
	Rules  *combat.Rules
	Expect *Expectation
}

// RulesOr returns the scenario's rules, filling unset fields from base.
func (s *Scenario) RulesOr(base combat.Rules) combat.Rules {
	if s.Rules == nil {
		return base
	}
	r := *s.Rules
	if r.HitPoints == 0 {
		r.HitPoints = base.HitPoints
	}
	if r.ElfPower == 0 {
		r.ElfPower = base.ElfPower
	}
	if r.GoblinPower == 0 {
		r.GoblinPower = base.GoblinPower
	}
	return r
}

// Validate checks scenario invariants.
//
// Postcondition: Returns nil iff ID is set, the map has at least one unit, and every set
// expectation is non-negative.
func (s *Scenario) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("scenario id must not be empty"))
	}
	if s.Map == nil || len(s.Map.Placements) == 0 {
		errs = append(errs, fmt.Errorf("scenario %q must place at least one unit", s.ID))
	}
	if e := s.Expect; e != nil {
		if e.Rounds < 0 || e.RemainingHP < 0 || e.Outcome < 0 || e.BoostPower < 0 || e.BoostOutcome < 0 {
			errs = append(errs, fmt.Errorf("scenario %q expectations must be non-negative", s.ID))
		}
	}
	return errors.Join(errs...)
}

// LoadScenarioFromFile reads and validates a single scenario YAML file.
//
// Precondition: path must point to a valid YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadScenarioFromBytes(data)
}

// LoadScenarioFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	sc, err := convertYAMLScenario(file.Scenario)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return sc, nil
}

// LoadScenariosFromDir loads every .yaml/.yml file in dir, sorted by file name.
//
// Postcondition: Returns all validated scenarios or the first error encountered.
func LoadScenariosFromDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var scenarios []*Scenario
	seen := make(map[string]string)
	for _, name := range names {
		sc, err := LoadScenarioFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", name, err)
		}
		if prev, dup := seen[sc.ID]; dup {
			return nil, fmt.Errorf("scenario id %q defined in both %s and %s", sc.ID, prev, name)
		}
		seen[sc.ID] = name
		scenarios = append(scenarios, sc)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	return scenarios, nil
}

// convertYAMLScenario converts the parsed YAML structures into domain types.
func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	m, err := ParseString(ys.Map)
	if err != nil {
		return nil, fmt.Errorf("scenario %q map: %w", ys.ID, err)
	}
	sc := &Scenario{
		ID:          ys.ID,
		Name:        ys.Name,
		Description: ys.Description,
		Map:         m,
		Expect:      ys.Expect,
	}
	if ys.Rules != nil {
		sc.Rules = &combat.Rules{
			HitPoints:   ys.Rules.HitPoints,
			ElfPower:    ys.Rules.ElfPower,
			GoblinPower: ys.Rules.GoblinPower,
		}
	}
	return sc, nil
}
