package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/simquery/internal/world"
)

// Scenario defines a query test scenario: a world and a list of queries
// with their expected answers.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// World is an inline world document. Exactly one of World and
	// WorldFile must be set.
	World *world.Document `yaml:"world,omitempty"`

	// WorldFile is a path to a world document (.json, .yaml, .yml, .cue).
	// Relative paths are resolved against the scenario file's directory.
	WorldFile string `yaml:"world_file,omitempty"`

	// MaxSteps caps each query's quantifier iterations. Zero means
	// unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Queries are solved in order against the world.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep is a single query and its expected outcome.
type QueryStep struct {
	// Formula is the query text, e.g. "x. exists y. connecting(x, y)".
	Formula string `yaml:"formula"`

	// Expect lists the ids the query must return, in any order.
	// Ignored when ExpectError is set.
	Expect []string `yaml:"expect,flow"`

	// ExpectError names the error kind the query must fail with.
	// One of: syntax, unbound_variable, dangling_reference, steps_exceeded.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Error kind constants used by ExpectError and QueryOutcome.Error.
const (
	ErrorSyntax            = "syntax"
	ErrorUnboundVariable   = "unbound_variable"
	ErrorDanglingReference = "dangling_reference"
	ErrorStepsExceeded     = "steps_exceeded"
	ErrorOther             = "other"
)

var errorKinds = map[string]bool{
	ErrorSyntax:            true,
	ErrorUnboundVariable:   true,
	ErrorDanglingReference: true,
	ErrorStepsExceeded:     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative world_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.WorldFile != "" && !filepath.IsAbs(scenario.WorldFile) {
		scenario.WorldFile = filepath.Join(filepath.Dir(path), scenario.WorldFile)
	}
	if scenario.WorldFile != "" {
		if _, err := os.Stat(scenario.WorldFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: invalid scenario: world file not found: %s", path, scenario.WorldFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
// A world_file is kept as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "query:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.World == nil && s.WorldFile == "":
		return fmt.Errorf("one of world or world_file is required")
	case s.World != nil && s.WorldFile != "":
		return fmt.Errorf("world and world_file are mutually exclusive")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, q := range s.Queries {
		if q.Formula == "" {
			return fmt.Errorf("queries[%d]: formula is required", i)
		}
		if q.ExpectError != "" {
			if !errorKinds[q.ExpectError] {
				return fmt.Errorf("queries[%d]: unknown expect_error %q", i, q.ExpectError)
			}
			if len(q.Expect) > 0 {
				return fmt.Errorf("queries[%d]: expect and expect_error are mutually exclusive", i)
			}
		}
	}

	return nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file
// name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
