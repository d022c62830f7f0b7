package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chipsim/internal/ir"
)

// Scenario defines a truth-table scenario for one chip kind.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Chips lists chip files or directories to load.
	// Paths are relative to the scenario file location.
	Chips []string `yaml:"chips"`

	// Chip is the kind under test.
	Chip string `yaml:"chip"`

	// Cases are input vectors with their expected outputs or error codes.
	Cases []Case `yaml:"cases,omitempty"`

	// Exhaustive evaluates every input vector with both evaluators and
	// requires them to agree.
	Exhaustive bool `yaml:"exhaustive,omitempty"`

	// Assertions check the compiled program.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one row of a truth table.
type Case struct {
	// In is the input vector, e.g. "101".
	In string `yaml:"in"`

	// Out is the expected output vector. Ignored when Error is set.
	Out string `yaml:"out,omitempty"`

	// Error is the expected error code, e.g. "INPUT_ARITY".
	Error string `yaml:"error,omitempty"`
}

// Assertion checks a property of the chip's compiled program.
type Assertion struct {
	// Type specifies the assertion type:
	// - "linked": The chip has a linked compiled evaluator
	// - "code_contains": Program text contains Text
	// - "instruction_count": Program has exactly Count instructions
	// - "calls": Program calls Kinds in order
	Type string `yaml:"type"`

	// Text is the expected substring (used by code_contains).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of instructions (used by instruction_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected call order (used by calls).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertLinked           = "linked"
	AssertCodeContains     = "code_contains"
	AssertInstructionCount = "instruction_count"
	AssertCalls            = "calls"
)

// LoadScenario reads and parses a scenario YAML file, resolving chip paths
// relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, chipPath := range scenario.Chips {
		if !filepath.IsAbs(chipPath) {
			scenario.Chips[i] = filepath.Join(base, chipPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml scenario under dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Chips) == 0 {
		return fmt.Errorf("chips list is required and must be non-empty")
	}

	if s.Chip == "" {
		return fmt.Errorf("chip is required")
	}
	if !ir.Kind(s.Chip).Valid() {
		return fmt.Errorf("chip %q is not a valid kind", s.Chip)
	}

	if len(s.Cases) == 0 && !s.Exhaustive {
		return fmt.Errorf("cases list is required unless exhaustive is set")
	}

	for _, chipPath := range s.Chips {
		if _, err := os.Stat(chipPath); os.IsNotExist(err) {
			return fmt.Errorf("chip file not found: %s", chipPath)
		}
	}

	for i, c := range s.Cases {
		if _, err := ParseBits(c.In); err != nil {
			return fmt.Errorf("cases[%d].in: %w", i, err)
		}
		if c.Error != "" {
			continue
		}
		if _, err := ParseBits(c.Out); err != nil {
			return fmt.Errorf("cases[%d].out: %w", i, err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLinked:
	case AssertCodeContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for code_contains", index)
		}
	case AssertInstructionCount:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for instruction_count", index)
		}
	case AssertCalls:
		if a.Kinds == nil {
			return fmt.Errorf("assertions[%d]: kinds list is required for calls", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
