// Package harness runs truth-table scenarios against chip definitions.
//
// A scenario loads chip files into a fresh registry, registers them through
// the engine, and checks each case against both evaluators: the dynamic
// interpreter, which expands every compound level, and the linked compiled
// evaluator. A case passes only when both agree with the expected output.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: full_adder
//	description: "Adds three bits"
//	chips:
//	  - ../chips/half_adder.json
//	  - ../chips/full_adder.yaml
//	chip: full_adder
//	exhaustive: true
//	cases:
//	  - { in: "110", out: "01" }
//	  - { in: "1", error: INPUT_ARITY }
//	assertions:
//	  - type: linked
//	  - type: calls
//	    kinds: [half_adder, half_adder, or]
//
// Chip paths are relative to the scenario file. With exhaustive set, every
// input vector is evaluated and the two evaluators must agree; no expected
// output is needed for those.
//
// # Assertion Types
//
//   - linked: The chip has a linked compiled evaluator
//   - code_contains: The compiled program text contains text
//   - instruction_count: The compiled program has exactly count instructions
//   - calls: The program calls kinds in this order
//
// # Golden Files
//
// RunWithGolden snapshots the scenario name, chip, compiled code and case
// results as canonical JSON under testdata/golden.
package harness
