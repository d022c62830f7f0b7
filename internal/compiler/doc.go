// Package compiler turns chip definitions into programs.
//
// It owns everything that reasons about a definition's structure without
// evaluating it:
//
//   - Sort orders sub-chips by wire dependency (Kahn's algorithm)
//   - CheckDefinition, Validate and CheckInputs enforce wiring rules
//   - Compile lowers a definition to an ir.Program of primitive calls
//   - CompileChipCUE reads definitions written in CUE
//
// Output is deterministic: the same definition always compiles to
// byte-identical program text.
package compiler
