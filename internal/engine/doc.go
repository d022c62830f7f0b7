// Package engine evaluates chips.
//
// The engine ties the registry, compiler and linker together. It has two
// evaluation paths that must always agree:
//
// Interpreter:
// Expands a compound chip's definition and propagates values along its
// wires, one frontier layer at a time. It needs no compilation step and is
// the ground truth the compiled path is tested against.
//
// Compiled evaluators:
// Register compiles each compound definition to an ir.Program, links it
// against the registry and caches the linked evaluator on the registry
// entry. Evaluation then dispatches through a flat instruction list with no
// graph walk. When compilation or linking fails the kind keeps working
// through the interpreter.
//
// Relinking:
// A linked evaluator captures the registry as it was at link time. When a
// kind is registered again, every compound kind that uses it, directly or
// transitively, is relinked in dependency order.
//
// Concurrency:
// Register and RegisterAll are serialized by the engine. Evaluate may be
// called from any goroutine at any time; it only reads the registry.
package engine
