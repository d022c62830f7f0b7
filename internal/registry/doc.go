// Package registry is the catalog of chip kinds.
//
// Every kind the system can evaluate lives in a Registry: primitive gates
// carry a fixed EvalFunc, compound kinds carry their ChipDefinition and,
// once linked, a cached compiled EvalFunc. The interpreter, the compiler and
// the linker all read from a Registry passed to them explicitly; there is no
// process-wide table.
//
// A Registry is safe for concurrent use. Mutations (Register, SetCompiled,
// ClearCompiled) take an exclusive lock; lookups and snapshots share a read
// lock, and evaluation never mutates the registry.
package registry
