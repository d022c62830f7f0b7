// Package store provides SQLite-backed durable storage for chip definitions.
//
// The store is an append-only revision log. Every save of a chip definition
// appends a row to chip_revisions carrying:
//   - revision: a UUIDv7 assigned at write time
//   - definition: the definition as JSON, without its code
//   - definition_hash: ir.DefinitionHash of the definition
//   - code: the compiled program text, empty when the chip did not link
//   - seq: a logical clock shared by all chips
//
// Saving a definition whose hash and code match the chip's latest revision
// is a no-op, so repeated saves of an unchanged project do not grow the log.
//
// # Ordering
//
// All ordering uses seq, never wall time. Queries order by
// seq ASC, revision COLLATE BINARY ASC so results are identical across
// runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
