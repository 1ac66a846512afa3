// Package metrics provides lock-free counters and a latency histogram for
// authsessions observability.
//
// # Design
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically via [sync/atomic]. The latency histogram uses 8 fixed buckets
// (≤5ms … +Inf). Both are allocation-free on the write path.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation only. Export to an
// external system is the caller's job, reading [Snapshot] values.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import authsessions or any sibling package.
//   - Expose global metric registries.
package metrics
