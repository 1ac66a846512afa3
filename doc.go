// Package authsessions provides a session lifecycle engine with HMAC-signed JWT
// access tokens, rotating opaque refresh tokens, Redis-backed session records,
// and bulk session revocation ("log out everywhere").
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Each call runs independently; no operation blocks another
// in-flight session.
//
// # Architecture boundaries
//
// authsessions is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResult, MetricsSnapshot, AuditEvent, etc.). All internal
// coordination — flow orchestration, audit dispatch, rate limiting, metric
// storage — lives under internal/ and is never exported. Credential persistence
// belongs to the caller through the [userdir.Directory] interface; notification
// delivery belongs to the caller through [notify.Publisher].
//
// # Consistency model
//
// Every successful Login or RefreshToken writes two cache entries with one
// shared TTL: a refresh-token record and a logged-session marker. They are
// created and replaced together. Mass revocation is an eventual, lazily
// enumerated operation: sessions created while a scan is running are not
// guaranteed to be included in that scan. Two concurrent refreshes of the same
// stale token may both succeed; rotation is at-least-once, never lossy.
//
// # What this package must NOT do
//
//   - Expose Redis clients, cache key layouts, or serialization details in its
//     public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Silently treat an unreachable session cache as "not logged in" —
//     infrastructure failures always propagate.
package authsessions
