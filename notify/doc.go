// Package notify delivers fire-and-forget login notifications to external
// consumers.
//
// The [Publisher] interface decouples the engine from the transport; the
// engine publishes a [LoginNotice] after every successful login and ignores
// delivery failures beyond logging them. Implementations provided here cover
// Redis pub/sub, an in-process channel (useful in tests), and a no-op.
//
// # What this package must NOT do
//
//   - Block or fail a login on delivery problems.
//   - Import authsessions, session, or jwt (no upward imports).
package notify
