// Package middleware exposes HTTP middleware adapters for access-token
// enforcement built on top of authsessions.Engine validation.
//
// # Guards
//
//   - [Guard] — verifies the bearer token and injects the caller identity.
//
// The guard reads the Authorization header, parses the access token through the
// engine, and attaches the verified claims plus the caller identity to the
// request context so downstream handlers can call Logout, MassLogout, and
// ChangePassword without re-parsing the token.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to the
// engine's token parser.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from token parsing.
package middleware
