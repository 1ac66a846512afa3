// Package session provides Redis-backed refresh-session persistence for
// authentication hot paths.
//
// # Key schema
//
// Two entries exist per active session and always share one TTL:
//
//	refresh:{refreshToken}   -> JSON {username, email, refreshToken}
//	loggedUser:{email}:{ip}  -> the current refresh token for that email+IP
//
// The marker entry exists only so bulk revocation can enumerate a user's
// sessions by pattern. A configurable cache namespace prefix is applied to
// every physical key and stripped again during enumeration, so logical keys
// stay stable regardless of the namespace the deployment runs under.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Record] model. It
// does NOT interpret JWT tokens, verify passwords, or enforce authentication
// policy — those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import authsessions, jwt, or password (no upward imports).
//   - Perform application-level authorization decisions.
//   - Store plaintext passwords in [Record] fields.
package session
