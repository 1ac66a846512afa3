// Package password implements one-way password hashing and verification with
// PBKDF2-SHA256.
//
// # Output format
//
// Hashes are encoded as three dot-delimited segments:
//
//	<iterations>.<base64(salt)>.<base64(derivedKey)>
//
// The salt is freshly random on every call, so hashing the same password twice
// never yields the same encoding. [Hasher.Verify] re-derives the key with the
// stored iteration count and compares in constant time; any malformed encoding
// fails closed to false rather than returning an error.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// reuse) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other authsessions package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
