// Package jwt manages access-token issuance and verification with a symmetric
// HMAC-SHA-256 key and strict validation semantics suitable for low-latency
// authentication paths.
package jwt
