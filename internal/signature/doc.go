// Package signature authenticates platform interaction requests.
//
// The platform signs every request with Ed25519 over the timestamp header
// followed by the raw body. A request is accepted only when both headers are
// present and the signature verifies against the configured TrustedKey.
//
// # Security Model
//
//   - Verification is delegated to crypto/ed25519 (constant time)
//   - Malformed hex, wrong key, tampered body, and stale timestamps are one error
//   - Key material and signatures are never logged; use TrustedKey.Fingerprint
//   - No replay tracking: verifying the same triple twice gives the same answer
//
// Successful authentication yields a Verified value. Downstream parsers accept
// only Verified, so an unauthenticated body cannot reach routing.
package signature
