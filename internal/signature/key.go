package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// TrustedKey is the platform's Ed25519 public key. It is only ever used to
// verify; it is loaded once and never mutated.
type TrustedKey struct {
	key ed25519.PublicKey
}

// ParseTrustedKey decodes a hex-encoded Ed25519 public key.
// Hex is case-insensitive and surrounding whitespace is ignored.
func ParseTrustedKey(s string) (TrustedKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TrustedKey{}, fmt.Errorf("public key is empty")
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return TrustedKey{}, fmt.Errorf("public key is not valid hex: %w", err)
	}

	return NewTrustedKey(raw)
}

// NewTrustedKey wraps raw public key bytes. The bytes are copied.
func NewTrustedKey(raw []byte) (TrustedKey, error) {
	if len(raw) != ed25519.PublicKeySize {
		return TrustedKey{}, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}

	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, raw)
	return TrustedKey{key: key}, nil
}

// IsZero reports whether the key was never initialized.
func (k TrustedKey) IsZero() bool {
	return len(k.key) == 0
}

// Fingerprint returns a short BLAKE3 digest of the key, safe to log.
func (k TrustedKey) Fingerprint() string {
	if k.IsZero() {
		return ""
	}
	sum := blake3.Sum256(k.key)
	return hex.EncodeToString(sum[:8])
}

// String never prints key material.
func (k TrustedKey) String() string {
	return "ed25519:" + k.Fingerprint()
}
