package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
)

var (
	// ErrMissingCredentials means the signature or timestamp header was absent or empty.
	ErrMissingCredentials = errors.New("signature headers missing")

	// ErrInvalidSignature covers every verification failure. Callers cannot
	// tell bad hex, a wrong key, a tampered body, or a stale timestamp apart.
	ErrInvalidSignature = errors.New("signature verification failed")
)

// Verify checks signatureHex against the Ed25519 signature of timestamp||body.
//
// The message is the timestamp bytes immediately followed by the raw body,
// with no separator or re-encoding. Malformed hex returns false.
func Verify(key TrustedKey, body []byte, timestamp, signatureHex string) bool {
	if key.IsZero() {
		return false
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(key.key, msg, sig)
}

// Verified is a request body whose signature has been checked.
// The only way to obtain one is Authenticate.
type Verified struct {
	body      []byte
	timestamp string
}

// Body returns the verified raw body.
func (v Verified) Body() []byte {
	return v.body
}

// Timestamp returns the timestamp header value that was signed.
func (v Verified) Timestamp() string {
	return v.timestamp
}

// Authenticator verifies raw requests against a trusted key.
// It is immutable and safe for concurrent use.
type Authenticator struct {
	key       TrustedKey
	freshness Freshness
}

// NewAuthenticator returns an Authenticator for key. A zero Freshness disables
// the timestamp window check.
func NewAuthenticator(key TrustedKey, freshness Freshness) *Authenticator {
	return &Authenticator{key: key, freshness: freshness}
}

// Authenticate checks header presence, then the signature, then (when
// enabled) timestamp freshness.
func (a *Authenticator) Authenticate(req RawRequest) (Verified, error) {
	sig, ok := req.Signature.Value()
	if !ok {
		return Verified{}, ErrMissingCredentials
	}
	ts, ok := req.Timestamp.Value()
	if !ok {
		return Verified{}, ErrMissingCredentials
	}

	if !Verify(a.key, req.Body, ts, sig) {
		return Verified{}, ErrInvalidSignature
	}

	if !a.freshness.Allows(ts) {
		return Verified{}, ErrInvalidSignature
	}

	return Verified{body: req.Body, timestamp: ts}, nil
}
