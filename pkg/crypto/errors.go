package crypto

import "errors"

// Sentinel errors for the crypto core. All are non-retryable; callers
// must not attempt to distinguish further within
// AuthenticationFailed (GCM tag mismatch covers both tampering and wrong
// key).
var (
	ErrUnsupportedVersion  = errors.New("crypto: unsupported framing version")
	ErrAuthenticationFailed = errors.New("crypto: authentication failed")
	ErrMalformedFraming    = errors.New("crypto: malformed framing")
	ErrKeyDerivationFailed = errors.New("crypto: key derivation failed")
)
