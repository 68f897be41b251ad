package dilithium

import "errors"

// Sentinel errors for the reference signer, in the same package-level
// style as pkg/shamir's errors.go.
var (
	ErrRejectionExhausted = errors.New("dilithium: rejection sampling exceeded attempt cap")
	ErrInvalidSignature   = errors.New("dilithium: signature failed verification")
	ErrInvalidSeed        = errors.New("dilithium: seed has wrong length")
)
