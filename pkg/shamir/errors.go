package shamir

import "errors"

// Sentinel errors for AdaptedShamirSSS. protocols/threshold wraps these
// into its own closed Kind enum.
var (
	ErrInvalidConfig       = errors.New("shamir: invalid (t, n) configuration")
	ErrInsufficientShares  = errors.New("shamir: fewer than t shares supplied")
	ErrInvalidShareSet     = errors.New("shamir: duplicate or zero participant id")
	ErrShareLengthMismatch = errors.New("shamir: shares of different vector_length mixed")
)
