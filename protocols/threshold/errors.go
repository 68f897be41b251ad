package threshold

import (
	"errors"
	"fmt"

	"github.com/vantoluck/dilithium-threshold/pkg/shamir"
)

// Kind is a closed error enum: every failure this package returns carries
// exactly one Kind, and errors never carry sensitive data (coefficients,
// honest-party ids beyond what's needed).
type Kind int

const (
	KindInvalidConfig Kind = iota
	KindInsufficientShares
	KindInvalidShareSet
	KindShareLengthMismatch
	KindInconsistentSession
	KindSigningBoundViolation
	KindRejectionExhausted
	KindVerificationFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindInsufficientShares:
		return "InsufficientShares"
	case KindInvalidShareSet:
		return "InvalidShareSet"
	case KindShareLengthMismatch:
		return "ShareLengthMismatch"
	case KindInconsistentSession:
		return "InconsistentSession"
	case KindSigningBoundViolation:
		return "SigningBoundViolation"
	case KindRejectionExhausted:
		return "RejectionExhausted"
	case KindVerificationFailed:
		return "VerificationFailed"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a non-sensitive, human-readable message. Use
// errors.Is against the Kind-typed sentinels below, or inspect Kind()
// directly.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("threshold: %s: %s", e.kind, e.msg) }

// Kind returns the error's closed-enum classification.
func (e *Error) Kind() Kind { return e.kind }

// Is lets errors.Is(err, KindX) style matching work against the package
// sentinels declared below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.kind == e.kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Sentinels usable with errors.Is, one per Kind, following the same
// closed-enum-plus-sentinel idiom pkg/shamir uses.
var (
	ErrInvalidConfig         = &Error{kind: KindInvalidConfig, msg: "invalid configuration"}
	ErrInsufficientShares    = &Error{kind: KindInsufficientShares, msg: "insufficient shares"}
	ErrInvalidShareSet       = &Error{kind: KindInvalidShareSet, msg: "invalid share set"}
	ErrShareLengthMismatch   = &Error{kind: KindShareLengthMismatch, msg: "share length mismatch"}
	ErrInconsistentSession   = &Error{kind: KindInconsistentSession, msg: "inconsistent session"}
	ErrSigningBoundViolation = &Error{kind: KindSigningBoundViolation, msg: "signing bound violation"}
	ErrRejectionExhausted    = &Error{kind: KindRejectionExhausted, msg: "rejection sampling exhausted"}
	ErrVerificationFailed    = &Error{kind: KindVerificationFailed, msg: "verification failed"}
)

// fromShamir reclassifies a pkg/shamir sentinel error into this package's
// closed Kind enum, so callers only ever need to errors.Is against one
// error surface.
func fromShamir(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shamir.ErrInvalidConfig):
		return newError(KindInvalidConfig, "%s", err.Error())
	case errors.Is(err, shamir.ErrInsufficientShares):
		return newError(KindInsufficientShares, "%s", err.Error())
	case errors.Is(err, shamir.ErrInvalidShareSet):
		return newError(KindInvalidShareSet, "%s", err.Error())
	case errors.Is(err, shamir.ErrShareLengthMismatch):
		return newError(KindShareLengthMismatch, "%s", err.Error())
	default:
		return err
	}
}
