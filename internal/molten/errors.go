// Package molten implements the hypergraph inference engine: the value
// arena, the particle/wave/relation algebra, and the hypergraph state and
// driver that fire pattern-matched rewrite rules to a fixed point.
package molten

import "fmt"

// Kind identifies the category of a core fault, mirroring the Allocation
// fault names used by the original Rust implementation so trace events
// stay comparable across re-implementations.
type Kind string

const (
	KindMissing          Kind = "missing"
	KindDuplicate        Kind = "duplicate"
	KindAllocationLimit  Kind = "allocation_limit"
	KindCollision        Kind = "collision"
	KindLimit            Kind = "limit"
)

// Error is the single error type returned by every core operation. Callers
// branch on Kind rather than matching on formatted text.
type Error struct {
	Kind Kind
	Key  any

	// Limit-specific fields, populated only when Kind == KindLimit.
	Iterations int
	Bound      int
	Size       int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("molten: missing %v", e.Key)
	case KindDuplicate:
		return fmt.Sprintf("molten: duplicate %v", e.Key)
	case KindAllocationLimit:
		return "molten: allocation limit reached"
	case KindCollision:
		return fmt.Sprintf("molten: allocation collision at %v", e.Key)
	case KindLimit:
		return fmt.Sprintf("molten: fixed-point iteration limit reached (iterations=%d bound=%d size=%d)", e.Iterations, e.Bound, e.Size)
	default:
		return "molten: unknown error"
	}
}

// MissingErr reports a lookup against an alias, label, world, or
// refraction entry that does not exist. Recoverable by the caller.
func MissingErr(key any) *Error {
	return &Error{Kind: KindMissing, Key: key}
}

// DuplicateErr reports a computed set that contains a label it should
// not — a logic bug in the core, surfaced rather than recovered.
func DuplicateErr(key any) *Error {
	return &Error{Kind: KindDuplicate, Key: key}
}

// AllocationLimitErr reports counter exhaustion in the arena or the
// hypergraph's label counter. Fatal for the run.
func AllocationLimitErr() *Error {
	return &Error{Kind: KindAllocationLimit}
}

// CollisionErr reports a duplicate-index collision during interning —
// a bug, never a user error.
func CollisionErr(key any) *Error {
	return &Error{Kind: KindCollision, Key: key}
}

// LimitErr reports that fixed exhausted its iteration budget before
// reaching a fixed point.
func LimitErr(iterations, bound, size int) *Error {
	return &Error{Kind: KindLimit, Iterations: iterations, Bound: bound, Size: size}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
