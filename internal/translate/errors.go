package translate

import (
	"errors"
	"fmt"
)

// SkipReason says why an expression was left out of a fragment.
type SkipReason string

const (
	ReasonNil           SkipReason = "nil expression"
	ReasonNotComparison SkipReason = "not a comparison"
	ReasonUnknownEntity SkipReason = "entity not registered"
	ReasonUnknownMember SkipReason = "member has no column"
	ReasonBadOperator   SkipReason = "invalid operator"
	ReasonOtherEntity   SkipReason = "expression targets another entity"
)

// SkipError describes one skipped expression. It is only returned in
// strict mode.
type SkipError struct {
	Index  int
	Entity string
	Member string
	Reason SkipReason
}

func (e *SkipError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("predicate %d skipped: %s (entity=%s, member=%s)", e.Index, e.Reason, e.Entity, e.Member)
	}
	if e.Entity != "" {
		return fmt.Sprintf("predicate %d skipped: %s (entity=%s)", e.Index, e.Reason, e.Entity)
	}
	return fmt.Sprintf("predicate %d skipped: %s", e.Index, e.Reason)
}

// IsSkipError reports whether err contains a *SkipError.
func IsSkipError(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}
