package meta

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes metadata configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeMissingName indicates an empty table or column name.
	ErrCodeMissingName ConfigErrorCode = "MISSING_NAME"

	// ErrCodeDuplicateTable indicates two entity types share a table name,
	// or one entity type was registered twice.
	ErrCodeDuplicateTable ConfigErrorCode = "DUPLICATE_TABLE"

	// ErrCodeDuplicateColumn indicates two members map to the same column.
	ErrCodeDuplicateColumn ConfigErrorCode = "DUPLICATE_COLUMN"

	// ErrCodeDuplicateMember indicates one member was declared twice.
	ErrCodeDuplicateMember ConfigErrorCode = "DUPLICATE_MEMBER"

	// ErrCodeDuplicateKey indicates more than one primary key column.
	ErrCodeDuplicateKey ConfigErrorCode = "DUPLICATE_KEY"

	// ErrCodeNotStruct indicates the registered type is not a struct.
	ErrCodeNotStruct ConfigErrorCode = "NOT_STRUCT"

	// ErrCodeBadTag indicates a column tag with an unknown option.
	ErrCodeBadTag ConfigErrorCode = "BAD_TAG"

	// ErrCodeUnknownEntity indicates a declaration for an entity that was never registered.
	ErrCodeUnknownEntity ConfigErrorCode = "UNKNOWN_ENTITY"

	// ErrCodeAmbiguousEntity indicates a declaration whose bare type name
	// matches more than one registered entity.
	ErrCodeAmbiguousEntity ConfigErrorCode = "AMBIGUOUS_ENTITY"

	// ErrCodeUnknownMember indicates a declaration for a member the entity does not have.
	ErrCodeUnknownMember ConfigErrorCode = "UNKNOWN_MEMBER"
)

// ConfigError reports a malformed entity declaration.
// These are startup errors: they are never produced at query time.
type ConfigError struct {
	Code    ConfigErrorCode
	Entity  string
	Member  string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("%s: %s (entity=%s, member=%s)", e.Code, e.Message, e.Entity, e.Member)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (entity=%s)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err (or anything it wraps) is a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasCode reports whether err contains a *ConfigError with the given code.
// Joined errors are searched as well.
func HasCode(err error, code ConfigErrorCode) bool {
	if ce, ok := err.(*ConfigError); ok && ce.Code == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	}
	return false
}

func newConfigError(code ConfigErrorCode, entity, member, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Entity:  entity,
		Member:  member,
		Message: fmt.Sprintf(format, args...),
	}
}
