package index

import (
	"errors"
	"fmt"
)

// Sentinel errors for index operations
var (
	// ErrDeserialization is returned when persisted content does not match the schema
	ErrDeserialization = errors.New("index deserialization failed")

	// ErrDuplicateIdentity is returned when two records resolve to the same identity
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrValueCoercion is returned when a value cannot be converted into a key's type
	ErrValueCoercion = errors.New("value coercion failed")

	// ErrIndexSealed is returned when inserting into an index that is already queryable
	ErrIndexSealed = errors.New("index is sealed for insertion")
)

// DeserializationError describes which key could not be restored and why.
type DeserializationError struct {
	Key    string
	Reason string
}

func (e *DeserializationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("failed to deserialize index: %s", e.Reason)
	}
	return fmt.Sprintf("failed to deserialize index key '%s': %s", e.Key, e.Reason)
}

func (e *DeserializationError) Is(target error) bool {
	return target == ErrDeserialization
}

// NewDeserializationError creates a new DeserializationError
func NewDeserializationError(key, reason string) *DeserializationError {
	return &DeserializationError{Key: key, Reason: reason}
}

// DuplicateIdentityError names the identity that is held by more than one record.
type DuplicateIdentityError struct {
	Identity string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("identity '%s' is not unique", e.Identity)
}

func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}

// NewDuplicateIdentityError creates a new DuplicateIdentityError
func NewDuplicateIdentityError(identity string) *DuplicateIdentityError {
	return &DuplicateIdentityError{Identity: identity}
}

// ValueCoercionError wraps the parser error for a value a key could not accept.
type ValueCoercionError struct {
	Key   string
	Value string
	Err   error
}

func (e *ValueCoercionError) Error() string {
	return fmt.Sprintf("key '%s' cannot accept value '%s': %v", e.Key, e.Value, e.Err)
}

func (e *ValueCoercionError) Is(target error) bool {
	return target == ErrValueCoercion
}

func (e *ValueCoercionError) Unwrap() error {
	return e.Err
}

// NewValueCoercionError creates a new ValueCoercionError
func NewValueCoercionError(key, value string, err error) *ValueCoercionError {
	return &ValueCoercionError{Key: key, Value: value, Err: err}
}
