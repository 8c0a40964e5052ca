package keys

import (
	"errors"
	"fmt"
)

// Errors returned by registry operations.
var (
	// ErrDuplicateKey indicates an attempt to register a name twice.
	ErrDuplicateKey = errors.New("configuration key already registered")

	// ErrUnknownKey indicates a strict operation on an unregistered name.
	ErrUnknownKey = errors.New("unknown configuration key")

	// ErrTypeMismatch indicates a value that cannot be converted to the key's type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// UnknownKeyError names the key that is not registered.
type UnknownKeyError struct {
	Name string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownKey, e.Name)
}

// Is reports whether target is ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// TypeMismatchError describes a failed coercion.
type TypeMismatchError struct {
	// Key is the configuration key being set.
	Key string
	// Expected is the registered type name.
	Expected string
	// Actual is the Go type of the received value.
	Actual string
	// Value is the received value.
	Value any
	// Err is the conversion failure, if any.
	Err error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s for %q: expected %s, got %s %#v", ErrTypeMismatch, e.Key, e.Expected, e.Actual, e.Value)
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Unwrap returns the underlying conversion error.
func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}

func mismatch(key string, t Type, value any, err error) *TypeMismatchError {
	return &TypeMismatchError{
		Key:      key,
		Expected: t.Name(),
		Actual:   fmt.Sprintf("%T", value),
		Value:    value,
		Err:      err,
	}
}
