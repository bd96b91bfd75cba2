// Package types provides nullable value types for optional wire fields.
package types

// Nullable is implemented by types that distinguish a null value from a zero value.
type Nullable interface {
	// IsNil returns true if the value is null.
	IsNil() bool
}
