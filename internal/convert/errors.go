// Package convert translates schemas and rows between the canonical
// in-memory model, the warehouse schema descriptor, the textual row
// encoding, and binary-decoded native records. All conversions are pure
// functions over immutable inputs and safe for concurrent use.
package convert

import "errors"

// Error kinds surfaced by the converters. All are immediate failures of
// the single conversion call; nothing here retries. Callers distinguish
// kinds with errors.Is.
var (
	// ErrUnsupportedType marks a type keyword, logical identifier or
	// raw value shape with no mapping rule.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNonNullableNull marks a null value arriving for a field the
	// schema declares non-nullable.
	ErrNonNullableNull = errors.New("null value for non-nullable field")

	// ErrStructuralMismatch marks structure the warehouse cannot
	// express, such as an array directly containing another array.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrPrecisionLoss marks a timestamp carrying sub-millisecond
	// precision under the reject policy.
	ErrPrecisionLoss = errors.New("timestamp precision loss")

	// ErrUnknownLogicalType marks an unrecognized logical identifier.
	// This is a schema-evolution defect, not bad input.
	ErrUnknownLogicalType = errors.New("unknown logical type")
)
