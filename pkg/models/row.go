package models

// Row holds canonical values positionally, one per schema field. The
// schema is not carried; callers supply it alongside on every
// conversion.
//
// Concrete value types per kind: int8 (BYTE), int16, int32, int64,
// float32, float64, decimal.Decimal (DECIMAL), bool, string, []byte,
// time.Time in UTC at millisecond precision (TIMESTAMP), []any (ARRAY),
// *MapValue (MAP), *Row (ROW). Logical kinds: time.Time for DATE, TIME
// and DATETIME (TIME values sit on the zero date, DATETIME values carry
// no meaningful zone), EnumValue for Enum, and the base type's value
// for pass-through types.
type Row struct {
	Values []any
}

// NewRow builds a row from values in schema field order.
func NewRow(values ...any) *Row {
	return &Row{Values: values}
}

// Value returns the i-th value, or nil when out of range.
func (r *Row) Value(i int) any {
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// EnumValue is the index of an enum logical value into its type's
// label list.
type EnumValue int32

// MapPair is one key/value entry of a MapValue.
type MapPair struct {
	Key   any
	Value any
}

// MapValue is an insertion-ordered map representation. Duplicate keys
// are kept as-is: the conversion layer never deduplicates, so encoding
// reproduces exactly what was decoded.
type MapValue struct {
	Pairs []MapPair
}

// NewMapValue returns an empty ordered map value.
func NewMapValue() *MapValue {
	return &MapValue{}
}

// Put appends an entry, preserving insertion order.
func (m *MapValue) Put(key, value any) *MapValue {
	m.Pairs = append(m.Pairs, MapPair{Key: key, Value: value})
	return m
}

// Len returns the number of entries, duplicates included.
func (m *MapValue) Len() int {
	return len(m.Pairs)
}

// BinaryRecord is a binary-decoded native record: field name to native
// value, as produced by a row-oriented binary decoder. Nested records
// are BinaryRecord or map[string]any; lists are []any.
type BinaryRecord = map[string]any
