package models

// TypeName identifies the kind of a FieldType. The set is closed: every
// converter switches exhaustively over these values, so adding a kind
// means visiting every switch in internal/convert.
type TypeName int

const (
	TypeByte TypeName = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeBoolean
	TypeString
	TypeBytes
	TypeTimestamp // absolute instant, millisecond precision, UTC
	TypeArray
	TypeMap
	TypeRow
	TypeLogical
)

var typeNames = map[TypeName]string{
	TypeByte:      "BYTE",
	TypeInt16:     "INT16",
	TypeInt32:     "INT32",
	TypeInt64:     "INT64",
	TypeFloat32:   "FLOAT32",
	TypeFloat64:   "FLOAT64",
	TypeDecimal:   "DECIMAL",
	TypeBoolean:   "BOOLEAN",
	TypeString:    "STRING",
	TypeBytes:     "BYTES",
	TypeTimestamp: "TIMESTAMP",
	TypeArray:     "ARRAY",
	TypeMap:       "MAP",
	TypeRow:       "ROW",
	TypeLogical:   "LOGICAL",
}

func (t TypeName) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsCollection reports whether the kind holds other values (array or map).
func (t TypeName) IsCollection() bool {
	return t == TypeArray || t == TypeMap
}

// Representation describes how a logical type differs from its base
// type on the wire.
type Representation int

const (
	ReprDate Representation = iota
	ReprTime
	ReprDateTime
	ReprPassThrough
	ReprEnum
)

// LogicalType is a named type layered over a base FieldType. Only the
// external representation changes; storage follows the base type.
type LogicalType struct {
	Identifier string
	Base       FieldType
	Repr       Representation
	EnumValues []string // labels for ReprEnum, indexed by EnumValue
}

// FieldType is a closed variant describing the type of a Field. Exactly
// the payload fields for the active TypeName are set; the rest are nil.
type FieldType struct {
	Name      TypeName
	Elem      *FieldType   // TypeArray element
	Key       *FieldType   // TypeMap key
	Value     *FieldType   // TypeMap value
	RowSchema *Schema      // TypeRow nested schema
	Logical   *LogicalType // TypeLogical
}

func Byte() FieldType    { return FieldType{Name: TypeByte} }
func Int16() FieldType   { return FieldType{Name: TypeInt16} }
func Int32() FieldType   { return FieldType{Name: TypeInt32} }
func Int64() FieldType   { return FieldType{Name: TypeInt64} }
func Float32() FieldType { return FieldType{Name: TypeFloat32} }
func Float64() FieldType { return FieldType{Name: TypeFloat64} }
func Decimal() FieldType { return FieldType{Name: TypeDecimal} }
func Boolean() FieldType { return FieldType{Name: TypeBoolean} }
func String() FieldType  { return FieldType{Name: TypeString} }
func Bytes() FieldType   { return FieldType{Name: TypeBytes} }

// Timestamp is an absolute instant with millisecond precision.
func Timestamp() FieldType { return FieldType{Name: TypeTimestamp} }

func ArrayOf(elem FieldType) FieldType {
	return FieldType{Name: TypeArray, Elem: &elem}
}

func MapOf(key, value FieldType) FieldType {
	return FieldType{Name: TypeMap, Key: &key, Value: &value}
}

func RowOf(schema Schema) FieldType {
	return FieldType{Name: TypeRow, RowSchema: &schema}
}

func LogicalOf(lt LogicalType) FieldType {
	return FieldType{Name: TypeLogical, Logical: &lt}
}

// Identifiers of the built-in logical types. These appear in external
// type lookups and must stay stable.
const (
	DateIdentifier       = "DATE"
	TimeIdentifier       = "TIME"
	DateTimeIdentifier   = "DATETIME"
	TimeWithTZIdentifier = "SqlTimeWithLocalTzType"
	EnumIdentifier       = "Enum"
)

// Date is a calendar date with no time-of-day or zone.
func Date() FieldType {
	return LogicalOf(LogicalType{Identifier: DateIdentifier, Base: Int64(), Repr: ReprDate})
}

// TimeOfDay is a time within a day with no date or zone.
func TimeOfDay() FieldType {
	return LogicalOf(LogicalType{Identifier: TimeIdentifier, Base: Int64(), Repr: ReprTime})
}

// DateTime is a local date and time with no zone attached.
func DateTime() FieldType {
	return LogicalOf(LogicalType{Identifier: DateTimeIdentifier, Base: String(), Repr: ReprDateTime})
}

// Enum is a closed set of named values carried as an index into labels.
func Enum(labels ...string) FieldType {
	return LogicalOf(LogicalType{Identifier: EnumIdentifier, Base: Int32(), Repr: ReprEnum, EnumValues: labels})
}

// PassThrough wraps a base type under a new identifier without changing
// its representation.
func PassThrough(identifier string, base FieldType) FieldType {
	return LogicalOf(LogicalType{Identifier: identifier, Base: base, Repr: ReprPassThrough})
}

// String renders the type for logs and error messages.
func (ft FieldType) String() string {
	switch ft.Name {
	case TypeArray:
		return "ARRAY<" + ft.Elem.String() + ">"
	case TypeMap:
		return "MAP<" + ft.Key.String() + ", " + ft.Value.String() + ">"
	case TypeRow:
		return "ROW"
	case TypeLogical:
		return ft.Logical.Identifier
	default:
		return ft.Name.String()
	}
}

// Equal reports deep structural equality of two field types.
func (ft FieldType) Equal(other FieldType) bool {
	if ft.Name != other.Name {
		return false
	}
	switch ft.Name {
	case TypeArray:
		return ft.Elem.Equal(*other.Elem)
	case TypeMap:
		return ft.Key.Equal(*other.Key) && ft.Value.Equal(*other.Value)
	case TypeRow:
		return ft.RowSchema.Equal(*other.RowSchema)
	case TypeLogical:
		a, b := ft.Logical, other.Logical
		if a.Identifier != b.Identifier || a.Repr != b.Repr || !a.Base.Equal(b.Base) {
			return false
		}
		if len(a.EnumValues) != len(b.EnumValues) {
			return false
		}
		for i := range a.EnumValues {
			if a.EnumValues[i] != b.EnumValues[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}
