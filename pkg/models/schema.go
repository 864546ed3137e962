package models

// Field is a single named, typed column of a canonical schema.
type Field struct {
	Name        string
	Type        FieldType
	Nullable    bool
	Description string
}

// Schema is an ordered list of fields. Field order is significant: it
// defines the positional order of values in a Row. Names are unique
// within a schema.
type Schema struct {
	Fields []Field
}

// NewSchema builds a schema from fields in the given order.
func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// Field returns the field with the given name, or false if absent.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.Fields)
}

// Equal reports deep equality of two schemas, including field order,
// nullability and descriptions.
func (s Schema) Equal(other Schema) bool {
	if len(s.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range s.Fields {
		o := other.Fields[i]
		if f.Name != o.Name || f.Nullable != o.Nullable || f.Description != o.Description {
			return false
		}
		if !f.Type.Equal(o.Type) {
			return false
		}
	}
	return true
}
