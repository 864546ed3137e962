// Package bigquery holds the warehouse-side schema descriptor types.
// Descriptors are built fresh per conversion call and never retained by
// the conversion layer.
package bigquery

// Field repetition modes. An empty mode is read as NULLABLE.
const (
	ModeRequired = "REQUIRED"
	ModeNullable = "NULLABLE"
	ModeRepeated = "REPEATED"
)

// TableFieldSchema describes one field of a warehouse table: its name,
// type keyword, repetition mode and, for STRUCT/RECORD fields, the
// nested field list.
type TableFieldSchema struct {
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Mode        string              `json:"mode,omitempty"`
	Fields      []*TableFieldSchema `json:"fields,omitempty"`
	Description string              `json:"description,omitempty"`
}

// TableSchema is the warehouse's table schema descriptor.
type TableSchema struct {
	Fields []*TableFieldSchema `json:"fields"`
}

// Repeated reports whether the field's mode is REPEATED.
func (f *TableFieldSchema) Repeated() bool {
	return f.Mode == ModeRepeated
}

// Required reports whether the field's mode is REQUIRED.
func (f *TableFieldSchema) Required() bool {
	return f.Mode == ModeRequired
}
