package convert

import (
	"fmt"

	"github.com/rowbridge/rowbridge/pkg/bigquery"
	"github.com/rowbridge/rowbridge/pkg/models"
)

// FromTableSchema converts a warehouse table schema descriptor into a
// canonical schema. A REPEATED field becomes an array of its resolved
// type, unless map inference recognizes it as a map. A field is
// nullable whenever its mode is not REQUIRED.
func FromTableSchema(ts *bigquery.TableSchema, opts SchemaOptions) (models.Schema, error) {
	return fromTableFieldSchemas(ts.Fields, opts)
}

func fromTableFieldSchemas(fields []*bigquery.TableFieldSchema, opts SchemaOptions) (models.Schema, error) {
	schema := models.Schema{Fields: make([]models.Field, 0, len(fields))}
	for _, f := range fields {
		ft, err := fromTableFieldType(f.Type, f.Fields, opts)
		if err != nil {
			return models.Schema{}, err
		}
		if f.Mode == bigquery.ModeRepeated && ft.Name != models.TypeMap {
			ft = models.ArrayOf(ft)
		}
		// An unset mode means NULLABLE.
		nullable := f.Mode == "" || f.Mode == bigquery.ModeNullable
		schema.Fields = append(schema.Fields, models.Field{
			Name:        f.Name,
			Type:        ft,
			Nullable:    nullable,
			Description: f.Description,
		})
	}
	return schema, nil
}

func fromTableFieldType(keyword string, nested []*bigquery.TableFieldSchema, opts SchemaOptions) (models.FieldType, error) {
	switch keyword {
	case "STRING":
		return models.String(), nil
	case "BYTES":
		return models.Bytes(), nil
	case "INT64", "INTEGER":
		return models.Int64(), nil
	case "FLOAT64", "FLOAT":
		return models.Float64(), nil
	case "BOOL", "BOOLEAN":
		return models.Boolean(), nil
	case "NUMERIC":
		return models.Decimal(), nil
	case "TIMESTAMP":
		return models.Timestamp(), nil
	case "TIME":
		return models.TimeOfDay(), nil
	case "DATE":
		return models.Date(), nil
	case "DATETIME":
		return models.DateTime(), nil
	case "STRUCT", "RECORD":
		if opts.InferMaps && len(nested) == 2 &&
			nested[0].Name == mapKeyFieldName && nested[1].Name == mapValueFieldName {
			key, err := fromTableFieldType(nested[0].Type, nested[0].Fields, opts)
			if err != nil {
				return models.FieldType{}, err
			}
			value, err := fromTableFieldType(nested[1].Type, nested[1].Fields, opts)
			if err != nil {
				return models.FieldType{}, err
			}
			return models.MapOf(key, value), nil
		}
		sub, err := fromTableFieldSchemas(nested, opts)
		if err != nil {
			return models.FieldType{}, err
		}
		return models.RowOf(sub), nil
	default:
		return models.FieldType{}, fmt.Errorf("%w: converting warehouse type %q is unsupported", ErrUnsupportedType, keyword)
	}
}

// ToTableSchema converts a canonical schema into a warehouse table
// schema descriptor. Non-nullable fields get mode REQUIRED; arrays get
// mode REPEATED; maps become a REPEATED two-field key/value struct.
func ToTableSchema(schema models.Schema) (*bigquery.TableSchema, error) {
	fields, err := toTableFieldSchemas(schema)
	if err != nil {
		return nil, err
	}
	return &bigquery.TableSchema{Fields: fields}, nil
}

func toTableFieldSchemas(schema models.Schema) ([]*bigquery.TableFieldSchema, error) {
	out := make([]*bigquery.TableFieldSchema, 0, len(schema.Fields))
	for _, sf := range schema.Fields {
		ft := sf.Type
		field := &bigquery.TableFieldSchema{Name: sf.Name}
		if sf.Description != "" {
			field.Description = sf.Description
		}
		if !sf.Nullable {
			field.Mode = bigquery.ModeRequired
		}
		if ft.Name == models.TypeArray {
			elem := *ft.Elem
			if elem.Name.IsCollection() && elem.Name != models.TypeMap {
				return nil, fmt.Errorf("%w: field %q is an array of a collection, which the warehouse cannot represent", ErrStructuralMismatch, sf.Name)
			}
			field.Mode = bigquery.ModeRepeated
			ft = elem
		}
		if ft.Name == models.TypeMap {
			mapSchema := models.NewSchema(
				models.Field{Name: mapKeyFieldName, Type: *ft.Key},
				models.Field{Name: mapValueFieldName, Type: *ft.Value},
			)
			nested, err := toTableFieldSchemas(mapSchema)
			if err != nil {
				return nil, err
			}
			field.Fields = nested
			field.Mode = bigquery.ModeRepeated
			ft = models.RowOf(mapSchema)
		} else if ft.Name == models.TypeRow {
			nested, err := toTableFieldSchemas(*ft.RowSchema)
			if err != nil {
				return nil, err
			}
			field.Fields = nested
		}
		keyword, err := toKeyword(ft)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", sf.Name, err)
		}
		field.Type = keyword
		out = append(out, field)
	}
	return out, nil
}

// toKeyword resolves a canonical type to its warehouse type keyword.
// Logical types resolve by identifier first; pass-through types fall
// back to their base type.
func toKeyword(ft models.FieldType) (string, error) {
	if ft.Name == models.TypeLogical {
		lt := ft.Logical
		if keyword, ok := logicalToKeyword[lt.Identifier]; ok {
			return keyword, nil
		}
		if lt.Repr == models.ReprPassThrough {
			return toKeyword(lt.Base)
		}
		return "", fmt.Errorf("%w: cannot convert logical type %q to a warehouse type", ErrUnsupportedType, lt.Identifier)
	}
	if keyword, ok := canonicalToKeyword[ft.Name]; ok {
		return keyword, nil
	}
	return "", fmt.Errorf("%w: cannot convert type %s to a warehouse type", ErrUnsupportedType, ft.Name)
}
