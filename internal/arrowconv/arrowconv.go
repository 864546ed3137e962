// Package arrowconv maps canonical schemas onto Arrow schemas for
// columnar staging of converted rows.
package arrowconv

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/rowbridge/rowbridge/pkg/models"
)

// NUMERIC arrives as a fixed-point value at precision 38, scale 9.
const (
	decimalPrecision = 38
	decimalScale     = 9
)

// ToArrowSchema converts a canonical schema to an Arrow schema.
// Timestamps keep millisecond precision with a UTC zone; DATETIME
// logical values map to a zone-less microsecond timestamp.
func ToArrowSchema(schema models.Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		dt, err := toArrowType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable})
	}
	return arrow.NewSchema(fields, nil), nil
}

func toArrowType(ft models.FieldType) (arrow.DataType, error) {
	switch ft.Name {
	case models.TypeByte:
		return arrow.PrimitiveTypes.Int8, nil
	case models.TypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case models.TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case models.TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case models.TypeFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case models.TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case models.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case models.TypeString:
		return arrow.BinaryTypes.String, nil
	case models.TypeBytes:
		return arrow.BinaryTypes.Binary, nil
	case models.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms, nil
	case models.TypeDecimal:
		return &arrow.Decimal128Type{Precision: decimalPrecision, Scale: decimalScale}, nil
	case models.TypeArray:
		elem, err := toArrowType(*ft.Elem)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case models.TypeMap:
		key, err := toArrowType(*ft.Key)
		if err != nil {
			return nil, err
		}
		value, err := toArrowType(*ft.Value)
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(key, value), nil
	case models.TypeRow:
		fields := make([]arrow.Field, 0, len(ft.RowSchema.Fields))
		for _, f := range ft.RowSchema.Fields {
			dt, err := toArrowType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			fields = append(fields, arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable})
		}
		return arrow.StructOf(fields...), nil
	case models.TypeLogical:
		return toArrowLogicalType(ft.Logical)
	default:
		return nil, fmt.Errorf("no arrow mapping for type %s", ft.Name)
	}
}

func toArrowLogicalType(lt *models.LogicalType) (arrow.DataType, error) {
	switch lt.Repr {
	case models.ReprDate:
		return arrow.FixedWidthTypes.Date32, nil
	case models.ReprTime:
		return arrow.FixedWidthTypes.Time64us, nil
	case models.ReprDateTime:
		// Zone-less local timestamp.
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case models.ReprEnum:
		return arrow.BinaryTypes.String, nil
	case models.ReprPassThrough:
		return toArrowType(lt.Base)
	default:
		return nil, fmt.Errorf("no arrow mapping for logical type %q", lt.Identifier)
	}
}
