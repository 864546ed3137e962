package convert

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowbridge/rowbridge/pkg/models"
)

// RowToTableRow converts a canonical row into the textual row shape
// consumed by the warehouse's text ingestion, keyed by field name in
// schema order.
func RowToTableRow(schema models.Schema, row *models.Row) (*models.TableRow, error) {
	out := models.NewTableRow()
	for i, field := range schema.Fields {
		tv, err := encodeValue(field.Type, row.Value(i), field.Nullable)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", field.Name, err)
		}
		out.Set(field.Name, tv)
	}
	return out, nil
}

func encodeValue(ft models.FieldType, v any, nullable bool) (any, error) {
	if v == nil {
		if !nullable {
			return nil, fmt.Errorf("%w: declared type %s", ErrNonNullableNull, ft.Name)
		}
		return nil, nil
	}

	switch ft.Name {
	case models.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return nil, badEncodeValue(ft, v)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			tv, err := encodeValue(*ft.Elem, item, true)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, tv)
		}
		return out, nil

	case models.TypeMap:
		mv, ok := v.(*models.MapValue)
		if !ok {
			return nil, badEncodeValue(ft, v)
		}
		out := make([]any, 0, mv.Len())
		for i, pair := range mv.Pairs {
			key, err := encodeValue(*ft.Key, pair.Key, true)
			if err != nil {
				return nil, fmt.Errorf("entry %d key: %w", i, err)
			}
			value, err := encodeValue(*ft.Value, pair.Value, true)
			if err != nil {
				return nil, fmt.Errorf("entry %d value: %w", i, err)
			}
			out = append(out, models.NewTableRow().
				Set(mapKeyFieldName, key).
				Set(mapValueFieldName, value))
		}
		return out, nil

	case models.TypeRow:
		sub, ok := v.(*models.Row)
		if !ok {
			return nil, badEncodeValue(ft, v)
		}
		return RowToTableRow(*ft.RowSchema, sub)

	case models.TypeTimestamp:
		t, ok := v.(time.Time)
		if !ok {
			return nil, badEncodeValue(ft, v)
		}
		return t.UTC().Format(timestampPrintLayout), nil

	case models.TypeInt16, models.TypeInt32, models.TypeFloat32, models.TypeBoolean, models.TypeFloat64:
		// These have native JSON representations for all their values.
		return fmt.Sprint(v), nil

	case models.TypeString, models.TypeInt64, models.TypeDecimal:
		// String-rendered so float-based JSON encoders downstream
		// cannot corrupt large integers or exact decimals.
		if d, ok := v.(decimal.Decimal); ok {
			return d.String(), nil
		}
		return fmt.Sprint(v), nil

	case models.TypeBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, badEncodeValue(ft, v)
		}
		return base64.StdEncoding.EncodeToString(b), nil

	case models.TypeLogical:
		return encodeLogicalValue(ft.Logical, v, nullable)

	default:
		return fmt.Sprint(v), nil
	}
}

func encodeLogicalValue(lt *models.LogicalType, v any, nullable bool) (any, error) {
	switch lt.Repr {
	case models.ReprDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: encoding %T as %s", ErrUnsupportedType, v, lt.Identifier)
		}
		return t.Format(dateLayout), nil

	case models.ReprTime:
		// Seconds are always rendered: the warehouse TIME type
		// requires them, unlike a bare ISO time-of-day form.
		// Fractional seconds render only when non-zero, six digits.
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: encoding %T as %s", ErrUnsupportedType, v, lt.Identifier)
		}
		if t.Nanosecond() == 0 {
			return t.Format(timeLayout), nil
		}
		return t.Format(timeFracLayout), nil

	case models.ReprDateTime:
		// Same fractional-second rule as TIME, composed with the date.
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: encoding %T as %s", ErrUnsupportedType, v, lt.Identifier)
		}
		if t.Nanosecond() == 0 {
			return t.Format(datetimeLayout), nil
		}
		return t.Format(datetimeFracLayout), nil

	case models.ReprEnum:
		idx, ok := v.(models.EnumValue)
		if !ok {
			return nil, fmt.Errorf("%w: encoding %T as %s", ErrUnsupportedType, v, lt.Identifier)
		}
		if int(idx) < 0 || int(idx) >= len(lt.EnumValues) {
			return nil, fmt.Errorf("%w: enum index %d out of range for %s", ErrUnsupportedType, idx, lt.Identifier)
		}
		return lt.EnumValues[idx], nil

	default:
		// Pass-through and anything else: default text form.
		return fmt.Sprint(v), nil
	}
}

func badEncodeValue(ft models.FieldType, v any) error {
	return fmt.Errorf("%w: encoding value of type %T as %s", ErrUnsupportedType, v, ft.Name)
}
