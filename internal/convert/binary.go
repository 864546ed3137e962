package convert

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/shopspring/decimal"

	"github.com/rowbridge/rowbridge/pkg/models"
)

// numericScale is the fixed scale of the warehouse NUMERIC type
// (precision 38, scale 9) as it arrives in binary form.
const numericScale = 9

// RowFromBinary converts a binary-decoded native record into a
// canonical row, field by field in schema order. Native fields are
// matched by name.
func RowFromBinary(schema models.Schema, rec models.BinaryRecord, opts Options) (*models.Row, error) {
	values := make([]any, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		v, err := binaryValue(field.Type, rec[field.Name], field.Nullable, opts)
		if err != nil {
			return nil, fmt.Errorf("converting field %q: %w", field.Name, err)
		}
		values = append(values, v)
	}
	return &models.Row{Values: values}, nil
}

// binaryValue converts one native value to its canonical form per the
// declared field type. Container elements are treated as nullable; only
// declared fields carry nullability.
func binaryValue(ft models.FieldType, v any, nullable bool, opts Options) (any, error) {
	if v == nil {
		if !nullable {
			return nil, fmt.Errorf("%w: declared type %s", ErrNonNullableNull, ft.Name)
		}
		return nil, nil
	}

	switch ft.Name {
	case models.TypeByte:
		n, ok := toInt64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return int8(n), nil

	case models.TypeInt16:
		n, ok := toInt64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return int16(n), nil

	case models.TypeInt32:
		n, ok := toInt64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return int32(n), nil

	case models.TypeInt64:
		n, ok := toInt64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return n, nil

	case models.TypeFloat32:
		f, ok := toFloat64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return float32(f), nil

	case models.TypeFloat64:
		f, ok := toFloat64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return f, nil

	case models.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return b, nil

	case models.TypeString:
		// Binary decoders hand strings back either as string or as
		// raw UTF-8 bytes; both map to the canonical string.
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		default:
			return nil, badBinaryValue(ft, v)
		}

	case models.TypeBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil

	case models.TypeTimestamp:
		micros, ok := toInt64(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return microsToMillis(micros, opts)

	case models.TypeDecimal:
		b, ok := v.([]byte)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		num, err := decimal128.FromBigEndian(b)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding NUMERIC bytes: %v", ErrUnsupportedType, err)
		}
		return decimal.NewFromBigInt(num.BigInt(), -numericScale), nil

	case models.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			cv, err := binaryValue(*ft.Elem, item, true, opts)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, cv)
		}
		return out, nil

	case models.TypeMap:
		// Maps arrive as a list of two-field key/value records.
		// Duplicate keys are kept; ordering follows the input.
		items, ok := v.([]any)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		out := models.NewMapValue()
		for i, item := range items {
			entry, ok := toBinaryRecord(item)
			if !ok {
				return nil, fmt.Errorf("entry %d: %w", i, badBinaryValue(ft, item))
			}
			key, err := binaryValue(*ft.Key, entry[mapKeyFieldName], true, opts)
			if err != nil {
				return nil, fmt.Errorf("entry %d key: %w", i, err)
			}
			value, err := binaryValue(*ft.Value, entry[mapValueFieldName], true, opts)
			if err != nil {
				return nil, fmt.Errorf("entry %d value: %w", i, err)
			}
			out.Put(key, value)
		}
		return out, nil

	case models.TypeRow:
		rec, ok := toBinaryRecord(v)
		if !ok {
			return nil, badBinaryValue(ft, v)
		}
		return RowFromBinary(*ft.RowSchema, rec, opts)

	case models.TypeLogical:
		return binaryLogicalValue(ft.Logical, v, nullable, opts)

	default:
		return nil, fmt.Errorf("%w: converting values of type %s is unsupported", ErrUnsupportedType, ft.Name)
	}
}

func binaryLogicalValue(lt *models.LogicalType, v any, nullable bool, opts Options) (any, error) {
	switch lt.Repr {
	case models.ReprDate:
		// Day offset from the epoch.
		days, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: converting %T to %s", ErrUnsupportedType, v, lt.Identifier)
		}
		return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)), nil

	case models.ReprTime:
		// Microseconds since midnight, placed on the zero date so the
		// value compares equal to its parsed text form.
		micros, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: converting %T to %s", ErrUnsupportedType, v, lt.Identifier)
		}
		return time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(micros) * time.Microsecond), nil

	case models.ReprDateTime:
		var s string
		switch sv := v.(type) {
		case string:
			s = sv
		case []byte:
			s = string(sv)
		default:
			return nil, fmt.Errorf("%w: converting %T to %s", ErrUnsupportedType, v, lt.Identifier)
		}
		t, err := time.Parse(datetimeLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s value %q: %v", ErrUnsupportedType, lt.Identifier, s, err)
		}
		return t, nil

	case models.ReprPassThrough:
		return binaryValue(lt.Base, v, nullable, opts)

	default:
		if lt.Identifier == models.TimeWithTZIdentifier {
			micros, ok := toInt64(v)
			if !ok {
				return nil, fmt.Errorf("%w: converting %T to %s", ErrUnsupportedType, v, lt.Identifier)
			}
			return microsToMillis(micros, opts)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogicalType, lt.Identifier)
	}
}

// microsToMillis reduces a microsecond instant to the millisecond
// precision kept internally, applying the caller's truncation policy.
func microsToMillis(micros int64, opts Options) (any, error) {
	switch opts.TruncateTimestamps {
	case TruncateSubMillis:
		return time.UnixMilli(micros / 1000).UTC(), nil
	default:
		if micros%1000 != 0 {
			return nil, fmt.Errorf("%w: value %d has sub-millisecond precision; enable the %s policy to drop it",
				ErrPrecisionLoss, micros, TruncateSubMillis)
		}
		return time.UnixMilli(micros / 1000).UTC(), nil
	}
}

func badBinaryValue(ft models.FieldType, v any) error {
	return fmt.Errorf("%w: converting binary value of type %T to %s", ErrUnsupportedType, v, ft.Name)
}

func toBinaryRecord(v any) (models.BinaryRecord, bool) {
	switch rec := v.(type) {
	case models.BinaryRecord:
		return rec, true
	case map[any]any:
		out := make(models.BinaryRecord, len(rec))
		for k, val := range rec {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// toInt64 widens any native integer (or integral float) to int64,
// mirroring the loose numeric typing of binary decoders.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	default:
		if n, ok := toInt64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}
