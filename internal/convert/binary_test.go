package convert

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbridge/rowbridge/pkg/models"
)

func TestRowFromBinary_Primitives(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "b", Type: models.Byte()},
		models.Field{Name: "i16", Type: models.Int16()},
		models.Field{Name: "i32", Type: models.Int32()},
		models.Field{Name: "i64", Type: models.Int64()},
		models.Field{Name: "f32", Type: models.Float32()},
		models.Field{Name: "f64", Type: models.Float64()},
		models.Field{Name: "ok", Type: models.Boolean()},
		models.Field{Name: "s", Type: models.String()},
		models.Field{Name: "raw", Type: models.Bytes()},
	)
	// Binary decoders deliver integers wide; the declared width narrows.
	rec := models.BinaryRecord{
		"b":   int64(7),
		"i16": int64(300),
		"i32": int64(70000),
		"i64": int64(1 << 40),
		"f32": float64(0.5),
		"f64": float64(2.25),
		"ok":  true,
		"s":   "hello",
		"raw": []byte{0x01, 0x02},
	}

	row, err := RowFromBinary(schema, rec, Options{})
	require.NoError(t, err)

	assert.Equal(t, int8(7), row.Values[0])
	assert.Equal(t, int16(300), row.Values[1])
	assert.Equal(t, int32(70000), row.Values[2])
	assert.Equal(t, int64(1<<40), row.Values[3])
	assert.Equal(t, float32(0.5), row.Values[4])
	assert.Equal(t, float64(2.25), row.Values[5])
	assert.Equal(t, true, row.Values[6])
	assert.Equal(t, "hello", row.Values[7])
	assert.Equal(t, []byte{0x01, 0x02}, row.Values[8])
}

func TestRowFromBinary_StringFromBytes(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "s", Type: models.String()})
	row, err := RowFromBinary(schema, models.BinaryRecord{"s": []byte("utf8")}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "utf8", row.Values[0])
}

func TestRowFromBinary_TimestampTruncate(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "ts", Type: models.Timestamp()})
	rec := models.BinaryRecord{"ts": int64(1565920327123456)}

	row, err := RowFromBinary(schema, rec, Options{TruncateTimestamps: TruncateSubMillis})
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1565920327123).UTC(), row.Values[0])
}

func TestRowFromBinary_TimestampReject(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "ts", Type: models.Timestamp()})

	// Sub-millisecond precision fails under the default policy, and the
	// message points at the alternative.
	_, err := RowFromBinary(schema, models.BinaryRecord{"ts": int64(1565920327123457)}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrecisionLoss))
	assert.True(t, strings.Contains(err.Error(), "truncate"))

	// Exact-millisecond input passes.
	row, err := RowFromBinary(schema, models.BinaryRecord{"ts": int64(1565920327123000)}, Options{})
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1565920327123).UTC(), row.Values[0])
}

func TestRowFromBinary_Decimal(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "amount", Type: models.Decimal()})
	// NUMERIC is a big-endian unscaled integer at scale 9.
	unscaled := big.NewInt(1234500000)
	row, err := RowFromBinary(schema, models.BinaryRecord{"amount": unscaled.Bytes()}, Options{})
	require.NoError(t, err)

	got, ok := row.Values[0].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("1.2345")), "got %s", got)
}

func TestRowFromBinary_Array(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "xs", Type: models.ArrayOf(models.Int64())})
	rec := models.BinaryRecord{"xs": []any{int64(1), int64(2), int64(3)}}
	row, err := RowFromBinary(schema, rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, row.Values[0])
}

func TestRowFromBinary_MapKeepsOrderAndDuplicates(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "attrs", Type: models.MapOf(models.String(), models.Int64())},
	)
	rec := models.BinaryRecord{"attrs": []any{
		map[string]any{"key": "b", "value": int64(2)},
		map[string]any{"key": "a", "value": int64(1)},
		map[string]any{"key": "b", "value": int64(3)},
	}}

	row, err := RowFromBinary(schema, rec, Options{})
	require.NoError(t, err)

	mv, ok := row.Values[0].(*models.MapValue)
	require.True(t, ok)
	require.Equal(t, 3, mv.Len())
	assert.Equal(t, models.MapPair{Key: "b", Value: int64(2)}, mv.Pairs[0])
	assert.Equal(t, models.MapPair{Key: "a", Value: int64(1)}, mv.Pairs[1])
	assert.Equal(t, models.MapPair{Key: "b", Value: int64(3)}, mv.Pairs[2])
}

func TestRowFromBinary_NestedRow(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "point", Type: models.RowOf(models.NewSchema(
			models.Field{Name: "x", Type: models.Float64()},
			models.Field{Name: "y", Type: models.Float64()},
		))},
	)
	rec := models.BinaryRecord{"point": map[string]any{"y": 2.0, "x": 1.0}}

	row, err := RowFromBinary(schema, rec, Options{})
	require.NoError(t, err)

	sub, ok := row.Values[0].(*models.Row)
	require.True(t, ok)
	// Native fields match by name, canonical order follows the schema.
	assert.Equal(t, []any{1.0, 2.0}, sub.Values)
}

func TestRowFromBinary_LogicalTypes(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "d", Type: models.Date()},
		models.Field{Name: "tod", Type: models.TimeOfDay()},
		models.Field{Name: "dt", Type: models.DateTime()},
		models.Field{Name: "wrapped", Type: models.PassThrough("FixedChar", models.String())},
	)
	rec := models.BinaryRecord{
		"d":       int64(3),                           // days since epoch
		"tod":     int64(3723000000),                  // 01:02:03 in micros
		"dt":      "2019-08-16T00:05:27.123456",       // local text form
		"wrapped": "abc",
	}

	row, err := RowFromBinary(schema, rec, Options{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(1970, time.January, 4, 0, 0, 0, 0, time.UTC), row.Values[0])
	assert.Equal(t, time.Date(0, time.January, 1, 1, 2, 3, 0, time.UTC), row.Values[1])
	assert.Equal(t, time.Date(2019, time.August, 16, 0, 5, 27, 123456000, time.UTC), row.Values[2])
	assert.Equal(t, "abc", row.Values[3])
}

func TestRowFromBinary_UnknownLogical(t *testing.T) {
	bad := models.LogicalOf(models.LogicalType{
		Identifier: "Geography",
		Base:       models.Bytes(),
		Repr:       models.ReprEnum,
	})
	schema := models.NewSchema(models.Field{Name: "g", Type: bad})
	_, err := RowFromBinary(schema, models.BinaryRecord{"g": []byte{1}}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLogicalType))
}

func TestRowFromBinary_NullHandling(t *testing.T) {
	required := models.NewSchema(models.Field{Name: "s", Type: models.String()})
	_, err := RowFromBinary(required, models.BinaryRecord{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonNullableNull))

	nullable := models.NewSchema(models.Field{Name: "s", Type: models.String(), Nullable: true})
	row, err := RowFromBinary(nullable, models.BinaryRecord{}, Options{})
	require.NoError(t, err)
	assert.Nil(t, row.Values[0])
}
