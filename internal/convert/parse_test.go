package convert

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbridge/rowbridge/pkg/bigquery"
	"github.com/rowbridge/rowbridge/pkg/models"
)

// Encoding a row to its text form and parsing it back yields the same
// row for the kinds whose text forms are lossless.
func TestEncodeParseRoundTrip(t *testing.T) {
	inner := models.NewSchema(
		models.Field{Name: "source", Type: models.String()},
		models.Field{Name: "version", Type: models.Int64()},
	)
	schema := models.NewSchema(
		models.Field{Name: "name", Type: models.String()},
		models.Field{Name: "id", Type: models.Int64()},
		models.Field{Name: "ratio", Type: models.Float64()},
		models.Field{Name: "ok", Type: models.Boolean()},
		models.Field{Name: "raw", Type: models.Bytes()},
		models.Field{Name: "scores", Type: models.ArrayOf(models.Int64())},
		models.Field{Name: "meta", Type: models.RowOf(inner)},
	)
	row := models.NewRow(
		"alpha",
		int64(9007199254740993), // exceeds float64 integer precision
		0.25,
		true,
		[]byte{0xde, 0xad},
		[]any{int64(1), int64(2), int64(3)},
		models.NewRow("unit-test", int64(7)),
	)

	tr, err := RowToTableRow(schema, row)
	require.NoError(t, err)
	back, err := RowFromTableRow(schema, tr)
	require.NoError(t, err)
	assert.Equal(t, row, back)
}

// The round trip also survives JSON serialization of the text row,
// which is how rows actually travel.
func TestParseAfterJSONRoundTrip(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "name", Type: models.String()},
		models.Field{Name: "id", Type: models.Int64()},
	)
	tr, err := RowToTableRow(schema, models.NewRow("alpha", int64(42)))
	require.NoError(t, err)

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	decoded := models.NewTableRow()
	require.NoError(t, json.Unmarshal(data, decoded))

	row, err := RowFromTableRow(schema, decoded)
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", int64(42)}, row.Values)
}

func TestRowFromTableRow_Timestamp(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "ts", Type: models.Timestamp()})

	// Fixed warehouse format, with 0, 3 or 6 fractional digits.
	for _, text := range []string{
		"2019-08-16 00:05:27 UTC",
		"2019-08-16 00:05:27.123 UTC",
		"2019-08-16 00:05:27.123456 UTC",
	} {
		tr := models.NewTableRow().Set("ts", text)
		row, err := RowFromTableRow(schema, tr)
		require.NoError(t, err, "parsing %q", text)
		got, ok := row.Values[0].(time.Time)
		require.True(t, ok)
		assert.Equal(t, 2019, got.Year())
		assert.Equal(t, 27, got.Second())
	}

	// Epoch-seconds numeric fallback.
	tr := models.NewTableRow().Set("ts", "1565920327.123")
	row, err := RowFromTableRow(schema, tr)
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1565920327123).UTC(), row.Values[0])
}

func TestRowFromTableRow_ListEnvelope(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "xs", Type: models.ArrayOf(models.Int64())})

	// Values inside lists arrive wrapped in one {v: ...} envelope.
	tr := models.NewTableRow().Set("xs", []any{
		map[string]any{"v": "1"},
		map[string]any{"v": "2"},
	})
	row, err := RowFromTableRow(schema, tr)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, row.Values[0])
}

func TestRowFromTableRow_NestedMapShape(t *testing.T) {
	inner := models.NewSchema(
		models.Field{Name: "x", Type: models.Float64()},
		models.Field{Name: "y", Type: models.Float64()},
	)
	schema := models.NewSchema(models.Field{Name: "point", Type: models.RowOf(inner)})

	tr := models.NewTableRow().Set("point", map[string]any{"x": "1.5", "y": "2.5"})
	row, err := RowFromTableRow(schema, tr)
	require.NoError(t, err)

	sub, ok := row.Values[0].(*models.Row)
	require.True(t, ok)
	assert.Equal(t, []any{1.5, 2.5}, sub.Values)
}

func TestRowFromTableRow_LogicalText(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "d", Type: models.Date()},
		models.Field{Name: "tod", Type: models.TimeOfDay()},
		models.Field{Name: "dt", Type: models.DateTime()},
	)
	tr := models.NewTableRow().
		Set("d", "2019-08-16").
		Set("tod", "01:02:03").
		Set("dt", "2019-08-16T00:05:27")

	row, err := RowFromTableRow(schema, tr)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.August, 16, 0, 0, 0, 0, time.UTC), row.Values[0])
	assert.Equal(t, time.Date(0, time.January, 1, 1, 2, 3, 0, time.UTC), row.Values[1])
	assert.Equal(t, time.Date(2019, time.August, 16, 0, 5, 27, 0, time.UTC), row.Values[2])
}

func TestRowFromTableRow_UnsupportedShape(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "id", Type: models.Int64()})
	tr := models.NewTableRow().Set("id", []any{"1"})
	_, err := RowFromTableRow(schema, tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestRowFromTableRow_NullHandling(t *testing.T) {
	required := models.NewSchema(models.Field{Name: "s", Type: models.String()})
	_, err := RowFromTableRow(required, models.NewTableRow())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonNullableNull))

	nullable := models.NewSchema(models.Field{Name: "s", Type: models.String(), Nullable: true})
	row, err := RowFromTableRow(nullable, models.NewTableRow())
	require.NoError(t, err)
	assert.Nil(t, row.Values[0])
}

// The descriptor-driven entry point maps schema fields onto raw cells
// by descriptor position, even when the orders differ.
func TestRowFromTableRowWithSchema(t *testing.T) {
	schema := models.NewSchema(
		models.Field{Name: "name", Type: models.String()},
		models.Field{Name: "id", Type: models.Int64()},
	)
	// Descriptor lists id first, so cell 0 is id and cell 1 is name.
	ts := &bigquery.TableSchema{Fields: []*bigquery.TableFieldSchema{
		{Name: "id", Type: "INT64"},
		{Name: "name", Type: "STRING"},
	}}
	tr := models.NewTableRow()
	tr.SetCells([]models.Cell{{V: "42"}, {V: "alpha"}})

	row, err := RowFromTableRowWithSchema(schema, ts, tr)
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", int64(42)}, row.Values)
}

func TestRowFromTableRowWithSchema_RawForm(t *testing.T) {
	schema := models.NewSchema(models.Field{Name: "id", Type: models.Int64()})
	ts := &bigquery.TableSchema{Fields: []*bigquery.TableFieldSchema{
		{Name: "id", Type: "INT64"},
	}}

	// The raw row form carries cells under "f" as {"v": ...} objects.
	raw := []byte(`{"f":[{"v":"42"}]}`)
	tr := models.NewTableRow()
	require.NoError(t, json.Unmarshal(raw, tr))

	row, err := RowFromTableRowWithSchema(schema, ts, tr)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(42)}, row.Values)
}
