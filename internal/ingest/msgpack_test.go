package ingest

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rowbridge/rowbridge/internal/convert"
	"github.com/rowbridge/rowbridge/pkg/models"
)

func testSchema() models.Schema {
	return models.NewSchema(
		models.Field{Name: "name", Type: models.String()},
		models.Field{Name: "value", Type: models.Float64()},
		models.Field{Name: "timestamp", Type: models.Timestamp()},
	)
}

func newTestDecoder() *Decoder {
	return NewDecoder(zerolog.Nop(), convert.Options{TruncateTimestamps: convert.TruncateSubMillis})
}

func TestDecodeSingleRecord(t *testing.T) {
	payload := map[string]any{
		"name":      "cpu",
		"value":     0.75,
		"timestamp": int64(1565920327123000),
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rows, err := newTestDecoder().DecodeRows(data, testSchema())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Values[0] != "cpu" || rows[0].Values[1] != 0.75 {
		t.Fatalf("unexpected values: %v", rows[0].Values)
	}
	ts, ok := rows[0].Values[2].(time.Time)
	if !ok || ts.UnixMilli() != 1565920327123 {
		t.Fatalf("unexpected timestamp: %v", rows[0].Values[2])
	}
}

func TestDecodeBatchList(t *testing.T) {
	payload := []any{
		map[string]any{"name": "cpu", "value": 0.5, "timestamp": int64(1000000)},
		map[string]any{"name": "mem", "value": 0.9, "timestamp": int64(2000000)},
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rows, err := newTestDecoder().DecodeRows(data, testSchema())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Values[0] != "cpu" || rows[1].Values[0] != "mem" {
		t.Fatalf("unexpected row order: %v, %v", rows[0].Values, rows[1].Values)
	}
}

func TestDecodeBatchEnvelope(t *testing.T) {
	payload := map[string]any{
		"batch": []any{
			map[string]any{"name": "cpu", "value": 0.5, "timestamp": int64(1000000)},
		},
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	records, err := newTestDecoder().DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "cpu" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestDecodeSkipsUnknownBatchItems(t *testing.T) {
	payload := []any{
		map[string]any{"name": "cpu", "value": 0.5, "timestamp": int64(1000000)},
		"not a record",
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	records, err := newTestDecoder().DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected unknown item to be skipped, got %d records", len(records))
	}
}

func TestDecodeUnsupportedPayload(t *testing.T) {
	data, err := msgpack.Marshal("just a string")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if _, err := newTestDecoder().DecodeRecords(data); err == nil {
		t.Fatal("expected error for scalar payload")
	}
}

func TestDecodeInvalidMsgpack(t *testing.T) {
	if _, err := newTestDecoder().DecodeRecords([]byte{0xc1}); err == nil {
		t.Fatal("expected error for invalid msgpack")
	}
}

func TestDecoderStats(t *testing.T) {
	d := newTestDecoder()
	payload := map[string]any{"name": "cpu", "value": 0.5, "timestamp": int64(1000000)}
	data, _ := msgpack.Marshal(payload)

	if _, err := d.DecodeRows(data, testSchema()); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, err := d.DecodeRecords([]byte{0xc1}); err == nil {
		t.Fatal("expected decode error")
	}

	stats := d.Stats()
	if stats["total_decoded"] != uint64(1) {
		t.Fatalf("expected 1 decoded, got %v", stats["total_decoded"])
	}
	if stats["total_errors"] != uint64(1) {
		t.Fatalf("expected 1 error, got %v", stats["total_errors"])
	}
}
