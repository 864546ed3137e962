// Package ingest stages binary row payloads for conversion. It decodes
// MessagePack-framed records into native value trees and hands them to
// the conversion layer; it performs no conversion logic of its own.
package ingest

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rowbridge/rowbridge/internal/convert"
	"github.com/rowbridge/rowbridge/pkg/models"
)

// Decoder decodes MessagePack binary payloads into canonical rows.
// Supports a single record map, a batch list, and a map with a "batch"
// key wrapping a list of records.
type Decoder struct {
	logger       zerolog.Logger
	opts         convert.Options
	totalDecoded uint64
	totalErrors  uint64
}

// NewDecoder creates a new MessagePack decoder.
func NewDecoder(logger zerolog.Logger, opts convert.Options) *Decoder {
	return &Decoder{
		logger: logger.With().Str("component", "msgpack-decoder").Logger(),
		opts:   opts,
	}
}

// DecodeRecords decodes a MessagePack payload into native records
// without converting them.
func (d *Decoder) DecodeRecords(data []byte) ([]models.BinaryRecord, error) {
	// Decode to a generic value first: clients send either a single
	// map-encoded record or an array of them.
	var raw any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		d.totalErrors++
		return nil, fmt.Errorf("failed to unmarshal msgpack: %w", err)
	}

	records, err := d.collectRecords(raw)
	if err != nil {
		d.totalErrors++
		return nil, err
	}
	return records, nil
}

// DecodeRows decodes a MessagePack payload and converts every record to
// a canonical row under schema. Any failing record fails the call.
func (d *Decoder) DecodeRows(data []byte, schema models.Schema) ([]*models.Row, error) {
	records, err := d.DecodeRecords(data)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.Row, 0, len(records))
	for i, rec := range records {
		row, err := convert.RowFromBinary(schema, rec, d.opts)
		if err != nil {
			d.totalErrors++
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	d.totalDecoded += uint64(len(rows))
	return rows, nil
}

func (d *Decoder) collectRecords(raw any) ([]models.BinaryRecord, error) {
	switch payload := raw.(type) {
	case map[string]any:
		// A map is either a batch envelope or a single record.
		if batch, ok := payload["batch"]; ok {
			list, ok := batch.([]any)
			if !ok {
				return nil, fmt.Errorf("batch payload must be a list, got %T", batch)
			}
			return d.collectList(list)
		}
		return []models.BinaryRecord{payload}, nil

	case []any:
		return d.collectList(payload)

	default:
		return nil, fmt.Errorf("unsupported msgpack payload type: %T", raw)
	}
}

func (d *Decoder) collectList(list []any) ([]models.BinaryRecord, error) {
	records := make([]models.BinaryRecord, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			d.logger.Warn().Str("type", fmt.Sprintf("%T", item)).Msg("Skipping unknown batch item type")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Stats returns decoder statistics.
func (d *Decoder) Stats() map[string]any {
	var errorRate float64
	if d.totalDecoded > 0 {
		errorRate = float64(d.totalErrors) / float64(d.totalDecoded)
	}
	return map[string]any{
		"total_decoded": d.totalDecoded,
		"total_errors":  d.totalErrors,
		"error_rate":    errorRate,
	}
}
