// Package batch converts slices of binary records concurrently. The
// conversion layer itself is synchronous and lock-free; this wrapper
// fans records out over a bounded worker pool for callers converting
// large reads.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rowbridge/rowbridge/internal/convert"
	"github.com/rowbridge/rowbridge/pkg/models"
)

// Converter runs binary-to-canonical conversion over record batches.
type Converter struct {
	workers int
	opts    convert.Options
	logger  zerolog.Logger
}

// NewConverter creates a batch converter with the given worker count.
// A non-positive count uses one worker per CPU.
func NewConverter(workers int, opts convert.Options, logger zerolog.Logger) *Converter {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Converter{
		workers: workers,
		opts:    opts,
		logger:  logger.With().Str("component", "batch-converter").Logger(),
	}
}

// ConvertAll converts records to canonical rows under schema,
// preserving input order. The first failing record cancels remaining
// work and fails the call.
func (c *Converter) ConvertAll(ctx context.Context, schema models.Schema, records []models.BinaryRecord) ([]*models.Row, error) {
	rows := make([]*models.Row, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := convert.RowFromBinary(schema, rec, c.opts)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error().Err(err).Int("records", len(records)).Msg("Batch conversion failed")
		return nil, err
	}
	return rows, nil
}
