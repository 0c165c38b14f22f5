package exec

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rowforge/rowforge/internal/domain"
	"github.com/rowforge/rowforge/internal/generators"
	"github.com/rowforge/rowforge/internal/logging"
)

// Sink is the destination accepting batches of rows for a named table. Calls
// are synchronous and order-preserving; retry/backoff inside the sink is its
// own business.
type Sink interface {
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]interface{}) error
}

// Stats summarizes a completed run.
type Stats struct {
	RowsInserted    int64   `json:"rows_inserted"`
	Batches         int     `json:"batches"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Assembler drives row generation and groups rows into insert-sized batches.
// Generation is strictly sequential so a fixed seed yields an identical row
// stream on every run.
type Assembler struct {
	sink     Sink
	logger   *logging.Logger
	retries  int
	backoff  time.Duration
	progress func(flushed, total int64)
}

func NewAssembler(sink Sink, logger *logging.Logger, retries int) *Assembler {
	if retries < 1 {
		retries = 1
	}
	return &Assembler{
		sink:    sink,
		logger:  logger,
		retries: retries,
		backoff: 500 * time.Millisecond,
	}
}

// OnProgress installs a callback invoked after every flushed batch with the
// monotonically increasing count of rows delivered so far.
func (a *Assembler) OnProgress(fn func(flushed, total int64)) {
	a.progress = fn
}

// Run generates totalRows rows in column order, flushing every batchSize rows
// and at the end. A failed batch is retried with the same rows; once retries
// are exhausted the run fails with a SinkError carrying the flushed count.
// Cancellation is honored at batch boundaries.
func (a *Assembler) Run(ctx context.Context, table string, specs []*generators.ColumnSpec, rng *rand.Rand, totalRows, batchSize int64) (*Stats, error) {
	columns := make([]string, len(specs))
	for i, spec := range specs {
		columns[i] = spec.Column
	}

	start := time.Now()
	stats := &Stats{}
	flushed := int64(0)
	batch := make([][]interface{}, 0, batchSize)

	for generated := int64(0); generated < totalRows; generated++ {
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				stats.RowsInserted = flushed
				stats.DurationSeconds = time.Since(start).Seconds()
				return stats, ctx.Err()
			default:
			}
		}

		row := make([]interface{}, len(specs))
		for i, spec := range specs {
			v, err := spec.Next(rng)
			if err != nil {
				return nil, fmt.Errorf("column %q, row %d: %w", spec.Column, generated, err)
			}
			row[i] = v
		}
		batch = append(batch, row)

		if int64(len(batch)) >= batchSize {
			if err := a.flush(ctx, table, columns, batch, flushed); err != nil {
				return nil, err
			}
			flushed += int64(len(batch))
			stats.Batches++
			a.report(flushed, totalRows)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := a.flush(ctx, table, columns, batch, flushed); err != nil {
			return nil, err
		}
		flushed += int64(len(batch))
		stats.Batches++
		a.report(flushed, totalRows)
	}

	stats.RowsInserted = flushed
	stats.DurationSeconds = time.Since(start).Seconds()
	return stats, nil
}

func (a *Assembler) flush(ctx context.Context, table string, columns []string, batch [][]interface{}, flushed int64) error {
	var err error
	for attempt := 1; attempt <= a.retries; attempt++ {
		err = a.sink.InsertBatch(ctx, table, columns, batch)
		if err == nil {
			return nil
		}
		a.logger.Warn("batch insert attempt %d/%d failed: %v", attempt, a.retries, err)
		if attempt < a.retries {
			time.Sleep(a.backoff)
		}
	}
	return &domain.SinkError{Table: table, RowsFlushed: flushed, Err: err}
}

func (a *Assembler) report(flushed, total int64) {
	a.logger.Info("inserted %d/%d rows", flushed, total)
	if a.progress != nil {
		a.progress(flushed, total)
	}
}
