package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/doku2md/internal/model"
)

// BatchProcessor runs a pipeline for many pages with bounded concurrency.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each page.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of pages processed at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of pages processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor that processes one page at a
// time unless WithConcurrency says otherwise.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Summary counts the outcome of a batch.
type Summary struct {
	// Completed is the number of pages that went through every step.
	Completed int

	// Failed is the number of pages whose pipeline returned an error,
	// including pages cancelled after an earlier failure.
	Failed int

	Elapsed time.Duration
}

// ProcessBatch runs the pipeline for every migration. The first failure
// cancels the pages not yet started and is returned; pages already running
// finish their current step. Results are left on the migrations.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, migrations []*model.Migration) (Summary, error) {
	bp.logger.Info("starting batch",
		"pages", len(migrations),
		"concurrency", bp.concurrency,
	)

	start := time.Now()
	var completed, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, m := range migrations {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Debug("processing page",
				"page", m.Page.ID(),
				"index", i+1,
				"total", len(migrations),
			)

			if err := bp.pipelineFactory().Execute(ctx, m); err != nil {
				failed.Add(1)
				return err
			}
			completed.Add(1)
			return nil
		})
	}

	err := g.Wait()

	summary := Summary{
		Completed: int(completed.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(start),
	}

	bp.logger.Info("batch complete",
		"completed", summary.Completed,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed,
	)

	return summary, err
}

// NewMigrations creates one work item per page, in order.
func NewMigrations(pages []model.Page, wiki model.Wiki) []*model.Migration {
	migrations := make([]*model.Migration, len(pages))
	for i, p := range pages {
		migrations[i] = model.NewMigration(p, wiki.PageURL(p))
	}
	return migrations
}
