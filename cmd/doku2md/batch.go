package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/doku2md/internal/database"
	"github.com/nao1215/doku2md/internal/dokuwiki"
	"github.com/nao1215/doku2md/internal/model"
	"github.com/nao1215/doku2md/internal/pipeline"
)

// selectPages returns the registry pages named by ids, in registry order.
// No ids selects every page.
func selectPages(pages []model.Page, ids []string) ([]model.Page, error) {
	if len(ids) == 0 {
		return pages, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = false
	}

	selected := make([]model.Page, 0, len(ids))
	for _, p := range pages {
		if _, ok := wanted[p.ID()]; ok {
			wanted[p.ID()] = true
			selected = append(selected, p)
		}
	}

	for _, id := range ids {
		if !wanted[id] {
			return nil, fmt.Errorf("page %q is not in the registry", id)
		}
	}
	return selected, nil
}

// offlineSteps returns the steps that work on files already fetched.
func (a *app) offlineSteps(opts []pipeline.StepOption) []pipeline.Step {
	converter := dokuwiki.NewConverter(a.mapper, a.wiki)
	return []pipeline.Step{
		pipeline.NewFixStep(a.fs, a.mapper, opts...),
		pipeline.NewConvertStep(converter, a.fs, a.mapper, opts...),
		pipeline.NewExposeStep(a.fs, a.mapper, opts...),
	}
}

// runBatch records a ledger run of command while the pipelines built by
// steps process pages.
func (a *app) runBatch(ctx context.Context, out io.Writer, command string, pages []model.Page, concurrency int, steps func([]pipeline.StepOption) []pipeline.Step) error {
	ledger, err := a.openLedger(true)
	if err != nil {
		return err
	}
	defer ledger.Close()

	run, err := ledger.StartRun(ctx, command)
	if err != nil {
		return err
	}

	opts := []pipeline.StepOption{
		pipeline.WithStepLogger(a.logger),
		pipeline.WithRecorder(pipeline.NewLedgerRecorder(ledger, run)),
	}
	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(a.logger))
		p.AddSteps(steps(opts)...)
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(a.logger),
	)
	summary, batchErr := bp.ProcessBatch(ctx, pipeline.NewMigrations(pages, a.wiki))

	run.Pages = summary.Completed
	run.Failures = summary.Failed
	if err := a.finishRun(ledger, run, batchErr); err != nil {
		return err
	}

	printSummary(out, command, run, summary)
	return nil
}

// printSummary prints the outcome of a successful run.
func printSummary(out io.Writer, command string, run *database.Run, summary pipeline.Summary) {
	fmt.Fprintf(out, "%s: %d pages in %s (run %s)\n",
		command, summary.Completed, summary.Elapsed.Round(time.Millisecond), run.ID)
}
