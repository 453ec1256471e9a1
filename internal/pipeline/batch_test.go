package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/doku2md/internal/model"
)

func testMigrations(names ...string) []*model.Migration {
	pages := make([]model.Page, len(names))
	for i, n := range names {
		pages[i] = model.NewPage("tutorial", n)
	}
	return NewMigrations(pages, model.NewWiki("https://fabricmc.net/wiki/"))
}

// TestNewMigrations tests work item creation.
func TestNewMigrations(t *testing.T) {
	t.Parallel()

	migrations := testMigrations("blocks", "items")
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[1].SourceURL != "https://fabricmc.net/wiki/tutorial:items" {
		t.Errorf("unexpected source URL %q", migrations[1].SourceURL)
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to one page at a time", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != 1 {
			t.Errorf("expected default concurrency 1, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", bp.concurrency)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithBatchLogger(nil))
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all pages", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: StepConvert, doFunc: func(context.Context, *model.Migration) error {
				processed.Add(1)
				return nil
			}})
			return p
		}

		migrations := testMigrations("a", "b", "c", "d")
		summary, err := NewBatchProcessor(factory, WithConcurrency(2)).ProcessBatch(context.Background(), migrations)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Completed != 4 || summary.Failed != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if processed.Load() != 4 {
			t.Errorf("expected 4 processed pages, got %d", processed.Load())
		}
		for _, m := range migrations {
			if len(m.PerformedSteps) != 1 {
				t.Errorf("%s: unexpected performed steps %v", m.Page, m.PerformedSteps)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: StepConvert, doFunc: func(context.Context, *model.Migration) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				current.Add(-1)
				return nil
			}})
			return p
		}

		_, err := NewBatchProcessor(factory, WithConcurrency(2)).
			ProcessBatch(context.Background(), testMigrations("a", "b", "c", "d", "e", "f"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("concurrency limit exceeded: %d", peak.Load())
		}
	})

	t.Run("first failure aborts the run", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: StepConvert, doFunc: func(_ context.Context, m *model.Migration) error {
				if m.Page.Name == "a" {
					return boom
				}
				return nil
			}})
			return p
		}

		migrations := testMigrations("a", "b", "c")
		summary, err := NewBatchProcessor(factory).ProcessBatch(context.Background(), migrations)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if summary.Failed == 0 {
			t.Errorf("failure not counted: %+v", summary)
		}
		if len(migrations[2].PerformedSteps) != 0 {
			t.Error("page after the failure was processed")
		}
	})
}
