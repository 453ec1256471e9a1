package pipeline

import (
	"context"

	"github.com/nao1215/doku2md/internal/database"
	"github.com/nao1215/doku2md/internal/model"
)

// Recorder keeps track of what the steps did during a run.
type Recorder interface {
	// RecordFetch stores the fetched source of m.
	RecordFetch(ctx context.Context, m *model.Migration) error

	// RecordConversion stores the documents written for m.
	RecordConversion(ctx context.Context, m *model.Migration, markdownPath, exposedPath string) error

	// LastFetch returns the latest recorded fetch of p, or nil.
	LastFetch(ctx context.Context, p model.Page) (*database.Fetch, error)
}

// LedgerRecorder records into a ledger under one run.
type LedgerRecorder struct {
	ledger *database.Ledger
	runID  string
}

// NewLedgerRecorder creates a Recorder for run.
func NewLedgerRecorder(ledger *database.Ledger, run *database.Run) *LedgerRecorder {
	return &LedgerRecorder{ledger: ledger, runID: run.ID}
}

// RecordFetch implements Recorder.
func (r *LedgerRecorder) RecordFetch(ctx context.Context, m *model.Migration) error {
	return r.ledger.RecordFetch(ctx, r.runID, m)
}

// RecordConversion implements Recorder.
func (r *LedgerRecorder) RecordConversion(ctx context.Context, m *model.Migration, markdownPath, exposedPath string) error {
	return r.ledger.RecordConversion(ctx, r.runID, m, markdownPath, exposedPath)
}

// LastFetch implements Recorder.
func (r *LedgerRecorder) LastFetch(ctx context.Context, p model.Page) (*database.Fetch, error) {
	return r.ledger.LastFetch(ctx, p)
}

// nopRecorder is used when no ledger is configured.
type nopRecorder struct{}

func (nopRecorder) RecordFetch(context.Context, *model.Migration) error { return nil }

func (nopRecorder) RecordConversion(context.Context, *model.Migration, string, string) error {
	return nil
}

func (nopRecorder) LastFetch(context.Context, model.Page) (*database.Fetch, error) {
	return nil, nil
}
