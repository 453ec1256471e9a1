package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/doku2md/internal/database"
	"github.com/nao1215/doku2md/internal/linkcheck"
)

// ErrNoRuns is returned when the ledger holds no run to report on.
var ErrNoRuns = errors.New("no migration run recorded")

// Ledger is the part of the ledger a report is loaded from.
type Ledger interface {
	LatestRun(ctx context.Context, command string) (*database.Run, error)
	GetRun(ctx context.Context, id string) (*database.Run, error)
	Fetches(ctx context.Context, runID string) ([]database.Fetch, error)
	Conversions(ctx context.Context, runID string) ([]database.Conversion, error)
}

// Report describes one migration run.
type Report struct {
	Run         database.Run          `json:"run"`
	Fetches     []database.Fetch      `json:"fetches"`
	Conversions []database.Conversion `json:"conversions"`

	// Links is the link check of the docs tree, nil when not checked.
	Links *linkcheck.Result `json:"links,omitempty"`
}

// Load reads the run with runID from the ledger, or the latest run when
// runID is empty.
func Load(ctx context.Context, ledger Ledger, runID string) (*Report, error) {
	var run *database.Run
	var err error
	if runID == "" {
		run, err = ledger.LatestRun(ctx, "")
		if err == nil && run == nil {
			err = ErrNoRuns
		}
	} else {
		run, err = ledger.GetRun(ctx, runID)
	}
	if err != nil {
		return nil, err
	}

	fetches, err := ledger.Fetches(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fetches: %w", err)
	}
	conversions, err := ledger.Conversions(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversions: %w", err)
	}

	return &Report{
		Run:         *run,
		Fetches:     fetches,
		Conversions: conversions,
	}, nil
}

// WarningCount returns the number of conversion warnings.
func (r *Report) WarningCount() int {
	n := 0
	for _, c := range r.Conversions {
		n += len(c.Warnings)
	}
	return n
}

// ConversionsWithWarnings returns the conversions that produced warnings.
func (r *Report) ConversionsWithWarnings() []database.Conversion {
	result := make([]database.Conversion, 0)
	for _, c := range r.Conversions {
		if len(c.Warnings) > 0 {
			result = append(result, c)
		}
	}
	return result
}

// BrokenLinkCount returns the number of broken links, zero when links were
// not checked.
func (r *Report) BrokenLinkCount() int {
	if r.Links == nil {
		return 0
	}
	return len(r.Links.Broken)
}

// Clean reports whether the run finished without failure, warning or broken
// link.
func (r *Report) Clean() bool {
	return r.Run.Done() && r.Run.Failures == 0 && r.WarningCount() == 0 && r.BrokenLinkCount() == 0
}

// status returns a short description of the run state.
func (r *Report) status() string {
	switch {
	case !r.Run.Done():
		return "Interrupted"
	case r.Run.Failures > 0:
		return fmt.Sprintf("Failed (%d page(s))", r.Run.Failures)
	default:
		return "Complete"
	}
}
