package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/doku2md/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step for one page. A returned error aborts the
	// pipeline for that page.
	Do(ctx context.Context, m *model.Migration) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepError reports the step at which a page failed.
type StepError struct {
	Step string
	Page model.Page
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Page, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence for m. It stops at the first failing
// step and returns its error wrapped in a StepError; the error is also
// stored in m.Error. Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, m *model.Migration) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"page", m.Page.ID(),
				"reason", err,
			)
			m.Error = err
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"page", m.Page.ID(),
		)

		if err := step.Do(ctx, m); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"page", m.Page.ID(),
				"error", err,
			)
			m.Error = &StepError{Step: step.Name(), Page: m.Page, Err: err}
			return m.Error
		}

		m.PerformedSteps = append(m.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
