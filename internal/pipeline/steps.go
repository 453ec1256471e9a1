package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nao1215/doku2md/internal/dokuwiki"
	"github.com/nao1215/doku2md/internal/fsutil"
	"github.com/nao1215/doku2md/internal/layout"
	"github.com/nao1215/doku2md/internal/model"
)

// Step names.
const (
	StepFetch   = "fetch"
	StepFix     = "fix"
	StepConvert = "convert"
	StepExpose  = "expose"
)

// filePerm is the permission of every file the steps write.
const filePerm = 0644

// Source reads pages from the wiki. *scraper.SourceFetcher implements it.
type Source interface {
	FetchSource(ctx context.Context, p model.Page) (string, error)
	FetchContributors(ctx context.Context, p model.Page) ([]string, error)
}

// stepBase holds what every step shares.
type stepBase struct {
	fs       afero.Fs
	mapper   *layout.Mapper
	logger   *slog.Logger
	recorder Recorder
}

// StepOption configures a step.
type StepOption func(*stepBase)

// WithStepLogger sets a custom logger for a step.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(b *stepBase) {
		b.logger = logger
	}
}

// WithRecorder makes a step record its work.
func WithRecorder(r Recorder) StepOption {
	return func(b *stepBase) {
		b.recorder = r
	}
}

func newStepBase(fs afero.Fs, mapper *layout.Mapper, opts []StepOption) stepBase {
	b := stepBase{
		fs:       fs,
		mapper:   mapper,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.recorder == nil {
		b.recorder = nopRecorder{}
	}
	return b
}

func (b *stepBase) write(path string, data []byte) error {
	if err := fsutil.WriteFileAtomic(b.fs, path, data, filePerm); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// read returns the content of path written by an earlier stage.
func (b *stepBase) read(path string) (string, error) {
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	return string(data), nil
}

// FetchStep downloads the source and contributors of a page and writes the
// raw source file.
type FetchStep struct {
	stepBase
	source Source
}

// NewFetchStep creates a fetch step.
func NewFetchStep(source Source, fs afero.Fs, mapper *layout.Mapper, opts ...StepOption) *FetchStep {
	return &FetchStep{
		stepBase: newStepBase(fs, mapper, opts),
		source:   source,
	}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, m *model.Migration) error {
	raw, err := s.source.FetchSource(ctx, m.Page)
	if err != nil {
		return err
	}
	m.SetRaw(raw)

	contributors, err := s.source.FetchContributors(ctx, m.Page)
	if err != nil {
		return err
	}
	m.Contributors = contributors

	if err := s.write(s.mapper.Map(m.Page).RawPath, []byte(raw)); err != nil {
		return err
	}
	return s.recorder.RecordFetch(ctx, m)
}

// FixStep repairs the raw source and writes the fixed source file.
type FixStep struct {
	stepBase
}

// NewFixStep creates a fix step.
func NewFixStep(fs afero.Fs, mapper *layout.Mapper, opts ...StepOption) *FixStep {
	return &FixStep{stepBase: newStepBase(fs, mapper, opts)}
}

// Name returns the step name.
func (s *FixStep) Name() string {
	return StepFix
}

// Do executes the fix step. Without a fetched source in m, the raw file
// is read from disk.
func (s *FixStep) Do(_ context.Context, m *model.Migration) error {
	paths := s.mapper.Map(m.Page)

	if m.Raw == "" {
		raw, err := s.read(paths.RawPath)
		if err != nil {
			return err
		}
		m.SetRaw(raw)
	}

	fixed, applied := dokuwiki.Fix(m.Raw)
	if len(applied) > 0 {
		s.logger.Debug("fixed source", "page", m.Page.ID(), "fixes", applied)
	}
	m.Fixed = fixed

	return s.write(paths.FixedPath, []byte(fixed))
}

// ConvertStep converts the fixed source and writes the Markdown file.
type ConvertStep struct {
	stepBase
	converter *dokuwiki.Converter
}

// NewConvertStep creates a convert step.
func NewConvertStep(converter *dokuwiki.Converter, fs afero.Fs, mapper *layout.Mapper, opts ...StepOption) *ConvertStep {
	return &ConvertStep{
		stepBase:  newStepBase(fs, mapper, opts),
		converter: converter,
	}
}

// Name returns the step name.
func (s *ConvertStep) Name() string {
	return StepConvert
}

// Do executes the convert step.
func (s *ConvertStep) Do(_ context.Context, m *model.Migration) error {
	paths := s.mapper.Map(m.Page)

	if m.Fixed == "" {
		fixed, err := s.read(paths.FixedPath)
		if err != nil {
			return err
		}
		m.Fixed = fixed
	}

	doc, err := s.converter.Convert(m.Page, m.Fixed)
	if err != nil {
		return err
	}

	m.Markdown = doc.Body
	m.Title = doc.Title
	for _, w := range doc.Warnings {
		m.AddWarning(w)
		s.logger.Debug("conversion warning", "page", m.Page.ID(), "warning", w)
	}
	if len(doc.Warnings) > 0 {
		s.logger.Info("page converted with warnings",
			"page", m.Page.ID(),
			"warnings", len(doc.Warnings),
		)
	}

	return s.write(paths.MarkdownPath, []byte(doc.Body))
}

// ExposeStep writes the Markdown document with its front matter into the
// docs tree.
type ExposeStep struct {
	stepBase
}

// NewExposeStep creates an expose step.
func NewExposeStep(fs afero.Fs, mapper *layout.Mapper, opts ...StepOption) *ExposeStep {
	return &ExposeStep{stepBase: newStepBase(fs, mapper, opts)}
}

// Name returns the step name.
func (s *ExposeStep) Name() string {
	return StepExpose
}

// Do executes the expose step. Contributors not collected in this run are
// taken from the latest recorded fetch of the page.
func (s *ExposeStep) Do(ctx context.Context, m *model.Migration) error {
	paths := s.mapper.Map(m.Page)

	if m.Markdown == "" {
		body, err := s.read(paths.MarkdownPath)
		if err != nil {
			return err
		}
		m.Markdown = body
	}
	if m.Title == "" {
		m.Title = m.Page.Name
	}

	if m.Contributors == nil {
		previous, err := s.recorder.LastFetch(ctx, m.Page)
		if err != nil {
			return err
		}
		if previous != nil {
			m.Contributors = previous.Contributors
		}
	}

	doc, err := Expose(model.NewFrontMatter(m), m.Markdown)
	if err != nil {
		return fmt.Errorf("failed to build front matter of %s: %w", m.Page, err)
	}

	if err := s.write(paths.ExposedPath, doc); err != nil {
		return err
	}
	return s.recorder.RecordConversion(ctx, m, paths.MarkdownPath, paths.ExposedPath)
}
