// Package pipeline runs documents through tag extraction and tag-sheet
// generation, recording each run in metrics and history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/tagsheet/internal/document"
	"github.com/jackzampolin/tagsheet/internal/history"
	"github.com/jackzampolin/tagsheet/internal/metrics"
	"github.com/jackzampolin/tagsheet/internal/tags"
	"github.com/jackzampolin/tagsheet/internal/tagsheet"
)

// ErrNoDocument is returned when a request carries neither a document nor
// a catalogue.
var ErrNoDocument = errors.New("no document to process")

// Recorder persists run summaries. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, r history.Run) error
}

// Config configures a Runner. Nil Metrics or History disables that
// concern; every other field has a default.
type Config struct {
	Logger       *slog.Logger
	Extractor    *tags.Extractor
	Builder      *tagsheet.Builder
	Metrics      *metrics.Collector
	History      Recorder
	BatchWorkers int
	Now          func() time.Time
}

// Runner orchestrates document -> catalogue -> workbook.
type Runner struct {
	logger       *slog.Logger
	extractor    *tags.Extractor
	builder      *tagsheet.Builder
	metrics      *metrics.Collector
	history      Recorder
	batchWorkers int
	now          func() time.Time
}

// New creates a runner.
func New(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Extractor == nil {
		cfg.Extractor = tags.NewExtractor(tags.ExtractorConfig{Now: cfg.Now})
	}
	if cfg.Builder == nil {
		cfg.Builder = tagsheet.NewBuilder(cfg.Now)
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 1
	}
	return &Runner{
		logger:       cfg.Logger,
		extractor:    cfg.Extractor,
		builder:      cfg.Builder,
		metrics:      cfg.Metrics,
		history:      cfg.History,
		batchWorkers: cfg.BatchWorkers,
		now:          cfg.Now,
	}
}

// Run is one completed extraction.
type Run struct {
	ID        string          `json:"id"`
	Catalogue *tags.Catalogue `json:"catalogue"`
}

// Extract runs the extractor over a loaded document.
func (r *Runner) Extract(ctx context.Context, doc *document.Document) (*Run, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := r.logger.With("run_id", id, "file", doc.Source.FileName)
	logger.Debug("extracting tags", "pages", len(doc.Pages))

	start := r.now()
	cat := r.extractor.Extract(doc.Source, doc.Pages)
	elapsed := r.now().Sub(start)

	if r.metrics != nil {
		r.metrics.ObserveExtraction(cat.Summary, elapsed)
	}
	logger.Info("extraction complete",
		"pages", cat.Document.PageCount,
		"tags", cat.Summary.TotalTags,
		"equipment", cat.Summary.EquipmentCount,
		"instruments", cat.Summary.InstrumentCount,
		"valves", cat.Summary.ControlValveCount,
		"lines", cat.Summary.LineNumberCount,
		"duration", elapsed)

	r.record(ctx, logger, id, cat, start)
	return &Run{ID: id, Catalogue: cat}, nil
}

// ExtractFile loads path and extracts it.
func (r *Runner) ExtractFile(ctx context.Context, path string) (*Run, error) {
	doc, err := document.Load(path)
	if err != nil {
		if r.metrics != nil {
			r.metrics.ObserveDocumentError()
		}
		r.logger.Warn("failed to load document", "path", path, "error", err)
		return nil, err
	}
	return r.Extract(ctx, doc)
}

// record stores the run summary. Failures are logged and never returned.
func (r *Runner) record(ctx context.Context, logger *slog.Logger, id string, cat *tags.Catalogue, at time.Time) {
	if r.history == nil {
		return
	}
	err := r.history.Record(ctx, history.Run{
		ID:         id,
		FileName:   cat.Document.FileName,
		PageCount:  cat.Document.PageCount,
		Summary:    cat.Summary,
		DurationMs: cat.Document.ProcessingDurationMs,
		CreatedAt:  at,
	})
	if err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}

// GenerateRequest describes a tag sheet to build. When Catalogue is set
// the document is not re-extracted.
type GenerateRequest struct {
	Document  *document.Document
	Catalogue *tags.Catalogue
	Project   tagsheet.Project
	Process   *tagsheet.Process
	Author    string
}

// Generated is a built workbook and the run it came from. Run is nil when
// the request supplied a catalogue.
type Generated struct {
	Run      *Run
	Artifact *tagsheet.Artifact
}

// Generate extracts (if needed) and builds the workbook.
func (r *Runner) Generate(ctx context.Context, req GenerateRequest) (*Generated, error) {
	out := &Generated{}
	cat := req.Catalogue
	if cat == nil {
		run, err := r.Extract(ctx, req.Document)
		if err != nil {
			return nil, err
		}
		out.Run = run
		cat = run.Catalogue
	}

	artifact, err := r.builder.Build(cat, req.Project, req.Process, tagsheet.Metadata{Author: req.Author})
	if r.metrics != nil {
		r.metrics.ObserveBuild(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build tag sheet: %w", err)
	}

	r.logger.Info("tag sheet built",
		"file", artifact.FileName,
		"sheets", len(artifact.Sheets),
		"bytes", len(artifact.Bytes))
	out.Artifact = artifact
	return out, nil
}
