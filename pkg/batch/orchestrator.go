package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hed1ad/gonpht/pkg/extract"
	"github.com/hed1ad/gonpht/pkg/imaging"
	pio "github.com/hed1ad/gonpht/pkg/io"
	"github.com/hed1ad/gonpht/pkg/npht"
	"github.com/hed1ad/gonpht/pkg/provider"
)

// Progress receives batch progress. Implementations are only called from the
// goroutine running Orchestrator.Run.
type Progress interface {
	Start(total int)
	Advance()
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int) {}
func (noProgress) Advance() {}
func (noProgress) Finish() {}

// Orchestrator drives discovery, dispatch and aggregation of one batch.
type Orchestrator struct {
	source    pio.Source
	extractor *extract.Extractor
	load      LoadFunc
	workers   int
	logger    *slog.Logger
	progress  Progress
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress sets the progress display.
func WithProgress(p Progress) Option {
	return func(o *Orchestrator) {
		o.progress = p
	}
}

// WithLoader replaces the image loader.
func WithLoader(load LoadFunc) Option {
	return func(o *Orchestrator) {
		o.load = load
	}
}

// New creates an Orchestrator reading samples from src.
func New(src pio.Source, ex *extract.Extractor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    src,
		extractor: ex,
		load:      imaging.Load,
		workers:   4,
		progress:  noProgress{},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.workers < 1 {
		o.workers = 1
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "batch")

	return o
}

// Report is the outcome of a batch run.
type Report struct {
	Directions int
	Labels     []string
	Total      int
	Views      provider.Views
	Failures   []*Failure
}

// Provider builds the output container for the report.
func (r *Report) Provider() *provider.Provider {
	meta := provider.NewMeta(r.Directions)
	meta.Samples = r.Total
	meta.Failures = len(r.Failures)
	return provider.New(r.Views, meta)
}

// Run processes every discovered sample once. Per-sample failures are
// collected in the report and never abort the batch.
func (o *Orchestrator) Run(ctx context.Context, directions int) (*Report, error) {
	if directions < 1 {
		return nil, fmt.Errorf("%w: %d", npht.ErrInvalidDirections, directions)
	}

	ds, err := o.source.Discover(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(ds.Samples))
	for _, s := range ds.Samples {
		jobs = append(jobs, Job{Sample: s, Directions: directions})
	}

	report := &Report{
		Directions: directions,
		Labels:     ds.Labels,
		Total:      len(jobs),
		Views:      provider.NewViews(directions, ds.Labels),
	}

	o.logger.Info("starting batch",
		"samples", len(jobs),
		"labels", len(ds.Labels),
		"directions", directions,
		"workers", o.workers,
	)
	start := time.Now()
	o.progress.Start(len(jobs))

	pool := NewPool(o.workers, func(ctx context.Context, job Job) Result {
		return Process(ctx, job, o.load, o.extractor)
	})
	err = pool.Run(ctx, jobs, func(res Result) {
		switch r := res.(type) {
		case *Failure:
			report.Failures = append(report.Failures, r)
			o.logger.Debug("sample failed",
				"label", r.Sample().Label,
				"sample_id", r.Sample().ID,
				"stage", r.Stage,
				"error", r.Err,
			)
		case *Success:
			report.Views.Put(r.Sample().Label, r.Sample().ID, r.Diagrams)
		}
		o.progress.Advance()
	})
	o.progress.Finish()
	if err != nil {
		return nil, err
	}

	o.logger.Info("batch complete",
		"samples", report.Total,
		"failures", len(report.Failures),
		"duration", time.Since(start),
	)

	return report, nil
}
