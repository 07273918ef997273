package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/precip-etl/internal/aggregate"
	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/observability"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// Source lists and loads the station files of one run.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, path string) (domain.RawStationFile, error)
}

// Checkpointer receives anomalies as each file completes.
type Checkpointer interface {
	Begin(ctx context.Context, vr *domain.ValidationReport) error
	Checkpoint(ctx context.Context, errs []domain.ValidationError) error
}

// Sink publishes the final run output.
type Sink interface {
	Name() string
	Publish(ctx context.Context, out *report.Output) error
}

// Options configures validation and reporting.
type Options struct {
	Schema               domain.HeaderSchema
	Strictness           domain.Strictness
	RequireCompleteYears bool
	TopN                 int
	Workers              int

	Checkpoint Checkpointer    // optional
	Geocoder   domain.Geocoder // optional
}

// Pipeline runs discovery, validation, aggregation and reporting over a batch
// of station files.
type Pipeline struct {
	source  Source
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
	ready   atomic.Bool
}

// New creates a Pipeline with the given source, sinks and observability.
func New(source Source, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Strictness == "" {
		opts.Strictness = domain.StrictnessLenient
	}
	if opts.Schema.Descriptor == nil && opts.Schema.Suffix == nil {
		opts.Schema = domain.DefaultHeaderSchema()
	}
	return &Pipeline{
		source:  source,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run processes every station file once. A fatal error (missing input
// directory, no matching files, cancellation) is returned before any sink is
// invoked. Sink failures do not discard the output: it is returned together
// with the joined publish errors.
func (p *Pipeline) Run(ctx context.Context) (*report.Output, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	files, err := p.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover station files: %w", err)
	}

	vr := domain.NewValidationReport(uuid.NewString())
	logger := p.logger.With("run_id", vr.RunID)
	logger.Info("run started", "files", len(files), "workers", p.opts.Workers, "strictness", p.opts.Strictness)

	agg := aggregate.NewContext()
	r := &reducer{p: p, logger: logger, vr: vr, agg: agg}

	if p.opts.Checkpoint != nil {
		if err := p.opts.Checkpoint.Begin(ctx, vr); err != nil {
			return nil, fmt.Errorf("begin validation log: %w", err)
		}
	}

	if err := p.processFiles(ctx, files, r.fold); err != nil {
		return nil, err
	}

	out := &report.Output{
		Validation: vr,
		Summary:    report.Build(agg, report.Options{TopN: p.opts.TopN}),
		Stations:   p.locateStations(ctx, logger, r.stations),
	}
	vr.Finish()

	logger.Info("run finished",
		"files", vr.FilesProcessed,
		"lines", vr.LinesProcessed,
		"values", vr.ValuesProcessed,
		"missing", vr.MissingValues,
		"errors", len(vr.Errors),
		"years", len(out.Summary.Years),
	)

	var publishErrs []error
	for _, s := range p.sinks {
		if err := s.Publish(ctx, out); err != nil {
			logger.Error("publish failed", "sink", s.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			publishErrs = append(publishErrs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	if len(publishErrs) > 0 {
		return out, fmt.Errorf("publish results: %w", errors.Join(publishErrs...))
	}
	return out, nil
}

// processFiles validates files and folds each result in lexicographic order.
// With one worker every file is folded as soon as it is read; with more,
// files are validated concurrently and folded once all are done so the
// aggregation order matches the sequential run.
func (p *Pipeline) processFiles(ctx context.Context, files []string, fold func(context.Context, fileResult) error) error {
	if p.opts.Workers == 1 {
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fold(ctx, p.validateFile(ctx, path)); err != nil {
				return err
			}
		}
		return nil
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.validateFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, res := range results {
		if err := fold(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// fileResult is the outcome of validating one file, independent of any
// shared run state.
type fileResult struct {
	path     string
	file     domain.StationFile
	lines    int
	readErr  error
	duration time.Duration
}

func (p *Pipeline) validateFile(ctx context.Context, path string) fileResult {
	start := time.Now()
	res := fileResult{path: path}

	raw, err := p.source.Load(ctx, path)
	if err != nil {
		res.readErr = err
		name := filepath.Base(path)
		res.file = domain.StationFile{
			Name: name,
			Errors: []domain.ValidationError{{
				Kind:    domain.KindUnreadableFile,
				File:    name,
				Message: err.Error(),
			}},
		}
		return res
	}

	res.lines = len(raw.Data)
	res.file = domain.ValidateFile(raw, p.opts.Schema, p.opts.Strictness, p.opts.RequireCompleteYears)
	res.duration = time.Since(start)
	return res
}

// reducer owns the shared run state and is only ever called from one goroutine.
type reducer struct {
	p        *Pipeline
	logger   *slog.Logger
	vr       *domain.ValidationReport
	agg      *aggregate.Context
	stations []domain.Station
}

func (r *reducer) fold(ctx context.Context, res fileResult) error {
	m := r.p.metrics

	if res.readErr != nil {
		r.logger.Warn("station file unreadable, skipping", "file", res.path, "error", res.readErr)
	} else {
		r.vr.FilesProcessed++
		r.vr.LinesProcessed += res.lines
		m.FilesProcessed.Inc()
		m.LinesProcessed.Add(float64(res.lines))
		m.FileDuration.Observe(res.duration.Seconds())

		for _, row := range res.file.Rows {
			ok, missing, _ := row.Record.Counts()
			r.vr.CountRecord(row.Record)
			m.ValuesProcessed.Add(float64(ok + missing))
			m.MissingValues.Add(float64(missing))
			m.RowOutcomes.WithLabelValues(row.Outcome.Status.String()).Inc()
			if row.Outcome.Aggregatable() {
				r.agg.Add(row.Record)
			}
		}
		if st, ok := res.file.Station(); ok {
			r.stations = append(r.stations, st)
		}
	}

	r.vr.Record(res.file.Errors...)
	for _, e := range res.file.Errors {
		m.ValidationErrors.WithLabelValues(string(e.Kind)).Inc()
	}

	r.logger.Debug("station file processed",
		"file", res.file.Name,
		"station", res.file.Meta.StationID,
		"lines", res.lines,
		"errors", len(res.file.Errors),
	)

	if cp := r.p.opts.Checkpoint; cp != nil && len(res.file.Errors) > 0 {
		if err := cp.Checkpoint(ctx, res.file.Errors); err != nil {
			return fmt.Errorf("checkpoint validation log: %w", err)
		}
	}
	return nil
}

// locateStations names each station from its coordinates when a geocoder is
// configured. Lookup failures only leave the place name empty.
func (p *Pipeline) locateStations(ctx context.Context, logger *slog.Logger, stations []domain.Station) []domain.Station {
	if p.opts.Geocoder == nil {
		return stations
	}
	for i := range stations {
		res, err := p.opts.Geocoder.ReverseGeocode(ctx, stations[i].Lat, stations[i].Lon)
		if err != nil {
			logger.Warn("reverse geocode failed", "station", stations[i].ID, "error", err)
			continue
		}
		stations[i].PlaceName = res.PlaceName
	}
	return stations
}
