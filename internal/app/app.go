// Package app wires configuration, adapters and the pipeline into a runnable
// batch job.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/precip-etl/internal/adapter/chart"
	"github.com/couchcryptid/precip-etl/internal/adapter/csvexport"
	"github.com/couchcryptid/precip-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/precip-etl/internal/adapter/kafka"
	"github.com/couchcryptid/precip-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/precip-etl/internal/adapter/station"
	"github.com/couchcryptid/precip-etl/internal/adapter/textlog"
	"github.com/couchcryptid/precip-etl/internal/config"
	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/observability"
	"github.com/couchcryptid/precip-etl/internal/pipeline"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// ChartsDir is the chart subdirectory inside the output directory.
const ChartsDir = "charts"

// App is a fully wired pipeline plus the resources it owns.
type App struct {
	Pipeline *pipeline.Pipeline
	Server   *httpadapter.Server // nil when HTTP_ADDR is empty

	closers []io.Closer
}

// New builds the pipeline and its sinks from cfg.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *App {
	a := &App{}
	out := cfg.OutputDir

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
	}

	var sinks []pipeline.Sink
	var checkpoint pipeline.Checkpointer
	if cfg.SinkEnabled(config.SinkValidationLog) {
		vlog := textlog.NewValidationLog(out, logger)
		a.closers = append(a.closers, vlog)
		checkpoint = vlog
		sinks = append(sinks, vlog)
	}
	if cfg.SinkEnabled(config.SinkResults) {
		sinks = append(sinks, textlog.NewResultsReport(out, logger))
	}
	if cfg.SinkEnabled(config.SinkCSV) {
		sinks = append(sinks, csvexport.NewResultsWriter(out, logger))
	}
	if cfg.SinkEnabled(config.SinkStations) {
		sinks = append(sinks, csvexport.NewStationsWriter(out, logger))
	}
	if cfg.SinkEnabled(config.SinkCharts) {
		sinks = append(sinks, chart.NewWriter(filepath.Join(out, ChartsDir), logger))
	}
	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, w)
		sinks = append(sinks, w)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	src := station.NewDirSource(cfg.InputDir, cfg.FilePattern)
	opts := pipeline.Options{
		Schema:               cfg.HeaderSchema(),
		Strictness:           cfg.Strictness,
		RequireCompleteYears: cfg.RequireCompleteYears,
		TopN:                 cfg.TopN,
		Workers:              cfg.Workers,
		Checkpoint:           checkpoint,
		Geocoder:             geocoder,
	}

	if cfg.HTTPAddr != "" {
		// The server is also a sink, so it exists before the pipeline and
		// forwards readiness once the pipeline is built.
		ready := &readiness{}
		a.Server = httpadapter.NewServer(cfg.HTTPAddr, ready, logger)
		sinks = append(sinks, a.Server)
		a.Pipeline = pipeline.New(src, sinks, logger, metrics, opts)
		ready.p = a.Pipeline
	} else {
		a.Pipeline = pipeline.New(src, sinks, logger, metrics, opts)
	}

	return a
}

// Run executes one batch.
func (a *App) Run(ctx context.Context) (*report.Output, error) {
	return a.Pipeline.Run(ctx)
}

// Close releases files and producers. It is safe to call after a successful
// run; sinks that already closed their resources ignore it.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type readiness struct {
	p *pipeline.Pipeline
}

func (r *readiness) CheckReadiness(ctx context.Context) error {
	if r.p == nil {
		return errors.New("pipeline not initialised")
	}
	return r.p.CheckReadiness(ctx)
}

// Run validates and aggregates every station file in inputDir and writes the
// reports into outputDir. Settings other than the two directories come from
// the environment as in config.Load. Metrics go to a private registry so Run
// can be called repeatedly.
func Run(ctx context.Context, inputDir, outputDir string) (*domain.ValidationReport, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.InputDir, cfg.OutputDir = inputDir, outputDir
	cfg.HTTPAddr = ""

	a := New(cfg, slog.Default(), observability.NewMetricsWith(prometheus.NewRegistry()))
	defer a.Close()

	out, err := a.Run(ctx)
	if out == nil {
		return nil, err
	}
	return out.Validation, err
}
