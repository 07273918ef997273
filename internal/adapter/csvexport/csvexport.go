// Package csvexport writes the year-by-year results and station coordinates
// as CSV files.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/precip-etl/internal/report"
)

// Output file names inside the output directory.
const (
	ResultsFile  = "results.csv"
	StationsFile = "stations.csv"
)

var (
	resultsHeader  = []string{"Year", "TotalPrecipitation", "AnnualMean", "VariationRate", "Classification"}
	stationsHeader = []string{"StationID", "File", "Latitude", "Longitude", "PlaceName"}
)

// ResultsWriter exports one row per aggregated year.
// It implements pipeline.Sink.
type ResultsWriter struct {
	dir    string
	logger *slog.Logger
}

// NewResultsWriter creates a results exporter writing to dir.
func NewResultsWriter(dir string, logger *slog.Logger) *ResultsWriter {
	return &ResultsWriter{dir: dir, logger: logger}
}

// Name implements pipeline.Sink.
func (w *ResultsWriter) Name() string { return "csv" }

// Publish writes results.csv.
func (w *ResultsWriter) Publish(_ context.Context, out *report.Output) error {
	path := filepath.Join(w.dir, ResultsFile)
	if err := writeFile(path, func(f io.Writer) error { return WriteResults(f, out.Summary) }); err != nil {
		return err
	}
	w.logger.Info("results csv written", "path", path, "rows", len(out.Summary.Years))
	return nil
}

// WriteResults renders the year table. A year without complete stations gets
// an annual mean of 0, and the first year or one following a dry year gets
// N/A as variation rate.
func WriteResults(w io.Writer, s *report.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}
	for _, row := range s.Years {
		rec := []string{
			strconv.Itoa(row.Year),
			strconv.FormatFloat(row.Total, 'f', 1, 64),
			strconv.FormatFloat(row.AnnualMean, 'f', 2, 64),
			report.FormatRate(row.VariationRate),
			row.Classification,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StationsWriter exports the declared location of every station.
// It implements pipeline.Sink.
type StationsWriter struct {
	dir    string
	logger *slog.Logger
}

// NewStationsWriter creates a station exporter writing to dir.
func NewStationsWriter(dir string, logger *slog.Logger) *StationsWriter {
	return &StationsWriter{dir: dir, logger: logger}
}

// Name implements pipeline.Sink.
func (w *StationsWriter) Name() string { return "stations" }

// Publish writes stations.csv.
func (w *StationsWriter) Publish(_ context.Context, out *report.Output) error {
	path := filepath.Join(w.dir, StationsFile)
	err := writeFile(path, func(f io.Writer) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(stationsHeader); err != nil {
			return err
		}
		for _, st := range out.Stations {
			if err := cw.Write([]string{
				st.ID,
				st.File,
				strconv.FormatFloat(st.Lat, 'f', -1, 64),
				strconv.FormatFloat(st.Lon, 'f', -1, 64),
				st.PlaceName,
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}
	w.logger.Info("stations csv written", "path", path, "stations", len(out.Stations))
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
