package textlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/precip-etl/internal/aggregate"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// ResultsFile is the file name of the results report inside the output
// directory.
const ResultsFile = "results.txt"

const ruleWidth = 91

// ResultsReport renders the run summary as an aligned text report.
// It implements pipeline.Sink.
type ResultsReport struct {
	path   string
	logger *slog.Logger
}

// NewResultsReport creates a report that will be written to dir.
func NewResultsReport(dir string, logger *slog.Logger) *ResultsReport {
	return &ResultsReport{path: filepath.Join(dir, ResultsFile), logger: logger}
}

// Name implements pipeline.Sink.
func (r *ResultsReport) Name() string { return "results" }

// Publish writes the report, replacing any previous one.
func (r *ResultsReport) Publish(_ context.Context, out *report.Output) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create results report: %w", err)
	}
	if err := WriteResults(f, out.Summary); err != nil {
		f.Close()
		return fmt.Errorf("write results report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.logger.Info("results report written", "path", r.path, "years", len(out.Summary.Years))
	return nil
}

// WriteResults renders every summary view: ranked years and extreme days per
// period, period means, largest changes and the year-by-year table.
func WriteResults(w io.Writer, s *report.Summary) error {
	ew := &errWriter{w: w}
	rule := strings.Repeat("=", ruleWidth) + "\n"

	for _, ps := range s.Periods {
		writeRanked(ew, "Wettest years", ps, ps.Wettest)
		writeRanked(ew, "Driest years", ps, ps.Driest)
	}
	ew.printf("%s\n", rule)

	ew.printf("Period means (from annual station means):\n")
	for _, ps := range s.Periods {
		ew.printf("%s: %.2f per year\n", ps.Period.Label(), ps.MeanAnnual)
	}
	ew.printf("\n")

	ew.printf("Largest year-over-year change in total precipitation:\n")
	if s.HasChanges {
		writeChange(ew, "increase", s.LargestIncrease)
		writeChange(ew, "decrease", s.LargestDecrease)
	} else {
		ew.printf("Not enough years to compare\n")
	}
	ew.printf("\n%s\n", rule)

	ew.printf("Extreme days:\n")
	for _, ps := range s.Periods {
		if !ps.Extremes.Set {
			ew.printf("%s: no data\n", ps.Period.Label())
			continue
		}
		writeExtreme(ew, "Wettest day", ps, ps.Extremes.Max)
		writeExtreme(ew, "Driest day", ps, ps.Extremes.Min)
	}
	ew.printf("\n%s\n", rule)

	ew.printf("%-6s%-20s%-20s%-20s%-15s\n", "Year", "Total", "Annual mean", "Variation (%)", "Classification")
	ew.printf("%s", rule)
	for _, row := range s.Years {
		mean := "N/A"
		if row.HasAnnualMean {
			mean = fmt.Sprintf("%.2f", row.AnnualMean)
		}
		ew.printf("%-6d%-20.1f%-20s%-20s%-15s\n", row.Year, row.Total, mean, report.FormatRate(row.VariationRate), row.Classification)
	}
	return ew.err
}

func writeRanked(ew *errWriter, title string, ps report.PeriodSummary, years []report.RankedYear) {
	ew.printf("%s, %s:\n", title, ps.Period.Label())
	ew.printf("%-6s%-30s\n", "Year", "Total precipitation")
	ew.printf("%s\n", strings.Repeat("=", 36))
	if len(years) == 0 {
		ew.printf("no data\n")
	}
	for _, y := range years {
		ew.printf("%-6d%-30.1f\n", y.Year, y.Total)
	}
	ew.printf("\n")
}

func writeChange(ew *errWriter, label string, c aggregate.Change) {
	ew.printf("Largest %s: %d (from %d) with %.2f\n", label, c.Year, c.FromYear, c.Delta)
}

func writeExtreme(ew *errWriter, label string, ps report.PeriodSummary, e aggregate.Extreme) {
	ew.printf("%s, %s: station %s, %d-%02d day %d with %.1f\n",
		label, ps.Period.Label(), e.StationID, e.Year, e.Month, e.Day, e.Value)
}
