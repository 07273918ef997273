package chart

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/report"
)

func testSummary() *report.Summary {
	return &report.Summary{
		Baseline: 40,
		Years: []report.YearRow{
			{Year: 2006, Total: 500, AnnualMean: 41, HasAnnualMean: true, Classification: report.Wet},
			{Year: 2007, Total: 300, AnnualMean: 25, HasAnnualMean: true, Classification: report.Dry},
			{Year: 2008, Total: 450, AnnualMean: 38, HasAnnualMean: true, Classification: report.Dry},
		},
	}
}

func TestRenderers_ProducePNG(t *testing.T) {
	s := testSummary()
	stations := []domain.Station{{ID: "P001", Lat: 40.4, Lon: -3.7}}

	tests := []struct {
		name   string
		render func(io.Writer) error
	}{
		{"bars", func(w io.Writer) error { return Bars(w, s) }},
		{"line", func(w io.Writer) error { return Line(w, s) }},
		{"scatter", func(w io.Writer) error { return Scatter(w, s) }},
		{"station map", func(w io.Writer) error { return StationMap(w, stations) }},
		{"single year line", func(w io.Writer) error {
			return Line(w, &report.Summary{Years: s.Years[:1]})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.render(&buf))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, width, img.Bounds().Dx())
			assert.Equal(t, height, img.Bounds().Dy())
		})
	}
}

func TestWriter_Publish(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "chart", w.Name())

	out := &report.Output{
		Summary:  testSummary(),
		Stations: []domain.Station{{ID: "P001", Lat: 40.4, Lon: -3.7}, {ID: "P002", Lat: 41.4, Lon: 2.2}},
	}
	require.NoError(t, w.Publish(context.Background(), out))

	for _, name := range []string{BarsFile, LineFile, ScatterFile, StationsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestWriter_PublishWithoutYears(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, w.Publish(context.Background(), &report.Output{Summary: &report.Summary{}}))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
