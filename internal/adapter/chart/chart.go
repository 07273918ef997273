// Package chart renders the run summary as PNG charts.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// Chart file names inside the output directory.
const (
	BarsFile     = "totals_bar.png"
	LineFile     = "annual_mean_line.png"
	ScatterFile  = "total_vs_mean_scatter.png"
	StationsFile = "stations_map.png"
)

const (
	width  = 1200
	height = 600
	margin = 60.0
)

var (
	background = color.White
	axisColor  = color.Gray{Y: 60}
	wetColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	dryColor   = color.RGBA{R: 214, G: 120, B: 40, A: 255}
	lineColor  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	baseColor  = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// Writer renders the charts into a directory.
// It implements pipeline.Sink.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a chart renderer writing to dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name implements pipeline.Sink.
func (w *Writer) Name() string { return "chart" }

// Publish renders every chart. A run without years writes nothing.
func (w *Writer) Publish(_ context.Context, out *report.Output) error {
	if len(out.Summary.Years) == 0 {
		w.logger.Warn("no aggregated years, charts skipped")
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}

	charts := []namedChart{
		{BarsFile, func(f io.Writer) error { return Bars(f, out.Summary) }},
		{LineFile, func(f io.Writer) error { return Line(f, out.Summary) }},
		{ScatterFile, func(f io.Writer) error { return Scatter(f, out.Summary) }},
	}
	if len(out.Stations) > 0 {
		charts = append(charts, namedChart{StationsFile, func(f io.Writer) error { return StationMap(f, out.Stations) }})
	}

	for _, c := range charts {
		if err := w.save(c.name, c.render); err != nil {
			return err
		}
	}
	w.logger.Info("charts written", "dir", w.dir, "count", len(charts))
	return nil
}

type namedChart struct {
	name   string
	render func(io.Writer) error
}

func (w *Writer) save(name string, render func(io.Writer) error) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", name, err)
	}
	return f.Close()
}

// Bars draws one bar per year, coloured by classification.
func Bars(w io.Writer, s *report.Summary) error {
	p := newPlot("Total precipitation per year")
	maxTotal := 0.0
	for _, row := range s.Years {
		maxTotal = math.Max(maxTotal, row.Total)
	}
	p.yRange(0, maxTotal)

	n := float64(len(s.Years))
	slot := p.plotWidth() / n
	for i, row := range s.Years {
		if row.Classification == report.Wet {
			p.dc.SetColor(wetColor)
		} else {
			p.dc.SetColor(dryColor)
		}
		x := margin + float64(i)*slot
		y := p.y(row.Total)
		p.dc.DrawRectangle(x+slot*0.1, y, slot*0.8, p.y(0)-y)
		p.dc.Fill()
	}
	p.yearTicks(s.Years, func(i int) float64 { return margin + (float64(i)+0.5)*slot })
	return p.encode(w)
}

// Line draws the annual station mean over time with the baseline as a
// horizontal reference.
func Line(w io.Writer, s *report.Summary) error {
	p := newPlot("Annual mean precipitation")
	maxMean := s.Baseline
	for _, row := range s.Years {
		maxMean = math.Max(maxMean, row.AnnualMean)
	}
	p.yRange(0, maxMean)
	x := p.yearX(s.Years)

	p.dc.SetColor(lineColor)
	p.dc.SetLineWidth(2)
	for i, row := range s.Years {
		if i == 0 {
			p.dc.MoveTo(x(i), p.y(row.AnnualMean))
		} else {
			p.dc.LineTo(x(i), p.y(row.AnnualMean))
		}
	}
	p.dc.Stroke()

	p.dc.SetColor(baseColor)
	p.dc.SetDash(6, 4)
	p.dc.DrawLine(margin, p.y(s.Baseline), width-margin, p.y(s.Baseline))
	p.dc.Stroke()
	p.dc.SetDash()

	p.yearTicks(s.Years, x)
	return p.encode(w)
}

// Scatter plots each year's total against its annual station mean.
func Scatter(w io.Writer, s *report.Summary) error {
	p := newPlot("Total vs annual mean")
	maxTotal, maxMean := 0.0, 0.0
	for _, row := range s.Years {
		maxTotal = math.Max(maxTotal, row.Total)
		maxMean = math.Max(maxMean, row.AnnualMean)
	}
	p.yRange(0, maxMean)
	if maxTotal == 0 {
		maxTotal = 1
	}

	for _, row := range s.Years {
		x := margin + row.Total/maxTotal*p.plotWidth()
		if row.Classification == report.Wet {
			p.dc.SetColor(wetColor)
		} else {
			p.dc.SetColor(dryColor)
		}
		p.dc.DrawCircle(x, p.y(row.AnnualMean), 4)
		p.dc.Fill()
	}
	p.dc.SetColor(axisColor)
	p.dc.DrawStringAnchored("0", margin, height-margin+15, 0.5, 0.5)
	p.dc.DrawStringAnchored(strconv.FormatFloat(maxTotal, 'f', 0, 64), width-margin, height-margin+15, 0.5, 0.5)
	return p.encode(w)
}

// StationMap projects station coordinates onto their bounding box.
func StationMap(w io.Writer, stations []domain.Station) error {
	p := newPlot("Station locations")
	minLon, maxLon := math.MaxFloat64, -math.MaxFloat64
	minLat, maxLat := math.MaxFloat64, -math.MaxFloat64
	for _, st := range stations {
		minLon, maxLon = math.Min(minLon, st.Lon), math.Max(maxLon, st.Lon)
		minLat, maxLat = math.Min(minLat, st.Lat), math.Max(maxLat, st.Lat)
	}
	// Pad so single stations and straight lines still have an extent.
	minLon, maxLon = minLon-0.5, maxLon+0.5
	minLat, maxLat = minLat-0.5, maxLat+0.5

	for _, st := range stations {
		x := margin + (st.Lon-minLon)/(maxLon-minLon)*p.plotWidth()
		y := height - margin - (st.Lat-minLat)/(maxLat-minLat)*p.plotHeight()
		p.dc.SetColor(wetColor)
		p.dc.DrawCircle(x, y, 5)
		p.dc.Fill()
		p.dc.SetColor(axisColor)
		p.dc.DrawString(st.ID, x+7, y-7)
	}
	return p.encode(w)
}

// plot is a framed drawing area with a linear y axis.
type plot struct {
	dc         *gg.Context
	yMin, yMax float64
}

func newPlot(title string) *plot {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, height-margin)
	dc.DrawLine(margin, height-margin, width-margin, height-margin)
	dc.Stroke()
	dc.DrawStringAnchored(title, width/2, margin/2, 0.5, 0.5)

	return &plot{dc: dc, yMax: 1}
}

func (p *plot) plotWidth() float64  { return width - 2*margin }
func (p *plot) plotHeight() float64 { return height - 2*margin }

func (p *plot) yRange(lo, hi float64) {
	if hi <= lo {
		hi = lo + 1
	}
	p.yMin, p.yMax = lo, hi
	p.dc.SetColor(axisColor)
	p.dc.DrawStringAnchored(strconv.FormatFloat(hi, 'f', 0, 64), margin-8, margin, 1, 0.5)
	p.dc.DrawStringAnchored(strconv.FormatFloat(lo, 'f', 0, 64), margin-8, height-margin, 1, 0.5)
}

func (p *plot) y(v float64) float64 {
	return height - margin - (v-p.yMin)/(p.yMax-p.yMin)*p.plotHeight()
}

// yearX spreads years evenly across the x axis.
func (p *plot) yearX(years []report.YearRow) func(int) float64 {
	if len(years) < 2 {
		return func(int) float64 { return margin + p.plotWidth()/2 }
	}
	step := p.plotWidth() / float64(len(years)-1)
	return func(i int) float64 { return margin + float64(i)*step }
}

// yearTicks labels roughly ten evenly spaced years.
func (p *plot) yearTicks(years []report.YearRow, x func(int) float64) {
	every := max(1, len(years)/10)
	p.dc.SetColor(axisColor)
	for i, row := range years {
		if i%every != 0 {
			continue
		}
		p.dc.DrawStringAnchored(strconv.Itoa(row.Year), x(i), height-margin+15, 0.5, 0.5)
	}
}

func (p *plot) encode(w io.Writer) error {
	return p.dc.EncodePNG(w)
}
