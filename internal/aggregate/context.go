// Package aggregate folds validated daily records into run-scoped statistics:
// per-year totals, per-station annual sums, and per-period extreme days.
package aggregate

import (
	"sort"

	"github.com/couchcryptid/precip-etl/internal/domain"
)

// YearAggregate accumulates every non-missing value observed for one year
// across all stations.
type YearAggregate struct {
	Year      int
	Total     float64
	ValidDays int
}

// MeanPerDay is Total / ValidDays, 0 when no day was valid.
func (y YearAggregate) MeanPerDay() float64 {
	if y.ValidDays == 0 {
		return 0
	}
	return y.Total / float64(y.ValidDays)
}

// StationYearAggregate accumulates one station's contributions to one year.
type StationYearAggregate struct {
	StationID string
	Year      int
	Sum       float64
	Months    domain.MonthSet
}

// AnnualMean is the station's monthly mean for the year, Sum / 12. It is only
// defined when all twelve months were observed.
func (s StationYearAggregate) AnnualMean() (float64, bool) {
	if !s.Months.Complete() {
		return 0, false
	}
	return s.Sum / 12, true
}

// Extreme is a single wettest or driest day.
type Extreme struct {
	StationID string  `json:"station_id"`
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"` // 1-based position within the row
	Value     float64 `json:"value"`
}

// PeriodExtremes holds the running max and min for one period. Set is false
// until a value has been observed.
type PeriodExtremes struct {
	Max Extreme
	Min Extreme
	Set bool
}

// observe applies the strict-inequality update so ties keep the first value seen.
func (p *PeriodExtremes) observe(e Extreme) {
	if !p.Set {
		p.Max, p.Min, p.Set = e, e, true
		return
	}
	if e.Value > p.Max.Value {
		p.Max = e
	}
	if e.Value < p.Min.Value {
		p.Min = e
	}
}

type stationYearKey struct {
	station string
	year    int
}

// Context owns all aggregate state of one run. It is not safe for concurrent
// use; records must be added in file order for extremes to be reproducible.
type Context struct {
	years    map[int]*YearAggregate
	stations map[stationYearKey]*StationYearAggregate
	byYear   map[int][]*StationYearAggregate // insertion order
	extremes map[string]*PeriodExtremes
}

// NewContext returns an empty aggregation context.
func NewContext() *Context {
	return &Context{
		years:    make(map[int]*YearAggregate),
		stations: make(map[stationYearKey]*StationYearAggregate),
		byYear:   make(map[int][]*StationYearAggregate),
		extremes: make(map[string]*PeriodExtremes),
	}
}

// Add folds one record into the aggregates. Only ValueOK entries contribute;
// a row with no valid entries still marks its month as observed for the
// station-year.
func (c *Context) Add(rec domain.DailyRecord) {
	ya := c.year(rec.Year)
	key := stationYearKey{station: rec.StationID, year: rec.Year}
	sy, ok := c.stations[key]
	if !ok {
		sy = &StationYearAggregate{StationID: rec.StationID, Year: rec.Year}
		c.stations[key] = sy
		c.byYear[rec.Year] = append(c.byYear[rec.Year], sy)
	}
	sy.Months = sy.Months.Add(rec.Month)

	period, inPeriod := domain.PeriodOf(rec.Year)
	var pe *PeriodExtremes
	if inPeriod {
		pe = c.periodExtremes(period)
	}

	for i, v := range rec.Values {
		if !v.OK() {
			continue
		}
		ya.Total += v.Amount
		ya.ValidDays++
		sy.Sum += v.Amount
		if pe != nil {
			pe.observe(Extreme{StationID: rec.StationID, Year: rec.Year, Month: rec.Month, Day: i + 1, Value: v.Amount})
		}
	}
}

func (c *Context) year(y int) *YearAggregate {
	ya, ok := c.years[y]
	if !ok {
		ya = &YearAggregate{Year: y}
		c.years[y] = ya
	}
	return ya
}

func (c *Context) periodExtremes(p domain.Period) *PeriodExtremes {
	pe, ok := c.extremes[p.Name]
	if !ok {
		pe = &PeriodExtremes{}
		c.extremes[p.Name] = pe
	}
	return pe
}

// Years returns every observed year in ascending order.
func (c *Context) Years() []int {
	years := make([]int, 0, len(c.years))
	for y := range c.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Year returns the aggregate for y and whether it was observed.
func (c *Context) Year(y int) (YearAggregate, bool) {
	ya, ok := c.years[y]
	if !ok {
		return YearAggregate{}, false
	}
	return *ya, true
}

// StationYear returns one station's aggregate for y.
func (c *Context) StationYear(station string, y int) (StationYearAggregate, bool) {
	sy, ok := c.stations[stationYearKey{station: station, year: y}]
	if !ok {
		return StationYearAggregate{}, false
	}
	return *sy, true
}

// AnnualMean is the mean annual total across stations for y: each complete
// station-year contributes Sum / 12, and the contributions are averaged over
// the number of such stations. The second result is false when no station has
// a complete year.
func (c *Context) AnnualMean(y int) (float64, bool) {
	var sum float64
	var n int
	for _, sy := range c.byYear[y] {
		if mean, ok := sy.AnnualMean(); ok {
			sum += mean
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Extremes returns the wettest and driest day recorded in period p.
func (c *Context) Extremes(p domain.Period) PeriodExtremes {
	pe, ok := c.extremes[p.Name]
	if !ok {
		return PeriodExtremes{}
	}
	return *pe
}

// Change is the difference in total precipitation between a year and the
// previous observed year.
type Change struct {
	FromYear int     `json:"from_year"`
	Year     int     `json:"year"`
	Delta    float64 `json:"delta"`
}

// LargestChanges walks observed years in ascending order and returns the
// largest increase and largest decrease of Total between consecutive years.
// Ties keep the earliest pair. ok is false with fewer than two years.
func (c *Context) LargestChanges() (increase, decrease Change, ok bool) {
	years := c.Years()
	if len(years) < 2 {
		return Change{}, Change{}, false
	}
	for i := 1; i < len(years); i++ {
		prev, cur := c.years[years[i-1]], c.years[years[i]]
		ch := Change{FromYear: prev.Year, Year: cur.Year, Delta: cur.Total - prev.Total}
		if i == 1 || ch.Delta > increase.Delta {
			increase = ch
		}
		if i == 1 || ch.Delta < decrease.Delta {
			decrease = ch
		}
	}
	return increase, decrease, true
}
