// Package report derives the summary views published at the end of a run from
// the final aggregation state.
package report

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/precip-etl/internal/aggregate"
	"github.com/couchcryptid/precip-etl/internal/domain"
)

// Classification labels.
const (
	Wet = "Pluvioso"
	Dry = "Seco"
)

// DefaultTopN is the number of ranked years listed per period.
const DefaultTopN = 10

// Options tunes the derived views.
type Options struct {
	TopN int
}

// RankedYear is one entry of a wettest or driest list.
type RankedYear struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

// PeriodSummary collects the per-period views.
type PeriodSummary struct {
	Period     domain.Period            `json:"period"`
	HasData    bool                     `json:"has_data"`
	Wettest    []RankedYear             `json:"wettest"`
	Driest     []RankedYear             `json:"driest"`
	MeanAnnual float64                  `json:"mean_annual"`
	Extremes   aggregate.PeriodExtremes `json:"extremes"`
}

// YearRow is one line of the year-by-year table.
type YearRow struct {
	Year           int      `json:"year"`
	Total          float64  `json:"total"`
	ValidDays      int      `json:"valid_days"`
	MeanPerDay     float64  `json:"mean_per_day"`
	AnnualMean     float64  `json:"annual_mean"`
	HasAnnualMean  bool     `json:"has_annual_mean"`
	VariationRate  *float64 `json:"variation_rate"` // nil renders as N/A
	Classification string   `json:"classification"`
}

// Summary is everything the sinks render.
type Summary struct {
	Years           []YearRow        `json:"years"`
	Periods         []PeriodSummary  `json:"periods"`
	Baseline        float64          `json:"baseline"`
	HasChanges      bool             `json:"has_changes"`
	LargestIncrease aggregate.Change `json:"largest_increase"`
	LargestDecrease aggregate.Change `json:"largest_decrease"`
}

// Period returns the summary for p.
func (s *Summary) Period(p domain.Period) (PeriodSummary, bool) {
	for _, ps := range s.Periods {
		if ps.Period == p {
			return ps, true
		}
	}
	return PeriodSummary{}, false
}

// Build runs once over the final aggregation state.
func Build(agg *aggregate.Context, opts Options) *Summary {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	s := &Summary{}
	years := agg.Years()

	for _, p := range domain.Periods() {
		s.Periods = append(s.Periods, buildPeriod(agg, years, p, opts.TopN))
	}
	if past, ok := s.Period(domain.PeriodPast); ok {
		s.Baseline = past.MeanAnnual
	}

	s.LargestIncrease, s.LargestDecrease, s.HasChanges = agg.LargestChanges()

	var prev *aggregate.YearAggregate
	for _, y := range years {
		ya, _ := agg.Year(y)
		mean, hasMean := agg.AnnualMean(y)
		row := YearRow{
			Year:           y,
			Total:          ya.Total,
			ValidDays:      ya.ValidDays,
			MeanPerDay:     ya.MeanPerDay(),
			AnnualMean:     mean,
			HasAnnualMean:  hasMean,
			Classification: Classify(mean, s.Baseline),
		}
		if prev != nil {
			if rate, ok := VariationRate(prev.Total, ya.Total); ok {
				row.VariationRate = &rate
			}
		}
		s.Years = append(s.Years, row)
		prev = &ya
	}

	return s
}

func buildPeriod(agg *aggregate.Context, years []int, p domain.Period, n int) PeriodSummary {
	ps := PeriodSummary{Period: p, Extremes: agg.Extremes(p)}

	var ranked []RankedYear
	for _, y := range years {
		if !p.Contains(y) {
			continue
		}
		ya, _ := agg.Year(y)
		ranked = append(ranked, RankedYear{Year: y, Total: ya.Total})
	}
	if len(ranked) == 0 {
		return ps
	}
	ps.HasData = true

	var sum float64
	for y := p.First; y <= p.Last; y++ {
		mean, _ := agg.AnnualMean(y)
		sum += mean
	}
	ps.MeanAnnual = sum / float64(p.Span())

	ps.Wettest = topN(ranked, n, func(a, b RankedYear) bool { return a.Total > b.Total })
	ps.Driest = topN(ranked, n, func(a, b RankedYear) bool { return a.Total < b.Total })
	return ps
}

// topN stable-sorts a copy of ranked (which is in ascending year order) and
// keeps the first n, so equal totals stay in year order.
func topN(ranked []RankedYear, n int, less func(a, b RankedYear) bool) []RankedYear {
	sorted := make([]RankedYear, len(ranked))
	copy(sorted, ranked)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Classify labels a year wet when its mean strictly exceeds the baseline.
func Classify(mean, baseline float64) string {
	if mean > baseline {
		return Wet
	}
	return Dry
}

// VariationRate is the percentage change from prev to cur. It is undefined
// when prev is zero.
func VariationRate(prev, cur float64) (float64, bool) {
	if prev == 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}

// FormatRate renders a variation rate with two decimals, or N/A.
func FormatRate(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *rate)
}
