package domain

import "fmt"

// Year bounds declared by the reference dataset.
const (
	MinYear = 2006
	MaxYear = 2100
)

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month, or 0 when month
// is outside 1-12.
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	default:
		return 0
	}
}

// Period is a named, inclusive range of years.
type Period struct {
	Name  string
	First int
	Last  int
}

var (
	PeriodPast   = Period{Name: "past", First: 2006, Last: 2024}
	PeriodFuture = Period{Name: "future", First: 2025, Last: 2100}
)

// Periods lists the partitions in chronological order.
func Periods() []Period {
	return []Period{PeriodPast, PeriodFuture}
}

// PeriodOf returns the period containing year. The second result is false for
// years outside every period.
func PeriodOf(year int) (Period, bool) {
	for _, p := range Periods() {
		if p.Contains(year) {
			return p, true
		}
	}
	return Period{}, false
}

// Contains reports whether year falls inside the period.
func (p Period) Contains(year int) bool {
	return year >= p.First && year <= p.Last
}

// Span is the number of calendar years in the period.
func (p Period) Span() int {
	return p.Last - p.First + 1
}

// Label renders the period as "past (2006-2024)".
func (p Period) Label() string {
	return fmt.Sprintf("%s (%d-%d)", p.Name, p.First, p.Last)
}
