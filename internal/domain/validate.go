package domain

import (
	"fmt"
	"math/bits"
	"sort"
)

// Strictness selects which structural anomalies exclude a row from aggregation.
type Strictness string

const (
	// StrictnessLenient records identity, day-count, column and year-range
	// anomalies but still aggregates the row.
	StrictnessLenient Strictness = "lenient"
	// StrictnessStrict rejects rows with any of those anomalies.
	StrictnessStrict Strictness = "strict"
)

// ParseStrictness validates a configured strictness level.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(s) {
	case StrictnessLenient, StrictnessStrict:
		return Strictness(s), nil
	}
	return "", fmt.Errorf("unknown strictness %q", s)
}

// ValidateRow checks a parsed record against the file's declared station id
// and the calendar. It does not repeat the parse-time checks.
func ValidateRow(rec DailyRecord, declaredID string, strictness Strictness) RowOutcome {
	var out RowOutcome
	record := out.note
	if strictness == StrictnessStrict {
		record = out.reject
	}

	if declaredID != UnknownStationID && rec.StationID != declaredID {
		record(newError(KindIdentityMismatch, rec.File, rec.Line, "station id %q does not match header id %q", rec.StationID, declaredID))
	}
	if rec.Columns > MaxColumns {
		record(newError(KindTooManyDays, rec.File, rec.Line, "%d columns exceed the maximum of %d", rec.Columns, MaxColumns))
	}
	if want := DaysInMonth(rec.Year, rec.Month); len(rec.Values) != want {
		record(newError(KindDayCountMismatch, rec.File, rec.Line, "%04d-%02d has %d values, want %d", rec.Year, rec.Month, len(rec.Values), want))
	}
	if rec.Year < MinYear || rec.Year > MaxYear {
		record(newError(KindYearOutOfRange, rec.File, rec.Line, "year %d outside %d-%d", rec.Year, MinYear, MaxYear))
	}

	return out
}

// CheckDuplicateMonth flags a row whose month was already seen for the same
// year in this file. A repeated month would otherwise make a short year look
// complete and count twice in its annual sum.
func CheckDuplicateMonth(rec DailyRecord, seen MonthSet, strictness Strictness) RowOutcome {
	var out RowOutcome
	if !seen.Has(rec.Month) {
		return out
	}
	e := newError(KindDuplicateMonth, rec.File, rec.Line, "%04d-%02d already appeared in this file", rec.Year, rec.Month)
	if strictness == StrictnessStrict {
		out.reject(e)
	} else {
		out.note(e)
	}
	return out
}

// MonthSet is a bitmask of observed months, bit 0 for January.
type MonthSet uint16

// Add marks month (1-12) as observed.
func (m MonthSet) Add(month int) MonthSet {
	if month < 1 || month > 12 {
		return m
	}
	return m | 1<<(month-1)
}

// Has reports whether month was observed.
func (m MonthSet) Has(month int) bool {
	return month >= 1 && month <= 12 && m&(1<<(month-1)) != 0
}

// Len is the number of distinct months observed.
func (m MonthSet) Len() int { return bits.OnesCount16(uint16(m)) }

// Complete reports whether all twelve months were observed.
func (m MonthSet) Complete() bool { return m == 1<<12-1 }

// CheckYearCompleteness reports in-range years of one file that do not have all
// twelve months.
func CheckYearCompleteness(file string, months map[int]MonthSet) []ValidationError {
	years := make([]int, 0, len(months))
	for y := range months {
		years = append(years, y)
	}
	sort.Ints(years)

	var errs []ValidationError
	for _, y := range years {
		if y < MinYear || y > MaxYear || months[y].Complete() {
			continue
		}
		errs = append(errs, newError(KindIncompleteYear, file, 0, "year %d has %d of 12 months", y, months[y].Len()))
	}
	return errs
}
