package domain

import (
	"strconv"
	"strings"
)

// MaxColumns is the widest legal data row: station, year, month and 31 days.
const MaxColumns = 34

// DailyRecord is one parsed data line: a month of daily values for a station.
type DailyRecord struct {
	File      string
	Line      int
	StationID string
	Year      int
	Month     int
	Values    []Value
	Columns   int
}

// Counts tallies the record's values by kind.
func (r DailyRecord) Counts() (ok, missing, invalid int) {
	for _, v := range r.Values {
		switch v.Kind {
		case ValueOK:
			ok++
		case ValueMissing:
			missing++
		default:
			invalid++
		}
	}
	return ok, missing, invalid
}

// RowStatus says how much of a row the aggregator may use.
type RowStatus uint8

const (
	RowAccepted RowStatus = iota
	RowPartiallyAccepted
	RowRejected
)

func (s RowStatus) String() string {
	switch s {
	case RowAccepted:
		return "accepted"
	case RowPartiallyAccepted:
		return "partially_accepted"
	default:
		return "rejected"
	}
}

// RowOutcome is the result of parsing and validating one data line.
type RowOutcome struct {
	Status RowStatus
	Errors []ValidationError
}

// Aggregatable reports whether the row contributes to aggregates.
func (o RowOutcome) Aggregatable() bool { return o.Status != RowRejected }

// note records a non-exclusionary anomaly.
func (o *RowOutcome) note(e ValidationError) {
	o.Errors = append(o.Errors, e)
	if o.Status == RowAccepted {
		o.Status = RowPartiallyAccepted
	}
}

// reject records an anomaly that excludes the row entirely.
func (o *RowOutcome) reject(e ValidationError) {
	o.Errors = append(o.Errors, e)
	o.Status = RowRejected
}

// Merge folds another outcome into o, keeping the most severe status.
func (o RowOutcome) Merge(other RowOutcome) RowOutcome {
	merged := RowOutcome{Status: max(o.Status, other.Status)}
	merged.Errors = append(append(merged.Errors, o.Errors...), other.Errors...)
	return merged
}

// ParseRecord splits a raw data line into a DailyRecord. Structural failures
// (blank line, fewer than four columns, non-integer year, bad month) reject
// the row; unparseable day tokens are recorded and excluded while the rest of
// the row stays usable.
func ParseRecord(file string, line int, raw string) (DailyRecord, RowOutcome) {
	rec := DailyRecord{File: file, Line: line}
	var out RowOutcome

	tokens := strings.Fields(raw)
	rec.Columns = len(tokens)
	if len(tokens) == 0 {
		out.reject(newError(KindEmptyLine, file, line, "blank data line"))
		return rec, out
	}
	if len(tokens) < 4 {
		out.reject(newError(KindInsufficientColumns, file, line, "expected at least 4 columns, got %d", len(tokens)))
		return rec, out
	}

	rec.StationID = tokens[0]

	year, err := strconv.Atoi(tokens[1])
	if err != nil {
		out.reject(newError(KindInvalidYear, file, line, "year %q is not an integer", tokens[1]))
		return rec, out
	}
	rec.Year = year

	month, err := strconv.Atoi(tokens[2])
	if err != nil || month < 1 || month > 12 {
		out.reject(newError(KindMonthOutOfRange, file, line, "month %q is not in 1-12", tokens[2]))
		return rec, out
	}
	rec.Month = month

	rec.Values = make([]Value, len(tokens)-3)
	for i, tok := range tokens[3:] {
		v := ParseValue(tok)
		rec.Values[i] = v
		if v.Kind == ValueInvalid {
			out.note(newError(KindUnparseableValue, file, line, "day %d: unwanted characters %q", i+1, tok))
		}
	}

	return rec, out
}
