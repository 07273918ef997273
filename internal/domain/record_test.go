package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds a data line with n copies of value.
func row(id string, year, month, n int, value string) string {
	parts := []string{id, strconv.Itoa(year), strconv.Itoa(month)}
	for range n {
		parts = append(parts, value)
	}
	return strings.Join(parts, " ")
}

func TestParseRecord(t *testing.T) {
	t.Run("well-formed row", func(t *testing.T) {
		rec, out := ParseRecord(testFile, 3, "P001 2006 1 1.0 2.0 -999 4.0")
		assert.Equal(t, RowAccepted, out.Status)
		assert.Empty(t, out.Errors)
		assert.Equal(t, testStationID, rec.StationID)
		assert.Equal(t, 2006, rec.Year)
		assert.Equal(t, 1, rec.Month)
		assert.Equal(t, 7, rec.Columns)
		require.Len(t, rec.Values, 4)
		assert.Equal(t, ValueMissing, rec.Values[2].Kind)

		ok, missing, invalid := rec.Counts()
		assert.Equal(t, 3, ok)
		assert.Equal(t, 1, missing)
		assert.Equal(t, 0, invalid)
	})

	t.Run("empty line", func(t *testing.T) {
		_, out := ParseRecord(testFile, 5, "   \t ")
		assert.Equal(t, RowRejected, out.Status)
		assert.Equal(t, []ErrorKind{KindEmptyLine}, kinds(out.Errors))
	})

	t.Run("three columns rejected", func(t *testing.T) {
		_, out := ParseRecord(testFile, 5, "P001 2006 1")
		assert.False(t, out.Aggregatable())
		assert.Equal(t, []ErrorKind{KindInsufficientColumns}, kinds(out.Errors))
		assert.Equal(t, 5, out.Errors[0].Line)
	})

	t.Run("non-integer year", func(t *testing.T) {
		_, out := ParseRecord(testFile, 5, "P001 20x6 1 1.0")
		assert.Equal(t, RowRejected, out.Status)
		assert.Equal(t, []ErrorKind{KindInvalidYear}, kinds(out.Errors))
	})

	t.Run("month out of range", func(t *testing.T) {
		for _, m := range []string{"0", "13", "ene"} {
			_, out := ParseRecord(testFile, 5, "P001 2006 "+m+" 1.0")
			assert.Equal(t, RowRejected, out.Status, "month %s", m)
			assert.Equal(t, []ErrorKind{KindMonthOutOfRange}, kinds(out.Errors))
		}
	})

	t.Run("unparseable values are excluded but row continues", func(t *testing.T) {
		rec, out := ParseRecord(testFile, 5, "P001 2006 2 1.0 abc -5 2.0")
		assert.Equal(t, RowPartiallyAccepted, out.Status)
		assert.True(t, out.Aggregatable())
		assert.Equal(t, []ErrorKind{KindUnparseableValue, KindUnparseableValue}, kinds(out.Errors))
		assert.Contains(t, out.Errors[0].Message, "day 2")
		assert.Contains(t, out.Errors[1].Message, "day 3")

		ok, _, invalid := rec.Counts()
		assert.Equal(t, 2, ok)
		assert.Equal(t, 2, invalid)
	})
}

func TestValidateRow(t *testing.T) {
	parse := func(t *testing.T, raw string) DailyRecord {
		t.Helper()
		rec, out := ParseRecord(testFile, 3, raw)
		require.True(t, out.Aggregatable())
		return rec
	}

	t.Run("valid row", func(t *testing.T) {
		rec := parse(t, row(testStationID, 2024, 2, 29, "1"))
		out := ValidateRow(rec, testStationID, StrictnessLenient)
		assert.Equal(t, RowAccepted, out.Status)
	})

	t.Run("identity mismatch is recorded but kept", func(t *testing.T) {
		rec := parse(t, row(otherStationID, 2006, 1, 31, "1"))
		out := ValidateRow(rec, testStationID, StrictnessLenient)
		assert.Equal(t, RowPartiallyAccepted, out.Status)
		assert.Equal(t, []ErrorKind{KindIdentityMismatch}, kinds(out.Errors))
	})

	t.Run("unknown header id skips identity check", func(t *testing.T) {
		rec := parse(t, row(otherStationID, 2006, 1, 31, "1"))
		out := ValidateRow(rec, UnknownStationID, StrictnessLenient)
		assert.Equal(t, RowAccepted, out.Status)
	})

	t.Run("leap day count", func(t *testing.T) {
		rec := parse(t, row(testStationID, 2023, 2, 29, "1"))
		out := ValidateRow(rec, testStationID, StrictnessLenient)
		assert.Equal(t, []ErrorKind{KindDayCountMismatch}, kinds(out.Errors))
		assert.True(t, out.Aggregatable())
	})

	t.Run("too many days records both anomalies", func(t *testing.T) {
		rec := parse(t, row(testStationID, 2006, 1, 32, "1"))
		out := ValidateRow(rec, testStationID, StrictnessLenient)
		assert.Equal(t, []ErrorKind{KindTooManyDays, KindDayCountMismatch}, kinds(out.Errors))
		assert.True(t, out.Aggregatable())
	})

	t.Run("year out of range", func(t *testing.T) {
		rec := parse(t, row(testStationID, 2101, 1, 31, "1"))
		out := ValidateRow(rec, testStationID, StrictnessLenient)
		assert.Equal(t, []ErrorKind{KindYearOutOfRange}, kinds(out.Errors))
		assert.True(t, out.Aggregatable())
	})

	t.Run("strict mode rejects structural anomalies", func(t *testing.T) {
		rec := parse(t, row(otherStationID, 2101, 1, 30, "1"))
		out := ValidateRow(rec, testStationID, StrictnessStrict)
		assert.Equal(t, RowRejected, out.Status)
		assert.Equal(t, []ErrorKind{KindIdentityMismatch, KindDayCountMismatch, KindYearOutOfRange}, kinds(out.Errors))
	})
}

func TestRowOutcome_Merge(t *testing.T) {
	_, parsed := ParseRecord(testFile, 3, "P001 2006 1 x")
	rec, _ := ParseRecord(testFile, 3, "P001 2006 1 x")
	checked := ValidateRow(rec, testStationID, StrictnessStrict)

	merged := parsed.Merge(checked)
	assert.Equal(t, RowRejected, merged.Status)
	assert.Equal(t, []ErrorKind{KindUnparseableValue, KindDayCountMismatch}, kinds(merged.Errors))
}

func TestParseStrictness(t *testing.T) {
	s, err := ParseStrictness("strict")
	assert.NoError(t, err)
	assert.Equal(t, StrictnessStrict, s)

	_, err = ParseStrictness("paranoid")
	assert.Error(t, err)
}

func TestCheckYearCompleteness(t *testing.T) {
	var full MonthSet
	for m := 1; m <= 12; m++ {
		full = full.Add(m)
	}
	partial := MonthSet(0).Add(1).Add(2).Add(2)

	errs := CheckYearCompleteness(testFile, map[int]MonthSet{
		2007: partial,
		2006: full,
		2101: partial, // out of range years are reported by the row validator instead
	})
	require.Len(t, errs, 1)
	assert.Equal(t, KindIncompleteYear, errs[0].Kind)
	assert.Equal(t, "year 2007 has 2 of 12 months", errs[0].Message)
	assert.True(t, full.Complete())
	assert.Equal(t, 12, full.Len())
}
