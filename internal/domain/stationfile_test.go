package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFile(line2 string, data ...string) RawStationFile {
	raw := RawStationFile{Name: testFile, Line1: validLine1, Line2: line2}
	for i, d := range data {
		raw.Data = append(raw.Data, RawLine{Number: i + 3, Text: d})
	}
	return raw
}

func TestValidateFile_WellFormed(t *testing.T) {
	sf := ValidateFile(rawFile(validLine2, row(testStationID, 2006, 1, 31, "1")), DefaultHeaderSchema(), StrictnessLenient, false)

	assert.Empty(t, sf.Errors)
	require.Len(t, sf.Rows, 1)
	assert.Equal(t, RowAccepted, sf.Rows[0].Outcome.Status)

	st, ok := sf.Station()
	require.True(t, ok)
	assert.Equal(t, Station{ID: testStationID, File: testFile, Lat: 40, Lon: -3}, st)
}

func TestValidateFile_BadSuffixContinues(t *testing.T) {
	sf := ValidateFile(rawFile("P001 40.0 -3.0 182 geo 2006 2099 -1",
		row(testStationID, 2006, 1, 31, "1"),
		row(testStationID, 2006, 2, 28, "1"),
	), DefaultHeaderSchema(), StrictnessLenient, false)

	assert.Equal(t, []ErrorKind{KindSchemaMismatch}, kinds(sf.Errors))
	require.Len(t, sf.Rows, 2)
	for _, r := range sf.Rows {
		assert.True(t, r.Outcome.Aggregatable())
	}
}

func TestValidateFile_ErrorOrder(t *testing.T) {
	sf := ValidateFile(rawFile("P001 40.0",
		"P001 2006 1",
		row(otherStationID, 2006, 1, 31, "1"),
		"",
	), DefaultHeaderSchema(), StrictnessLenient, true)

	// Unknown header id: the P002 row is not an identity mismatch.
	assert.Equal(t, []ErrorKind{
		KindSchemaMismatch,
		KindInsufficientColumns,
		KindEmptyLine,
		KindIncompleteYear,
	}, kinds(sf.Errors))
	_, ok := sf.Station()
	assert.False(t, ok)
}

func TestValidateFile_StrictRejectsRowsFromCompleteness(t *testing.T) {
	sf := ValidateFile(rawFile(validLine2, row(otherStationID, 2006, 1, 31, "1")), DefaultHeaderSchema(), StrictnessStrict, true)

	assert.Equal(t, []ErrorKind{KindIdentityMismatch}, kinds(sf.Errors))
	assert.False(t, sf.Rows[0].Outcome.Aggregatable())
}

func TestValidateFile_MalformedHeaderIDStillChecksRows(t *testing.T) {
	sf := ValidateFile(rawFile("S001 40.0 -3.0 182 geo 2006 2100 -1",
		row("S001", 2006, 1, 31, "1"),
		row("P999", 2006, 2, 28, "1"),
	), DefaultHeaderSchema(), StrictnessLenient, false)

	assert.Equal(t, []ErrorKind{KindSchemaMismatch, KindIdentityMismatch}, kinds(sf.Errors))
	assert.Equal(t, 4, sf.Errors[1].Line)
	assert.Equal(t, "S001", sf.Meta.StationID)
}

func TestValidateFile_DuplicateMonth(t *testing.T) {
	data := make([]string, 0, 13)
	for m := 1; m <= 12; m++ {
		data = append(data, row(testStationID, 2006, m, DaysInMonth(2006, m), "1"))
	}
	data = append(data, row(testStationID, 2006, 3, 31, "5"))

	tests := []struct {
		name           string
		strictness     Strictness
		wantAggregated bool
	}{
		{"lenient notes the repeat", StrictnessLenient, true},
		{"strict rejects the repeat", StrictnessStrict, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := ValidateFile(rawFile(validLine2, data...), DefaultHeaderSchema(), tt.strictness, true)

			require.Equal(t, []ErrorKind{KindDuplicateMonth}, kinds(sf.Errors))
			assert.Equal(t, 15, sf.Errors[0].Line)
			require.Len(t, sf.Rows, 13)
			assert.Equal(t, tt.wantAggregated, sf.Rows[12].Outcome.Aggregatable())
			assert.True(t, sf.Rows[2].Outcome.Aggregatable())
		})
	}

	t.Run("short year with a repeat is still incomplete", func(t *testing.T) {
		sf := ValidateFile(rawFile(validLine2,
			row(testStationID, 2007, 1, 31, "1"),
			row(testStationID, 2007, 1, 31, "1"),
		), DefaultHeaderSchema(), StrictnessLenient, true)
		assert.Equal(t, []ErrorKind{KindDuplicateMonth, KindIncompleteYear}, kinds(sf.Errors))
	})
}
