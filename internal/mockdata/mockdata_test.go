package mockdata

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/precip-etl/internal/adapter/station"
	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.FirstYear, opts.LastYear = 2023, 2025
	return opts
}

func TestWriteStation_IsValid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStation(&buf, 0, smallOptions()))

	raw, err := station.Read("P001.dat", &buf)
	require.NoError(t, err)

	sf := domain.ValidateFile(raw, domain.DefaultHeaderSchema(), domain.StrictnessStrict, true)
	assert.Empty(t, sf.Errors)
	assert.Len(t, sf.Rows, 36)
	assert.Equal(t, "P001", sf.Meta.StationID)
}

func TestWriteStation_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteStation(&a, 3, smallOptions()))
	require.NoError(t, WriteStation(&b, 3, smallOptions()))
	assert.Equal(t, a.String(), b.String())

	var c bytes.Buffer
	require.NoError(t, WriteStation(&c, 4, smallOptions()))
	assert.NotEqual(t, a.String(), c.String())
}

func TestWriteCorpus(t *testing.T) {
	dir := t.TempDir()
	opts := smallOptions()
	opts.Stations = 3

	paths, err := WriteCorpus(dir, opts)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.True(t, strings.HasSuffix(paths[2], "P003.dat"))

	found, err := station.Discover(dir, "*.dat")
	require.NoError(t, err)
	assert.Equal(t, paths, found)
}

func TestWriteStation_Anomalies(t *testing.T) {
	opts := smallOptions()
	opts.Anomalies = true

	var buf bytes.Buffer
	require.NoError(t, WriteStation(&buf, 0, opts))
	raw, err := station.Read("P001.dat", &buf)
	require.NoError(t, err)

	sf := domain.ValidateFile(raw, domain.DefaultHeaderSchema(), domain.StrictnessLenient, true)
	kinds := make(map[domain.ErrorKind]bool)
	for _, e := range sf.Errors {
		kinds[e.Kind] = true
	}
	for _, want := range []domain.ErrorKind{
		domain.KindInsufficientColumns,
		domain.KindMonthOutOfRange,
		domain.KindUnparseableValue,
		domain.KindIdentityMismatch,
		domain.KindEmptyLine,
		domain.KindYearOutOfRange,
		domain.KindDuplicateMonth,
	} {
		assert.True(t, kinds[want], want)
	}

	// Only the first station carries anomalies.
	buf.Reset()
	require.NoError(t, WriteStation(&buf, 1, opts))
	raw, err = station.Read("P002.dat", &buf)
	require.NoError(t, err)
	assert.Empty(t, domain.ValidateFile(raw, domain.DefaultHeaderSchema(), domain.StrictnessLenient, true).Errors)
}
