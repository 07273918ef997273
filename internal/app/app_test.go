package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/precip-etl/internal/adapter/chart"
	"github.com/couchcryptid/precip-etl/internal/adapter/csvexport"
	"github.com/couchcryptid/precip-etl/internal/adapter/textlog"
	"github.com/couchcryptid/precip-etl/internal/app"
	"github.com/couchcryptid/precip-etl/internal/config"
	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/mockdata"
	"github.com/couchcryptid/precip-etl/internal/observability"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	opts := mockdata.DefaultOptions()
	opts.Stations = 3
	opts.FirstYear, opts.LastYear = 2020, 2030
	_, err := mockdata.WriteCorpus(dir, opts)
	require.NoError(t, err)
	return dir
}

func testConfig(t *testing.T, in, out string) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.InputDir, cfg.OutputDir = in, out
	return cfg
}

func TestApp_RunWritesEveryOutput(t *testing.T) {
	in, out := writeCorpus(t), t.TempDir()
	cfg := testConfig(t, in, out)
	cfg.HTTPAddr = ":0"

	a := app.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	defer a.Close()

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Validation.FilesProcessed)
	assert.Len(t, result.Summary.Years, 11)

	for _, name := range []string{
		textlog.ValidationLogFile,
		textlog.ResultsFile,
		csvexport.ResultsFile,
		csvexport.StationsFile,
		filepath.Join(app.ChartsDir, chart.BarsFile),
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	require.NotNil(t, a.Server)
	rec := httptest.NewRecorder()
	a.Server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_SelectedSinksOnly(t *testing.T) {
	in, out := writeCorpus(t), t.TempDir()
	cfg := testConfig(t, in, out)
	cfg.Sinks = []string{config.SinkCSV}

	a := app.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	defer a.Close()

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, a.Server)

	_, err = os.Stat(filepath.Join(out, csvexport.ResultsFile))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, textlog.ValidationLogFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRun(t *testing.T) {
	t.Run("valid corpus", func(t *testing.T) {
		vr, err := app.Run(context.Background(), writeCorpus(t), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 3, vr.FilesProcessed)
		assert.Empty(t, vr.Errors)
	})

	t.Run("missing input directory", func(t *testing.T) {
		out := t.TempDir()
		vr, err := app.Run(context.Background(), filepath.Join(out, "nope"), out)
		require.ErrorIs(t, err, domain.ErrInputDirNotFound)
		assert.Nil(t, vr)

		// No partial outputs for a fatal run.
		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("no matching files", func(t *testing.T) {
		_, err := app.Run(context.Background(), t.TempDir(), t.TempDir())
		require.ErrorIs(t, err, domain.ErrNoMatchingFiles)
	})
}
