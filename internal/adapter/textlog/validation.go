// Package textlog writes the plain-text validation log and results report.
package textlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/report"
)

// ValidationLogFile is the file name of the validation log inside the output
// directory.
const ValidationLogFile = "validation.log"

// ValidationLog appends anomalies to a text file as each station file is
// processed and closes it with a summary block. It implements both
// pipeline.Checkpointer and pipeline.Sink.
type ValidationLog struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	f  *os.File
}

// NewValidationLog creates a log that will be written to dir.
func NewValidationLog(dir string, logger *slog.Logger) *ValidationLog {
	return &ValidationLog{path: filepath.Join(dir, ValidationLogFile), logger: logger}
}

// Path returns the log file location.
func (l *ValidationLog) Path() string { return l.path }

// Name implements pipeline.Sink.
func (l *ValidationLog) Name() string { return "log" }

// Begin truncates the log and writes the run header.
func (l *ValidationLog) Begin(_ context.Context, vr *domain.ValidationReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("create validation log: %w", err)
	}
	l.f = f

	_, err = fmt.Fprintf(f, "Validation run %s started %s\n\n", vr.RunID, vr.StartedAt.Format(time.RFC3339))
	return err
}

// Checkpoint appends one line per anomaly and flushes the file so a crash
// leaves everything found so far on disk.
func (l *ValidationLog) Checkpoint(_ context.Context, errs []domain.ValidationError) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return fmt.Errorf("validation log %s not started", l.path)
	}
	for _, e := range errs {
		if _, err := fmt.Fprintln(l.f, "ERROR:", e.String()); err != nil {
			return err
		}
	}
	return l.f.Sync()
}

// Publish writes the summary block and closes the log.
func (l *ValidationLog) Publish(_ context.Context, out *report.Output) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open validation log: %w", err)
		}
		l.f = f
	}

	werr := WriteSummary(l.f, out.Validation)
	cerr := l.f.Close()
	l.f = nil
	if werr != nil {
		return fmt.Errorf("write validation summary: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close validation log: %w", cerr)
	}
	l.logger.Info("validation log written", "path", l.path, "errors", len(out.Validation.Errors))
	return nil
}

// Close releases the file when a run ends without publishing.
func (l *ValidationLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// WriteSummary renders the closing counters of a validation report.
func WriteSummary(w io.Writer, vr *domain.ValidationReport) error {
	ew := &errWriter{w: w}
	ew.printf("\nSummary:\n")
	ew.printf("Files processed: %d\n", vr.FilesProcessed)
	ew.printf("Lines processed: %d\n", vr.LinesProcessed)
	ew.printf("Values processed: %d\n", vr.ValuesProcessed)
	ew.printf("Missing values (%d): %d\n", domain.MissingSentinel, vr.MissingValues)
	ew.printf("Missing percentage: %.2f%%\n", vr.MissingPercentage())
	ew.printf("Anomalies: %d\n", len(vr.Errors))

	counts := vr.CountByKind()
	for _, kind := range domain.ErrorKinds() {
		if n := counts[kind]; n > 0 {
			ew.printf("  %-22s %d\n", kind, n)
		}
	}
	if !vr.FinishedAt.IsZero() {
		ew.printf("Finished: %s\n", vr.FinishedAt.Format(time.RFC3339))
	}
	return ew.err
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
