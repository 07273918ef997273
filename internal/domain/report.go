package domain

import "time"

// ValidationReport accumulates counters and anomalies for one run. It only
// grows; sinks may flush it at checkpoints.
type ValidationReport struct {
	RunID           string            `json:"run_id"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
	FilesProcessed  int               `json:"files_processed"`
	LinesProcessed  int               `json:"lines_processed"`
	ValuesProcessed int               `json:"values_processed"`
	MissingValues   int               `json:"missing_values"`
	Errors          []ValidationError `json:"errors"`
}

// NewValidationReport starts a report stamped with the package clock.
func NewValidationReport(runID string) *ValidationReport {
	return &ValidationReport{RunID: runID, StartedAt: Now()}
}

// Record appends anomalies in the order they were found.
func (r *ValidationReport) Record(errs ...ValidationError) {
	r.Errors = append(r.Errors, errs...)
}

// CountRecord adds a parsed row's values to the counters. Values processed
// covers measured amounts and missing sentinels; unparseable tokens only show
// up as errors.
func (r *ValidationReport) CountRecord(rec DailyRecord) {
	ok, missing, _ := rec.Counts()
	r.ValuesProcessed += ok + missing
	r.MissingValues += missing
}

// MissingPercentage is the share of processed values that were missing, 0 when
// nothing was processed.
func (r *ValidationReport) MissingPercentage() float64 {
	if r.ValuesProcessed == 0 {
		return 0
	}
	return float64(r.MissingValues) / float64(r.ValuesProcessed) * 100
}

// CountByKind tallies recorded anomalies per kind.
func (r *ValidationReport) CountByKind() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, e := range r.Errors {
		counts[e.Kind]++
	}
	return counts
}

// Finish stamps the end of the run.
func (r *ValidationReport) Finish() {
	r.FinishedAt = Now()
}
