package report

import "github.com/couchcryptid/precip-etl/internal/domain"

// Output is everything a completed run hands to its sinks.
type Output struct {
	Validation *domain.ValidationReport
	Summary    *Summary
	Stations   []domain.Station
}
