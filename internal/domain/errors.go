package domain

import (
	"errors"
	"fmt"
)

// Fatal conditions. Either one ends the run before any file is processed.
var (
	ErrInputDirNotFound = errors.New("input directory not found")
	ErrNoMatchingFiles  = errors.New("no matching station files")
)

// ErrorKind classifies a non-fatal validation anomaly.
type ErrorKind string

const (
	KindSchemaMismatch      ErrorKind = "schema_mismatch"
	KindMalformedCoordinate ErrorKind = "malformed_coordinate"
	KindInsufficientColumns ErrorKind = "insufficient_columns"
	KindIdentityMismatch    ErrorKind = "identity_mismatch"
	KindDayCountMismatch    ErrorKind = "day_count_mismatch"
	KindTooManyDays         ErrorKind = "too_many_days"
	KindInvalidYear         ErrorKind = "invalid_year"
	KindYearOutOfRange      ErrorKind = "year_out_of_range"
	KindMonthOutOfRange     ErrorKind = "month_out_of_range"
	KindUnparseableValue    ErrorKind = "unparseable_value"
	KindEmptyLine           ErrorKind = "empty_line"
	KindDuplicateMonth      ErrorKind = "duplicate_month"
	KindIncompleteYear      ErrorKind = "incomplete_year"
	KindUnreadableFile      ErrorKind = "unreadable_file"
)

// ErrorKinds lists every kind in report order.
func ErrorKinds() []ErrorKind {
	return []ErrorKind{
		KindSchemaMismatch,
		KindMalformedCoordinate,
		KindInsufficientColumns,
		KindIdentityMismatch,
		KindDayCountMismatch,
		KindTooManyDays,
		KindInvalidYear,
		KindYearOutOfRange,
		KindMonthOutOfRange,
		KindUnparseableValue,
		KindEmptyLine,
		KindDuplicateMonth,
		KindIncompleteYear,
		KindUnreadableFile,
	}
}

// ValidationError is one recorded anomaly. Line is 1-based; 0 means the error
// applies to the whole file.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	File    string    `json:"file"`
	Line    int       `json:"line,omitempty"`
	Message string    `json:"message"`
}

func (e ValidationError) String() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
}

func newError(kind ErrorKind, file string, line int, format string, args ...any) ValidationError {
	return ValidationError{Kind: kind, File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}
