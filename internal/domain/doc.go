// Package domain models daily precipitation station files produced by the
// MIROC5 RCP6.0 statistical downscaling run.
//
// # Data Source
//
// Each station is delivered as one fixed-format ".dat" text file covering
// 2006 through 2100. Files are read in full on every run; there is no
// incremental state between runs.
//
// # File Layout
//
// Line 1 is a schema descriptor of exactly six tokens:
//
//	precip MIROC5 RCP60 REGRESION decimas 1
//
// Line 2 declares the station and its coordinates, followed by a fixed suffix:
//
//	P001 40.0 -3.0 182 geo 2006 2100 -1
//
// Lines 3..N hold one month each:
//
//	<stationId> <year> <month> <day1> ... <dayK>
//
// where K is the Gregorian day count of that month (28 to 31). A row may not
// exceed 34 columns (three identity columns plus 31 days).
//
// # Value Conventions
//
// Amounts are non-negative decimals expressed in tenths of a millimetre
// ("decimas"). The sentinel -999 means no measurement was recorded; it is
// counted as missing and never contributes to totals, day counts, or extremes.
// Any other negative number, NaN, or infinity is an unparseable value.
//
// # Periods
//
// Years are partitioned into a past period (2006-2024, observed) and a future
// period (2025-2100, projected). Years outside both still contribute to yearly
// totals but never to period statistics. See [PeriodOf].
//
// # Validation Model
//
// Validation never aborts a run. Every anomaly becomes a [ValidationError]
// attached to its file and line, and every data row ends with a [RowOutcome]
// that tells the aggregator whether the row is usable. Only a missing input
// directory or an empty file set is fatal ([ErrInputDirNotFound],
// [ErrNoMatchingFiles]).
package domain
