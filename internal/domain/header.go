package domain

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// UnknownStationID is returned when header line 2 has too few tokens to yield a
// station id. Rows of such a file skip the identity check.
const UnknownStationID = "UNKNOWN"

var stationIDPattern = regexp.MustCompile(`^P\d+$`)

// HeaderSchema is the fixed token sequence expected in the two header lines.
type HeaderSchema struct {
	Descriptor []string // line 1: variable, model, scenario, method, unit, "1"
	Suffix     []string // line 2 after the coordinates: daysMeta, "geo", start, end, "-1"
}

// DefaultHeaderSchema returns the schema of the reference MIROC5 dataset.
func DefaultHeaderSchema() HeaderSchema {
	return HeaderSchema{
		Descriptor: []string{"precip", "MIROC5", "RCP60", "REGRESION", "decimas", "1"},
		Suffix:     []string{"182", "geo", "2006", "2100", "-1"},
	}
}

// HeaderMeta is what the header declares about a station file.
type HeaderMeta struct {
	StationID      string
	Descriptor     []string
	Lat            float64
	Lon            float64
	HasCoordinates bool
	Suffix         []string
}

// ValidateHeader checks the first two lines of a station file against schema.
// It never fails outright: anomalies are returned alongside whatever metadata
// could be recovered. A station id that is not of the form P<digits> is still
// declared so rows are checked against it.
func ValidateHeader(file, line1, line2 string, schema HeaderSchema) (HeaderMeta, []ValidationError) {
	var errs []ValidationError
	meta := HeaderMeta{StationID: UnknownStationID}

	meta.Descriptor = strings.Fields(line1)
	if !slices.Equal(meta.Descriptor, schema.Descriptor) {
		errs = append(errs, newError(KindSchemaMismatch, file, 1,
			"descriptor %q does not match %q", strings.Join(meta.Descriptor, " "), strings.Join(schema.Descriptor, " ")))
	}

	tokens := strings.Fields(line2)
	if len(tokens) < 4 {
		errs = append(errs, newError(KindSchemaMismatch, file, 2,
			"expected station id, coordinates and suffix, got %d tokens", len(tokens)))
		return meta, errs
	}

	meta.StationID = tokens[0]
	if !stationIDPattern.MatchString(tokens[0]) {
		errs = append(errs, newError(KindSchemaMismatch, file, 2, "station id %q is not of the form P<digits>", tokens[0]))
	}

	lat, latErr := strconv.ParseFloat(tokens[1], 64)
	lon, lonErr := strconv.ParseFloat(tokens[2], 64)
	if latErr != nil || lonErr != nil {
		errs = append(errs, newError(KindMalformedCoordinate, file, 2, "coordinates %q %q are not decimals", tokens[1], tokens[2]))
	} else {
		meta.Lat, meta.Lon, meta.HasCoordinates = lat, lon, true
	}

	meta.Suffix = tokens[3:]
	if !slices.Equal(meta.Suffix, schema.Suffix) {
		errs = append(errs, newError(KindSchemaMismatch, file, 2,
			"suffix %q does not match %q", strings.Join(meta.Suffix, " "), strings.Join(schema.Suffix, " ")))
	}

	return meta, errs
}
