package domain

// RawLine is one data line of a station file with its 1-based line number.
type RawLine struct {
	Number int
	Text   string
}

// RawStationFile is the unparsed content of one station file.
type RawStationFile struct {
	Name  string
	Path  string
	Line1 string
	Line2 string
	Data  []RawLine
}

// ParsedRow pairs a data line's record with its outcome.
type ParsedRow struct {
	Record  DailyRecord
	Outcome RowOutcome
}

// StationFile is a fully validated station file. Errors holds every anomaly
// in file order: header first, then rows, then year completeness.
type StationFile struct {
	Name   string
	Meta   HeaderMeta
	Rows   []ParsedRow
	Errors []ValidationError
}

// Station returns the file's declared location. ok is false when the header
// did not yield a usable id and coordinates.
func (f StationFile) Station() (Station, bool) {
	if f.Meta.StationID == UnknownStationID || !f.Meta.HasCoordinates {
		return Station{}, false
	}
	return Station{ID: f.Meta.StationID, File: f.Name, Lat: f.Meta.Lat, Lon: f.Meta.Lon}, true
}

// ValidateFile runs the header validator, record parser and row validator
// over a raw file. Rows keep their line order so downstream aggregation sees
// values in file order.
func ValidateFile(raw RawStationFile, schema HeaderSchema, strictness Strictness, requireCompleteYears bool) StationFile {
	sf := StationFile{Name: raw.Name}

	meta, errs := ValidateHeader(raw.Name, raw.Line1, raw.Line2, schema)
	sf.Meta = meta
	sf.Errors = append(sf.Errors, errs...)

	months := make(map[int]MonthSet)
	sf.Rows = make([]ParsedRow, 0, len(raw.Data))
	for _, line := range raw.Data {
		rec, out := ParseRecord(raw.Name, line.Number, line.Text)
		if out.Aggregatable() {
			out = out.Merge(ValidateRow(rec, meta.StationID, strictness))
		}
		if out.Aggregatable() {
			out = out.Merge(CheckDuplicateMonth(rec, months[rec.Year], strictness))
		}
		if out.Aggregatable() {
			months[rec.Year] = months[rec.Year].Add(rec.Month)
		}
		sf.Rows = append(sf.Rows, ParsedRow{Record: rec, Outcome: out})
		sf.Errors = append(sf.Errors, out.Errors...)
	}

	if requireCompleteYears {
		sf.Errors = append(sf.Errors, CheckYearCompleteness(raw.Name, months)...)
	}
	return sf
}
