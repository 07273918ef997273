// Package mockdata writes deterministic synthetic station files in the
// reference layout for demos and tests.
package mockdata

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/precip-etl/internal/domain"
)

// Options controls the generated corpus.
type Options struct {
	Stations    int
	FirstYear   int
	LastYear    int
	Seed        uint64
	MissingRate float64 // share of days written as -999
	DryRate     float64 // share of days with no rain
	Anomalies   bool    // append a few malformed rows to the first station
}

// DefaultOptions covers the full reference range with a small station set.
func DefaultOptions() Options {
	return Options{
		Stations:    5,
		FirstYear:   domain.MinYear,
		LastYear:    domain.MaxYear,
		Seed:        42,
		MissingRate: 0.01,
		DryRate:     0.65,
	}
}

// StationID formats the i-th station id, starting at P001.
func StationID(i int) string {
	return fmt.Sprintf("P%03d", i+1)
}

// WriteCorpus writes one .dat file per station into dir and returns their paths.
func WriteCorpus(dir string, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mock directory: %w", err)
	}
	paths := make([]string, 0, opts.Stations)
	for i := range opts.Stations {
		id := StationID(i)
		path := filepath.Join(dir, id+".dat")
		if err := writeFile(path, i, opts); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, i int, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteStation(f, i, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteStation writes the i-th station of the corpus to w. Coordinates spread
// stations over the Iberian peninsula.
func WriteStation(w io.Writer, i int, opts Options) error {
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
	schema := domain.DefaultHeaderSchema()
	id := StationID(i)
	lat := 36.0 + float64(i%8)
	lon := -9.0 + float64(i%12)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(schema.Descriptor, " "))
	fmt.Fprintf(bw, "%s %.2f %.2f %s\n", id, lat, lon, strings.Join(schema.Suffix, " "))

	for year := opts.FirstYear; year <= opts.LastYear; year++ {
		for month := 1; month <= 12; month++ {
			bw.WriteString(id)
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(year))
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(month))
			for range domain.DaysInMonth(year, month) {
				bw.WriteByte(' ')
				bw.WriteString(dailyValue(rng, opts))
			}
			bw.WriteByte('\n')
		}
	}
	if opts.Anomalies && i == 0 {
		for _, line := range anomalies(id, opts.FirstYear) {
			bw.WriteString(line)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// anomalies returns rows that each trip a different validation check: too few
// columns, month out of range, an unparseable day, a foreign station id, a
// blank line and a year past the projection range. The month 2 and 3 rows
// also repeat months of the first year.
func anomalies(id string, year int) []string {
	y := strconv.Itoa(year)
	return []string{
		id + " " + y,
		id + " " + y + " 13 1 2 3",
		id + " " + y + " 2 1 x 3",
		"P999 " + y + " 3 1 2 3",
		"",
		id + " 2101 1 " + strings.TrimSpace(strings.Repeat("0 ", 31)),
	}
}

func dailyValue(rng *rand.Rand, opts Options) string {
	switch r := rng.Float64(); {
	case r < opts.MissingRate:
		return strconv.Itoa(domain.MissingSentinel)
	case r < opts.MissingRate+opts.DryRate:
		return "0"
	default:
		return strconv.Itoa(1 + rng.IntN(400))
	}
}
