// Command genmock writes deterministic synthetic station files in the
// reference layout so the pipeline can be demoed and load-tested without the
// real dataset.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -stations 20 -anomalies
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/couchcryptid/precip-etl/internal/domain"
	"github.com/couchcryptid/precip-etl/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	def := mockdata.DefaultOptions()
	outDir := flag.String("out-dir", "", "directory to write .dat files into")
	stations := flag.Int("stations", def.Stations, "number of stations")
	firstYear := flag.Int("first-year", def.FirstYear, "first year to generate")
	lastYear := flag.Int("last-year", def.LastYear, "last year to generate")
	seed := flag.Uint64("seed", def.Seed, "random seed")
	missingRate := flag.Float64("missing-rate", def.MissingRate, "share of days written as -999")
	dryRate := flag.Float64("dry-rate", def.DryRate, "share of days with no rain")
	withAnomalies := flag.Bool("anomalies", false, "append malformed rows to the first station")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *stations < 1 {
		return fmt.Errorf("-stations must be at least 1")
	}
	if *firstYear > *lastYear || *firstYear < domain.MinYear || *lastYear > domain.MaxYear {
		return fmt.Errorf("year range must lie within %d-%d", domain.MinYear, domain.MaxYear)
	}
	if *missingRate < 0 || *dryRate < 0 || *missingRate+*dryRate > 1 {
		return fmt.Errorf("-missing-rate and -dry-rate must be non-negative and sum to at most 1")
	}

	opts := mockdata.Options{
		Stations:    *stations,
		FirstYear:   *firstYear,
		LastYear:    *lastYear,
		Seed:        *seed,
		MissingRate: *missingRate,
		DryRate:     *dryRate,
		Anomalies:   *withAnomalies,
	}
	paths, err := mockdata.WriteCorpus(*outDir, opts)
	if err != nil {
		return err
	}

	log.Printf("wrote %d station files (%d-%d) to %s", len(paths), opts.FirstYear, opts.LastYear, *outDir)
	return nil
}
