// Command validate runs only the validation half of the pipeline over a
// directory of station files and reports PASS/FAIL per group of checks. It
// writes nothing and exits non-zero when any anomaly is found.
//
// Usage:
//
//	go run ./cmd/validate -input-dir data/precip -strict
package main

import (
	"flag"
	"fmt"
	"os"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/precip-etl/internal/adapter/station"
	"github.com/couchcryptid/precip-etl/internal/domain"
)

// phase tracks pass/fail for a group of error kinds.
type phase struct {
	name   string
	kinds  []domain.ErrorKind
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) owns(kind domain.ErrorKind) bool {
	for _, k := range p.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func newPhases() []*phase {
	return []*phase{
		{name: "Phase 1: File Access", kinds: []domain.ErrorKind{domain.KindUnreadableFile}},
		{name: "Phase 2: Header Schema", kinds: []domain.ErrorKind{
			domain.KindSchemaMismatch, domain.KindMalformedCoordinate,
		}},
		{name: "Phase 3: Row Structure", kinds: []domain.ErrorKind{
			domain.KindEmptyLine, domain.KindInsufficientColumns, domain.KindInvalidYear,
			domain.KindMonthOutOfRange, domain.KindTooManyDays, domain.KindDayCountMismatch,
		}},
		{name: "Phase 4: Row Content", kinds: []domain.ErrorKind{
			domain.KindIdentityMismatch, domain.KindYearOutOfRange, domain.KindUnparseableValue,
			domain.KindDuplicateMonth,
		}},
		{name: "Phase 5: Year Completeness", kinds: []domain.ErrorKind{domain.KindIncompleteYear}},
	}
}

func main() {
	inputDir := flag.String("input-dir", sharedcfg.EnvOrDefault("INPUT_DIR", "data"), "directory containing station files")
	pattern := flag.String("pattern", sharedcfg.EnvOrDefault("FILE_PATTERN", "*.dat"), "glob pattern for station files")
	strict := flag.Bool("strict", false, "reject rows with identity, day count or year range problems")
	maxErrors := flag.Int("max-errors", 20, "detailed errors to print per phase (0 for all)")
	flag.Parse()

	os.Exit(run(*inputDir, *pattern, *strict, *maxErrors))
}

func run(inputDir, pattern string, strict bool, maxErrors int) int {
	fmt.Println("=== Station File Validation ===")
	fmt.Println()

	files, err := station.Discover(inputDir, pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	strictness := domain.StrictnessLenient
	if strict {
		strictness = domain.StrictnessStrict
	}

	vr := domain.NewValidationReport("validate")
	phases := newPhases()
	for _, path := range files {
		raw, err := station.ReadFile(path)
		if err != nil {
			phases[0].errorf("%s: %v", path, err)
			continue
		}
		vr.FilesProcessed++
		vr.LinesProcessed += len(raw.Data)

		sf := domain.ValidateFile(raw, domain.DefaultHeaderSchema(), strictness, true)
		for _, row := range sf.Rows {
			vr.CountRecord(row.Record)
		}
		for _, e := range sf.Errors {
			for _, p := range phases {
				if p.owns(e.Kind) {
					p.errorf("%s", e.String())
					break
				}
			}
		}
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Files: %d, lines: %d, values: %d, missing: %d (%.2f%%)\n",
		vr.FilesProcessed, vr.LinesProcessed, vr.ValuesProcessed, vr.MissingValues, vr.MissingPercentage())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if maxErrors > 0 && i == maxErrors {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}
