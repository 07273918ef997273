// Package station discovers and reads fixed-format station files from disk.
package station

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/precip-etl/internal/domain"
)

// Discover lists the files in dir matching pattern in lexicographic order.
// A missing directory or an empty match set is fatal for the run.
func Discover(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInputDirNotFound, dir)
		}
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInputDirNotFound, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", domain.ErrNoMatchingFiles, pattern, dir)
	}
	sort.Strings(files)
	return files, nil
}

// DirSource lists and loads station files from a directory.
type DirSource struct {
	Dir     string
	Pattern string
}

// NewDirSource creates a source for files in dir matching pattern.
func NewDirSource(dir, pattern string) *DirSource {
	return &DirSource{Dir: dir, Pattern: pattern}
}

// List returns the matching files in processing order.
func (s *DirSource) List(_ context.Context) ([]string, error) {
	return Discover(s.Dir, s.Pattern)
}

// Load reads one station file.
func (s *DirSource) Load(ctx context.Context, path string) (domain.RawStationFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawStationFile{}, err
	}
	return ReadFile(path)
}

// ReadFile loads a station file.
func ReadFile(path string) (domain.RawStationFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawStationFile{}, fmt.Errorf("open station file: %w", err)
	}
	defer f.Close()

	sf, err := Read(filepath.Base(path), f)
	if err != nil {
		return domain.RawStationFile{}, err
	}
	sf.Path = path
	return sf, nil
}

// Read splits r into header and data lines. Trailing blank lines at the end
// of the file are dropped; blank lines in between are kept so they can be
// reported.
func Read(name string, r io.Reader) (domain.RawStationFile, error) {
	sf := domain.RawStationFile{Name: name}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimRight(sc.Text(), "\r")
		switch n {
		case 1:
			sf.Line1 = text
		case 2:
			sf.Line2 = text
		default:
			sf.Data = append(sf.Data, domain.RawLine{Number: n, Text: text})
		}
	}
	if err := sc.Err(); err != nil {
		return domain.RawStationFile{}, fmt.Errorf("read station file %s: %w", name, err)
	}

	for len(sf.Data) > 0 && strings.TrimSpace(sf.Data[len(sf.Data)-1].Text) == "" {
		sf.Data = sf.Data[:len(sf.Data)-1]
	}
	return sf, nil
}
