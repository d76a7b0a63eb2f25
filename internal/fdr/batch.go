package fdr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pgarrett-scripps/filter-compare/internal/dta"
	"golang.org/x/sync/errgroup"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	// suffixes stripped from file names for display, first match wins
	displaySuffixes = []string{"_DTASelect-filter.txt", "DTASelect-filter.txt", ".txt"}
)

// Input is the name and content of a single DTASelect-filter file.
type Input struct {
	Name    string
	Content []byte
}

// Options are the settings for a batch run.
type Options struct {
	// Classifier splits groups into target and decoy
	Classifier Classifier

	// Spectra is how spectra are counted
	Spectra SpectraMode

	// Schema decides which columns, and so which statistics, are computed
	Schema Schema

	// Workers is the number of files processed at once. Less than 2 is sequential
	Workers int

	// Lenient records undefined statistics as NaN, with a warning, rather than failing the batch
	Lenient bool

	// Verbose logs a line per file to stderr
	Verbose bool
}

// Row is the comparison of a single file.
type Row struct {
	File string

	Target Metrics
	Decoy  Metrics

	ProteinFDR FDR
	PeptideFDR FDR
	SpectraFDR FDR
}

// Table is the rows of a batch in input order.
type Table struct {
	Schema Schema
	Rows   []Row
}

// DisplayName strips the DTASelect-filter suffix from a file name.
func DisplayName(name string) string {
	for _, suffix := range displaySuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Run parses and compares each input, returning a table with a row per input.
//
// The first error ends the batch. Rows are in input order regardless of Workers.
func Run(ctx context.Context, inputs []Input, opts Options) (*Table, error) {
	if opts.Schema == "" {
		opts.Schema = DefaultSchema
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	rows := make([]Row, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := compare(inputs[i], opts)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Table{Schema: opts.Schema, Rows: rows}, nil
}

// compare builds the row for a single input.
func compare(in Input, opts Options) (Row, error) {
	row := Row{File: DisplayName(in.Name)}

	rs, err := dta.Parse(bytes.NewReader(in.Content))
	if err != nil {
		return row, fmt.Errorf("failed to parse %s: %w", in.Name, err)
	}

	target, decoy := opts.Classifier.Classify(rs.Results)
	if opts.Verbose {
		stderr.Printf("%s: %d protein groups, %d target, %d decoy", in.Name, len(rs.Results), len(target), len(decoy))
	}

	if row.Target, err = Aggregate(target, opts.Spectra); err != nil {
		if err = opts.undefined(err, in.Name, "target protein coverage"); err != nil {
			return row, err
		}
	}
	if row.Decoy, err = Aggregate(decoy, opts.Spectra); err != nil {
		if err = opts.undefined(err, in.Name, "decoy protein coverage"); err != nil {
			return row, err
		}
	}

	if !opts.Schema.HasFDR() {
		return row, nil
	}

	fdrs := []*FDR{&row.ProteinFDR, &row.PeptideFDR, &row.SpectraFDR}
	for i, c := range categories {
		if *fdrs[i], err = newFDR(c, row.Target, row.Decoy); err != nil {
			if err = opts.undefined(err, in.Name, string(c)+" FDR"); err != nil {
				return row, err
			}
		}
	}

	return row, nil
}

// undefined handles an undefined statistic: with Lenient it's logged and
// dropped, otherwise it's returned with the file and statistic it came from.
func (o Options) undefined(err error, file, stat string) error {
	if !errors.Is(err, ErrUndefinedMean) && !errors.Is(err, ErrUndefinedFDR) {
		return err
	}
	if !o.Lenient {
		return fmt.Errorf("failed to compute %s for %s: %w", stat, file, err)
	}
	stderr.Printf("warning: %s for %s is %v, recording NaN", stat, file, err)
	return nil
}

// ReadInputs reads DTASelect-filter files from the paths passed. Directories are
// expanded to the .txt files they contain, in lexical order.
func ReadInputs(paths []string) ([]Input, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to find input %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(path, "*.txt"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("failed: no DTASelect-filter files in %s", strings.Join(paths, ", "))
	}

	inputs := make([]Input, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs = append(inputs, Input{Name: inputName(file), Content: content})
	}
	return inputs, nil
}

// inputName is a file's base name, prefixed with its directory's name when
// the base name alone is nothing but the DTASelect-filter suffix.
func inputName(path string) string {
	base := filepath.Base(path)
	if DisplayName(base) != "" {
		return base
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return base
	}
	return dir + "_" + base
}
