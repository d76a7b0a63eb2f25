package fdr

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pgarrett-scripps/filter-compare/config"
	"github.com/spf13/cobra"
)

// CompareCmd takes a cobra command (with its flags) and compares the DTASelect-filter
// files passed as arguments, writing the table to the output file.
func CompareCmd(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		cmd.Help()
		stderr.Fatalln("\nno DTASelect-filter files passed.")
	}

	conf, err := config.New()
	if err != nil {
		stderr.Fatalln(err)
	}

	if _, err := Compare(cmd.Context(), args, conf); err != nil {
		stderr.Fatalln(err)
	}
}

// NewOptions converts the settings in a Config to batch Options.
func NewOptions(conf *config.Config) (Options, error) {
	spectra, err := ParseSpectraMode(conf.Spectra)
	if err != nil {
		return Options{}, err
	}

	schema, err := ParseSchema(conf.Schema)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Classifier: Classifier{Marker: conf.DecoyMarker},
		Spectra:    spectra,
		Schema:     schema,
		Workers:    conf.Workers,
		Lenient:    conf.Lenient,
		Verbose:    conf.Verbose,
	}, nil
}

// Compare reads the files at paths, compares them, and writes the table per conf.
func Compare(ctx context.Context, paths []string, conf *config.Config) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	opts, err := NewOptions(conf)
	if err != nil {
		return nil, err
	}

	format := conf.Format
	if format == "" {
		format = FormatFromPath(conf.Out)
	}
	if _, ok := writers[format]; !ok {
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	inputs, err := ReadInputs(paths)
	if err != nil {
		return nil, err
	}

	table, err := Run(ctx, inputs, opts)
	if err != nil {
		return nil, err
	}

	if err := WriteFile(conf.Out, format, table); err != nil {
		return nil, err
	}

	if conf.Print && conf.Out != "-" {
		if err := Write("text", os.Stdout, table); err != nil {
			return nil, err
		}
	}

	if conf.Verbose {
		stderr.Printf("compared %d files in %.2fs, table written to %s", len(inputs), time.Since(start).Seconds(), conf.Out)
	}
	return table, nil
}
