package fdr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgarrett-scripps/filter-compare/internal/dta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filterHeader = "DTASelect v2.1.13\n" +
	"/data/runs/test\n" +
	"Locus\tSequence Count\tSpectrum Count\tSequence Coverage\tDescriptive Name\n" +
	"Unique\tFileName\tXCorr\tSequence\n"

const filterFooter = "\tProteins\tPeptide IDs\tSpectra\n" +
	"Filtered\t0\t0\t0\n"

// filterFile makes a DTASelect-filter file with the number of target and decoy
// groups passed. Every group has one locus at 50% coverage with 1 spectrum,
// and one peptide of its own.
func filterFile(targets, decoys int) []byte {
	var sb strings.Builder
	sb.WriteString(filterHeader)
	for i := 0; i < targets; i++ {
		fmt.Fprintf(&sb, "sp|T%d|TARGET\t1\t1\t50.0%%\ttarget %d\n", i, i)
		fmt.Fprintf(&sb, "*\trun.%d.%d.2\t3.0\tK.%sK.L\n", i, i, strings.Repeat("A", i+1))
	}
	for i := 0; i < decoys; i++ {
		fmt.Fprintf(&sb, "Reverse_sp|D%d|DECOY\t1\t1\t50.0%%\tdecoy %d\n", i, i)
		fmt.Fprintf(&sb, "*\trun.%d.%d.2\t1.0\tR.%sR.L\n", 10000+i, 10000+i, strings.Repeat("G", i+1))
	}
	sb.WriteString(filterFooter)
	return []byte(sb.String())
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"bsa01_DTASelect-filter.txt", "bsa01"},
		{"bsa01DTASelect-filter.txt", "bsa01"},
		{"DTASelect-filter.txt", ""},
		{"bsa01.txt", "bsa01"},
		{"bsa01.tsv", "bsa01.tsv"},
		{"bsa01_DTASelect-filter.txt.txt", "bsa01_DTASelect-filter.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.name))
		})
	}
}

func TestRun(t *testing.T) {
	inputs := []Input{
		{Name: "bsa01_DTASelect-filter.txt", Content: filterFile(90, 10)},
		{Name: "bsa02.txt", Content: filterFile(4, 1)},
	}

	table, err := Run(context.Background(), inputs, Options{Spectra: SpectraCounts})
	require.NoError(t, err)

	assert.Equal(t, SchemaV3, table.Schema)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "bsa01", first.File)
	assert.Equal(t, Metrics{
		ProteinLocuses:          90,
		ProteinGroups:           90,
		StrippedPeptides:        90,
		ChargedStrippedPeptides: 90,
		Peptides:                90,
		Spectra:                 90,
		ProteinCoverage:         50,
	}, first.Target)
	assert.Equal(t, 10, first.Decoy.ProteinGroups)
	assert.Equal(t, FDR{Percent: 10, Adjusted: 81, Defined: true}, first.ProteinFDR)
	assert.Equal(t, FDR{Percent: 10, Adjusted: 81, Defined: true}, first.PeptideFDR)
	assert.Equal(t, FDR{Percent: 10, Adjusted: 81, Defined: true}, first.SpectraFDR)

	second := table.Rows[1]
	assert.Equal(t, "bsa02", second.File)
	assert.Equal(t, FDR{Percent: 20, Adjusted: 3, Defined: true}, second.ProteinFDR)
}

func TestRun_Order(t *testing.T) {
	var inputs []Input
	for i := 1; i <= 12; i++ {
		inputs = append(inputs, Input{Name: fmt.Sprintf("run%02d.txt", i), Content: filterFile(i*3, i)})
	}

	table, err := Run(context.Background(), inputs, Options{Workers: 4})
	require.NoError(t, err)
	require.Len(t, table.Rows, len(inputs))

	for i, r := range table.Rows {
		assert.Equal(t, fmt.Sprintf("run%02d", i+1), r.File)
		assert.Equal(t, (i+1)*3, r.Target.ProteinGroups)
		assert.Equal(t, i+1, r.Decoy.ProteinGroups)
		assert.Equal(t, 25.0, r.ProteinFDR.Percent)
	}
}

func TestRun_ParseError(t *testing.T) {
	inputs := []Input{
		{Name: "good.txt", Content: filterFile(3, 1)},
		{Name: "bad.txt", Content: []byte("not a DTASelect-filter file\n")},
	}

	_, err := Run(context.Background(), inputs, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt")

	var perr *dta.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestRun_Undefined(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		schema  Schema
		wantErr error
		wantMsg string
	}{
		{"no decoys", filterFile(5, 0), SchemaV3, ErrUndefinedMean, "decoy protein coverage"},
		{"no targets", filterFile(0, 5), SchemaV3, ErrUndefinedMean, "target protein coverage"},
		{"no decoys without FDR", filterFile(5, 0), SchemaV1, ErrUndefinedMean, "decoy protein coverage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := []Input{{Name: "sample.txt", Content: tt.content}}
			_, err := Run(context.Background(), inputs, Options{Schema: tt.schema})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Contains(t, err.Error(), "sample.txt")
		})
	}
}

func TestRun_Lenient(t *testing.T) {
	inputs := []Input{
		{Name: "nodecoy.txt", Content: filterFile(5, 0)},
		{Name: "empty.txt", Content: []byte(filterHeader + filterFooter)},
	}

	table, err := Run(context.Background(), inputs, Options{Lenient: true})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	nodecoy := table.Rows[0]
	assert.Equal(t, 50.0, nodecoy.Target.ProteinCoverage)
	assert.True(t, math.IsNaN(nodecoy.Decoy.ProteinCoverage))
	assert.Equal(t, FDR{Percent: 0, Adjusted: 5, Defined: true}, nodecoy.ProteinFDR)

	empty := table.Rows[1]
	assert.True(t, math.IsNaN(empty.Target.ProteinCoverage))
	assert.False(t, empty.ProteinFDR.Defined)
	assert.False(t, empty.PeptideFDR.Defined)
	assert.False(t, empty.SpectraFDR.Defined)
	assert.True(t, math.IsNaN(empty.SpectraFDR.Percent))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []Input{{Name: "a.txt", Content: filterFile(2, 1)}}, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, content, 0644))
		return path
	}

	write("runs/b_DTASelect-filter.txt", filterFile(2, 1))
	write("runs/a_DTASelect-filter.txt", filterFile(3, 1))
	write("runs/notes.csv", []byte("ignored"))
	nested := write("bsa03/DTASelect-filter.txt", filterFile(1, 1))

	inputs, err := ReadInputs([]string{filepath.Join(dir, "runs"), nested})
	require.NoError(t, err)
	require.Len(t, inputs, 3)

	assert.Equal(t, "a_DTASelect-filter.txt", inputs[0].Name)
	assert.Equal(t, "b_DTASelect-filter.txt", inputs[1].Name)
	assert.Equal(t, "bsa03_DTASelect-filter.txt", inputs[2].Name)
	assert.Equal(t, "bsa03", DisplayName(inputs[2].Name))
	assert.Equal(t, filterFile(3, 1), inputs[0].Content)

	_, err = ReadInputs([]string{filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)

	_, err = ReadInputs([]string{t.TempDir()})
	assert.Error(t, err)
}
