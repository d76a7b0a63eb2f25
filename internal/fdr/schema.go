package fdr

import (
	"fmt"
	"math"
	"strings"
)

// Schema is a versioned set of output columns.
type Schema string

const (
	// SchemaV1 has protein, peptide and coverage columns for both sides
	SchemaV1 Schema = "v1"

	// SchemaV2 adds spectra columns
	SchemaV2 Schema = "v2"

	// SchemaV3 adds FDR percentages and FDR-adjusted counts
	SchemaV3 Schema = "v3"
)

// DefaultSchema has every column.
const DefaultSchema = SchemaV3

// ParseSchema returns the Schema with the name passed ("" is DefaultSchema).
func ParseSchema(s string) (Schema, error) {
	switch v := Schema(strings.ToLower(strings.TrimSpace(s))); v {
	case SchemaV1, SchemaV2, SchemaV3:
		return v, nil
	case "":
		return DefaultSchema, nil
	}
	return "", fmt.Errorf("unknown schema %q, expected one of v1, v2, v3", s)
}

// version is the schema's ordinal, for comparing schemas.
func (s Schema) version() int {
	switch s {
	case SchemaV1:
		return 1
	case SchemaV2:
		return 2
	default:
		return 3
	}
}

// HasFDR returns whether the schema reports FDR columns.
func (s Schema) HasFDR() bool {
	return s.version() >= SchemaV3.version()
}

// column is a named table cell getter and the schema it was added in.
type column struct {
	name  string
	since Schema
	value func(r Row) interface{}
}

// side returns the columns for one side's metrics.
func side(prefix string, metrics func(r Row) Metrics) []column {
	return []column{
		{prefix + "_protein_locuses", SchemaV1, func(r Row) interface{} { return metrics(r).ProteinLocuses }},
		{prefix + "_protein_groups", SchemaV1, func(r Row) interface{} { return metrics(r).ProteinGroups }},
		{prefix + "_stripped_peptides", SchemaV1, func(r Row) interface{} { return metrics(r).StrippedPeptides }},
		{prefix + "_charged_stripped_peptides", SchemaV1, func(r Row) interface{} { return metrics(r).ChargedStrippedPeptides }},
		{prefix + "_peptides", SchemaV1, func(r Row) interface{} { return metrics(r).Peptides }},
		{prefix + "_spectra", SchemaV2, func(r Row) interface{} { return metrics(r).Spectra }},
		{prefix + "_protein_coverage", SchemaV1, func(r Row) interface{} { return metrics(r).ProteinCoverage }},
	}
}

func fdrPercent(f FDR) interface{} {
	if !f.Defined {
		return math.NaN()
	}
	return f.Percent
}

func fdrAdjusted(f FDR) interface{} {
	if !f.Defined {
		return nil
	}
	return f.Adjusted
}

// allColumns in display order
var allColumns = func() []column {
	cols := []column{{"file", SchemaV1, func(r Row) interface{} { return r.File }}}
	cols = append(cols, side("target", func(r Row) Metrics { return r.Target })...)
	cols = append(cols, side("decoy", func(r Row) Metrics { return r.Decoy })...)
	return append(cols,
		column{"protein_fdr", SchemaV3, func(r Row) interface{} { return fdrPercent(r.ProteinFDR) }},
		column{"peptide_fdr", SchemaV3, func(r Row) interface{} { return fdrPercent(r.PeptideFDR) }},
		column{"spectra_fdr", SchemaV3, func(r Row) interface{} { return fdrPercent(r.SpectraFDR) }},
		column{"fdr_adj_protein_groups", SchemaV3, func(r Row) interface{} { return fdrAdjusted(r.ProteinFDR) }},
		column{"fdr_adj_peptides", SchemaV3, func(r Row) interface{} { return fdrAdjusted(r.PeptideFDR) }},
		column{"fdr_adj_spectra", SchemaV3, func(r Row) interface{} { return fdrAdjusted(r.SpectraFDR) }},
	)
}()

func (s Schema) columns() []column {
	var cols []column
	for _, c := range allColumns {
		if c.since.version() <= s.version() {
			cols = append(cols, c)
		}
	}
	return cols
}

// Columns returns the schema's column names in display order.
func (s Schema) Columns() []string {
	cols := s.columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// Values returns the row's cells under the schema, in column order. Cells are a
// string, int, float64 (NaN when undefined) or nil for an undefined count.
func (r Row) Values(s Schema) []interface{} {
	cols := s.columns()
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = c.value(r)
	}
	return values
}
