// Package dta reads DTASelect-filter result files into protein groups.
package dta

import "fmt"

// ProteinLine is a single locus row of a protein group.
type ProteinLine struct {
	// LocusName is the protein identifier, ex: "sp|P02769|ALBU_BOVIN" or "Reverse_sp|P02769|ALBU_BOVIN"
	LocusName string

	// SequenceCount is the number of distinct peptide sequences for the locus
	SequenceCount int

	// SpectrumCount is the number of spectra matched to the locus
	SpectrumCount int

	// SequenceCoverage is the percentage of the protein spanned by peptides (0-100)
	SequenceCoverage float64

	Length           int
	MolWt            float64
	PI               float64
	ValidationStatus string
	NSAF             float64
	EMPAI            float64
	DescriptiveName  string
}

// PeptideLine is a single peptide-spectrum match supporting a protein group.
type PeptideLine struct {
	// Unique is the uniqueness marker column, "*" for peptides unique to the group
	Unique string

	// FileName is the spectrum identifier, ex: "run01.1234.1234.2"
	FileName string

	// Sequence keeps the flanking residues and modification annotations, ex: "K.AC(57.02)DEK.L"
	Sequence string

	// Charge is the precursor charge
	Charge int

	XCorr          float64
	DeltCN         float64
	Conf           float64
	MH             float64
	CalcMH         float64
	PPM            float64
	TotalIntensity float64
	SpR            int
	ProbScore      float64
	PI             float64
	IonProportion  float64
	Redundancy     int
}

// Result is one protein group: the loci that share peptides and the peptides themselves.
type Result struct {
	ProteinLines []ProteinLine
	PeptideLines []PeptideLine
}

// ResultSet is the full content of a DTASelect-filter file.
type ResultSet struct {
	// Header lines, up to and including the two column header lines
	Header []string

	// Results are the protein groups in file order
	Results []Result

	// Footer lines, starting at the summary table
	Footer []string
}

// ParseError is a malformed line in a DTASelect-filter file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("failed to parse DTASelect-filter: %s", e.Msg)
	}
	return fmt.Sprintf("failed to parse DTASelect-filter line %d: %s", e.Line, e.Msg)
}
