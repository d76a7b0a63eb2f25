package fdr

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/pgarrett-scripps/filter-compare/internal/dta"
)

// aminoAcids are the 20 standard residues kept by StripModifications.
const aminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// ErrUndefinedMean is returned when averaging over no protein lines.
var ErrUndefinedMean = errors.New("undefined mean: no protein lines")

// SpectraMode is how spectra are counted for a group of results.
type SpectraMode string

const (
	// SpectraCounts sums the spectrum count of each result's first protein line.
	SpectraCounts SpectraMode = "counts"

	// SpectraFiles counts the distinct spectrum file names across peptide lines.
	SpectraFiles SpectraMode = "files"
)

// ParseSpectraMode returns the SpectraMode with the name passed.
func ParseSpectraMode(s string) (SpectraMode, error) {
	switch m := SpectraMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SpectraCounts, SpectraFiles:
		return m, nil
	case "":
		return SpectraCounts, nil
	}
	return "", fmt.Errorf("unknown spectra mode %q, expected %q or %q", s, SpectraCounts, SpectraFiles)
}

// Metrics are the counts and mean coverage for one side (target or decoy) of a file.
type Metrics struct {
	// ProteinLocuses is every protein line, duplicates across groups included
	ProteinLocuses int

	// ProteinGroups is the number of results
	ProteinGroups int

	// StrippedPeptides is the number of distinct core sequences without modifications
	StrippedPeptides int

	// ChargedStrippedPeptides is the number of distinct (charge, stripped sequence) pairs
	ChargedStrippedPeptides int

	// Peptides is the number of distinct (charge, core sequence) pairs
	Peptides int

	// Spectra is counted according to the SpectraMode
	Spectra int

	// ProteinCoverage is the mean sequence coverage over all protein lines
	ProteinCoverage float64
}

// chargedPeptide is a peptide identity that includes its charge.
type chargedPeptide struct {
	charge int
	seq    string
}

// CoreSequence drops the two flanking characters from each end of a
// DTASelect sequence, ex: "K.ACDEK.L" -> "ACDEK".
func CoreSequence(seq string) string {
	if len(seq) <= 4 {
		return ""
	}
	return seq[2 : len(seq)-2]
}

// StripModifications keeps only the standard amino acid letters of a sequence.
func StripModifications(seq string) string {
	var sb strings.Builder
	sb.Grow(len(seq))
	for _, c := range seq {
		if strings.ContainsRune(aminoAcids, c) {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Aggregate computes the Metrics of a group of results.
//
// An empty group has no mean coverage: the counts are still returned, with
// ProteinCoverage set to NaN, alongside ErrUndefinedMean.
func Aggregate(group []dta.Result, spectra SpectraMode) (Metrics, error) {
	m := Metrics{ProteinGroups: len(group)}

	stripped := make(map[string]struct{})
	chargedStripped := make(map[chargedPeptide]struct{})
	peptides := make(map[chargedPeptide]struct{})
	files := make(map[string]struct{})
	coverage := make([]float64, 0, len(group))

	for _, r := range group {
		for _, p := range r.ProteinLines {
			coverage = append(coverage, p.SequenceCoverage)
		}
		if spectra != SpectraFiles && len(r.ProteinLines) > 0 {
			m.Spectra += r.ProteinLines[0].SpectrumCount
		}

		for _, p := range r.PeptideLines {
			core := CoreSequence(p.Sequence)
			bare := StripModifications(core)

			stripped[bare] = struct{}{}
			chargedStripped[chargedPeptide{p.Charge, bare}] = struct{}{}
			peptides[chargedPeptide{p.Charge, core}] = struct{}{}
			files[p.FileName] = struct{}{}
		}
	}

	m.ProteinLocuses = len(coverage)
	m.StrippedPeptides = len(stripped)
	m.ChargedStrippedPeptides = len(chargedStripped)
	m.Peptides = len(peptides)
	if spectra == SpectraFiles {
		m.Spectra = len(files)
	}

	var err error
	if m.ProteinCoverage, err = mean(coverage); err != nil {
		m.ProteinCoverage = math.NaN()
		return m, err
	}
	return m, nil
}

// mean is the arithmetic mean of the values. The sum is exact and the result
// is rounded once, to the nearest float64.
func mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrUndefinedMean
	}
	sum := new(big.Rat)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return v, nil
		}
		sum.Add(sum, new(big.Rat).SetFloat64(v))
	}
	sum.Quo(sum, new(big.Rat).SetInt64(int64(len(values))))
	m, _ := sum.Float64()
	return m, nil
}
