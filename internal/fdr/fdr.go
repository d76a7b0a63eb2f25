// Package fdr estimates target/decoy false discovery rates for DTASelect-filter results
// and assembles them, one row per file, into a comparison table.
package fdr

import (
	"errors"
	"math"
	"strconv"
)

// ErrUndefinedFDR is returned when a category has neither target nor decoy identifications.
var ErrUndefinedFDR = errors.New("undefined FDR: no target or decoy identifications")

// Category is a level of identification that gets its own FDR.
type Category string

const (
	ProteinCategory Category = "protein"
	PeptideCategory Category = "peptide"
	SpectraCategory Category = "spectra"
)

// categories in column order
var categories = []Category{ProteinCategory, PeptideCategory, SpectraCategory}

// count returns the Metrics field a category's FDR is computed from.
func (c Category) count(m Metrics) int {
	switch c {
	case ProteinCategory:
		return m.ProteinGroups
	case PeptideCategory:
		return m.Peptides
	default:
		return m.Spectra
	}
}

// Percent returns decoy / (decoy + target) as a percentage rounded to four decimals.
func Percent(target, decoy int) (float64, error) {
	if target+decoy == 0 {
		return 0, ErrUndefinedFDR
	}
	ratio := float64(decoy) / float64(decoy+target) * 100
	return roundPlaces(ratio, 4), nil
}

// roundPlaces rounds the exact value of x to n decimal places, ties to even.
func roundPlaces(x float64, n int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', n, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// AdjustedCount returns the number of targets expected to be true at the FDR percentage.
func AdjustedCount(target int, percent float64) int {
	t := float64(target)
	return int(math.Floor(t - t*percent/100))
}

// FDR is the false discovery rate of a single category.
type FDR struct {
	// Percent is decoys over all identifications, as a percentage
	Percent float64

	// Adjusted is the target count with the expected false discoveries removed
	Adjusted int

	// Defined is false when there were no identifications in the category
	Defined bool
}

// newFDR computes the FDR of a category from its target and decoy metrics.
func newFDR(c Category, target, decoy Metrics) (FDR, error) {
	t := c.count(target)
	percent, err := Percent(t, c.count(decoy))
	if err != nil {
		return FDR{Percent: math.NaN()}, err
	}
	return FDR{
		Percent:  percent,
		Adjusted: AdjustedCount(t, percent),
		Defined:  true,
	}, nil
}
