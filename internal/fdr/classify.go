package fdr

import (
	"strings"

	"github.com/pgarrett-scripps/filter-compare/internal/dta"
)

// DecoyMarker is the substring DTASelect puts in the locus names of reversed sequences.
const DecoyMarker = "Reverse_"

// Classifier splits protein groups into target and decoy populations by locus name.
type Classifier struct {
	// Marker is the decoy tag looked for in locus names. Empty means DecoyMarker.
	Marker string
}

// IsDecoyLocus returns whether the locus name carries the default decoy marker.
func IsDecoyLocus(name string) bool {
	return strings.Contains(name, DecoyMarker)
}

// Classify splits results with the default decoy marker.
func Classify(results []dta.Result) (target, decoy []dta.Result) {
	return Classifier{}.Classify(results)
}

// IsDecoy returns whether the locus name carries the classifier's marker.
func (c Classifier) IsDecoy(locus string) bool {
	marker := c.Marker
	if marker == "" {
		marker = DecoyMarker
	}
	return strings.Contains(locus, marker)
}

// Classify returns the target and decoy groups in input order.
//
// A group is a target if any of its loci lacks the marker and a decoy only if
// all of its loci carry it. Groups mixing both are targets and never decoys.
func (c Classifier) Classify(results []dta.Result) (target, decoy []dta.Result) {
	for _, r := range results {
		if c.anyTarget(r) {
			target = append(target, r)
		}
		if c.allDecoy(r) {
			decoy = append(decoy, r)
		}
	}
	return target, decoy
}

func (c Classifier) anyTarget(r dta.Result) bool {
	for _, p := range r.ProteinLines {
		if !c.IsDecoy(p.LocusName) {
			return true
		}
	}
	return false
}

func (c Classifier) allDecoy(r dta.Result) bool {
	for _, p := range r.ProteinLines {
		if !c.IsDecoy(p.LocusName) {
			return false
		}
	}
	return true
}
