package dta

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	proteinHeaderPrefix = "Locus\t"
	peptideHeaderPrefix = "Unique\t"
	footerPrefix        = "\tProteins\t"

	maxLineLength = 16 * 1024 * 1024
)

// columns maps header names to their field index.
type columns map[string]int

func newColumns(line string) columns {
	c := make(columns)
	for i, name := range strings.Split(line, "\t") {
		c[strings.TrimSpace(name)] = i
	}
	return c
}

// row is a split body line along with the header it's read against.
type row struct {
	fields []string
	cols   columns
	line   int
}

// str returns the trimmed field under name, or "" if the file has no such column.
func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// required returns the field under name and errs if the column or value is missing.
func (r row) required(name string) (string, error) {
	i, ok := r.cols[name]
	if !ok {
		return "", &ParseError{Line: r.line, Msg: fmt.Sprintf("no %q column in header", name)}
	}
	if i >= len(r.fields) {
		return "", &ParseError{Line: r.line, Msg: fmt.Sprintf("expected at least %d fields, got %d", i+1, len(r.fields))}
	}
	return strings.TrimSpace(r.fields[i]), nil
}

func (r row) floatField(name string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSuffix(r.str(name), "%"), 64)
	return f
}

func (r row) intField(name string) int {
	i, _ := strconv.Atoi(r.str(name))
	return i
}

// Parse reads a DTASelect-filter file.
//
// The header runs through the "Locus" and "Unique" column header lines. Protein lines
// and peptide lines follow in blocks: one or more protein lines, then the peptide lines
// for that group. The footer starts at the "\tProteins\t" summary line.
func Parse(r io.Reader) (*ResultSet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	rs := &ResultSet{}
	var proteinCols, peptideCols columns
	var current Result
	groupStart := 0
	lineNum := 0
	inFooter := false

	// close off the group being built
	flush := func() error {
		if len(current.ProteinLines) == 0 {
			return nil
		}
		if len(current.PeptideLines) == 0 {
			return &ParseError{Line: groupStart, Msg: fmt.Sprintf("protein group %s has no peptide lines", current.ProteinLines[0].LocusName)}
		}
		rs.Results = append(rs.Results, current)
		current = Result{}
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if inFooter {
			rs.Footer = append(rs.Footer, line)
			continue
		}

		if proteinCols == nil || peptideCols == nil {
			rs.Header = append(rs.Header, line)
			if strings.HasPrefix(line, proteinHeaderPrefix) {
				proteinCols = newColumns(line)
			} else if strings.HasPrefix(line, peptideHeaderPrefix) {
				peptideCols = newColumns(line)
			}
			continue
		}

		if strings.HasPrefix(line, footerPrefix) {
			if err := flush(); err != nil {
				return nil, err
			}
			inFooter = true
			rs.Footer = append(rs.Footer, line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if isPeptideLine(row{fields: fields, cols: peptideCols, line: lineNum}) {
			if len(current.ProteinLines) == 0 {
				return nil, &ParseError{Line: lineNum, Msg: "peptide line before any protein line"}
			}
			p, err := parsePeptideLine(row{fields: fields, cols: peptideCols, line: lineNum})
			if err != nil {
				return nil, err
			}
			current.PeptideLines = append(current.PeptideLines, p)
			continue
		}

		// a protein line after peptide lines starts a new group
		if len(current.PeptideLines) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if len(current.ProteinLines) == 0 {
			groupStart = lineNum
		}
		p, err := parseProteinLine(row{fields: fields, cols: proteinCols, line: lineNum})
		if err != nil {
			return nil, err
		}
		current.ProteinLines = append(current.ProteinLines, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read DTASelect-filter: %w", err)
	}

	if proteinCols == nil || peptideCols == nil {
		return nil, &ParseError{Msg: "missing Locus and Unique column header lines"}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return rs, nil
}

// isPeptideLine returns whether a body line is a peptide line. Its first field is
// the "Unique" column: empty, "*", or a repeat count. A repeat count looks like a
// numeric locus, so those lines also need a flanked sequence, ex: "K.ACDEK.L".
func isPeptideLine(r row) bool {
	field := strings.TrimSpace(r.fields[0])
	if field == "" || field == "*" {
		return true
	}
	for _, c := range field {
		if c < '0' || c > '9' {
			return false
		}
	}
	return isFlanked(r.str("Sequence"))
}

// isFlanked returns whether seq has a flanking residue and a dot at each end.
func isFlanked(seq string) bool {
	return len(seq) >= 4 && seq[1] == '.' && seq[len(seq)-2] == '.'
}

func parseProteinLine(r row) (p ProteinLine, err error) {
	if p.LocusName, err = r.required("Locus"); err != nil {
		return p, err
	}
	if p.LocusName == "" {
		return p, &ParseError{Line: r.line, Msg: "empty locus name"}
	}

	spectra, err := r.required("Spectrum Count")
	if err != nil {
		return p, err
	}
	if p.SpectrumCount, err = strconv.Atoi(spectra); err != nil || p.SpectrumCount < 0 {
		return p, &ParseError{Line: r.line, Msg: fmt.Sprintf("invalid spectrum count %q", spectra)}
	}

	coverage, err := r.required("Sequence Coverage")
	if err != nil {
		return p, err
	}
	if p.SequenceCoverage, err = strconv.ParseFloat(strings.TrimSuffix(coverage, "%"), 64); err != nil {
		return p, &ParseError{Line: r.line, Msg: fmt.Sprintf("invalid sequence coverage %q", coverage)}
	}

	p.SequenceCount = r.intField("Sequence Count")
	p.Length = r.intField("Length")
	p.MolWt = r.floatField("MolWt")
	p.PI = r.floatField("pI")
	p.ValidationStatus = r.str("Validation Status")
	p.NSAF = r.floatField("NSAF")
	p.EMPAI = r.floatField("EMPAI")
	p.DescriptiveName = r.str("Descriptive Name")
	return p, nil
}

func parsePeptideLine(r row) (p PeptideLine, err error) {
	if p.FileName, err = r.required("FileName"); err != nil {
		return p, err
	}
	if p.Sequence, err = r.required("Sequence"); err != nil {
		return p, err
	}
	if p.Sequence == "" {
		return p, &ParseError{Line: r.line, Msg: "empty peptide sequence"}
	}

	if z := r.str("z"); z != "" {
		if p.Charge, err = strconv.Atoi(z); err != nil {
			return p, &ParseError{Line: r.line, Msg: fmt.Sprintf("invalid charge %q", z)}
		}
	} else if p.Charge, err = ChargeFromFileName(p.FileName); err != nil {
		return p, &ParseError{Line: r.line, Msg: err.Error()}
	}

	p.Unique = r.str("Unique")
	p.XCorr = r.floatField("XCorr")
	p.DeltCN = r.floatField("DeltCN")
	p.Conf = r.floatField("Conf%")
	p.MH = r.floatField("M+H+")
	p.CalcMH = r.floatField("CalcM+H+")
	p.PPM = r.floatField("PPM")
	p.TotalIntensity = r.floatField("TotalIntensity")
	p.SpR = r.intField("SpR")
	p.ProbScore = r.floatField("Prob Score")
	p.PI = r.floatField("pI")
	p.IonProportion = r.floatField("IonProportion")
	p.Redundancy = r.intField("Redundancy")
	return p, nil
}

// ChargeFromFileName returns the charge encoded as the last dotted
// component of a spectrum file name, ex: "run01.1234.1234.2" -> 2.
func ChargeFromFileName(fileName string) (int, error) {
	i := strings.LastIndex(fileName, ".")
	if i < 0 || i == len(fileName)-1 {
		return 0, fmt.Errorf("no charge in file name %q", fileName)
	}
	charge, err := strconv.Atoi(fileName[i+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid charge in file name %q", fileName)
	}
	return charge, nil
}
