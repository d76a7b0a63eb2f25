package cmd

import (
	"fmt"
	"strings"

	"github.com/pgarrett-scripps/filter-compare/config"
	"github.com/pgarrett-scripps/filter-compare/internal/fdr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	spectraHelp = `how spectra are counted: "counts" sums the spectrum count of each
group's first locus, "files" counts distinct spectrum file names`

	schemaHelp = `output columns: "v1" proteins/peptides/coverage, "v2" adds spectra,
"v3" adds FDR percentages and FDR-adjusted counts`
)

// compareCmd is for comparing DTASelect-filter files by their target/decoy FDR
var compareCmd = &cobra.Command{
	Use:                        "compare [file|dir] ... [file|dir]",
	Short:                      "Compare DTASelect-filter files by target/decoy counts and FDR",
	Run:                        fdr.CompareCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Compare DTASelect-filter files by target/decoy counts and FDR.

Each file becomes a row in the output table. Protein groups are split into
targets (at least one locus without the decoy marker) and decoys (every locus
has the marker). For each side the table reports protein loci, protein groups,
peptides at three levels of deduplication, spectra and mean sequence coverage.
FDR is decoys/(decoys + targets) for protein groups, peptides and spectra, and
the FDR-adjusted counts are the targets less their expected false discoveries.

Directories are expanded to the .txt files they contain.`,
	Example: `  filter-compare compare run1_DTASelect-filter.txt run2_DTASelect-filter.txt
  filter-compare compare ./filters -o compare.json --workers 4`,
	Aliases: []string{"cmp", "fdr"},
}

// set flags
func init() {
	compareCmd.Flags().StringP("out", "o", config.DefaultOutput, `output file name, "-" for stdout`)
	compareCmd.Flags().StringP("format", "f", "", fmt.Sprintf("output format (%s), guessed from --out if empty", strings.Join(fdr.Formats(), ", ")))
	compareCmd.Flags().String("schema", "v3", schemaHelp)
	compareCmd.Flags().String("spectra", "counts", spectraHelp)
	compareCmd.Flags().StringP("decoy-marker", "m", config.DefaultDecoyMarker, "substring marking decoy locus names")
	compareCmd.Flags().IntP("workers", "w", 1, "number of files to process at once")
	compareCmd.Flags().BoolP("lenient", "l", false, "record undefined coverage/FDR as NaN instead of failing")
	compareCmd.Flags().BoolP("print", "p", false, "also print the table to stdout")

	for _, name := range []string{"out", "format", "schema", "spectra", "decoy-marker", "workers", "lenient", "print"} {
		viper.BindPFlag(name, compareCmd.Flags().Lookup(name))
	}

	RootCmd.AddCommand(compareCmd)
}
