// Package cmd is for command line interactions with the filter-compare application
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "filter-compare",
	Short: `Compare DTASelect-filter results by their target/decoy FDR.
Counts target and decoy proteins, peptides and spectra per file`,
	Version: "0.3.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// set flags
func init() {
	// settings is an optional YAML file with defaults for every other flag
	RootCmd.PersistentFlags().StringP("settings", "s", "", "path to a YAML settings file")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")
	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}
