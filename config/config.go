// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables that override settings,
	// ex: FILTER_COMPARE_WORKERS=4
	EnvPrefix = "FILTER_COMPARE"

	// DefaultDecoyMarker is the substring marking decoy loci in DTASelect output
	DefaultDecoyMarker = "Reverse_"

	// DefaultOutput is the name of the exported table
	DefaultOutput = "filter_compare.csv"
)

// Config is the root-level settings struct and is a mix
// of settings available in a settings file and those
// available from the command line
type Config struct {
	// path to an optional YAML settings file
	Settings string `mapstructure:"settings"`

	// substring in a locus name that marks it as a decoy
	DecoyMarker string `mapstructure:"decoy-marker"`

	// how spectra are counted: "counts" or "files"
	Spectra string `mapstructure:"spectra"`

	// output column set: "v1", "v2" or "v3"
	Schema string `mapstructure:"schema"`

	// number of files to process at once
	Workers int `mapstructure:"workers"`

	// record undefined statistics as NaN rather than failing
	Lenient bool `mapstructure:"lenient"`

	// the file to write the table to, "-" for stdout
	Out string `mapstructure:"out"`

	// output format, guessed from Out if empty
	Format string `mapstructure:"format"`

	// also print the table to stdout
	Print bool `mapstructure:"print"`

	// log progress to stderr
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers the default settings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("settings", "")
	v.SetDefault("decoy-marker", DefaultDecoyMarker)
	v.SetDefault("spectra", "counts")
	v.SetDefault("schema", "v3")
	v.SetDefault("workers", 1)
	v.SetDefault("lenient", false)
	v.SetDefault("out", DefaultOutput)
	v.SetDefault("format", "")
	v.SetDefault("print", false)
	v.SetDefault("verbose", false)
}

// New returns a new Config struct populated by the global Viper
// settings (from flags, the environment and/or a settings file)
func New() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads a Config from v. If v has a "settings" file it's merged
// in beneath flags and environment variables.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if settings := v.GetString("settings"); settings != "" {
		v.SetConfigFile(settings)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", settings, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the settings that can be checked without the fdr package.
func (c *Config) Validate() error {
	if c.DecoyMarker == "" {
		return fmt.Errorf("decoy-marker must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Out == "" {
		return fmt.Errorf("out must not be empty, use \"-\" for stdout")
	}
	return nil
}
