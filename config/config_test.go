package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultDecoyMarker, c.DecoyMarker)
	assert.Equal(t, "counts", c.Spectra)
	assert.Equal(t, "v3", c.Schema)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, DefaultOutput, c.Out)
	assert.False(t, c.Lenient)
	assert.Empty(t, c.Format)
}

func TestLoad_SettingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`decoy-marker: DECOY_
spectra: files
schema: v2
workers: 4
lenient: true
`), 0644))

	v := viper.New()
	v.Set("settings", settings)
	v.Set("workers", 2) // flags beat the settings file

	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "DECOY_", c.DecoyMarker)
	assert.Equal(t, "files", c.Spectra)
	assert.Equal(t, "v2", c.Schema)
	assert.Equal(t, 2, c.Workers)
	assert.True(t, c.Lenient)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FILTER_COMPARE_DECOY_MARKER", "rev_")
	t.Setenv("FILTER_COMPARE_WORKERS", "3")

	c, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "rev_", c.DecoyMarker)
	assert.Equal(t, 3, c.Workers)
}

func TestLoad_MissingSettingsFile(t *testing.T) {
	v := viper.New()
	v.Set("settings", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load(v)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{DecoyMarker: DefaultDecoyMarker, Workers: 1, Out: DefaultOutput}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty marker", func(c *Config) { c.DecoyMarker = "" }, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, true},
		{"empty out", func(c *Config) { c.Out = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
