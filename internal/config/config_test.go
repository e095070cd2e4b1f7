package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	p, err := cfg.Provider("NCBITaxon:10090")
	require.NoError(t, err)
	assert.Equal(t, "MGI", p)
	assert.Equal(t, []string{"HGNC", "UniProtKB"}, cfg.Namespaces("NCBITaxon:9606"))
	assert.Equal(t, []string{"RGD", "UniProtKB"}, cfg.Namespaces("NCBITaxon:7955"))
	assert.Equal(t, 5*time.Second, cfg.Retrieval.RetryDelay)
}

func TestLoadConfig_OverlaysYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retrieval:
  retries: 5
  retry_delay: 250ms
ortho:
  reference: GO_REF:0000119
sources:
  EXTRA:
    url: https://example.org/extra.gaf
`), 0o644))
	t.Setenv("GOPREPROCESS_OUTPUT_DIR", filepath.Join(dir, "out"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retrieval.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retrieval.RetryDelay)
	assert.Equal(t, "GO_REF:0000119", cfg.Ortho.Reference)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Output.Dir)

	// untouched defaults survive
	assert.Equal(t, "data", cfg.Retrieval.CacheDir)
	_, ok := cfg.Source("EXTRA")
	assert.True(t, ok)
	_, ok = cfg.Source("MGI_GPI")
	assert.True(t, ok)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "GO_REF:0000096", cfg.Ortho.Reference)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no taxa", func(c *Config) { c.Taxa = nil }, "taxa"},
		{"empty url", func(c *Config) { c.Sources["X"] = Source{} }, "sources.X"},
		{"no retries", func(c *Config) { c.Retrieval.Retries = 0 }, "retries"},
		{"no reference", func(c *Config) { c.Ortho.Reference = "" }, "ortho.reference"},
		{"negative column", func(c *Config) { c.Xref.BColumn = -1 }, "xref"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvider_Unknown(t *testing.T) {
	_, err := DefaultConfig().Provider("NCBITaxon:1")
	assert.Error(t, err)
}

func TestTaxonKey(t *testing.T) {
	assert.Equal(t, "taxon_10090", TaxonKey("NCBITaxon:10090"))
}
