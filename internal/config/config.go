package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source is one downloadable reference file.
type Source struct {
	URL    string `yaml:"url"`
	Gunzip bool   `yaml:"gunzip"`
}

type Config struct {
	// Taxa maps an NCBITaxon id to the provider that curates it.
	Taxa map[string]string `yaml:"taxa"`
	// Sources maps a logical key ("MGI_GPI", "RGD", "ALLIANCE_ORTHO") to
	// where the file lives.
	Sources map[string]Source `yaml:"sources"`

	Retrieval struct {
		CacheDir   string        `yaml:"cache_dir"`
		Retries    int           `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		Timeout    time.Duration `yaml:"timeout"`
		Parallel   int           `yaml:"parallel"`
	} `yaml:"retrieval"`

	Ortho struct {
		// Namespaces per source taxon; "default" applies otherwise.
		Namespaces       map[string][]string `yaml:"namespaces"`
		Reference        string              `yaml:"reference"`
		EvidenceCodes    []string            `yaml:"evidence_codes"`
		DenyTerms        []string            `yaml:"deny_terms"`
		ProvidedBy       string              `yaml:"provided_by"`
		CentralProvider  string              `yaml:"central_provider"`
		ProteinNamespace string              `yaml:"protein_namespace"`
		OntologyKey      string              `yaml:"ontology_key"`
		OrthologyKey     string              `yaml:"orthology_key"`
		XrefKey          string              `yaml:"xref_key"`
		// ExtraSources lists further source GAF keys read after the main
		// one, per source taxon.
		ExtraSources map[string][]string `yaml:"extra_sources"`
	} `yaml:"ortho"`

	Protein struct {
		TargetTaxon       string   `yaml:"target_taxon"`
		Namespaces        []string `yaml:"namespaces"`
		ExcludedCodes     []string `yaml:"excluded_codes"`
		DenyTerms         []string `yaml:"deny_terms"`
		ProviderReference string   `yaml:"provider_reference"`
		ProvidedBy        string   `yaml:"provided_by"`
		KeepSourceDate    bool     `yaml:"keep_source_date"`
		IsoformNamespace  string   `yaml:"isoform_namespace"`
	} `yaml:"protein"`

	Xref struct {
		HeaderPrefix string `yaml:"header_prefix"`
		FilterColumn int    `yaml:"filter_column"`
		FilterPrefix string `yaml:"filter_prefix"`
		AColumn      int    `yaml:"a_column"`
		BColumn      int    `yaml:"b_column"`
		BNamespace   string `yaml:"b_namespace"`
	} `yaml:"xref"`

	Output struct {
		Dir         string `yaml:"dir"`
		MetricsFile string `yaml:"metrics_file"`
		ReportFile  string `yaml:"report_file"`
		GeneratedBy string `yaml:"generated_by"`
	} `yaml:"output"`

	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`
}

// LoadConfig reads path over DefaultConfig. A missing file yields the
// defaults; environment variables override both.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("GOPREPROCESS_CACHE_DIR"); v != "" {
		cfg.Retrieval.CacheDir = v
	}
	if v := os.Getenv("GOPREPROCESS_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("GOPREPROCESS_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("GOPREPROCESS_DB"); v != "" {
		cfg.DB.Path = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields every run depends on.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Taxa) == 0 {
		errs = append(errs, errors.New("taxa: at least one taxon is required"))
	}
	for key, src := range c.Sources {
		if strings.TrimSpace(src.URL) == "" {
			errs = append(errs, fmt.Errorf("sources.%s: url is required", key))
		}
	}
	if c.Retrieval.Retries < 1 {
		errs = append(errs, errors.New("retrieval.retries must be at least 1"))
	}
	if c.Retrieval.CacheDir == "" {
		errs = append(errs, errors.New("retrieval.cache_dir is required"))
	}
	if c.Ortho.Reference == "" {
		errs = append(errs, errors.New("ortho.reference is required"))
	}
	if len(c.Ortho.EvidenceCodes) == 0 {
		errs = append(errs, errors.New("ortho.evidence_codes is required"))
	}
	if c.Xref.AColumn < 0 || c.Xref.BColumn < 0 || c.Xref.FilterColumn < 0 {
		errs = append(errs, errors.New("xref: column indexes must not be negative"))
	}
	return errors.Join(errs...)
}

// Provider returns the provider for a taxon.
func (c *Config) Provider(taxon string) (string, error) {
	p, ok := c.Taxa[taxon]
	if !ok {
		return "", fmt.Errorf("unknown taxon %q", taxon)
	}
	return p, nil
}

// Namespaces returns the subject allow-list for a source taxon.
func (c *Config) Namespaces(sourceTaxon string) []string {
	if ns, ok := c.Ortho.Namespaces[sourceTaxon]; ok {
		return ns
	}
	return c.Ortho.Namespaces["default"]
}

func (c *Config) Source(key string) (Source, bool) {
	s, ok := c.Sources[key]
	return s, ok
}

// TaxonKey turns "NCBITaxon:10090" into "taxon_10090" for source keys.
func TaxonKey(taxon string) string {
	return strings.Replace(taxon, "NCBITaxon:", "taxon_", 1)
}
