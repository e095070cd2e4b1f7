package config

import "time"

// DefaultConfig is a working configuration for the rat→mouse and
// human→mouse transfers and the mouse protein-to-gene projection.
func DefaultConfig() *Config {
	cfg := &Config{
		Taxa: map[string]string{
			"NCBITaxon:10090": "MGI",
			"NCBITaxon:10116": "RGD",
			"NCBITaxon:9606":  "HGNC",
			"NCBITaxon:7955":  "ZFIN",
			"NCBITaxon:7227":  "FB",
			"NCBITaxon:6239":  "WB",
			"NCBITaxon:8355":  "Xenbase",
		},
		Sources: map[string]Source{
			"ALLIANCE_ORTHO":          {URL: "https://fms.alliancegenome.org/download/ORTHOLOGY-ALLIANCE_COMBINED.json.gz", Gunzip: true},
			"MGI_GPI":                 {URL: "https://www.informatics.jax.org/downloads/reports/mgi.gpi.gz", Gunzip: true},
			"MGI_XREF":                {URL: "https://www.informatics.jax.org/downloads/reports/HOM_MouseHumanSequence.rpt"},
			"RGD":                     {URL: "https://current.geneontology.org/annotations/rgd.gaf.gz", Gunzip: true},
			"HGNC":                    {URL: "https://current.geneontology.org/annotations/goa_human.gaf.gz", Gunzip: true},
			"HUMAN_ISO":               {URL: "https://current.geneontology.org/annotations/goa_human_isoform.gaf.gz", Gunzip: true},
			"GO":                      {URL: "http://purl.obolibrary.org/obo/go.json"},
			"GOA_taxon_10090":         {URL: "https://ftp.ebi.ac.uk/pub/databases/GO/goa/MOUSE/goa_mouse.gaf.gz", Gunzip: true},
			"GOA_taxon_10090_ISOFORM": {URL: "https://ftp.ebi.ac.uk/pub/databases/GO/goa/MOUSE/goa_mouse_isoform.gaf.gz", Gunzip: true},
		},
	}

	cfg.Retrieval.CacheDir = "data"
	cfg.Retrieval.Retries = 3
	cfg.Retrieval.RetryDelay = 5 * time.Second
	cfg.Retrieval.Timeout = 30 * time.Minute
	cfg.Retrieval.Parallel = 4

	cfg.Ortho.Namespaces = map[string][]string{
		"default":         {"RGD", "UniProtKB"},
		"NCBITaxon:10116": {"RGD", "UniProtKB"},
		"NCBITaxon:9606":  {"HGNC", "UniProtKB"},
	}
	cfg.Ortho.Reference = "GO_REF:0000096"
	cfg.Ortho.EvidenceCodes = []string{"EXP", "IDA", "IPI", "IMP", "IGI"}
	cfg.Ortho.DenyTerms = []string{"GO:0005515", "GO:0005488"}
	cfg.Ortho.ProvidedBy = "GO_Central"
	cfg.Ortho.CentralProvider = "GO_Central"
	cfg.Ortho.ProteinNamespace = "UniProtKB"
	cfg.Ortho.OntologyKey = "GO"
	cfg.Ortho.OrthologyKey = "ALLIANCE_ORTHO"
	cfg.Ortho.XrefKey = "MGI_XREF"
	cfg.Ortho.ExtraSources = map[string][]string{
		"NCBITaxon:9606": {"HUMAN_ISO"},
	}

	cfg.Protein.TargetTaxon = "NCBITaxon:10090"
	cfg.Protein.Namespaces = []string{"UniProtKB"}
	cfg.Protein.ExcludedCodes = []string{"IBA"}
	cfg.Protein.DenyTerms = []string{"GO:0005575", "GO:0008150", "GO:0003674"}
	cfg.Protein.ProviderReference = "GO_REF:0000033"
	cfg.Protein.IsoformNamespace = "PR"

	cfg.Xref.HeaderPrefix = "DB"
	cfg.Xref.FilterColumn = 1
	cfg.Xref.FilterPrefix = "human"
	cfg.Xref.AColumn = 6
	cfg.Xref.BColumn = 12
	cfg.Xref.BNamespace = "UniProtKB"

	cfg.Output.Dir = "output"
	cfg.Output.MetricsFile = "gopreprocess.prom"
	cfg.Output.ReportFile = "report.json"
	cfg.Output.GeneratedBy = "GO_Central preprocess pipeline"

	cfg.Log.Mode = "dev"
	cfg.DB.Path = "gopreprocess.db"
	return cfg
}
