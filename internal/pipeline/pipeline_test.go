package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/filter"
	"github.com/geneontology/gopreprocess/internal/logger"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/retrieval"
	"github.com/geneontology/gopreprocess/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tsv(cols ...string) string { return strings.Join(cols, "\t") }

// gafRow builds a 17 column GAF 2.2 line.
func gafRow(db, id, label, qualifier, term, ref, code, aspect, provider, date string) string {
	return tsv(db, id, label, qualifier, term, ref, code, "", aspect, "", "", "protein",
		"taxon:10116", date, provider, "", "")
}

var mouseGPI = strings.Join([]string{
	"!gpi-version: 2.0",
	tsv("MGI:MGI:1", "Abc1", "ATP binding cassette 1", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:Q00011", ""),
	tsv("MGI:MGI:2", "Def1", "defensin 1", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:Q00022", ""),
	tsv("MGI:MGI:87961", "Acta1", "actin alpha 1", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:P68134", ""),
	tsv("MGI:MGI:1918911", "Abc2", "ATP binding cassette 2", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:Q9DAQ4", ""),
	tsv("MGI:MGI:99999", "Dup1", "duplicate one", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:P00001", ""),
	tsv("MGI:MGI:99998", "Dup2", "duplicate two", "", "SO:0001217", "NCBITaxon:10090", "", "", "", "UniProtKB:P00001", ""),
	tsv("PR:Q9DAQ4-1", "Abc2/iso:1", "", "", "PR:000000001", "NCBITaxon:10090", "MGI:MGI:1918911", "", "", "UniProtKB:Q9DAQ4-1", ""),
}, "\n")

const orthologyJSON = `{"data": [
	{"Gene1ID": "MGI:1", "Gene1SpeciesTaxonID": "NCBITaxon:10090", "Gene2ID": "RGD:10", "Gene2SpeciesTaxonID": "NCBITaxon:10116"},
	{"Gene1ID": "MGI:2", "Gene1SpeciesTaxonID": "NCBITaxon:10090", "Gene2ID": "RGD:20", "Gene2SpeciesTaxonID": "NCBITaxon:10116"},
	{"Gene1ID": "MGI:2", "Gene1SpeciesTaxonID": "NCBITaxon:10090", "Gene2ID": "RGD:21", "Gene2SpeciesTaxonID": "NCBITaxon:10116"},
	{"Gene1ID": "MGI:404", "Gene1SpeciesTaxonID": "NCBITaxon:10090", "Gene2ID": "RGD:30", "Gene2SpeciesTaxonID": "NCBITaxon:10116"},
	{"Gene1ID": "MGI:1", "Gene1SpeciesTaxonID": "NCBITaxon:10090", "Gene2ID": "HGNC:5", "Gene2SpeciesTaxonID": "NCBITaxon:9606"}
]}`

const goJSON = `{"graphs": [{
	"nodes": [
		{"id": "http://purl.obolibrary.org/obo/GO_0008150", "type": "CLASS"},
		{"id": "http://purl.obolibrary.org/obo/GO_0006412", "type": "CLASS"},
		{"id": "http://purl.obolibrary.org/obo/GO_0005634", "type": "CLASS"},
		{"id": "http://purl.obolibrary.org/obo/GO_0005575", "type": "CLASS"}
	],
	"edges": [
		{"sub": "http://purl.obolibrary.org/obo/GO_0006412", "pred": "is_a", "obj": "http://purl.obolibrary.org/obo/GO_0008150"},
		{"sub": "http://purl.obolibrary.org/obo/GO_0005634", "pred": "is_a", "obj": "http://purl.obolibrary.org/obo/GO_0005575"}
	]
}]}`

func xrefRow(cols map[int]string) string {
	out := make([]string, 13)
	for i, v := range cols {
		out[i] = v
	}
	return strings.Join(out, "\t")
}

var xrefTable = strings.Join([]string{
	"DB Class Key\tCommon Organism Name",
	xrefRow(map[int]string{0: "1", 1: "human", 6: "HGNC:5", 12: "P01023"}),
}, "\n")

var ratGAF = strings.Join([]string{
	"!gaf-version: 2.2",
	gafRow("RGD", "10", "A1", "located_in", "GO:0005634", "PMID:1", "IDA", "C", "RGD", "20200101"),
	gafRow("RGD", "10", "A1", "located_in", "GO:0005634", "PMID:2", "IDA", "C", "RGD", "20190101"),
	gafRow("RGD", "20", "B1", "involved_in", "GO:0006412", "PMID:3", "IMP", "P", "RGD", "20200101"),
	gafRow("RGD", "21", "B2", "located_in", "GO:0005634", "RGD:99", "IDA", "C", "RGD", "20200101"),
	gafRow("RGD", "10", "A1", "located_in", "GO:0005634", "PMID:4", "IEA", "C", "RGD", "20200101"),
	gafRow("RGD", "10", "A1", "NOT|located_in", "GO:0005634", "PMID:5", "IDA", "C", "RGD", "20200101"),
	gafRow("RGD", "10", "A1", "enables", "GO:0005515", "PMID:6", "IPI", "F", "RGD", "20200101"),
	gafRow("RGD", "10", "A1", "located_in", "GO:0005634", "PMID:7", "IDA", "C", "MGI", "20200101"),
	gafRow("UniProtKB", "P99999", "X1", "located_in", "GO:0005634", "PMID:8", "IDA", "C", "UniProt", "20200101"),
	gafRow("ZFIN", "ZDB-1", "Z1", "located_in", "GO:0005634", "PMID:9", "IDA", "C", "ZFIN", "20200101"),
	"RGD\tbroken",
}, "\n")

var mouseProteinGAF = strings.Join([]string{
	"!gaf-version: 2.2",
	gafRow("UniProtKB", "P68134", "ACTS", "enables", "GO:0003779", "PMID:1", "IDA", "F", "UniProt", "20210101"),
	gafRow("UniProtKB", "Q9DAQ4-1", "ABC2", "located_in", "GO:0005634", "PMID:2", "IDA", "C", "UniProt", "20210101"),
	gafRow("UniProtKB", "P00001", "DUP", "located_in", "GO:0005634", "PMID:3", "IDA", "C", "UniProt", "20210101"),
	gafRow("UniProtKB", "P68134", "ACTS", "enables", "GO:0003779", "PMID:4", "IBA", "F", "GO_Central", "20210101"),
	gafRow("UniProtKB", "P68134", "ACTS", "involved_in", "GO:0008150", "PMID:5", "IDA", "P", "UniProt", "20210101"),
	gafRow("UniProtKB", "P68134", "ACTS", "enables", "GO:0003779", "GO_REF:0000033", "IDA", "F", "MGI", "20210101"),
}, "\n")

type fixture struct {
	deps  Deps
	store *storage.SQLiteStore
	dir   string
}

func newFixture(t *testing.T, sourceGAF string) *fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, "src", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content+"\n"), 0o644))
		return p
	}

	cfg := config.DefaultConfig()
	cfg.Sources = map[string]config.Source{
		"MGI_GPI":         {URL: write("mgi.gpi", mouseGPI)},
		"ALLIANCE_ORTHO":  {URL: write("ortho.json", orthologyJSON)},
		"MGI_XREF":        {URL: write("HOM.rpt", xrefTable)},
		"GO":              {URL: write("go.json", goJSON)},
		"RGD":             {URL: write("rgd.gaf", sourceGAF)},
		"GOA_taxon_10090": {URL: write("goa_mouse.gaf", mouseProteinGAF)},
	}
	cfg.Retrieval.CacheDir = filepath.Join(dir, "cache")
	cfg.Retrieval.RetryDelay = time.Millisecond
	cfg.Output.Dir = filepath.Join(dir, "output")

	store, err := storage.NewSQLiteStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &fixture{
		deps: Deps{
			Config:  cfg,
			Log:     logger.Nop(),
			Fetcher: retrieval.FromConfig(cfg, logger.Nop()),
			Store:   store,
			Now:     func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) },
		},
		store: store,
		dir:   dir,
	}
}

func readRows(t *testing.T, path string) (headers []string, rows [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if strings.HasPrefix(line, "!") {
			headers = append(headers, line)
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return headers, rows
}

func TestOrthoTransfer_RatToMouse(t *testing.T) {
	fx := newFixture(t, ratGAF)
	ctx := context.Background()

	tr := NewOrthoTransfer(fx.deps, "NCBITaxon:10116", "NCBITaxon:10090")
	res, err := tr.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fx.dir, "output", "mgi-rgd-ortho.gaf"), res.OutputPath)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 3, res.Generated)
	assert.Equal(t, 1, res.Scan.Malformed)
	assert.Equal(t, map[string]int{"non_1to1_bp": 1}, res.Skips)

	assert.Equal(t, 10, res.Filter.Seen)
	assert.Equal(t, 1, res.Filter.Rejected[filter.Negated])
	assert.Equal(t, 1, res.Filter.Rejected[filter.Namespace])
	assert.Equal(t, 1, res.Filter.Rejected[filter.Evidence])
	assert.Equal(t, 1, res.Filter.Rejected[filter.Provenance])
	assert.Equal(t, 1, res.Filter.Rejected[filter.DenylistedTerm])
	assert.Equal(t, 1, res.Filter.Rejected[filter.NoXref])

	headers, rows := readRows(t, res.OutputPath)
	require.NotEmpty(t, headers)
	assert.Equal(t, "!gaf-version: 2.2", headers[0])
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Len(t, row, 17)
		assert.Equal(t, "MGI", row[0])
		assert.Equal(t, "ISO", row[6])
		assert.Equal(t, "GO_REF:0000096", row[5])
		assert.Equal(t, "taxon:10090", row[12])
		assert.Equal(t, "20240305", row[13])
		assert.Equal(t, "GO_Central", row[14])
	}
	assert.Equal(t, []string{"MGI:1", "Abc1", "RGD:10"}, []string{rows[0][1], rows[0][2], rows[0][7]})
	assert.Equal(t, []string{"MGI:2", "Def1", "RGD:21"}, []string{rows[1][1], rows[1][2], rows[1][7]})

	run, err := fx.store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "ok", run.Status)
	assert.Equal(t, 2.0, run.Counters["output_rows"])

	rejections, err := fx.store.RejectionCounts(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, rejections["no_xref"])
	assert.Len(t, rejections, 6)

	skips, err := fx.store.Skips(ctx, res.RunID, 0)
	require.NoError(t, err)
	require.Len(t, skips, 1)
	assert.Equal(t, storage.Skip{Reason: "non_1to1_bp", Subject: "RGD:20", Target: "MGI:MGI:2", Object: "GO:0006412"}, skips[0])

	assert.FileExists(t, filepath.Join(fx.dir, "output", "report.json"))
	assert.FileExists(t, filepath.Join(fx.dir, "output", "gopreprocess.prom"))
}

func TestOrthoTransfer_EmptyResult(t *testing.T) {
	fx := newFixture(t, gafRow("RGD", "10", "A1", "located_in", "GO:0005634", "PMID:4", "IEA", "C", "RGD", "20200101"))
	ctx := context.Background()

	res, err := NewOrthoTransfer(fx.deps, "NCBITaxon:10116", "NCBITaxon:10090").Run(ctx)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.EmptyResult))
	assert.Empty(t, res.OutputPath)
	assert.NoFileExists(t, filepath.Join(fx.dir, "output", "mgi-rgd-ortho.gaf"))

	run, err := fx.store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "failed", run.Status)
	assert.NotEmpty(t, run.Error)
}

func TestOrthoTransfer_MissingSource(t *testing.T) {
	fx := newFixture(t, ratGAF)
	fx.deps.Config.Sources["RGD"] = config.Source{URL: filepath.Join(fx.dir, "missing.gaf")}
	fx.deps.Fetcher = retrieval.FromConfig(fx.deps.Config, logger.Nop())

	_, err := NewOrthoTransfer(fx.deps, "NCBITaxon:10116", "NCBITaxon:10090").Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Retrieval))
}

func TestOrthoTransfer_KeysIncludeExtraSources(t *testing.T) {
	cfg := config.DefaultConfig()
	tr := NewOrthoTransfer(Deps{Config: cfg}, "NCBITaxon:9606", "NCBITaxon:10090")

	keys, err := tr.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"MGI_GPI", "HGNC", "HUMAN_ISO", "ALLIANCE_ORTHO", "MGI_XREF", "GO"}, keys)
	assert.Equal(t, filepath.Join("output", "mgi-hgnc-ortho.gaf"), tr.OutputPath())

	_, err = NewOrthoTransfer(Deps{Config: cfg}, "NCBITaxon:9606", "NCBITaxon:1").Keys()
	assert.Error(t, err)
}

func TestProteinTransfer_Mouse(t *testing.T) {
	fx := newFixture(t, ratGAF)
	ctx := context.Background()

	tr := NewProteinTransfer(fx.deps, "", false)
	res, err := tr.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(fx.dir, "output", "mgi-p2g-converted.gaf"), res.OutputPath)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, map[string]int{"no_gene": 1}, res.Skips)
	assert.Equal(t, 1, res.Filter.Rejected[filter.Evidence])
	assert.Equal(t, 1, res.Filter.Rejected[filter.DenylistedTerm])
	assert.Equal(t, 1, res.Filter.Rejected[filter.Provenance])

	_, rows := readRows(t, res.OutputPath)
	require.Len(t, rows, 2)

	byGene := map[string][]string{}
	for _, row := range rows {
		byGene[row[1]] = row
	}
	acta := byGene["MGI:87961"]
	require.NotNil(t, acta)
	assert.Equal(t, "Acta1", acta[2])
	assert.Equal(t, "IDA", acta[6])
	assert.Equal(t, "UniProt", acta[14])
	assert.Equal(t, "20240305", acta[13])

	iso := byGene["MGI:1918911"]
	require.NotNil(t, iso)
	assert.Equal(t, "GO:0005634", iso[4])
	assert.Equal(t, "taxon:10090", iso[12])
}

func TestRunProtein_MainThenIsoform(t *testing.T) {
	fx := newFixture(t, ratGAF)
	fx.deps.Config.Sources["GOA_taxon_10090_ISOFORM"] = fx.deps.Config.Sources["GOA_taxon_10090"]
	ctx := context.Background()

	files, err := DownloadProtein(ctx, fx.deps, "", true)
	require.NoError(t, err)
	assert.Contains(t, files, "GOA_taxon_10090")
	assert.Contains(t, files, "GOA_taxon_10090_ISOFORM")

	results, err := RunProtein(ctx, fx.deps, "", true)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(fx.dir, "output", "mgi-p2g-converted.gaf"), results[0].OutputPath)
	assert.Equal(t, filepath.Join(fx.dir, "output", "mgi-p2g-converted-isoform.gaf"), results[1].OutputPath)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
	for _, res := range results {
		assert.Equal(t, 2, res.Rows)
		assert.FileExists(t, res.OutputPath)
	}

	results, err = RunProtein(ctx, fx.deps, "", false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(fx.dir, "output", "mgi-p2g-converted.gaf"), results[0].OutputPath)
}

func TestProteinTransfer_Names(t *testing.T) {
	cfg := config.DefaultConfig()
	tr := NewProteinTransfer(Deps{Config: cfg}, "", true)

	keys, err := tr.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"MGI_GPI", "GOA_taxon_10090_ISOFORM"}, keys)
	assert.Equal(t, filepath.Join("output", "mgi-p2g-converted-isoform.gaf"), tr.OutputPath())
}

func TestDiagnostics_WithoutStore(t *testing.T) {
	d := newDiagnostics(context.Background(), nil, "r", logger.Nop())
	d.NoGene(&model.Annotation{})
	d.flush()
	assert.Equal(t, map[string]int{"no_gene": 1}, d.skipCounts())
	assert.Nil(t, d.skips)
}
