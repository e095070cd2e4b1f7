package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/geneontology/gopreprocess/internal/aggregate"
	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/filter"
	"github.com/geneontology/gopreprocess/internal/gpi"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/ontology"
	"github.com/geneontology/gopreprocess/internal/orthology"
	"github.com/geneontology/gopreprocess/internal/retrieval"
	"github.com/geneontology/gopreprocess/internal/rewrite"
	"github.com/geneontology/gopreprocess/internal/xref"
)

// OrthoTransfer transfers experimental annotations of a source organism
// onto the orthologous genes of a target organism.
type OrthoTransfer struct {
	SourceTaxon string
	TargetTaxon string
	// Namespaces overrides the configured subject allow-list.
	Namespaces []string
	// Reference overrides the configured GO_REF stamped on new records.
	Reference string

	deps Deps
}

func NewOrthoTransfer(deps Deps, sourceTaxon, targetTaxon string) *OrthoTransfer {
	return &OrthoTransfer{
		SourceTaxon: sourceTaxon,
		TargetTaxon: targetTaxon,
		deps:        deps,
	}
}

// orthoTables are the read-only lookups built before streaming.
type orthoTables struct {
	genes     *gpi.Directory
	xrefs     *xref.Map
	orthologs *orthology.Map
	closure   *ontology.Closure
}

// Keys lists the source keys the transfer reads: target GPI, source GAFs,
// orthology, cross-references and ontology.
func (t *OrthoTransfer) Keys() ([]string, error) {
	target, err := t.deps.Config.Provider(t.TargetTaxon)
	if err != nil {
		return nil, err
	}
	keys := []string{gpiKey(target)}
	keys = append(keys, t.sourceKeys()...)
	o := t.deps.Config.Ortho
	keys = append(keys, o.OrthologyKey, o.XrefKey, o.OntologyKey)
	return keys, nil
}

// sourceKeys are the source GAF keys in reading order.
func (t *OrthoTransfer) sourceKeys() []string {
	source, _ := t.deps.Config.Provider(t.SourceTaxon)
	keys := []string{source}
	return append(keys, t.deps.Config.Ortho.ExtraSources[t.SourceTaxon]...)
}

// OutputPath is <target>-<source>-ortho.gaf in the output directory.
func (t *OrthoTransfer) OutputPath() string {
	cfg := t.deps.Config
	target, _ := cfg.Provider(t.TargetTaxon)
	source, _ := cfg.Provider(t.SourceTaxon)
	name := fmt.Sprintf("%s-%s-ortho.gaf", strings.ToLower(target), strings.ToLower(source))
	return filepath.Join(cfg.Output.Dir, name)
}

// Download fetches every file the transfer needs.
func (t *OrthoTransfer) Download(ctx context.Context) (map[string]string, error) {
	keys, err := t.Keys()
	if err != nil {
		return nil, err
	}
	return t.deps.Fetcher.FetchAll(ctx, keys...)
}

func (t *OrthoTransfer) Run(ctx context.Context) (*Result, error) {
	r := t.deps.begin(ctx, ModeOrtho, t.SourceTaxon, t.TargetTaxon)
	res, err := t.run(ctx, r)
	return r.finish(ctx, res, err)
}

func (t *OrthoTransfer) run(ctx context.Context, r *run) (*Result, error) {
	cfg := t.deps.Config
	res := &Result{}

	targetTaxon, err := parseTaxon(t.TargetTaxon)
	if err != nil {
		return res, err
	}
	if _, err := parseTaxon(t.SourceTaxon); err != nil {
		return res, err
	}
	targetProvider, err := cfg.Provider(t.TargetTaxon)
	if err != nil {
		return res, err
	}
	if _, err := cfg.Provider(t.SourceTaxon); err != nil {
		return res, err
	}
	reference := t.Reference
	if reference == "" {
		reference = cfg.Ortho.Reference
	}
	refCurie, err := model.ParseCurie(reference)
	if err != nil {
		return res, fmt.Errorf("ortho reference: %w", err)
	}
	evidence, err := filter.Experimental(cfg.Ortho.EvidenceCodes...)
	if err != nil {
		return res, err
	}

	var files map[string]string
	if err := r.stage("fetch", func() (map[string]float64, error) {
		files, err = t.Download(ctx)
		return map[string]float64{"files": float64(len(files))}, err
	}); err != nil {
		return res, err
	}

	var tables *orthoTables
	if err := r.stage("references", func() (map[string]float64, error) {
		tables, err = t.buildTables(files, targetProvider, r)
		if err != nil {
			return nil, err
		}
		return map[string]float64{
			"genes":             float64(tables.genes.Len()),
			"xref_pairs":        float64(tables.xrefs.LenA()),
			"ortholog_sources":  float64(tables.orthologs.SourceCount()),
			"ortholog_targets":  float64(tables.orthologs.TargetCount()),
			"ambiguous_targets": float64(tables.orthologs.AmbiguousTargets()),
			"process_terms":     float64(tables.closure.Size()),
		}, nil
	}); err != nil {
		return res, err
	}

	namespaces := t.Namespaces
	if len(namespaces) == 0 {
		namespaces = cfg.Namespaces(t.SourceTaxon)
	}
	f := filter.New(filter.Policy{
		Namespaces:        namespaces,
		Evidence:          evidence,
		ExcludedProviders: []string{targetProvider, cfg.Ortho.CentralProvider},
		DenyTerms:         cfg.Ortho.DenyTerms,
		ProteinNamespace:  cfg.Ortho.ProteinNamespace,
	}, tables.xrefs).WithSink(r.diag)

	rw := rewrite.NewOrtho(tables.orthologs, tables.genes, tables.xrefs, tables.closure, rewrite.OrthoOptions{
		TargetTaxon: targetTaxon,
		Reference:   refCurie,
		ProvidedBy:  cfg.Ortho.ProvidedBy,
		Date:        processingDate(t.deps.now()),
	})
	agg := aggregate.New()

	if err := r.stage("transfer", func() (map[string]float64, error) {
		paths, err := pathsFor(files, t.sourceKeys())
		if err != nil {
			return nil, err
		}
		res.Scan, err = scanSources(paths, r.log, func(a *model.Annotation) error {
			eligible, ok := f.Apply(a)
			if !ok {
				return nil
			}
			out, skips, err := rw.Rewrite(eligible)
			if err != nil {
				return err
			}
			for _, s := range skips {
				r.diag.Skip(s)
			}
			for _, n := range out {
				agg.Add(n)
			}
			res.Generated += len(out)
			return nil
		})
		res.Filter = f.Stats()
		return filterCounters(f, res), err
	}); err != nil {
		return res, err
	}

	res.OutputPath = t.OutputPath()
	if err := r.stage("write", func() (map[string]float64, error) {
		res.Rows, err = writeOutput(agg, res.OutputPath, cfg, t.deps.now())
		res.Aggregate = agg.Stats()
		return map[string]float64{
			"duplicates": float64(res.Aggregate.Duplicates),
			"collapsed":  float64(res.Aggregate.Collapsed),
			"rows":       float64(res.Rows),
		}, err
	}); err != nil {
		if apperr.Is(err, apperr.EmptyResult) {
			res.OutputPath = ""
		}
		return res, err
	}
	return res, nil
}

func (t *OrthoTransfer) buildTables(files map[string]string, targetProvider string, r *run) (*orthoTables, error) {
	cfg := t.deps.Config
	log := r.log

	genes, err := loadDirectory(files[gpiKey(targetProvider)], log)
	if err != nil {
		return nil, err
	}
	log.Info("loaded gene descriptors", "genes", genes.Len(), "version", genes.Stats.Version)

	xrefs, err := loadXrefs(files[cfg.Ortho.XrefKey], cfg, r)
	if err != nil {
		return nil, err
	}

	resolver := orthology.NewResolver(t.TargetTaxon, t.SourceTaxon, targetProvider, genes)
	orthoPath := files[cfg.Ortho.OrthologyKey]
	of, err := retrieval.Open(orthoPath)
	if err != nil {
		return nil, apperr.New(apperr.Retrieval, "open orthology", err)
	}
	_, err = orthology.ScanAlliance(of, orthoPath, func(p orthology.Pair) { resolver.Add(p) }, func(index int, err error) {
		log.Debug("skipping orthology pair", "index", index, "error", err)
	})
	of.Close()
	if err != nil {
		return nil, err
	}
	orthologs := resolver.Map()
	log.Info("resolved orthologs",
		"seen", resolver.Stats.Seen,
		"kept", resolver.Stats.Kept,
		"no_descriptor", resolver.Stats.NoDescriptor,
		"ambiguous_targets", orthologs.AmbiguousTargets())

	ontoPath := files[cfg.Ortho.OntologyKey]
	gf, err := retrieval.Open(ontoPath)
	if err != nil {
		return nil, apperr.New(apperr.Retrieval, "open ontology", err)
	}
	closure, err := ontology.Load(gf, ontoPath)
	gf.Close()
	if err != nil {
		return nil, err
	}

	return &orthoTables{genes: genes, xrefs: xrefs, orthologs: orthologs, closure: closure}, nil
}

func loadXrefs(path string, cfg *config.Config, r *run) (*xref.Map, error) {
	f, err := retrieval.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Retrieval, "open xrefs", err)
	}
	defer f.Close()
	x := cfg.Xref
	layout := xref.Layout{
		HeaderPrefix: x.HeaderPrefix,
		FilterColumn: x.FilterColumn,
		FilterPrefix: x.FilterPrefix,
		AColumn:      x.AColumn,
		BColumn:      x.BColumn,
		BNamespace:   x.BNamespace,
	}
	m, stats, err := xref.ReadTable(f, path, layout, func(line int, err error) {
		r.log.Debug("skipping xref row", "line", line, "error", err)
	})
	if err != nil {
		return nil, err
	}
	if n := len(m.AmbiguousA) + len(m.AmbiguousB); n > 0 {
		r.report.AddSignal("ambiguous_xrefs", "references", "info", "cross-references dropped for having several partners", float64(n))
	}
	r.log.Info("loaded cross-references", "rows", stats.Rows, "matched", stats.Matched, "pairs", m.LenA())
	return m, nil
}

func filterCounters(f *filter.Filter, res *Result) map[string]float64 {
	out := map[string]float64{
		"records":      float64(res.Scan.Records),
		"malformed":    float64(res.Scan.Malformed),
		"seen":         float64(res.Filter.Seen),
		"passed":       float64(res.Filter.Passed),
		"missing_pmid": float64(res.Filter.MissingPMID),
		"generated":    float64(res.Generated),
	}
	for _, st := range f.Results() {
		out["rejected_"+string(st.Stage)] = float64(st.Rejected)
	}
	return out
}
