package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/geneontology/gopreprocess/internal/aggregate"
	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/config"
	"github.com/geneontology/gopreprocess/internal/filter"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/rewrite"
)

// ProteinTransfer projects the target organism's own protein annotations
// onto the genes that encode them.
type ProteinTransfer struct {
	TargetTaxon string
	// Isoform reads the isoform GAF instead of the main one.
	Isoform bool

	deps Deps
}

func NewProteinTransfer(deps Deps, targetTaxon string, isoform bool) *ProteinTransfer {
	if targetTaxon == "" {
		targetTaxon = deps.Config.Protein.TargetTaxon
	}
	return &ProteinTransfer{TargetTaxon: targetTaxon, Isoform: isoform, deps: deps}
}

// sourceKey is GOA_taxon_<n>, with an _ISOFORM suffix in isoform mode.
func (t *ProteinTransfer) sourceKey() string {
	key := "GOA_" + config.TaxonKey(t.TargetTaxon)
	if t.Isoform {
		key += "_ISOFORM"
	}
	return key
}

func (t *ProteinTransfer) Keys() ([]string, error) {
	target, err := t.deps.Config.Provider(t.TargetTaxon)
	if err != nil {
		return nil, err
	}
	return []string{gpiKey(target), t.sourceKey()}, nil
}

// OutputPath is <target>-p2g-converted[-isoform].gaf.
func (t *ProteinTransfer) OutputPath() string {
	cfg := t.deps.Config
	target, _ := cfg.Provider(t.TargetTaxon)
	name := strings.ToLower(target) + "-p2g-converted"
	if t.Isoform {
		name += "-isoform"
	}
	return filepath.Join(cfg.Output.Dir, name+".gaf")
}

func (t *ProteinTransfer) Download(ctx context.Context) (map[string]string, error) {
	keys, err := t.Keys()
	if err != nil {
		return nil, err
	}
	return t.deps.Fetcher.FetchAll(ctx, keys...)
}

// RunProtein converts the main GAF of targetTaxon and, when isoform is set,
// its isoform GAF afterwards. The first failed run stops the sequence.
func RunProtein(ctx context.Context, deps Deps, targetTaxon string, isoform bool) ([]*Result, error) {
	var results []*Result
	for _, t := range proteinTransfers(deps, targetTaxon, isoform) {
		res, err := t.Run(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// DownloadProtein fetches the inputs of every run RunProtein would make.
func DownloadProtein(ctx context.Context, deps Deps, targetTaxon string, isoform bool) (map[string]string, error) {
	files := make(map[string]string)
	for _, t := range proteinTransfers(deps, targetTaxon, isoform) {
		got, err := t.Download(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range got {
			files[k] = v
		}
	}
	return files, nil
}

func proteinTransfers(deps Deps, targetTaxon string, isoform bool) []*ProteinTransfer {
	out := []*ProteinTransfer{NewProteinTransfer(deps, targetTaxon, false)}
	if isoform {
		out = append(out, NewProteinTransfer(deps, targetTaxon, true))
	}
	return out
}

func (t *ProteinTransfer) Run(ctx context.Context) (*Result, error) {
	r := t.deps.begin(ctx, ModeProtein, t.TargetTaxon, t.TargetTaxon)
	res, err := t.run(ctx, r)
	return r.finish(ctx, res, err)
}

func (t *ProteinTransfer) run(ctx context.Context, r *run) (*Result, error) {
	cfg := t.deps.Config
	pc := cfg.Protein
	res := &Result{}

	targetTaxon, err := parseTaxon(t.TargetTaxon)
	if err != nil {
		return res, err
	}
	provider, err := cfg.Provider(t.TargetTaxon)
	if err != nil {
		return res, err
	}
	evidence, err := filter.Excluding(pc.ExcludedCodes...)
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

	var rw *rewrite.Protein
	if err := r.stage("references", func() (map[string]float64, error) {
		genes, err := loadDirectory(files[gpiKey(provider)], r.log)
		if err != nil {
			return nil, err
		}
		proteinNS := cfg.Ortho.ProteinNamespace
		geneXrefs := genes.GeneProteinXrefs(provider, proteinNS)
		isoforms, parents := genes.IsoformXrefs(pc.IsoformNamespace, proteinNS, provider)
		if n := len(geneXrefs.AmbiguousB); n > 0 {
			r.report.AddSignal("shared_proteins", "references", "info", "proteins cross-referenced by several genes", float64(n))
		}
		rw = rewrite.NewProtein(geneXrefs, isoforms, parents, genes, rewrite.ProteinOptions{
			TargetTaxon:    targetTaxon,
			Date:           processingDate(t.deps.now()),
			KeepSourceDate: pc.KeepSourceDate,
			ProvidedBy:     pc.ProvidedBy,
		})
		return map[string]float64{
			"genes":         float64(genes.Len()),
			"protein_pairs": float64(geneXrefs.LenB()),
			"isoform_pairs": float64(isoforms.LenB()),
		}, nil
	}); err != nil {
		return res, err
	}

	f := filter.New(filter.Policy{
		Namespaces:        pc.Namespaces,
		Evidence:          evidence,
		ExcludedProviders: []string{provider, cfg.Ortho.CentralProvider},
		ProviderReference: pc.ProviderReference,
		DenyTerms:         pc.DenyTerms,
	}, nil).WithSink(r.diag)
	agg := aggregate.New()

	if err := r.stage("transfer", func() (map[string]float64, error) {
		paths, err := pathsFor(files, []string{t.sourceKey()})
		if err != nil {
			return nil, err
		}
		res.Scan, err = scanSources(paths, r.log, func(a *model.Annotation) error {
			eligible, ok := f.Apply(a)
			if !ok {
				return nil
			}
			out, err := rw.Rewrite(eligible)
			if apperr.Is(err, apperr.Lookup) {
				r.diag.NoGene(eligible)
				return nil
			}
			if err != nil {
				return err
			}
			agg.Add(out)
			res.Generated++
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
