package rewrite

import (
	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/vocab"
)

// AspectOracle answers whether a term sits under Biological Process.
type AspectOracle interface {
	IsBiologicalProcess(term string) bool
}

// Orthologs is the part of the orthology index the rewriter reads.
type Orthologs interface {
	Targets(source string) []string
	Ambiguous(target string) bool
}

// Descriptors resolves a target gene key to its metadata.
type Descriptors interface {
	Descriptor(id string) (model.GeneDescriptor, bool)
}

// ProteinXrefs maps a gene id to its protein id.
type ProteinXrefs interface {
	ToB(gene string) (string, bool)
}

// OrthoOptions are the fixed values stamped on every generated record.
type OrthoOptions struct {
	TargetTaxon model.Curie
	Reference   model.Curie
	ProvidedBy  string
	Date        model.Date
}

// Skip explains why a (source record, target gene) pair produced nothing.
type Skip struct {
	Reason string
	Source *model.Annotation
	Target string
}

const ReasonNon1to1BP = "non_1to1_bp"

// Ortho rewrites source annotations onto target orthologs.
type Ortho struct {
	orthologs   Orthologs
	descriptors Descriptors
	xrefs       ProteinXrefs
	oracle      AspectOracle
	opts        OrthoOptions
}

func NewOrtho(orthologs Orthologs, descriptors Descriptors, xrefs ProteinXrefs, oracle AspectOracle, opts OrthoOptions) *Ortho {
	return &Ortho{
		orthologs:   orthologs,
		descriptors: descriptors,
		xrefs:       xrefs,
		oracle:      oracle,
		opts:        opts,
	}
}

// Rewrite returns one new record per eligible target ortholog of a's
// subject, plus the pairs it skipped. A target without a descriptor is an
// invariant violation.
func (o *Ortho) Rewrite(a *model.Annotation) ([]*model.Annotation, []Skip, error) {
	subject := a.Subject.ID.String()
	targets := o.orthologs.Targets(subject)
	if len(targets) == 0 {
		return nil, nil, nil
	}

	isBP := o.oracle != nil && o.oracle.IsBiologicalProcess(a.Object.ID.String())
	with := o.withFrom(a.Subject.ID)

	var (
		out   []*model.Annotation
		skips []Skip
	)
	for _, g := range targets {
		if isBP && o.orthologs.Ambiguous(g) {
			skips = append(skips, Skip{Reason: ReasonNon1to1BP, Source: a, Target: g})
			continue
		}
		desc, ok := o.descriptors.Descriptor(g)
		if !ok {
			return nil, nil, apperr.Invariantf("rewrite", "ortholog %s of %s has no gene descriptor", g, subject)
		}
		out = append(out, o.build(a, desc, with))
	}
	return out, skips, nil
}

func (o *Ortho) withFrom(subject model.Curie) model.Curie {
	if o.xrefs != nil {
		if p, ok := o.xrefs.ToB(subject.String()); ok {
			if c, err := model.ParseCurie(p); err == nil {
				return c
			}
		}
	}
	return subject
}

func (o *Ortho) build(a *model.Annotation, desc model.GeneDescriptor, with model.Curie) *model.Annotation {
	var types []string
	if len(desc.Types) > 0 {
		types = []string{desc.Types[0]}
	}
	return &model.Annotation{
		Subject: model.Subject{
			ID:       desc.ID,
			Taxon:    o.opts.TargetTaxon,
			Label:    desc.Label,
			FullName: desc.FullName,
			Types:    types,
		},
		Relation: a.Relation,
		Object: model.Object{
			ID:     a.Object.ID,
			Aspect: a.Object.Aspect,
			Taxon:  o.opts.TargetTaxon,
		},
		InteractingTaxon: a.InteractingTaxon,
		Evidence: model.Evidence{
			Type:                 model.MustCurie(vocab.ISO),
			SupportingReferences: []model.Curie{o.opts.Reference},
			WithSupportFrom:      []model.ConjunctiveSet{{with}},
		},
		ProvidedBy: o.opts.ProvidedBy,
		Date:       o.opts.Date,
	}
}
