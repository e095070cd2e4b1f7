package rewrite

import (
	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/model"
)

// GeneXrefs maps a protein accession to its gene.
type GeneXrefs interface {
	ToA(protein string) (string, bool)
}

type ProteinOptions struct {
	TargetTaxon model.Curie
	Date        model.Date
	// KeepSourceDate leaves the source record's date untouched.
	KeepSourceDate bool
	// ProvidedBy overrides the source provenance when set.
	ProvidedBy string
}

// Protein projects protein annotations onto the gene that encodes them.
// Isoform accessions go through the isoform table (accession → PR id →
// encoding gene) before the direct accession → gene table.
type Protein struct {
	genes       GeneXrefs
	isoforms    GeneXrefs
	parents     map[string]string
	descriptors Descriptors
	opts        ProteinOptions
}

// NewProtein builds a Protein rewriter. isoforms and parents may be nil
// when isoform records are not processed.
func NewProtein(genes, isoforms GeneXrefs, parents map[string]string, descriptors Descriptors, opts ProteinOptions) *Protein {
	return &Protein{
		genes:       genes,
		isoforms:    isoforms,
		parents:     parents,
		descriptors: descriptors,
		opts:        opts,
	}
}

// Rewrite returns the gene-level record, or a Lookup error when the
// protein has no gene.
func (p *Protein) Rewrite(a *model.Annotation) (*model.Annotation, error) {
	protein := a.Subject.ID.String()
	gene, ok := p.isoformGene(protein)
	if !ok {
		if gene, ok = p.genes.ToA(protein); !ok {
			return nil, apperr.Lookupf("rewrite", "no gene for %s", protein)
		}
	}
	geneID, err := model.ParseCurie(gene)
	if err != nil {
		return nil, apperr.Lookupf("rewrite", "gene id %q for %s: %v", gene, protein, err)
	}

	out := *a
	out.Subject = model.Subject{
		ID:       geneID,
		Taxon:    p.opts.TargetTaxon,
		Label:    a.Subject.Label,
		FullName: a.Subject.FullName,
		Types:    a.Subject.Types,
	}
	if p.descriptors != nil {
		if desc, ok := p.descriptors.Descriptor(gene); ok {
			out.Subject.Label = desc.Label
			out.Subject.FullName = desc.FullName
			if len(desc.Types) > 0 {
				out.Subject.Types = []string{desc.Types[0]}
			}
		}
	}
	out.Object.Taxon = p.opts.TargetTaxon
	if !p.opts.KeepSourceDate {
		out.Date = p.opts.Date
	}
	if p.opts.ProvidedBy != "" {
		out.ProvidedBy = p.opts.ProvidedBy
	}
	if !a.GPIsoform.IsZero() && p.isoforms != nil {
		if pr, ok := p.isoforms.ToA(a.GPIsoform.String()); ok {
			if c, err := model.ParseCurie(pr); err == nil {
				out.GPIsoform = c
			}
		}
	}
	return &out, nil
}

func (p *Protein) isoformGene(protein string) (string, bool) {
	if p.isoforms == nil {
		return "", false
	}
	pr, ok := p.isoforms.ToA(protein)
	if !ok {
		return "", false
	}
	gene, ok := p.parents[pr]
	return gene, ok
}
