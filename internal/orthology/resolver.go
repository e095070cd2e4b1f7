package orthology

// Pair is one row of the orthology source.
type Pair struct {
	Gene1ID    string `json:"Gene1ID"`
	Gene1Taxon string `json:"Gene1SpeciesTaxonID"`
	Gene2ID    string `json:"Gene2ID"`
	Gene2Taxon string `json:"Gene2SpeciesTaxonID"`
}

// GeneIndex resolves a target gene id to its descriptor key.
type GeneIndex interface {
	Canonical(authority, id string) (string, bool)
}

type ResolveStats struct {
	Seen         int
	WrongTaxa    int
	NoDescriptor int
	Kept         int
}

// Resolver filters pairs down to the (target, source) taxon pair and to
// target genes present in the descriptor set, then builds a Map.
type Resolver struct {
	targetTaxon string
	sourceTaxon string
	authority   string
	genes       GeneIndex

	kept  []Pair
	Stats ResolveStats
}

// NewResolver expects Gene1 to be the target organism and Gene2 the source
// organism. authority is the target's gene namespace, e.g. "MGI".
func NewResolver(targetTaxon, sourceTaxon, authority string, genes GeneIndex) *Resolver {
	return &Resolver{
		targetTaxon: targetTaxon,
		sourceTaxon: sourceTaxon,
		authority:   authority,
		genes:       genes,
	}
}

// Add keeps p if it links a described target gene to the source taxon.
// Gene1ID is replaced by the descriptor key.
func (r *Resolver) Add(p Pair) bool {
	r.Stats.Seen++
	if p.Gene1Taxon != r.targetTaxon || p.Gene2Taxon != r.sourceTaxon {
		r.Stats.WrongTaxa++
		return false
	}
	key, ok := r.genes.Canonical(r.authority, p.Gene1ID)
	if !ok {
		r.Stats.NoDescriptor++
		return false
	}
	p.Gene1ID = key
	r.kept = append(r.kept, p)
	r.Stats.Kept++
	return true
}

// Map builds the forward and inverse index from the retained pairs.
func (r *Resolver) Map() *Map {
	m := NewMap()
	for _, p := range r.kept {
		m.Link(p.Gene2ID, p.Gene1ID)
	}
	return m
}
