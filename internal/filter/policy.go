package filter

import (
	"fmt"

	"github.com/geneontology/gopreprocess/internal/vocab"
)

// EvidenceClass is either an allow-list or a deny-list of ECO ids.
type EvidenceClass struct {
	exclude bool
	ecos    map[string]struct{}
}

// Experimental keeps only the listed GAF evidence codes.
func Experimental(codes ...string) (EvidenceClass, error) {
	return newClass(false, codes)
}

// Excluding keeps every evidence code except the listed ones.
func Excluding(codes ...string) (EvidenceClass, error) {
	return newClass(true, codes)
}

func newClass(exclude bool, codes []string) (EvidenceClass, error) {
	set, unknown := vocab.ECOSet(codes)
	if len(unknown) > 0 {
		return EvidenceClass{}, fmt.Errorf("unknown evidence codes: %v", unknown)
	}
	return EvidenceClass{exclude: exclude, ecos: set}, nil
}

func (c EvidenceClass) Admits(eco string) bool {
	_, listed := c.ecos[eco]
	return listed != c.exclude
}

// Policy is the per-run eligibility configuration.
type Policy struct {
	// Namespaces is the subject namespace allow-list.
	Namespaces []string
	Evidence   EvidenceClass
	// Provided-by values that mark an annotation as already belonging to
	// the target, typically the target authority and "GO_Central".
	ExcludedProviders []string
	// When set, ExcludedProviders only applies to records citing it.
	ProviderReference string
	DenyTerms         []string
	// ProteinNamespace subjects are translated to genes when the filter
	// has a translator.
	ProteinNamespace string
}
