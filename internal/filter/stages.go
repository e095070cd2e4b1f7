package filter

import (
	"github.com/geneontology/gopreprocess/internal/model"
)

type negatedStage struct{}

func (negatedStage) Name() Bucket { return Negated }

func (negatedStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	return a, !a.Negated
}

type namespaceStage struct {
	allowed map[string]struct{}
}

func newNamespaceStage(namespaces []string) namespaceStage {
	s := namespaceStage{allowed: make(map[string]struct{}, len(namespaces))}
	for _, ns := range namespaces {
		s.allowed[ns] = struct{}{}
	}
	return s
}

func (namespaceStage) Name() Bucket { return Namespace }

func (s namespaceStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	_, ok := s.allowed[a.Subject.ID.Namespace]
	return a, ok
}

type evidenceStage struct {
	class EvidenceClass
}

func (evidenceStage) Name() Bucket { return Evidence }

func (s evidenceStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	return a, s.class.Admits(a.Evidence.Type.String())
}

type provenanceStage struct {
	providers map[string]struct{}
	reference string
}

func newProvenanceStage(providers []string, reference string) provenanceStage {
	s := provenanceStage{providers: make(map[string]struct{}, len(providers)), reference: reference}
	for _, p := range providers {
		s.providers[p] = struct{}{}
	}
	return s
}

func (provenanceStage) Name() Bucket { return Provenance }

func (s provenanceStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	if _, excluded := s.providers[a.ProvidedBy]; !excluded {
		return a, true
	}
	if s.reference != "" && !a.HasReference(s.reference) {
		return a, true
	}
	return a, false
}

type denyStage struct {
	terms map[string]struct{}
}

func newDenyStage(terms []string) denyStage {
	s := denyStage{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		s.terms[t] = struct{}{}
	}
	return s
}

func (denyStage) Name() Bucket { return DenylistedTerm }

func (s denyStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	_, denied := s.terms[a.Object.ID.String()]
	return a, !denied
}

// translateStage swaps protein subjects for their gene.
type translateStage struct {
	ns    string
	xrefs Translator
}

func (translateStage) Name() Bucket { return NoXref }

func (s translateStage) Apply(a *model.Annotation) (*model.Annotation, bool) {
	if a.Subject.ID.Namespace != s.ns {
		return a, true
	}
	gene, ok := s.xrefs.ToA(a.Subject.ID.String())
	if !ok {
		return a, false
	}
	id, err := model.ParseCurie(gene)
	if err != nil {
		return a, false
	}
	out := *a
	out.Subject.ID = id
	return &out, true
}
