package filter

import (
	"github.com/geneontology/gopreprocess/internal/model"
)

// Bucket names the reason a record was rejected.
type Bucket string

const (
	Negated        Bucket = "negated"
	Namespace      Bucket = "namespace"
	Evidence       Bucket = "evidence"
	Provenance     Bucket = "provenance"
	DenylistedTerm Bucket = "denylisted_term"
	NoXref         Bucket = "no_xref"
)

// Translator maps a protein id to a gene id.
type Translator interface {
	ToA(protein string) (string, bool)
}

// Sink receives every rejected record.
type Sink interface {
	Reject(bucket Bucket, a *model.Annotation)
}

// Stage is one predicate in the chain. A stage may return a different
// record to pass downstream; it never modifies its input.
type Stage interface {
	Name() Bucket
	Apply(a *model.Annotation) (*model.Annotation, bool)
}

type Stats struct {
	Seen        int
	Passed      int
	Rejected    map[Bucket]int
	MissingPMID int
}

// StageResult reports how many records reached and left a stage.
type StageResult struct {
	Stage    Bucket
	Reached  int
	Rejected int
}

// Filter runs records through an ordered chain; the first failing stage
// decides the bucket.
type Filter struct {
	stages  []Stage
	reached map[Bucket]int
	stats   Stats
	sink    Sink
}

func NewFilter(stages ...Stage) *Filter {
	return &Filter{
		stages:  stages,
		reached: make(map[Bucket]int),
		stats:   Stats{Rejected: make(map[Bucket]int)},
	}
}

// New builds the standard chain for a policy. translator may be nil.
func New(p Policy, translator Translator) *Filter {
	stages := []Stage{
		negatedStage{},
		newNamespaceStage(p.Namespaces),
		evidenceStage{class: p.Evidence},
		newProvenanceStage(p.ExcludedProviders, p.ProviderReference),
		newDenyStage(p.DenyTerms),
	}
	if translator != nil && p.ProteinNamespace != "" {
		stages = append(stages, translateStage{ns: p.ProteinNamespace, xrefs: translator})
	}
	return NewFilter(stages...)
}

func (f *Filter) WithSink(s Sink) *Filter {
	f.sink = s
	return f
}

// Apply returns the record to pass downstream, or false if rejected.
func (f *Filter) Apply(a *model.Annotation) (*model.Annotation, bool) {
	f.stats.Seen++
	cur := a
	for _, st := range f.stages {
		f.reached[st.Name()]++
		next, ok := st.Apply(cur)
		if !ok {
			f.stats.Rejected[st.Name()]++
			if f.sink != nil {
				f.sink.Reject(st.Name(), cur)
			}
			return nil, false
		}
		cur = next
		if st.Name() == Provenance && !cur.HasReferenceIn("PMID") {
			f.stats.MissingPMID++
		}
	}
	f.stats.Passed++
	return cur, true
}

func (f *Filter) Stats() Stats {
	out := f.stats
	out.Rejected = make(map[Bucket]int, len(f.stats.Rejected))
	for k, v := range f.stats.Rejected {
		out.Rejected[k] = v
	}
	return out
}

// Results lists per-stage counts in chain order.
func (f *Filter) Results() []StageResult {
	out := make([]StageResult, 0, len(f.stages))
	for _, st := range f.stages {
		out = append(out, StageResult{
			Stage:    st.Name(),
			Reached:  f.reached[st.Name()],
			Rejected: f.stats.Rejected[st.Name()],
		})
	}
	return out
}
