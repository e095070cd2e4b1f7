package filter

import (
	"testing"

	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/xref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotation(subject, object, eco, providedBy string, refs ...string) *model.Annotation {
	a := &model.Annotation{
		Subject:    model.Subject{ID: model.MustCurie(subject), Label: "x"},
		Relation:   "enables",
		Object:     model.Object{ID: model.MustCurie(object), Aspect: model.MolecularFunction},
		Evidence:   model.Evidence{Type: model.MustCurie(eco)},
		ProvidedBy: providedBy,
		Date:       "20200101",
	}
	for _, r := range refs {
		a.Evidence.SupportingReferences = append(a.Evidence.SupportingReferences, model.MustCurie(r))
	}
	return a
}

const (
	ida = "ECO:0000314"
	iea = "ECO:0000501"
	iba = "ECO:0000318"
)

func orthoPolicy(t *testing.T) Policy {
	t.Helper()
	ev, err := Experimental("EXP", "IDA", "IPI", "IMP", "IGI")
	require.NoError(t, err)
	return Policy{
		Namespaces:        []string{"HGNC", "UniProtKB"},
		Evidence:          ev,
		ExcludedProviders: []string{"MGI", "GO_Central"},
		DenyTerms:         []string{"GO:0005515", "GO:0005488"},
		ProteinNamespace:  "UniProtKB",
	}
}

type recordingSink struct {
	buckets []Bucket
}

func (s *recordingSink) Reject(b Bucket, _ *model.Annotation) { s.buckets = append(s.buckets, b) }

func TestFilter_Buckets(t *testing.T) {
	xrefs := xref.FromPairs([]xref.Pair{{A: "HGNC:5", B: "UniProtKB:P01023"}})
	sink := &recordingSink{}
	f := New(orthoPolicy(t), xrefs).WithSink(sink)

	negated := annotation("HGNC:1", "GO:0005634", ida, "UniProt", "PMID:1")
	negated.Negated = true

	cases := []struct {
		name   string
		in     *model.Annotation
		bucket Bucket
	}{
		{"negated", negated, Negated},
		{"namespace", annotation("MGI:MGI:1", "GO:0005634", ida, "UniProt", "PMID:1"), Namespace},
		{"evidence", annotation("HGNC:1", "GO:0005634", iea, "UniProt", "PMID:1"), Evidence},
		{"provenance", annotation("HGNC:1", "GO:0005634", ida, "MGI", "PMID:1"), Provenance},
		{"central", annotation("HGNC:1", "GO:0005634", ida, "GO_Central", "PMID:1"), Provenance},
		{"protein binding", annotation("HGNC:1", "GO:0005515", ida, "UniProt", "PMID:1"), DenylistedTerm},
		{"no xref", annotation("UniProtKB:P1", "GO:0005634", ida, "UniProt", "PMID:1"), NoXref},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, ok := f.Apply(tc.in)
			assert.False(t, ok)
			assert.Nil(t, out)
		})
	}

	stats := f.Stats()
	assert.Equal(t, 7, stats.Seen)
	assert.Equal(t, 0, stats.Passed)
	assert.Equal(t, 2, stats.Rejected[Provenance])
	assert.Equal(t, 1, stats.Rejected[NoXref])
	assert.Equal(t, []Bucket{Negated, Namespace, Evidence, Provenance, Provenance, DenylistedTerm, NoXref}, sink.buckets)
}

func TestFilter_TranslatesProteinSubject(t *testing.T) {
	xrefs := xref.FromPairs([]xref.Pair{{A: "HGNC:5", B: "UniProtKB:P01023"}})
	f := New(orthoPolicy(t), xrefs)

	in := annotation("UniProtKB:P01023", "GO:0005634", ida, "UniProt", "PMID:1")
	out, ok := f.Apply(in)
	require.True(t, ok)
	assert.Equal(t, "HGNC:5", out.Subject.ID.String())
	assert.Equal(t, "UniProtKB:P01023", in.Subject.ID.String(), "input is not modified")
}

func TestFilter_MissingPMIDIsDiagnosticOnly(t *testing.T) {
	f := New(orthoPolicy(t), nil)
	_, ok := f.Apply(annotation("HGNC:1", "GO:0005634", ida, "UniProt", "GO_REF:0000024"))
	assert.True(t, ok)
	_, ok = f.Apply(annotation("HGNC:1", "GO:0005634", ida, "UniProt", "PMID:9"))
	assert.True(t, ok)
	// rejected before the counter is reached
	_, ok = f.Apply(annotation("HGNC:1", "GO:0005634", iea, "UniProt", "GO_REF:0000024"))
	assert.False(t, ok)

	stats := f.Stats()
	assert.Equal(t, 1, stats.MissingPMID)
	assert.Equal(t, 2, stats.Passed)
}

func TestFilter_NoTranslatorKeepsProteinSubject(t *testing.T) {
	f := New(orthoPolicy(t), nil)
	out, ok := f.Apply(annotation("UniProtKB:P1", "GO:0005634", ida, "UniProt", "PMID:1"))
	require.True(t, ok)
	assert.Equal(t, "UniProtKB:P1", out.Subject.ID.String())
}

func TestFilter_ProteinMode(t *testing.T) {
	ev, err := Excluding("IBA")
	require.NoError(t, err)
	f := New(Policy{
		Namespaces:        []string{"UniProtKB"},
		Evidence:          ev,
		ExcludedProviders: []string{"MGI", "GO_Central"},
		ProviderReference: "GO_REF:0000033",
		DenyTerms:         []string{"GO:0005575", "GO:0008150", "GO:0003674"},
	}, nil)

	_, ok := f.Apply(annotation("UniProtKB:P1", "GO:0005634", iea, "UniProt", "GO_REF:0000043"))
	assert.True(t, ok, "IEA passes the non-IBA class")
	_, ok = f.Apply(annotation("UniProtKB:P1", "GO:0005634", iba, "GO_Central", "GO_REF:0000033"))
	assert.False(t, ok)
	// provenance only matters together with the reference
	_, ok = f.Apply(annotation("UniProtKB:P1", "GO:0005634", ida, "MGI", "PMID:1"))
	assert.True(t, ok)
	_, ok = f.Apply(annotation("UniProtKB:P1", "GO:0005634", ida, "MGI", "GO_REF:0000033"))
	assert.False(t, ok)
	_, ok = f.Apply(annotation("UniProtKB:P1", "GO:0008150", ida, "UniProt", "PMID:1"))
	assert.False(t, ok)

	results := f.Results()
	require.Len(t, results, 5)
	assert.Equal(t, Negated, results[0].Stage)
	assert.Equal(t, 5, results[0].Reached)
	assert.Equal(t, StageResult{Stage: Evidence, Reached: 5, Rejected: 1}, results[2])
	assert.Equal(t, StageResult{Stage: DenylistedTerm, Reached: 3, Rejected: 1}, results[4])
}

func TestEvidenceClass_UnknownCode(t *testing.T) {
	_, err := Experimental("EXP", "NOPE")
	assert.Error(t, err)
}
