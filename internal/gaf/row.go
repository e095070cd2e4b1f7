package gaf

import (
	"strings"

	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/vocab"
)

// Row is one output line, already rendered column by column.
type Row [Columns]string

// DateColumn is the index of the date column in a Row.
const DateColumn = 13

func (r Row) String() string {
	return strings.Join(r[:], "\t")
}

// Render converts an annotation into its GAF 2.2 columns.
func Render(a *model.Annotation) Row {
	var r Row
	r[0] = a.Subject.ID.Namespace
	r[1] = a.Subject.ID.ID
	r[2] = a.Subject.Label
	r[3] = renderQualifier(a)
	r[4] = a.Object.ID.String()
	r[5] = joinCuries(a.Evidence.SupportingReferences, "|")
	r[6] = renderEvidence(a.Evidence.Type)
	r[7] = renderWithFrom(a.Evidence.WithSupportFrom)
	r[8] = string(a.Object.Aspect)
	r[9] = a.Subject.FullName
	r[10] = strings.Join(a.Subject.Synonyms, "|")
	if len(a.Subject.Types) > 0 {
		r[11] = a.Subject.Types[0]
	}
	r[12] = renderTaxon(a.Subject.Taxon)
	if !a.InteractingTaxon.IsZero() {
		r[12] += "|" + renderTaxon(a.InteractingTaxon)
	}
	r[13] = string(a.Date)
	r[14] = a.ProvidedBy
	r[15] = renderExtensions(a.ObjectExtensions)
	r[16] = a.GPIsoform.String()
	return r
}

func renderQualifier(a *model.Annotation) string {
	if a.Negated {
		if a.Relation == "" {
			return "NOT"
		}
		return "NOT|" + a.Relation
	}
	return a.Relation
}

func renderEvidence(eco model.Curie) string {
	if code, ok := vocab.CodeFor(eco.String()); ok {
		return code
	}
	return eco.String()
}

func renderTaxon(c model.Curie) string {
	if c.IsZero() {
		return ""
	}
	if c.Namespace == "NCBITaxon" {
		return "taxon:" + c.ID
	}
	return c.String()
}

func renderWithFrom(sets []model.ConjunctiveSet) string {
	parts := make([]string, 0, len(sets))
	for _, s := range sets {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "|")
}

func renderExtensions(groups [][]model.ExtensionUnit) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		units := make([]string, 0, len(g))
		for _, u := range g {
			units = append(units, u.Relation+"("+u.Term.String()+")")
		}
		parts = append(parts, strings.Join(units, ","))
	}
	return strings.Join(parts, "|")
}

func joinCuries(cs []model.Curie, sep string) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, sep)
}
