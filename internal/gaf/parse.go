package gaf

import (
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/vocab"
)

// Columns is the number of columns in a GAF 2.2 line.
const Columns = 17

// minColumns tolerates GAF 2.0 files that omit the last two columns.
const minColumns = 15

// Relations assumed for GAF 2.1 lines whose qualifier column is empty.
var defaultRelation = map[model.Aspect]string{
	model.MolecularFunction: "enables",
	model.BiologicalProcess: "involved_in",
	model.CellularComponent: "located_in",
}

// ParseLine turns one data line into a validated Annotation. Header and
// blank lines must be skipped by the caller.
func ParseLine(line string) (*model.Annotation, error) {
	cols := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(cols) < minColumns {
		return nil, apperr.Parsef("gaf", "expected %d columns, got %d", Columns, len(cols))
	}
	for len(cols) < Columns {
		cols = append(cols, "")
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	if cols[0] == "" || cols[1] == "" {
		return nil, apperr.Parsef("gaf", "missing subject id")
	}
	a := &model.Annotation{}
	a.Subject.ID = model.Curie{Namespace: cols[0], ID: cols[1]}
	a.Subject.Label = cols[2]
	a.Subject.FullName = cols[9]
	a.Subject.Synonyms = splitNonEmpty(cols[10], "|")
	if cols[11] != "" {
		a.Subject.Types = []string{cols[11]}
	}

	aspect, ok := model.ParseAspect(cols[8])
	if !ok {
		return nil, apperr.Parsef("gaf", "invalid aspect %q", cols[8])
	}
	obj, err := model.ParseCurie(cols[4])
	if err != nil {
		return nil, apperr.New(apperr.Parse, "gaf", err)
	}
	a.Object = model.Object{ID: obj, Aspect: aspect}

	a.Negated, a.Relation = parseQualifier(cols[3])
	if a.Relation == "" {
		a.Relation = defaultRelation[aspect]
	}

	refs, err := parseCuries(cols[5], "|")
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, apperr.Parsef("gaf", "missing supporting reference")
	}
	eco, ok := vocab.ECOFor(cols[6])
	if !ok {
		return nil, apperr.Parsef("gaf", "unknown evidence code %q", cols[6])
	}
	with, err := parseWithFrom(cols[7])
	if err != nil {
		return nil, err
	}
	a.Evidence = model.Evidence{
		Type:                 model.MustCurie(eco),
		SupportingReferences: refs,
		WithSupportFrom:      with,
	}

	taxa := splitNonEmpty(cols[12], "|")
	if len(taxa) == 0 {
		return nil, apperr.Parsef("gaf", "missing taxon")
	}
	a.Subject.Taxon, err = parseTaxon(taxa[0])
	if err != nil {
		return nil, err
	}
	a.Object.Taxon = a.Subject.Taxon
	if len(taxa) > 1 {
		if a.InteractingTaxon, err = parseTaxon(taxa[1]); err != nil {
			return nil, err
		}
	}

	a.Date = model.Date(cols[13])
	a.ProvidedBy = cols[14]
	if a.ObjectExtensions, err = parseExtensions(cols[15]); err != nil {
		return nil, err
	}
	if cols[16] != "" {
		iso, err := model.ParseCurie(cols[16])
		if err != nil {
			return nil, apperr.New(apperr.Parse, "gaf", err)
		}
		a.GPIsoform = iso
	}
	return a, nil
}

func parseQualifier(s string) (negated bool, relation string) {
	var rest []string
	for _, q := range splitNonEmpty(s, "|") {
		if strings.EqualFold(q, "NOT") {
			negated = true
			continue
		}
		rest = append(rest, q)
	}
	return negated, strings.Join(rest, "|")
}

// parseTaxon accepts "taxon:9606" and "NCBITaxon:9606".
func parseTaxon(s string) (model.Curie, error) {
	c, err := model.ParseCurie(s)
	if err != nil {
		return model.Curie{}, apperr.New(apperr.Parse, "gaf", err)
	}
	if strings.EqualFold(c.Namespace, "taxon") {
		c.Namespace = "NCBITaxon"
	}
	return c, nil
}

func parseCuries(s, sep string) ([]model.Curie, error) {
	var out []model.Curie
	for _, part := range splitNonEmpty(s, sep) {
		c, err := model.ParseCurie(part)
		if err != nil {
			return nil, apperr.New(apperr.Parse, "gaf", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseWithFrom(s string) ([]model.ConjunctiveSet, error) {
	var out []model.ConjunctiveSet
	for _, group := range splitNonEmpty(s, "|") {
		set, err := parseCuries(group, ",")
		if err != nil {
			return nil, err
		}
		if len(set) > 0 {
			out = append(out, model.ConjunctiveSet(set))
		}
	}
	return out, nil
}

// parseExtensions reads "rel(ID),rel(ID)|rel(ID)".
func parseExtensions(s string) ([][]model.ExtensionUnit, error) {
	var out [][]model.ExtensionUnit
	for _, group := range splitNonEmpty(s, "|") {
		var units []model.ExtensionUnit
		for _, raw := range splitNonEmpty(group, ",") {
			open := strings.IndexByte(raw, '(')
			if open <= 0 || !strings.HasSuffix(raw, ")") {
				return nil, apperr.Parsef("gaf", "invalid extension %q", raw)
			}
			term, err := model.ParseCurie(raw[open+1 : len(raw)-1])
			if err != nil {
				return nil, apperr.New(apperr.Parse, "gaf", err)
			}
			units = append(units, model.ExtensionUnit{Relation: raw[:open], Term: term})
		}
		if len(units) > 0 {
			out = append(out, units)
		}
	}
	return out, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
