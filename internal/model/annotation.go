package model

import (
	"strconv"
	"strings"
)

// Aspect is the ontology branch of the object term.
type Aspect string

const (
	MolecularFunction Aspect = "F"
	BiologicalProcess Aspect = "P"
	CellularComponent Aspect = "C"
)

func ParseAspect(s string) (Aspect, bool) {
	switch Aspect(strings.TrimSpace(s)) {
	case MolecularFunction:
		return MolecularFunction, true
	case BiologicalProcess:
		return BiologicalProcess, true
	case CellularComponent:
		return CellularComponent, true
	}
	return "", false
}

type Subject struct {
	ID       Curie
	Taxon    Curie
	Label    string
	FullName string
	Synonyms []string
	// Types holds gene product type labels such as "protein_coding_gene".
	Types []string
}

type Object struct {
	ID     Curie
	Aspect Aspect
	Taxon  Curie
}

type Evidence struct {
	// Type is an ECO identifier.
	Type                 Curie
	SupportingReferences []Curie
	WithSupportFrom      []ConjunctiveSet
}

// ExtensionUnit is a single relation(term) annotation extension.
type ExtensionUnit struct {
	Relation string
	Term     Curie
}

// Annotation is a fully validated association record. Records handed to
// the filter and rewriter never have empty required fields.
type Annotation struct {
	Subject  Subject
	Negated  bool
	Relation string
	Object   Object
	Evidence Evidence
	// Interacting taxon from column 13, if any.
	InteractingTaxon Curie
	ProvidedBy       string
	Date             Date
	// ObjectExtensions is a disjunction of conjunctions.
	ObjectExtensions [][]ExtensionUnit
	GPIsoform        Curie
}

// HasReferenceIn reports whether any supporting reference lives in ns.
func (a *Annotation) HasReferenceIn(ns string) bool {
	for _, r := range a.Evidence.SupportingReferences {
		if r.Namespace == ns {
			return true
		}
	}
	return false
}

func (a *Annotation) HasReference(ref string) bool {
	for _, r := range a.Evidence.SupportingReferences {
		if r.String() == ref {
			return true
		}
	}
	return false
}

// Date is a GAF YYYYMMDD date kept as text. Dates that do not parse
// order as 0.
type Date string

// Int returns the numeric value of the date, or 0 when it is not a
// non-negative integer.
func (d Date) Int() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(d)), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// GeneDescriptor is the target organism's metadata for one gene.
type GeneDescriptor struct {
	ID       Curie
	Label    string
	FullName string
	Types    []string
	Taxon    Curie
}
