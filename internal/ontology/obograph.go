package ontology

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
)

const oboPrefix = "http://purl.obolibrary.org/obo/"

// BiologicalProcess is the root of the process branch.
const BiologicalProcess = "GO:0008150"

type document struct {
	Graphs []graph `json:"graphs"`
}

type graph struct {
	ID    string `json:"id"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string `json:"id"`
	Label string `json:"lbl"`
	Type  string `json:"type"`
}

type edge struct {
	Sub  string `json:"sub"`
	Pred string `json:"pred"`
	Obj  string `json:"obj"`
}

// Predicates followed when computing the closure.
var closurePredicates = map[string]bool{
	"is_a":                   true,
	"part_of":                true,
	oboPrefix + "BFO_0000050": true,
}

// Load reads an obographs JSON document and returns the closure below
// BiologicalProcess.
func Load(r io.Reader, source string) (*Closure, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperr.New(apperr.Parse, "ontology "+source, err)
	}
	if len(doc.Graphs) == 0 {
		return nil, apperr.Parsef("ontology", "%s: no graphs", source)
	}

	c := NewClosure()
	for _, g := range doc.Graphs {
		for _, n := range g.Nodes {
			if n.Type == "" || n.Type == "CLASS" {
				c.AddTerm(toCurie(n.ID))
			}
		}
		for _, e := range g.Edges {
			if !closurePredicates[e.Pred] {
				continue
			}
			c.AddEdge(toCurie(e.Sub), toCurie(e.Obj))
		}
	}
	c.Compute(BiologicalProcess)
	return c, nil
}

// toCurie turns "http://purl.obolibrary.org/obo/GO_0008150" into
// "GO:0008150". Other values are returned unchanged.
func toCurie(iri string) string {
	local, ok := strings.CutPrefix(iri, oboPrefix)
	if !ok {
		return iri
	}
	if i := strings.IndexByte(local, '_'); i > 0 {
		return local[:i] + ":" + local[i+1:]
	}
	return local
}
