package gpi

import (
	"io"
	"strings"

	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/xref"
)

// Directory holds the target organism's gene descriptors plus the raw
// material for its protein cross-references. It is read-only once loaded.
type Directory struct {
	descriptors map[string]model.GeneDescriptor
	entries     []Entry
	Stats       Stats
}

// Load reads a whole GPI file into a Directory.
func Load(r io.Reader, source string, onParseError func(line int, err error)) (*Directory, error) {
	d := &Directory{descriptors: make(map[string]model.GeneDescriptor)}
	stats, err := Scan(r, source, func(e Entry) {
		d.entries = append(d.entries, e)
		d.descriptors[e.ID.String()] = model.GeneDescriptor{
			ID:       e.ID,
			Label:    e.Label,
			FullName: e.FullName,
			Types:    e.Types,
			Taxon:    e.Taxon,
		}
	}, onParseError)
	d.Stats = stats
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewDirectory builds a Directory from descriptors alone.
func NewDirectory(descriptors ...model.GeneDescriptor) *Directory {
	d := &Directory{descriptors: make(map[string]model.GeneDescriptor, len(descriptors))}
	for _, g := range descriptors {
		d.descriptors[g.ID.String()] = g
	}
	return d
}

func (d *Directory) Descriptor(id string) (model.GeneDescriptor, bool) {
	g, ok := d.descriptors[id]
	return g, ok
}

func (d *Directory) Len() int { return len(d.descriptors) }

// Canonical finds the descriptor key for an id that may or may not carry
// the authority prefix ("MGI:1915609" and "MGI:MGI:1915609" both resolve
// for authority "MGI").
func (d *Directory) Canonical(authority, id string) (string, bool) {
	if authority != "" {
		if key := authority + ":" + id; d.has(key) {
			return key, true
		}
	}
	if d.has(id) {
		return id, true
	}
	if authority != "" {
		if bare, ok := strings.CutPrefix(id, authority+":"); ok && d.has(bare) {
			return bare, true
		}
	}
	return "", false
}

func (d *Directory) has(key string) bool {
	_, ok := d.descriptors[key]
	return ok
}

// GeneProteinXrefs maps genes of geneNS to their proteinNS cross-references.
func (d *Directory) GeneProteinXrefs(geneNS, proteinNS string) *xref.Map {
	b := xref.NewBuilder()
	for _, e := range d.entries {
		if e.ID.Namespace != geneNS {
			continue
		}
		for _, x := range e.Xrefs {
			if x.Namespace == proteinNS {
				b.Add(e.ID.String(), x.String())
			}
		}
	}
	return b.Build()
}

// IsoformXrefs maps isoform entries (namespace isoformNS, e.g. PR) to their
// proteinNS accession, and returns each isoform's encoding gene in geneNS.
func (d *Directory) IsoformXrefs(isoformNS, proteinNS, geneNS string) (*xref.Map, map[string]string) {
	b := xref.NewBuilder()
	parents := make(map[string]string)
	for _, e := range d.entries {
		if e.ID.Namespace != isoformNS {
			continue
		}
		for _, x := range e.Xrefs {
			if x.Namespace == proteinNS {
				b.Add(e.ID.String(), x.String())
			}
		}
		for _, g := range e.EncodedBy {
			if g.Namespace == geneNS {
				parents[e.ID.String()] = g.String()
			}
		}
	}
	return b.Build(), parents
}
