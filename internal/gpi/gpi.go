package gpi

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/model"
	"github.com/geneontology/gopreprocess/internal/vocab"
)

// Entry is one gene product line of a GPI file, version independent.
type Entry struct {
	ID        model.Curie
	Label     string
	FullName  string
	Synonyms  []string
	Types     []string
	Taxon     model.Curie
	EncodedBy []model.Curie
	Parents   []model.Curie
	Xrefs     []model.Curie
}

// Version is detected from the "!gpi-version:" header.
type Version string

const (
	V12 Version = "1.2"
	V20 Version = "2.0"
)

type Stats struct {
	Version   Version
	Entries   int
	Malformed int
}

// Scan reads a GPI file and calls onEntry for every valid line. Without a
// version header the layout is inferred from the column count.
func Scan(r io.Reader, source string, onEntry func(Entry), onParseError func(line int, err error)) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if strings.HasPrefix(text, "!") {
			if v, ok := strings.CutPrefix(text, "!gpi-version:"); ok {
				stats.Version = Version(strings.TrimSpace(v))
			}
			continue
		}
		cols := strings.Split(text, "\t")
		version := stats.Version
		if version == "" {
			version = V12
			if len(cols) >= 11 {
				version = V20
			}
		}
		var (
			e   Entry
			err error
		)
		if strings.HasPrefix(string(version), "2") {
			e, err = parseV20(cols)
		} else {
			e, err = parseV12(cols)
		}
		if err != nil {
			stats.Malformed++
			if onParseError != nil {
				onParseError(line, fmt.Errorf("%s line %d: %w", source, line, err))
			}
			continue
		}
		stats.Entries++
		onEntry(e)
	}
	if err := sc.Err(); err != nil {
		return stats, apperr.New(apperr.Retrieval, "read "+source, err)
	}
	return stats, nil
}

// GPI 1.2: DB, DB_Object_ID, Symbol, Name, Synonyms, Type, Taxon,
// Parent_Object_ID, DB_Xrefs, Properties.
func parseV12(cols []string) (Entry, error) {
	if len(cols) < 7 {
		return Entry{}, apperr.Parsef("gpi", "expected 10 columns, got %d", len(cols))
	}
	cols = pad(cols, 10)
	if cols[0] == "" || cols[1] == "" {
		return Entry{}, apperr.Parsef("gpi", "missing object id")
	}
	e := Entry{
		ID:       model.Curie{Namespace: cols[0], ID: cols[1]},
		Label:    cols[2],
		FullName: cols[3],
		Synonyms: split(cols[4], "|"),
		Types:    labels(split(cols[5], "|")),
	}
	var err error
	if e.Taxon, err = taxon(cols[6]); err != nil {
		return Entry{}, err
	}
	if e.Parents, err = curies(cols[7]); err != nil {
		return Entry{}, err
	}
	// GPI 1.2 has no encoded-by column; the parent is the encoding gene.
	e.EncodedBy = e.Parents
	if e.Xrefs, err = curies(cols[8]); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// GPI 2.0: DB_Object_ID, Symbol, Name, Synonyms, Type, Taxon, Encoded_by,
// Parent_Protein, Complex_Members, DB_Xrefs, Properties.
func parseV20(cols []string) (Entry, error) {
	if len(cols) < 6 {
		return Entry{}, apperr.Parsef("gpi", "expected 11 columns, got %d", len(cols))
	}
	cols = pad(cols, 11)
	id, err := model.ParseCurie(cols[0])
	if err != nil {
		return Entry{}, apperr.New(apperr.Parse, "gpi", err)
	}
	e := Entry{
		ID:       id,
		Label:    cols[1],
		FullName: cols[2],
		Synonyms: split(cols[3], "|"),
		Types:    labels(split(cols[4], "|")),
	}
	if e.Taxon, err = taxon(cols[5]); err != nil {
		return Entry{}, err
	}
	if e.EncodedBy, err = curies(cols[6]); err != nil {
		return Entry{}, err
	}
	if e.Parents, err = curies(cols[7]); err != nil {
		return Entry{}, err
	}
	if e.Xrefs, err = curies(cols[9]); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func pad(cols []string, n int) []string {
	for len(cols) < n {
		cols = append(cols, "")
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func split(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func labels(types []string) []string {
	for i, t := range types {
		types[i] = vocab.TypeLabel(t)
	}
	return types
}

func taxon(s string) (model.Curie, error) {
	if s == "" {
		return model.Curie{}, nil
	}
	first := split(s, "|")
	c, err := model.ParseCurie(first[0])
	if err != nil {
		return model.Curie{}, apperr.New(apperr.Parse, "gpi", err)
	}
	if strings.EqualFold(c.Namespace, "taxon") {
		c.Namespace = "NCBITaxon"
	}
	return c, nil
}

func curies(s string) ([]model.Curie, error) {
	var out []model.Curie
	for _, p := range split(strings.ReplaceAll(s, ",", "|"), "|") {
		c, err := model.ParseCurie(p)
		if err != nil {
			return nil, apperr.New(apperr.Parse, "gpi", err)
		}
		out = append(out, c)
	}
	return out, nil
}
