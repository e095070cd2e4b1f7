package xref

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
)

// Layout describes which columns of a tab-separated cross-reference
// table carry the identifiers. Column indexes are zero based.
type Layout struct {
	HeaderPrefix string
	FilterColumn int
	FilterPrefix string
	AColumn      int
	BColumn      int
	// BNamespace is prepended to bare B ids.
	BNamespace string
}

// HumanMouseLayout reads the MGI HOM_MouseHumanSequence report: human rows
// map HGNC ids to SWISS-PROT accessions.
func HumanMouseLayout() Layout {
	return Layout{
		HeaderPrefix: "DB",
		FilterColumn: 1,
		FilterPrefix: "human",
		AColumn:      6,
		BColumn:      12,
		BNamespace:   "UniProtKB",
	}
}

type TableStats struct {
	Rows      int
	Matched   int
	Malformed int
}

// ReadTable builds a Map from a cross-reference table. Short rows are
// reported through onParseError and skipped.
func ReadTable(r io.Reader, source string, layout Layout, onParseError func(line int, err error)) (*Map, TableStats, error) {
	var stats TableStats
	b := NewBuilder()
	need := max(layout.AColumn, layout.BColumn, layout.FilterColumn) + 1

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if layout.HeaderPrefix != "" && strings.HasPrefix(text, layout.HeaderPrefix) {
			continue
		}
		stats.Rows++
		cols := strings.Split(text, "\t")
		if len(cols) < need {
			stats.Malformed++
			if onParseError != nil {
				onParseError(line, apperr.Parsef("xref", "%s line %d: expected at least %d columns, got %d", source, line, need, len(cols)))
			}
			continue
		}
		if layout.FilterPrefix != "" && !strings.HasPrefix(cols[layout.FilterColumn], layout.FilterPrefix) {
			continue
		}
		a := strings.TrimSpace(cols[layout.AColumn])
		if a == "" {
			continue
		}
		matched := false
		for _, raw := range strings.Split(cols[layout.BColumn], ",") {
			bid := strings.TrimSpace(raw)
			if bid == "" {
				continue
			}
			if layout.BNamespace != "" && !strings.Contains(bid, ":") {
				bid = layout.BNamespace + ":" + bid
			}
			b.Add(a, bid)
			matched = true
		}
		if matched {
			stats.Matched++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stats, apperr.New(apperr.Retrieval, "read "+source, fmt.Errorf("line %d: %w", line, err))
	}
	return b.Build(), stats, nil
}
