package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/gaf"
	"github.com/geneontology/gopreprocess/internal/model"
)

type Stats struct {
	Input      int
	Duplicates int
	Collapsed  int
	Output     int
}

// Aggregator collects rendered rows and reduces them to one row per
// distinct non-date key, keeping the earliest date.
type Aggregator struct {
	rows  []gaf.Row
	seen  map[gaf.Row]struct{}
	stats Stats
}

func New() *Aggregator {
	return &Aggregator{seen: make(map[gaf.Row]struct{})}
}

// Add renders a and keeps the row unless it is an exact duplicate.
func (g *Aggregator) Add(a *model.Annotation) {
	g.AddRow(gaf.Render(a))
}

func (g *Aggregator) AddRow(r gaf.Row) {
	g.stats.Input++
	if _, dup := g.seen[r]; dup {
		g.stats.Duplicates++
		return
	}
	g.seen[r] = struct{}{}
	g.rows = append(g.rows, r)
}

func (g *Aggregator) Len() int { return len(g.rows) }

// Result returns the reduced rows sorted by their non-date columns. It
// fails with an EmptyResult error when nothing was added.
func (g *Aggregator) Result() ([]gaf.Row, error) {
	if len(g.rows) == 0 {
		return nil, apperr.Empty("aggregate")
	}

	minDate := make(map[gaf.Row]int64, len(g.rows))
	for _, r := range g.rows {
		k := key(r)
		d := model.Date(r[gaf.DateColumn]).Int()
		if cur, ok := minDate[k]; !ok || d < cur {
			minDate[k] = d
		}
	}

	out := make([]gaf.Row, 0, len(minDate))
	for k, d := range minDate {
		k[gaf.DateColumn] = strconv.FormatInt(d, 10)
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	g.stats.Collapsed = len(g.rows) - len(out)
	g.stats.Output = len(out)
	return out, nil
}

func (g *Aggregator) Stats() Stats { return g.stats }

// key blanks the date column.
func key(r gaf.Row) gaf.Row {
	r[gaf.DateColumn] = ""
	return r
}

func less(a, b gaf.Row) bool {
	for i := range a {
		if i == gaf.DateColumn {
			continue
		}
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return a[gaf.DateColumn] < b[gaf.DateColumn]
}
