package orthology

// Map is the source-gene → target-gene orthology index together with its
// inverse. Target lists keep discovery order.
type Map struct {
	forward map[string][]string
	inverse map[string][]string
	edges   int
}

func NewMap() *Map {
	return &Map{
		forward: make(map[string][]string),
		inverse: make(map[string][]string),
	}
}

// Link records source → target. Repeated links are ignored.
func (m *Map) Link(source, target string) {
	for _, t := range m.forward[source] {
		if t == target {
			return
		}
	}
	m.forward[source] = append(m.forward[source], target)
	m.inverse[target] = append(m.inverse[target], source)
	m.edges++
}

// Targets returns the target genes orthologous to source.
func (m *Map) Targets(source string) []string {
	return m.forward[source]
}

// Sources returns the source genes orthologous to target.
func (m *Map) Sources(target string) []string {
	return m.inverse[target]
}

// Ambiguous reports whether target has more than one source ortholog.
func (m *Map) Ambiguous(target string) bool {
	return len(m.inverse[target]) > 1
}

func (m *Map) SourceCount() int { return len(m.forward) }
func (m *Map) TargetCount() int { return len(m.inverse) }
func (m *Map) EdgeCount() int   { return m.edges }

// AmbiguousTargets counts targets with more than one source ortholog.
func (m *Map) AmbiguousTargets() int {
	n := 0
	for _, srcs := range m.inverse {
		if len(srcs) > 1 {
			n++
		}
	}
	return n
}
