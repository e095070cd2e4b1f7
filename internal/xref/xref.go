package xref

import "sort"

// Pair records that identifier A (gene authority) and identifier B
// (protein authority) name the same entity.
type Pair struct {
	A string
	B string
}

// Map is a pair of 1:1 lookups. An identifier that was seen against two
// different partners is ambiguous and kept out of the direction in which
// it would be a key.
type Map struct {
	aToB map[string]string
	bToA map[string]string

	// AmbiguousA lists A ids dropped from the A→B direction.
	AmbiguousA []string
	// AmbiguousB lists B ids dropped from the B→A direction.
	AmbiguousB []string
}

// Builder accumulates pairs; Build freezes them into a Map.
type Builder struct {
	aPartners map[string]map[string]struct{}
	bPartners map[string]map[string]struct{}
	pairs     int
}

func NewBuilder() *Builder {
	return &Builder{
		aPartners: make(map[string]map[string]struct{}),
		bPartners: make(map[string]map[string]struct{}),
	}
}

func (b *Builder) Add(a, bid string) {
	if a == "" || bid == "" {
		return
	}
	addPartner(b.aPartners, a, bid)
	addPartner(b.bPartners, bid, a)
	b.pairs++
}

func addPartner(idx map[string]map[string]struct{}, key, partner string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{}, 1)
		idx[key] = set
	}
	set[partner] = struct{}{}
}

// Build computes the retained keys first, then both lookups.
func (b *Builder) Build() *Map {
	m := &Map{
		aToB: make(map[string]string, len(b.aPartners)),
		bToA: make(map[string]string, len(b.bPartners)),
	}
	m.AmbiguousA = resolve(b.aPartners, m.aToB)
	m.AmbiguousB = resolve(b.bPartners, m.bToA)
	return m
}

func resolve(idx map[string]map[string]struct{}, out map[string]string) []string {
	var ambiguous []string
	for key, partners := range idx {
		if len(partners) != 1 {
			ambiguous = append(ambiguous, key)
			continue
		}
		for p := range partners {
			out[key] = p
		}
	}
	sort.Strings(ambiguous)
	return ambiguous
}

// FromPairs is a shortcut for building a Map from a slice.
func FromPairs(pairs []Pair) *Map {
	b := NewBuilder()
	for _, p := range pairs {
		b.Add(p.A, p.B)
	}
	return b.Build()
}

// ToB translates a gene-authority id to its protein-authority id.
func (m *Map) ToB(a string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.aToB[a]
	return v, ok
}

// ToA translates a protein-authority id to its gene-authority id.
func (m *Map) ToA(b string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.bToA[b]
	return v, ok
}

func (m *Map) LenA() int { return len(m.aToB) }
func (m *Map) LenB() int { return len(m.bToA) }
