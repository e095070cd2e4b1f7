package model

import (
	"fmt"
	"strings"
)

// Curie is a compact identifier "namespace:local-id". The local id may
// itself contain colons (MGI genes are "MGI:MGI:1915609").
type Curie struct {
	Namespace string
	ID        string
}

// ParseCurie splits s on the first colon.
func ParseCurie(s string) (Curie, error) {
	s = strings.TrimSpace(s)
	ns, id, ok := strings.Cut(s, ":")
	if !ok || ns == "" || id == "" {
		return Curie{}, fmt.Errorf("invalid curie %q", s)
	}
	return Curie{Namespace: ns, ID: id}, nil
}

// MustCurie is ParseCurie for literals known to be valid.
func MustCurie(s string) Curie {
	c, err := ParseCurie(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Curie) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Namespace + ":" + c.ID
}

func (c Curie) IsZero() bool {
	return c.Namespace == "" && c.ID == ""
}

// ConjunctiveSet is one with/from group; its elements are ANDed.
type ConjunctiveSet []Curie

func (s ConjunctiveSet) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}
