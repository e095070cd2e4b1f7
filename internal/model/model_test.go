package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurie(t *testing.T) {
	c, err := ParseCurie("MGI:MGI:1915609")
	require.NoError(t, err)
	assert.Equal(t, "MGI", c.Namespace)
	assert.Equal(t, "MGI:1915609", c.ID)
	assert.Equal(t, "MGI:MGI:1915609", c.String())

	for _, bad := range []string{"", "P12345", ":1", "HGNC:"} {
		_, err := ParseCurie(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateInt(t *testing.T) {
	assert.Equal(t, int64(20220101), Date("20220101").Int())
	assert.Equal(t, int64(0), Date("-5").Int())
	assert.Equal(t, int64(0), Date("2022-01-01").Int())
	assert.Equal(t, int64(0), Date("").Int())
}

func TestConjunctiveSetString(t *testing.T) {
	s := ConjunctiveSet{MustCurie("UniProtKB:P1"), MustCurie("UniProtKB:P2")}
	assert.Equal(t, "UniProtKB:P1,UniProtKB:P2", s.String())
}

func TestHasReference(t *testing.T) {
	a := Annotation{Evidence: Evidence{SupportingReferences: []Curie{
		MustCurie("GO_REF:0000033"), MustCurie("PMID:1"),
	}}}
	assert.True(t, a.HasReferenceIn("PMID"))
	assert.True(t, a.HasReference("GO_REF:0000033"))
	assert.False(t, a.HasReference("GO_REF:0000096"))
}
