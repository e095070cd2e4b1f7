package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestECORoundTrip(t *testing.T) {
	eco, ok := ECOFor("IDA")
	assert.True(t, ok)
	assert.Equal(t, "ECO:0000314", eco)

	code, ok := CodeFor(ISO)
	assert.True(t, ok)
	assert.Equal(t, "ISO", code)

	_, ok = ECOFor("XYZ")
	assert.False(t, ok)
}

func TestECOSet_Experimental(t *testing.T) {
	set, unknown := ECOSet([]string{"EXP", "IDA", "IPI", "IMP", "IGI", "BOGUS"})
	assert.Len(t, set, 5)
	assert.Contains(t, set, "ECO:0000269")
	assert.Contains(t, set, "ECO:0000316")
	assert.Equal(t, []string{"BOGUS"}, unknown)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "protein_coding_gene", TypeLabel("SO:0001217"))
	assert.Equal(t, "protein_coding_gene", TypeLabel("protein_coding_gene"))
	assert.Equal(t, "SO:9999999", TypeLabel("SO:9999999"))
}
