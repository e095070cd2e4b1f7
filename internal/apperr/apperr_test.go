package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := Parsef("gaf", "line %d: expected 17 columns", 4)
	wrapped := fmt.Errorf("read source: %w", base)

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, Parse, kind)
	assert.True(t, Is(wrapped, Parse))
	assert.False(t, Is(wrapped, Lookup))
	assert.Contains(t, wrapped.Error(), "line 4")
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"parse", Parsef("x", "bad"), false},
		{"lookup", Lookupf("x", "missing"), false},
		{"retrieval", Retrievalf("x", "gone"), true},
		{"invariant", Invariantf("x", "broken"), true},
		{"empty", Empty("aggregate"), true},
		{"foreign", errors.New("boom"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFatal(tc.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	root := errors.New("connection refused")
	err := New(Retrieval, "download MGI_GPI", root)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, "retrieval: download MGI_GPI: connection refused", err.Error())
}
