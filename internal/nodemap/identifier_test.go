package nodemap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	d := Decompose("sleutelhoes-CTRL-height")

	assert.Equal(t, []string{"sleutelhoes", "CTRL"}, d.Segments)
	assert.Equal(t, "/sleutelhoes/CTRL", d.Path)
	assert.Equal(t, "height", d.LeafParam)
	assert.Equal(t, "Height", d.DisplayNameGuess)
	assert.False(t, d.Degenerate)
}

func TestDecompose_SingleSegment(t *testing.T) {
	d := Decompose("engraving")

	assert.Equal(t, "/engraving", d.Path)
	assert.Equal(t, DegenerateLeaf, d.LeafParam)
	assert.True(t, d.Degenerate)
	assert.Equal(t, "engraving", d.Identifier())
}

func TestDecompose_TrailingSeparator(t *testing.T) {
	d := Decompose("doos-CTRL-")

	assert.Equal(t, "/doos/CTRL", d.Path)
	assert.Equal(t, DegenerateLeaf, d.LeafParam)
	assert.Equal(t, "doos-CTRL-", d.Identifier())
}

func TestDecompose_Lossless(t *testing.T) {
	identifiers := []string{
		"sleutelhoes-CTRL-height",
		"geo1-MAT-meshStandard1-colorr",
		"a-b",
		"doos--lid-width",
		"x-y-z-w-v-u",
	}
	for _, id := range identifiers {
		t.Run(id, func(t *testing.T) {
			d := Decompose(id)
			require.NotEmpty(t, d.LeafParam)
			require.NotEmpty(t, d.Path)

			segments := strings.Split(strings.TrimPrefix(d.Path, "/"), "/")
			rejoined := strings.Join(append(segments, d.LeafParam), SegmentSeparator)
			assert.Equal(t, id, rejoined)
			assert.Equal(t, id, d.Identifier())
		})
	}
}

func TestKeyVariants(t *testing.T) {
	keys := KeyVariants("Doos-lid_Height")

	assert.Equal(t, [4]string{
		"Doos-lid_Height",
		"doos-lid_height",
		"Doos_lid_Height",
		"Doos-lid-Height",
	}, keys)
}

func TestKeyVariants_EmptyIdentifier(t *testing.T) {
	assert.Equal(t, [4]string{"", "", "", ""}, KeyVariants(""))
}
