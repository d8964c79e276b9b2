package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdsKeyDistinguishesSetsWithSameBounds(t *testing.T) {
	// Same min, max and count must not share a key: a collision would serve
	// one player's participation set to another.
	a := idsKey([]int{1, 5, 9})
	b := idsKey([]int{1, 7, 9})

	assert.NotEqual(t, a, b)
}

func TestIdsKeyIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, idsKey([]int{3, 1, 2}), idsKey([]int{1, 2, 3}))
}

func TestIdsKeyEmpty(t *testing.T) {
	assert.Equal(t, "", idsKey(nil))
}

func TestIdsKeyDoesNotMutateInput(t *testing.T) {
	ids := []int{9, 1, 5}
	_ = idsKey(ids)

	assert.Equal(t, []int{9, 1, 5}, ids)
}

func TestSeasonsKey(t *testing.T) {
	assert.Equal(t, "2024,2023", seasonsKey([]int{2024, 2023}))
	assert.Equal(t, "", seasonsKey(nil))
}
