package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func grid() []r3.Vec {
	var vs []r3.Vec
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			vs = append(vs, r3.Vec{X: float64(x), Y: float64(y), Z: 0})
		}
	}
	return vs
}

func TestNearest(t *testing.T) {
	vs := grid()
	tree := NewKDTree(vs)
	require.Equal(t, 16, tree.Len())

	nb, ok := tree.Nearest(r3.Vec{X: 2.1, Y: 0.9, Z: 0.1})
	require.True(t, ok)
	assert.Equal(t, r3.Vec{X: 2, Y: 1}, vs[nb.Index])
	assert.InDelta(t, 0.1732, nb.Distance, 1e-3)
}

func TestNearest_Empty(t *testing.T) {
	tree := NewKDTree(nil)
	_, ok := tree.Nearest(r3.Vec{})
	assert.False(t, ok)
	assert.Nil(t, tree.KNearest(r3.Vec{}, 3))
	assert.Nil(t, tree.Within(r3.Vec{}, 1))
}

func TestKNearest(t *testing.T) {
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 10}}
	tree := NewKDTree(vs)

	got := tree.KNearest(r3.Vec{X: 0.2}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.InDelta(t, 0.8, got[1].Distance, 1e-12)
}

func TestWithin(t *testing.T) {
	vs := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 10}}
	tree := NewKDTree(vs)

	got := tree.Within(r3.Vec{X: 1}, 1.0)
	idx := make([]int, len(got))
	for i, nb := range got {
		idx[i] = nb.Index
	}
	assert.Equal(t, []int{1, 0, 2}, idx)
}
