package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// twoChains returns a 2-vertex chain (0-4) followed by a 3-vertex chain
// (1-2-3) and an isolated vertex 5, interleaved in the input order.
func twoChains() ([]r3.Vec, [][2]int) {
	vs := []r3.Vec{
		{X: 0}, {X: 10}, {X: 11}, {X: 12}, {X: 1}, {X: 50},
	}
	edges := [][2]int{{0, 4}, {1, 2}, {2, 3}}
	return vs, edges
}

func TestSplitOrdersBySize(t *testing.T) {
	vs, edges := twoChains()
	comps, err := Split(vs, edges, SplitOptions{})
	require.NoError(t, err)
	require.Len(t, comps, 3)

	assert.Equal(t, []int{1, 2, 3}, comps[0].VertexFilter)
	assert.Equal(t, []int{0, 4}, comps[1].VertexFilter)
	assert.Equal(t, []int{5}, comps[2].VertexFilter)

	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, comps[0].Edges)
	assert.Equal(t, []int{1, 2}, comps[0].EdgeFilter)
	assert.Equal(t, [][2]int{{0, 1}}, comps[1].Edges)
	assert.Empty(t, comps[2].Edges)
}

func TestSplitRoot(t *testing.T) {
	vs, edges := twoChains()
	comps, err := Split(vs, edges, SplitOptions{Root: 3, HasRoot: true})
	require.NoError(t, err)

	assert.True(t, comps[0].HasRoot)
	assert.Equal(t, 2, comps[0].Root)
	assert.False(t, comps[1].HasRoot)
	assert.False(t, comps[2].HasRoot)
}

func TestSplitErrors(t *testing.T) {
	_, err := Split(nil, nil, SplitOptions{})
	assert.ErrorIs(t, err, ErrNoVertices)

	vs, edges := twoChains()
	_, err = Split(vs, edges, SplitOptions{VertexProperties: skeleton.Properties{"r": {1}}})
	assert.ErrorIs(t, err, skeleton.ErrPropertyLength)
}

func TestForestConcatenation(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges, WithRoot(1))
	require.NoError(t, err)

	require.Equal(t, 3, f.Len())
	assert.Equal(t, 6, f.NumVertices())
	assert.Equal(t, []int{0, 3, 5}, []int{f.Offset(0), f.Offset(1), f.Offset(2)})

	// original 1 -> 0, 2 -> 1, 3 -> 2, 0 -> 3, 4 -> 4, 5 -> 5
	assert.Equal(t, []int{3, 0, 1, 2, 4, 5}, f.VertexOrder())

	got := f.Vertices()
	for orig, internal := range f.VertexOrder() {
		assert.Equal(t, vs[orig], got[internal])
	}

	root, ok := f.Root()
	require.True(t, ok)
	assert.Equal(t, 0, root)
	rc, _ := f.RootComponent()
	assert.Equal(t, 0, rc)

	// Component 0 rooted at local 0: edges (1,0), (2,1).
	// Component 1 defaults to the far end from local 0, i.e. local 1.
	assert.Equal(t, [][2]int{{1, 0}, {2, 1}, {3, 4}}, f.Edges())
	// The isolated vertex is its own root and an end point.
	assert.Equal(t, []int{2, 3, 5}, f.EndPoints())
	assert.Empty(t, f.BranchPoints())
}

func TestForestOffsetsEveryComponent(t *testing.T) {
	// Two stars of different size; every component has branch points, so a
	// missing offset would show up as a collision.
	vs := make([]r3.Vec, 9)
	for i := range vs {
		vs[i] = r3.Vec{X: float64(i)}
	}
	edges := [][2]int{
		{0, 1}, {0, 2}, {0, 3}, {0, 4},
		{5, 6}, {5, 7}, {5, 8},
	}
	f, err := New(vs, edges, WithRoot(1))
	require.NoError(t, err)

	bp := f.BranchPoints()
	assert.Equal(t, []int{0, 5}, bp)
	for _, e := range f.Edges() {
		assert.Less(t, e[0], 9)
		assert.Less(t, e[1], 9)
	}
	assert.Len(t, f.EndPoints(), 3+2)
}

func TestLocate(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges)
	require.NoError(t, err)

	for _, tc := range []struct{ v, comp, local int }{
		{0, 0, 0}, {2, 0, 2}, {3, 1, 0}, {4, 1, 1}, {5, 2, 0},
	} {
		c, l, ok := f.Locate(tc.v)
		require.True(t, ok)
		assert.Equal(t, tc.comp, c, "vertex %d", tc.v)
		assert.Equal(t, tc.local, l, "vertex %d", tc.v)
	}
	_, _, ok := f.Locate(6)
	assert.False(t, ok)
}

func TestForestProperties(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges,
		WithVertexProperties(skeleton.Properties{"r": {0, 1, 2, 3, 4, 5}}),
		WithEdgeProperties(skeleton.Properties{"w": {10, 20, 30}}),
	)
	require.NoError(t, err)

	r, ok := f.VertexProperty("r")
	require.True(t, ok)
	// The isolated vertex 5 is skipped.
	assert.Equal(t, []float64{1, 2, 3, 0, 4}, r)

	w, ok := f.EdgeProperty("w")
	require.True(t, ok)
	assert.Equal(t, []float64{20, 30, 10}, w)

	_, ok = f.VertexProperty("missing")
	assert.False(t, ok)

	assert.Contains(t, f.VertexProperties(), "r")
	assert.Contains(t, f.EdgeProperties(), "w")
}

func TestForestGraph(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges)
	require.NoError(t, err)

	g := f.Graph(false, false)
	assert.Equal(t, 6, g.Len())
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(2, 3))

	n, ok := f.KDTree().Nearest(r3.Vec{X: 11.2})
	require.True(t, ok)
	assert.Equal(t, 1, n.Index)
}

func TestRemapVertexList(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges)
	require.NoError(t, err)

	in := []Index{At(0), Missing, At(3), At(99), At(-1)}
	assert.Equal(t, []Index{At(3), Missing, At(2), Missing, Missing}, f.RemapVertexList(in))

	f.AddVertexList("orig", Indices(1, 4), true)
	f.AddVertexList("internal", Indices(1, 4), false)

	l, ok := f.VertexList("orig")
	require.True(t, ok)
	assert.Equal(t, Indices(0, 4), l)
	l, _ = f.VertexList("internal")
	assert.Equal(t, Indices(1, 4), l)

	_, ok = f.VertexList("nope")
	assert.False(t, ok)
	assert.Len(t, f.VertexLists(), 2)
}

func TestWithVertexLists(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges, WithVertexLists(map[string][]Index{"soma": Indices(5, 2)}))
	require.NoError(t, err)

	l, ok := f.VertexList("soma")
	require.True(t, ok)
	assert.Equal(t, Indices(5, 1), l)
}

func TestRootOutsideRange(t *testing.T) {
	vs, edges := twoChains()
	f, err := New(vs, edges, WithRoot(42))
	require.NoError(t, err)
	_, ok := f.Root()
	assert.False(t, ok)
}

func TestIndexString(t *testing.T) {
	assert.Equal(t, "7", At(7).String())
	assert.Equal(t, "missing", Missing.String())
}
