package skeleton

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func line(n int) []r3.Vec {
	vs := make([]r3.Vec, n)
	for i := range vs {
		vs[i] = r3.Vec{X: float64(i)}
	}
	return vs
}

func chain(t *testing.T) *Skeleton {
	t.Helper()
	s, err := New(line(4), [][2]int{{0, 1}, {1, 2}, {2, 3}}, WithRoot(0))
	require.NoError(t, err)
	return s
}

func star(t *testing.T) *Skeleton {
	t.Helper()
	vs := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	s, err := New(vs, [][2]int{{0, 1}, {0, 2}, {0, 3}}, WithRoot(0))
	require.NoError(t, err)
	return s
}

// randomTree builds a tree with n vertices whose edges are listed in random
// order and random orientation.
func randomTree(t *testing.T, n int, seed uint64) *Skeleton {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed+1))
	vs := make([]r3.Vec, n)
	for i := range vs {
		vs[i] = r3.Vec{X: r.Float64() * 100, Y: r.Float64() * 100, Z: r.Float64() * 100}
	}
	edges := make([][2]int, 0, n-1)
	for i := 1; i < n; i++ {
		p := r.IntN(i)
		if r.IntN(2) == 0 {
			edges = append(edges, [2]int{i, p})
		} else {
			edges = append(edges, [2]int{p, i})
		}
	}
	r.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	s, err := New(vs, edges, WithRoot(r.IntN(n)))
	require.NoError(t, err)
	return s
}

func TestChain(t *testing.T) {
	s := chain(t)

	assert.Equal(t, [][2]int{{1, 0}, {2, 1}, {3, 2}}, s.Edges())
	assert.Equal(t, []int{3}, s.EndPoints())
	assert.Empty(t, s.BranchPoints())
	assert.Equal(t, []int{3, 2, 1, 0}, s.PathToRoot(3))
	assert.Equal(t, [][]int{{3, 2, 1, 0}}, s.Paths())
	assert.Equal(t, [][]int{{3, 2, 1}, {0}}, s.Segments())
	assert.Equal(t, []int{1, 0, 0, 0}, s.SegmentMap())
	assert.Equal(t, []int{-1, 0, 1, 2}, s.ParentArray())
	require.NoError(t, s.Validate())
}

func TestStar(t *testing.T) {
	s := star(t)

	assert.Equal(t, []int{0}, s.BranchPoints())
	assert.Equal(t, []int{1, 2, 3}, s.EndPoints())
	assert.Equal(t, [][]int{{1}, {2}, {3}, {0}}, s.Segments())
	assert.Equal(t, []int{1, 2, 3}, s.Children(0))
	assert.True(t, s.IsBranchPoint(0))
	assert.True(t, s.IsEndPoint(2))
	assert.False(t, s.IsEndPoint(0))
}

func TestStar_RerootAtLeaf(t *testing.T) {
	s := star(t)
	require.NoError(t, s.Reroot(1))

	assert.Equal(t, 1, s.Root())
	assert.Equal(t, []int{0}, s.Children(1))
	assert.Equal(t, []int{0}, s.BranchPoints(), "the old center keeps two children")
	assert.Equal(t, []int{2, 3}, s.EndPoints())
	require.NoError(t, s.Validate())
}

func TestDefaultRoot(t *testing.T) {
	s, err := New(line(4), [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Root())
	assert.Equal(t, []int{0}, s.EndPoints())
}

func TestDefaultRoot_SingleVertex(t *testing.T) {
	s, err := New([]r3.Vec{{X: 5}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Root())
	assert.Equal(t, []int{0}, s.EndPoints())
	assert.Equal(t, [][]int{{0}}, s.Paths())
	assert.Equal(t, [][]int{{0}}, s.Segments())
	assert.Zero(t, s.PathLength())
	require.NoError(t, s.Validate())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoVertices)

	_, err = New(line(2), [][2]int{{0, 2}})
	assert.ErrorIs(t, err, ErrVertexOutOfRange)

	_, err = New(line(2), [][2]int{{0, 1}}, WithRoot(5))
	assert.ErrorIs(t, err, ErrVertexOutOfRange)

	_, err = New(line(2), [][2]int{{0, 1}}, WithVertexProperties(Properties{"r": {1}}))
	assert.ErrorIs(t, err, ErrPropertyLength)

	_, err = New(line(2), [][2]int{{0, 1}}, WithEdgeProperties(Properties{"w": {1, 2}}))
	assert.ErrorIs(t, err, ErrPropertyLength)
}

func TestProperties_SurviveReroot(t *testing.T) {
	s, err := New(line(3), [][2]int{{0, 1}, {1, 2}},
		WithRoot(0),
		WithVertexProperties(Properties{"radius": {1, 2, 3}}),
		WithEdgeProperties(Properties{"weight": {10, 20}}),
		WithMeshMap([]int{0, 0, 1, 2}))
	require.NoError(t, err)
	require.NoError(t, s.Reroot(2))

	r, ok := s.VertexProperty("radius")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, r)
	assert.Equal(t, []float64{10, 20}, s.EdgeProperties()["weight"])
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, s.Edges(), "edge order is kept, only orientation changes")
	assert.Equal(t, []int{0, 0, 1, 2}, s.MeshMap())
	assert.Equal(t, []string{"radius"}, s.PropertyNames())
}

func TestTieBreak_LowerIDIsParent(t *testing.T) {
	// Triangle rooted at 0: vertices 1 and 2 are both one hop away, so the
	// edge between them is a tie.
	vs := []r3.Vec{{}, {X: 1}, {Y: 1}}
	s, err := New(vs, [][2]int{{2, 1}, {0, 1}, {0, 2}}, WithRoot(0))
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{2, 1}, {1, 0}, {2, 0}}, s.Edges())
	p, ok := s.Parent(2)
	require.True(t, ok)
	assert.Equal(t, 0, p, "the closer candidate parent wins")
	assert.Equal(t, []int{0}, s.BranchPoints())
	assert.ErrorIs(t, s.Validate(), ErrNotTree)
}

func TestDuplicateEdges(t *testing.T) {
	s, err := New(line(3), [][2]int{{0, 1}, {1, 0}, {1, 2}}, WithRoot(0))
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 0}, {1, 0}, {2, 1}}, s.Edges())
	assert.Equal(t, []int{2}, s.EndPoints())
	assert.Empty(t, s.BranchPoints())
}

func TestUnreachable(t *testing.T) {
	s, err := New(line(4), [][2]int{{0, 1}, {2, 3}}, WithRoot(0))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, s.EndPoints())
	assert.Equal(t, [][]int{{1, 0}}, s.Paths())
	assert.Equal(t, []int{3}, s.Unreachable())
	assert.Equal(t, [][]int{{1}, {3, 2}, {0}}, s.Segments())

	_, ok := s.Parent(2)
	assert.False(t, ok)
	assert.True(t, math.IsInf(s.DistanceToRoot()[3], 1))
	assert.ErrorIs(t, s.Validate(), ErrNotTree)
}

func TestGeometry(t *testing.T) {
	s := chain(t)

	assert.InDelta(t, 3.0, s.PathLength(), 1e-12)
	assert.InDelta(t, 2.0, s.PathLength([]int{3, 2, 1}), 1e-12)
	assert.InDelta(t, 3.0, s.CableLength(), 1e-12)
	assert.Equal(t, []float64{3, 0}, s.SegmentLengths())
	assert.Equal(t, []float64{0, 1, 2, 3}, s.DistanceToRoot())
}

func TestReroot_InvalidatesCaches(t *testing.T) {
	s := chain(t)
	require.Equal(t, []int{3}, s.EndPoints())
	require.Len(t, s.Segments(), 2)
	g := s.Graph(false, true)
	require.True(t, g.HasEdge(1, 0))

	require.NoError(t, s.Reroot(3))

	assert.Equal(t, []int{0}, s.EndPoints())
	assert.Equal(t, [][]int{{0, 1, 2}, {3}}, s.Segments())
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, s.Paths())
	g = s.Graph(false, true)
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 0))
}

func TestReroot_OutOfRange(t *testing.T) {
	s := chain(t)
	assert.ErrorIs(t, s.Reroot(-1), ErrVertexOutOfRange)
	assert.ErrorIs(t, s.Reroot(4), ErrVertexOutOfRange)
	assert.Equal(t, 0, s.Root(), "a failed reroot leaves the skeleton unchanged")
}

func TestReroot_Idempotent(t *testing.T) {
	s := randomTree(t, 60, 7)
	root := s.Root()

	edges, parents := s.Edges(), s.ParentArray()
	bps, eps, segs := s.BranchPoints(), s.EndPoints(), s.Segments()

	require.NoError(t, s.Reroot(root))
	assert.Equal(t, edges, s.Edges())
	assert.Equal(t, parents, s.ParentArray())
	assert.Equal(t, bps, s.BranchPoints())
	assert.Equal(t, eps, s.EndPoints())
	assert.Equal(t, segs, s.Segments())
}

func TestTreeInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		s := randomTree(t, 5+int(seed)*7, seed)
		n := s.Len()

		require.NoError(t, s.Validate())
		assert.Len(t, s.Edges(), n-1)

		// Exactly one parentless vertex, the root.
		var roots []int
		for v := range n {
			if _, ok := s.Parent(v); !ok {
				roots = append(roots, v)
			}
		}
		assert.Equal(t, []int{s.Root()}, roots)

		// Parents are strictly closer to the root.
		d := s.DistanceToRoot()
		for v := range n {
			if p, ok := s.Parent(v); ok {
				assert.Less(t, d[p], d[v])
			}
		}

		// Every edge points from child to parent.
		for _, e := range s.Edges() {
			p, ok := s.Parent(e[0])
			require.True(t, ok)
			assert.Equal(t, e[1], p)
		}

		// Branch and end points match child counts.
		for v := range n {
			c := len(s.Children(v))
			assert.Equal(t, c > 1, slices.Contains(s.BranchPoints(), v))
			assert.Equal(t, c == 0, slices.Contains(s.EndPoints(), v))
		}

		// Segments partition the vertex set and agree with SegmentMap.
		seen := make([]int, n)
		for id, seg := range s.Segments() {
			for _, v := range seg {
				seen[v]++
				assert.Equal(t, id, s.SegmentMap()[v])
			}
		}
		for v := range n {
			assert.Equal(t, 1, seen[v], "vertex %d", v)
		}

		// Paths cover every vertex; only the final anchor of a path may
		// repeat a vertex from elsewhere.
		covered := make([]int, n)
		for _, p := range s.Paths() {
			for _, v := range p[:len(p)-1] {
				covered[v]++
			}
		}
		covered[s.Root()]++
		for v := range n {
			assert.Equal(t, 1, covered[v], "vertex %d", v)
		}
		assert.Empty(t, s.Unreachable())

		// Segment lengths add up to the cable length.
		var sum float64
		for _, l := range s.SegmentLengths() {
			sum += l
		}
		assert.InDelta(t, s.CableLength(), sum, 1e-9)
		assert.InDelta(t, s.CableLength(), s.PathLength(), 1e-9)
	}
}

func TestPathsOrderedByDistance(t *testing.T) {
	// Root 0 with a short branch (0-1) and a long branch (0-2-3-4).
	vs := []r3.Vec{{}, {X: -1}, {X: 1}, {X: 2}, {X: 3}}
	s, err := New(vs, [][2]int{{0, 1}, {0, 2}, {2, 3}, {3, 4}}, WithRoot(0))
	require.NoError(t, err)

	assert.Equal(t, [][]int{{4, 3, 2, 0}, {1, 0}}, s.Paths())
}

func TestKDTree(t *testing.T) {
	s := chain(t)
	nb, ok := s.KDTree().Nearest(r3.Vec{X: 2.2})
	require.True(t, ok)
	assert.Equal(t, 2, nb.Index)
}

func TestPathToRoot_OutOfRange(t *testing.T) {
	s := chain(t)
	assert.Nil(t, s.PathToRoot(10))
	assert.Nil(t, s.Children(-1))
	_, ok := s.Parent(10)
	assert.False(t, ok)
}
