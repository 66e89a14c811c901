// Package spatial provides a nearest-neighbour index over 3-D vertex arrays.
//
// The index is a gonum k-d tree whose points remember their position in the
// source array, so every query answers with vertex indices rather than
// coordinates.
package spatial

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbor is a query result: a vertex index and its Euclidean distance from
// the query point.
type Neighbor struct {
	Index    int
	Distance float64
}

// KDTree answers nearest-neighbour and radius queries over a fixed vertex set.
// It is immutable after construction and safe for concurrent queries.
type KDTree struct {
	tree *kdtree.Tree
	n    int
}

// NewKDTree builds an index over vertices. The slice is copied.
func NewKDTree(vertices []r3.Vec) *KDTree {
	pts := make(points, len(vertices))
	for i, v := range vertices {
		pts[i] = point{Vec: v, index: i}
	}
	if len(pts) == 0 {
		return &KDTree{}
	}
	return &KDTree{tree: kdtree.New(pts, false), n: len(pts)}
}

// Len returns the number of indexed vertices.
func (t *KDTree) Len() int { return t.n }

// Nearest returns the vertex closest to q. ok is false for an empty index.
func (t *KDTree) Nearest(q r3.Vec) (Neighbor, bool) {
	if t.tree == nil {
		return Neighbor{}, false
	}
	c, d := t.tree.Nearest(point{Vec: q, index: -1})
	if c == nil {
		return Neighbor{}, false
	}
	return Neighbor{Index: c.(point).index, Distance: math.Sqrt(d)}, true
}

// KNearest returns up to k vertices closest to q, nearest first. Equal
// distances are ordered by vertex index.
func (t *KDTree) KNearest(q r3.Vec, k int) []Neighbor {
	if t.tree == nil || k <= 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, point{Vec: q, index: -1})
	return collect(keep.Heap)
}

// Within returns every vertex whose distance from q is at most r, nearest
// first.
func (t *KDTree) Within(q r3.Vec, r float64) []Neighbor {
	if t.tree == nil || r < 0 {
		return nil
	}
	keep := kdtree.NewDistKeeper(r * r)
	t.tree.NearestSet(keep, point{Vec: q, index: -1})
	return collect(keep.Heap)
}

func collect(h kdtree.Heap) []Neighbor {
	out := make([]Neighbor, 0, len(h))
	for _, cd := range h {
		if cd.Comparable == nil {
			continue
		}
		out = append(out, Neighbor{Index: cd.Comparable.(point).index, Distance: math.Sqrt(cd.Dist)})
	}
	slices.SortFunc(out, func(a, b Neighbor) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return a.Index - b.Index
	})
	return out
}

// point is an r3.Vec tagged with its vertex index. Distance is squared
// Euclidean, as kdtree expects.
type point struct {
	r3.Vec
	index int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	}
	panic("spatial: illegal dimension")
}

func (p point) Dims() int { return 3 }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	d := r3.Sub(p.Vec, q.Vec)
	return r3.Dot(d, d)
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median selection.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.Dim) < 0
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
