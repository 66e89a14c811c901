package csgraph

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrVertexOutOfRange is returned by [Build] when an edge references a
	// vertex index outside [0, len(vertices)).
	ErrVertexOutOfRange = errors.New("edge vertex out of range")

	// ErrDirected is returned by queries that are only defined on undirected
	// graphs, such as [Components].
	ErrDirected = errors.New("graph is directed")
)

// Option configures [Build].
type Option func(*options)

type options struct {
	weighted bool
	directed bool
}

// Weighted selects Euclidean edge weights. When false every edge costs 1.
func Weighted(on bool) Option { return func(o *options) { o.weighted = on } }

// Directed orients each edge from its first to its second index. When false
// edges are traversable both ways.
func Directed(on bool) Option { return func(o *options) { o.directed = on } }

// Graph is an immutable sparse adjacency over vertices 0..Len()-1.
type Graph struct {
	g        graph.Graph
	n        int
	weighted bool
	directed bool
}

// Build creates a graph from vertex positions and (u, v) index pairs.
// Vertex positions are only read when the graph is weighted.
func Build(vertices []r3.Vec, edges [][2]int, opts ...Option) (*Graph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n := len(vertices)
	for i, e := range edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return nil, fmt.Errorf("edge %d (%d, %d): %w", i, e[0], e[1], ErrVertexOutOfRange)
		}
	}

	g := &Graph{n: n, weighted: o.weighted, directed: o.directed}
	switch {
	case o.weighted && o.directed:
		wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
		addNodes(wg, n)
		for _, e := range edges {
			if e[0] != e[1] {
				wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e[0]), simple.Node(e[1]), edgeLength(vertices, e)))
			}
		}
		g.g = wg
	case o.weighted:
		wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		addNodes(wg, n)
		for _, e := range edges {
			if e[0] != e[1] {
				wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e[0]), simple.Node(e[1]), edgeLength(vertices, e)))
			}
		}
		g.g = wg
	case o.directed:
		dg := simple.NewDirectedGraph()
		addNodes(dg, n)
		for _, e := range edges {
			if e[0] != e[1] {
				dg.SetEdge(dg.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
			}
		}
		g.g = dg
	default:
		ug := simple.NewUndirectedGraph()
		addNodes(ug, n)
		for _, e := range edges {
			if e[0] != e[1] {
				ug.SetEdge(ug.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
			}
		}
		g.g = ug
	}
	return g, nil
}

func addNodes(g graph.NodeAdder, n int) {
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
}

func edgeLength(vertices []r3.Vec, e [2]int) float64 {
	return r3.Norm(r3.Sub(vertices[e[0]], vertices[e[1]]))
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return g.n }

// Weighted reports whether edges carry Euclidean weights.
func (g *Graph) Weighted() bool { return g.weighted }

// Directed reports whether edges are one-way.
func (g *Graph) Directed() bool { return g.directed }

// Gonum exposes the underlying gonum graph for algorithms this package does
// not wrap. It must not be modified.
func (g *Graph) Gonum() graph.Graph { return g.g }

// Neighbors returns the vertices reachable from v over a single edge, in
// ascending order. Returns nil if v is out of range.
func (g *Graph) Neighbors(v int) []int {
	if v < 0 || v >= g.n {
		return nil
	}
	nodes := graph.NodesOf(g.g.From(int64(v)))
	out := make([]int, len(nodes))
	for i, nd := range nodes {
		out[i] = int(nd.ID())
	}
	slices.Sort(out)
	return out
}

// HasEdge reports whether an edge u→v exists (either way for undirected graphs).
func (g *Graph) HasEdge(u, v int) bool {
	if dg, ok := g.g.(graph.Directed); ok {
		return dg.HasEdgeFromTo(int64(u), int64(v))
	}
	return g.g.HasEdgeBetween(int64(u), int64(v))
}

// Weight returns the cost of the edge u→v and whether it exists.
// Unweighted graphs report a cost of 1 for every edge.
func (g *Graph) Weight(u, v int) (float64, bool) {
	if !g.HasEdge(u, v) {
		return math.Inf(1), false
	}
	if wg, ok := g.g.(graph.Weighted); ok {
		return wg.Weight(int64(u), int64(v))
	}
	return 1, true
}

// Distances returns the shortest-path cost from source to every vertex.
// Unreachable vertices get math.Inf(1). The result is nil if source is out
// of range.
func (g *Graph) Distances(source int) []float64 {
	if source < 0 || source >= g.n {
		return nil
	}
	sp := path.DijkstraFrom(simple.Node(source), g.g)
	dist := make([]float64, g.n)
	for i := range dist {
		dist[i] = sp.WeightTo(int64(i))
	}
	return dist
}

// Path returns the vertices along a shortest path from source to target and
// its cost. The path is nil and the cost infinite when target is unreachable.
func (g *Graph) Path(source, target int) ([]int, float64) {
	if source < 0 || source >= g.n || target < 0 || target >= g.n {
		return nil, math.Inf(1)
	}
	sp := path.DijkstraFrom(simple.Node(source), g.g)
	nodes, w := sp.To(int64(target))
	if len(nodes) == 0 {
		return nil, math.Inf(1)
	}
	out := make([]int, len(nodes))
	for i, nd := range nodes {
		out[i] = int(nd.ID())
	}
	return out, w
}
