package csgraph

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// Components labels the connected components of an undirected graph.
// Labels are numbered in discovery order: component 0 contains vertex 0,
// component 1 contains the lowest vertex not in component 0, and so on.
// Directed graphs are rejected with [ErrDirected].
func Components(g *Graph) (int, []int, error) {
	ug, ok := g.g.(graph.Undirected)
	if !ok || g.directed {
		return 0, nil, ErrDirected
	}

	ccs := topo.ConnectedComponents(ug)
	firsts := make([]int, len(ccs))
	for i, cc := range ccs {
		first := math.MaxInt
		for _, nd := range cc {
			first = min(first, int(nd.ID()))
		}
		firsts[i] = first
	}
	order := make([]int, len(ccs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return firsts[a] - firsts[b] })

	labels := make([]int, g.n)
	for lbl, ci := range order {
		for _, nd := range ccs[ci] {
			labels[nd.ID()] = lbl
		}
	}
	return len(ccs), labels, nil
}

// ComponentsBySize returns the vertex sets of each connected component,
// largest first. Equal-sized components keep discovery order, and the
// vertices inside each set are ascending.
func ComponentsBySize(g *Graph) ([][]int, error) {
	n, labels, err := Components(g)
	if err != nil {
		return nil, err
	}
	sets := make([][]int, n)
	for v, lbl := range labels {
		sets[lbl] = append(sets[lbl], v)
	}
	slices.SortStableFunc(sets, func(a, b []int) int { return len(b) - len(a) })
	return sets, nil
}

// Farthest returns the vertex with the largest finite distance in dist and
// that distance. Ties go to the lowest vertex id. Returns (-1, 0) when dist
// is empty.
func Farthest(dist []float64) (int, float64) {
	best, bestD := -1, math.Inf(-1)
	for v, d := range dist {
		if math.IsInf(d, 1) || math.IsNaN(d) {
			continue
		}
		if d > bestD {
			best, bestD = v, d
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestD
}

// FarPoints approximates the endpoints of the graph diameter with two
// farthest-point passes: a is the vertex farthest from vertex 0, b the vertex
// farthest from a, and d the distance between them. Only the component of
// vertex 0 is considered. Returns (-1, -1, 0) for an empty graph.
func FarPoints(g *Graph) (a, b int, d float64) {
	if g.n == 0 {
		return -1, -1, 0
	}
	a, _ = Farthest(g.Distances(0))
	b, d = Farthest(g.Distances(a))
	return a, b, d
}
