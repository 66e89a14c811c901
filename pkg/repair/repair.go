// Package repair proposes new edges that reconnect fragments of a
// mesh-derived graph.
//
// [CloseEdges] and [CloseEdgesSym] pair up vertices of two labelled
// components by proximity. [Bridge] finds the shortest set of such edges
// that links two given vertices through a local neighbourhood, and fails
// with a NO_BRIDGE coded error when nothing can link them.
package repair

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/csgraph"
	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/spatial"
)

// CloseEdges pairs every vertex labelled a with its nearest vertex labelled
// b. Pairs are (a-vertex, b-vertex), in ascending order of the a-vertex.
func CloseEdges(vertices []r3.Vec, labels []int, a, b int) [][2]int {
	var aIdx, bIdx []int
	for v, l := range labels {
		if l == a {
			aIdx = append(aIdx, v)
		}
		if l == b {
			bIdx = append(bIdx, v)
		}
	}
	if len(aIdx) == 0 || len(bIdx) == 0 {
		return nil
	}

	sub := make([]r3.Vec, len(bIdx))
	for i, v := range bIdx {
		sub[i] = vertices[v]
	}
	tree := spatial.NewKDTree(sub)

	out := make([][2]int, 0, len(aIdx))
	for _, v := range aIdx {
		n, ok := tree.Nearest(vertices[v])
		if !ok || math.IsInf(n.Distance, 0) {
			continue
		}
		out = append(out, [2]int{v, bIdx[n.Index]})
	}
	return out
}

// CloseEdgesSym keeps the [CloseEdges] pairs from a to b whose reverse is
// also a nearest pair from b to a.
func CloseEdgesSym(vertices []r3.Vec, labels []int, a, b int) [][2]int {
	ab := CloseEdges(vertices, labels, a, b)
	ba := CloseEdges(vertices, labels, b, a)

	reverse := make(map[[2]int]bool, len(ba))
	for _, e := range ba {
		reverse[sorted(e)] = true
	}
	var out [][2]int
	for _, e := range ab {
		if reverse[sorted(e)] {
			out = append(out, e)
		}
	}
	return out
}

// Bridge returns the new edges, as sorted index pairs, that a shortest path
// from vertex a to vertex b uses when the graph is extended with mutually
// close edges between fragments. Only vertices within twice the a-b distance
// of their midpoint are considered. It returns no edges when a and b are
// already connected.
func Bridge(vertices []r3.Vec, edges [][2]int, a, b int) ([][2]int, error) {
	n := len(vertices)
	if a < 0 || a >= n || b < 0 || b >= n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bridge endpoints (%d, %d) outside [0, %d)", a, b, n)
	}

	full, err := csgraph.Build(vertices, edges)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build graph")
	}
	if !math.IsInf(full.Distances(a)[b], 1) {
		return nil, nil
	}

	// Mask to the neighbourhood of the link.
	d := r3.Norm(r3.Sub(vertices[a], vertices[b]))
	center := r3.Scale(0.5, r3.Add(vertices[a], vertices[b]))
	keep := []int{a, b}
	for _, nb := range spatial.NewKDTree(vertices).Within(center, 2*d) {
		keep = append(keep, nb.Index)
	}
	slices.Sort(keep)
	keep = slices.Compact(keep)

	local := make(map[int]int, len(keep))
	sub := make([]r3.Vec, len(keep))
	for i, v := range keep {
		local[v] = i
		sub[i] = vertices[v]
	}
	var subEdges [][2]int
	for _, e := range edges {
		u, okU := local[e[0]]
		v, okV := local[e[1]]
		if okU && okV {
			subEdges = append(subEdges, [2]int{u, v})
		}
	}

	g, err := csgraph.Build(sub, subEdges)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build masked graph")
	}
	ncc, labels, err := csgraph.Components(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "masked components")
	}

	la, lb := local[a], local[b]
	candidates := CloseEdgesSym(sub, labels, labels[la], labels[lb])
	if len(candidates) == 0 {
		for i := 0; i < ncc; i++ {
			for j := i + 1; j < ncc; j++ {
				candidates = append(candidates, CloseEdgesSym(sub, labels, i, j)...)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New(errors.ErrCodeNoBridge, "no close edges between the components of %d and %d", a, b)
	}

	linked, err := csgraph.Build(sub, append(slices.Clone(subEdges), candidates...), csgraph.Weighted(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build linked graph")
	}
	path, cost := linked.Path(la, lb)
	if math.IsInf(cost, 1) {
		return nil, errors.New(errors.ErrCodeNoBridge, "cannot find link between %d and %d", a, b)
	}

	isCandidate := make(map[[2]int]bool, len(candidates))
	for _, e := range candidates {
		isCandidate[sorted(e)] = true
	}
	var out [][2]int
	for i := 1; i < len(path); i++ {
		e := sorted([2]int{path[i-1], path[i]})
		if isCandidate[e] {
			out = append(out, sorted([2]int{keep[e[0]], keep[e[1]]}))
		}
	}
	return out, nil
}

func sorted(e [2]int) [2]int {
	if e[0] > e[1] {
		return [2]int{e[1], e[0]}
	}
	return e
}
