package forest

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/csgraph"
	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// ErrNoVertices is returned by [Split] and [New] for an empty vertex array.
var ErrNoVertices = errors.New("no vertices")

// Component is one connected component of a split graph, with its vertices,
// edges and properties filtered out of the input and reindexed from zero.
type Component struct {
	Vertices []r3.Vec
	Edges    [][2]int // local vertex indices

	// VertexFilter lists the original index of each local vertex, ascending.
	VertexFilter []int
	// EdgeFilter lists the original index of each local edge, ascending.
	EdgeFilter []int

	// Root is the local root, valid only when HasRoot is true.
	Root    int
	HasRoot bool

	VertexProperties skeleton.Properties
	EdgeProperties   skeleton.Properties
}

// SplitOptions configures [Split].
type SplitOptions struct {
	// Root is an original vertex index, honoured when HasRoot is true.
	Root    int
	HasRoot bool

	VertexProperties skeleton.Properties
	EdgeProperties   skeleton.Properties
}

// Split partitions vertices and edges into connected components, largest
// first. Components of equal size keep discovery order (the one holding the
// lowest original vertex comes first).
func Split(vertices []r3.Vec, edges [][2]int, opts SplitOptions) ([]Component, error) {
	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}
	if err := checkProperties(len(vertices), len(edges), opts); err != nil {
		return nil, err
	}

	g, err := csgraph.Build(vertices, edges)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	sets, err := csgraph.ComponentsBySize(g)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	compOf := make([]int, len(vertices))
	local := make([]int, len(vertices))
	comps := make([]Component, len(sets))
	for ci, set := range sets {
		c := &comps[ci]
		c.VertexFilter = set
		c.Vertices = make([]r3.Vec, len(set))
		for li, v := range set {
			compOf[v], local[v] = ci, li
			c.Vertices[li] = vertices[v]
		}
		c.VertexProperties = filterProperties(opts.VertexProperties, set)
	}

	for ei, e := range edges {
		c := &comps[compOf[e[0]]]
		c.Edges = append(c.Edges, [2]int{local[e[0]], local[e[1]]})
		c.EdgeFilter = append(c.EdgeFilter, ei)
	}
	for ci := range comps {
		comps[ci].EdgeProperties = filterProperties(opts.EdgeProperties, comps[ci].EdgeFilter)
	}

	if opts.HasRoot && opts.Root >= 0 && opts.Root < len(vertices) {
		c := &comps[compOf[opts.Root]]
		c.Root, c.HasRoot = local[opts.Root], true
	}
	return comps, nil
}

func checkProperties(nv, ne int, opts SplitOptions) error {
	for name, vals := range opts.VertexProperties {
		if len(vals) != nv {
			return fmt.Errorf("vertex property %q has %d values for %d vertices: %w", name, len(vals), nv, skeleton.ErrPropertyLength)
		}
	}
	for name, vals := range opts.EdgeProperties {
		if len(vals) != ne {
			return fmt.Errorf("edge property %q has %d values for %d edges: %w", name, len(vals), ne, skeleton.ErrPropertyLength)
		}
	}
	return nil
}

func filterProperties(p skeleton.Properties, idx []int) skeleton.Properties {
	out := make(skeleton.Properties, len(p))
	for name, vals := range p {
		f := make([]float64, len(idx))
		for i, j := range idx {
			f[i] = vals[j]
		}
		out[name] = f
	}
	return out
}
