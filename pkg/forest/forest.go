package forest

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/csgraph"
	"github.com/matzehuels/meshskel/pkg/skeleton"
	"github.com/matzehuels/meshskel/pkg/spatial"
)

// Forest is an ordered collection of skeletons, one per connected component
// of the input, largest first.
type Forest struct {
	skeletons        []*skeleton.Skeleton
	offsets          []int // internal index of each skeleton's vertex 0
	vertexOrder      []int // original -> internal
	vertexComponents []int // original vertex -> skeleton
	edgeComponents   []int // original edge -> skeleton

	root          int
	rootComponent int
	hasRoot       bool

	vertexLists map[string][]Index
	kdtree      *spatial.KDTree
}

// Option configures [New].
type Option func(*config)

type config struct {
	split       SplitOptions
	vertexLists map[string][]Index
}

// WithRoot roots the component containing original vertex v at v.
func WithRoot(v int) Option {
	return func(c *config) { c.split.Root, c.split.HasRoot = v, true }
}

// WithVertexProperties attaches named arrays co-indexed with the input vertices.
func WithVertexProperties(p skeleton.Properties) Option {
	return func(c *config) { c.split.VertexProperties = p }
}

// WithEdgeProperties attaches named arrays co-indexed with the input edges.
func WithEdgeProperties(p skeleton.Properties) Option {
	return func(c *config) { c.split.EdgeProperties = p }
}

// WithVertexLists registers named vertex lists given in original numbering.
func WithVertexLists(lists map[string][]Index) Option {
	return func(c *config) { c.vertexLists = lists }
}

// New splits the input into components and builds a skeleton for each.
func New(vertices []r3.Vec, edges [][2]int, opts ...Option) (*Forest, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	comps, err := Split(vertices, edges, cfg.split)
	if err != nil {
		return nil, err
	}

	f := &Forest{
		vertexOrder:      make([]int, len(vertices)),
		vertexComponents: make([]int, len(vertices)),
		edgeComponents:   make([]int, len(edges)),
		vertexLists:      make(map[string][]Index),
	}

	base := 0
	for ci, c := range comps {
		sopts := []skeleton.Option{
			skeleton.WithVertexProperties(c.VertexProperties),
			skeleton.WithEdgeProperties(c.EdgeProperties),
		}
		if c.HasRoot {
			sopts = append(sopts, skeleton.WithRoot(c.Root))
			f.root, f.rootComponent, f.hasRoot = base+c.Root, ci, true
		}
		s, err := skeleton.New(c.Vertices, c.Edges, sopts...)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", ci, err)
		}

		for li, v := range c.VertexFilter {
			f.vertexOrder[v] = base + li
			f.vertexComponents[v] = ci
		}
		for _, e := range c.EdgeFilter {
			f.edgeComponents[e] = ci
		}
		f.skeletons = append(f.skeletons, s)
		f.offsets = append(f.offsets, base)
		base += len(c.Vertices)
	}

	for name, list := range cfg.vertexLists {
		f.AddVertexList(name, list, true)
	}
	return f, nil
}

// Len returns the number of skeletons.
func (f *Forest) Len() int { return len(f.skeletons) }

// Skeleton returns the i-th skeleton, largest first.
func (f *Forest) Skeleton(i int) *skeleton.Skeleton { return f.skeletons[i] }

// Skeletons returns the skeletons in size order.
func (f *Forest) Skeletons() []*skeleton.Skeleton { return slices.Clone(f.skeletons) }

// Offset returns the internal index of the first vertex of skeleton i.
func (f *Forest) Offset(i int) int { return f.offsets[i] }

// Locate maps an internal vertex index to its skeleton and local index.
func (f *Forest) Locate(v int) (component, local int, ok bool) {
	if v < 0 || v >= f.NumVertices() {
		return 0, 0, false
	}
	i, found := slices.BinarySearch(f.offsets, v)
	if !found {
		i--
	}
	return i, v - f.offsets[i], true
}

// Root returns the forest root in internal numbering. ok is false when no
// root was supplied.
func (f *Forest) Root() (int, bool) { return f.root, f.hasRoot }

// RootComponent returns the skeleton that holds the supplied root.
func (f *Forest) RootComponent() (int, bool) { return f.rootComponent, f.hasRoot }

// VertexOrder returns the original → internal vertex map.
func (f *Forest) VertexOrder() []int { return slices.Clone(f.vertexOrder) }

// VertexComponent returns the skeleton holding original vertex v.
func (f *Forest) VertexComponent(v int) (int, bool) {
	if v < 0 || v >= len(f.vertexComponents) {
		return 0, false
	}
	return f.vertexComponents[v], true
}

// EdgeComponent returns the skeleton holding original edge e.
func (f *Forest) EdgeComponent(e int) (int, bool) {
	if e < 0 || e >= len(f.edgeComponents) {
		return 0, false
	}
	return f.edgeComponents[e], true
}

// NumVertices returns the total vertex count.
func (f *Forest) NumVertices() int {
	n := 0
	for _, s := range f.skeletons {
		n += s.Len()
	}
	return n
}

// Vertices returns every skeleton's vertices stacked in size order.
func (f *Forest) Vertices() []r3.Vec {
	out := make([]r3.Vec, 0, f.NumVertices())
	for _, s := range f.skeletons {
		out = append(out, s.Vertices()...)
	}
	return out
}

// Edges returns every skeleton's (child, parent) edges in internal numbering.
func (f *Forest) Edges() [][2]int {
	var out [][2]int
	for i, s := range f.skeletons {
		off := f.offsets[i]
		for _, e := range s.Edges() {
			out = append(out, [2]int{e[0] + off, e[1] + off})
		}
	}
	return out
}

// BranchPoints returns every skeleton's branch points in internal numbering.
func (f *Forest) BranchPoints() []int {
	return f.gather((*skeleton.Skeleton).BranchPoints)
}

// EndPoints returns every skeleton's end points in internal numbering.
func (f *Forest) EndPoints() []int {
	return f.gather((*skeleton.Skeleton).EndPoints)
}

// gather shifts per-skeleton vertex ids into internal numbering. Skeletons
// with nothing to report contribute nothing.
func (f *Forest) gather(get func(*skeleton.Skeleton) []int) []int {
	out := []int{}
	for i, s := range f.skeletons {
		for _, v := range get(s) {
			out = append(out, v+f.offsets[i])
		}
	}
	return out
}

// VertexProperty concatenates one vertex property across skeletons.
// Single-vertex skeletons are degenerate and skipped, so the result is only
// co-indexed with [Forest.Vertices] when no such skeleton exists.
func (f *Forest) VertexProperty(name string) ([]float64, bool) {
	var out []float64
	found := false
	for _, s := range f.skeletons {
		if s.Len() <= 1 {
			continue
		}
		vals, ok := s.VertexProperty(name)
		if !ok {
			continue
		}
		out = append(out, vals...)
		found = true
	}
	return out, found
}

// EdgeProperty concatenates one edge property across skeletons, co-indexed
// with [Forest.Edges].
func (f *Forest) EdgeProperty(name string) ([]float64, bool) {
	var out []float64
	found := false
	for _, s := range f.skeletons {
		vals, ok := s.EdgeProperties()[name]
		if !ok {
			continue
		}
		out = append(out, vals...)
		found = true
	}
	return out, found
}

// VertexProperties concatenates every vertex property named by the first
// skeleton.
func (f *Forest) VertexProperties() skeleton.Properties {
	out := skeleton.Properties{}
	if len(f.skeletons) == 0 {
		return out
	}
	for _, name := range f.skeletons[0].PropertyNames() {
		out[name], _ = f.VertexProperty(name)
	}
	return out
}

// EdgeProperties concatenates every edge property named by the first
// skeleton.
func (f *Forest) EdgeProperties() skeleton.Properties {
	out := skeleton.Properties{}
	if len(f.skeletons) == 0 {
		return out
	}
	for name := range f.skeletons[0].EdgeProperties() {
		out[name], _ = f.EdgeProperty(name)
	}
	return out
}

// Graph builds a sparse graph over all skeletons in internal numbering. The
// skeletons stay disconnected from each other. Directed graphs follow the
// current (child, parent) orientation, so the result is rebuilt on every
// call.
func (f *Forest) Graph(weighted, directed bool) *csgraph.Graph {
	g, err := csgraph.Build(f.Vertices(), f.Edges(), csgraph.Weighted(weighted), csgraph.Directed(directed))
	if err != nil {
		panic(fmt.Sprintf("forest: build graph: %v", err))
	}
	return g
}

// KDTree returns a nearest-neighbour index over [Forest.Vertices].
func (f *Forest) KDTree() *spatial.KDTree {
	if f.kdtree == nil {
		f.kdtree = spatial.NewKDTree(f.Vertices())
	}
	return f.kdtree
}
