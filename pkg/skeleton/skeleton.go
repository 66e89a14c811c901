package skeleton

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/csgraph"
	"github.com/matzehuels/meshskel/pkg/spatial"
)

var (
	// ErrNoVertices is returned by [New] when the vertex array is empty.
	ErrNoVertices = errors.New("skeleton has no vertices")

	// ErrVertexOutOfRange is returned when an edge or query references a
	// vertex index outside the skeleton.
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrPropertyLength is returned by [New] when a vertex or edge property is
	// not co-indexed with the vertices or edges it describes.
	ErrPropertyLength = errors.New("property length mismatch")

	// ErrNotTree is returned by [Skeleton.Validate] when the orientation does
	// not form a single rooted tree.
	ErrNotTree = errors.New("skeleton is not a tree")
)

// Properties maps a property name to values co-indexed with vertices or
// edges. Properties are carried through rerooting unchanged.
type Properties map[string][]float64

// Clone returns a deep copy of p.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = slices.Clone(v)
	}
	return out
}

// parentRef is an optional parent pointer. The zero value means no parent.
type parentRef struct {
	id int
	ok bool
}

// Skeleton is a rooted tree over a fixed vertex set.
//
// The zero value is not usable - use [New].
type Skeleton struct {
	vertices []r3.Vec
	edges    [][2]int // (child, parent) after rooting
	parent   []parentRef
	root     int

	vertexProps Properties
	edgeProps   Properties
	meshMap     []int

	cache *derived
}

// derived holds everything computed from the current orientation. Reroot
// swaps in a fresh value, which invalidates all of it at once.
type derived struct {
	classified   bool
	children     [][]int
	branchPoints []int
	endPoints    []int

	pathsDone   bool
	paths       [][]int
	unreachable []int

	segmentsDone bool
	segments     [][]int
	segmentMap   []int

	graphs map[graphKey]*csgraph.Graph
	kdtree *spatial.KDTree
}

type graphKey struct{ weighted, directed bool }

// Option configures [New].
type Option func(*config)

type config struct {
	root        int
	hasRoot     bool
	vertexProps Properties
	edgeProps   Properties
	meshMap     []int
}

// WithRoot roots the skeleton at vertex v instead of the default extremity.
func WithRoot(v int) Option {
	return func(c *config) { c.root, c.hasRoot = v, true }
}

// WithVertexProperties attaches named arrays co-indexed with vertices.
func WithVertexProperties(p Properties) Option {
	return func(c *config) { c.vertexProps = p }
}

// WithEdgeProperties attaches named arrays co-indexed with edges.
func WithEdgeProperties(p Properties) Option {
	return func(c *config) { c.edgeProps = p }
}

// WithMeshMap records, for each mesh vertex, the skeleton vertex it collapsed
// onto.
func WithMeshMap(m []int) Option {
	return func(c *config) { c.meshMap = m }
}

// New builds a skeleton from vertex positions and undirected edges and roots
// it. Edges are copied; their order is preserved by every reroot, so edge
// properties stay aligned.
func New(vertices []r3.Vec, edges [][2]int, opts ...Option) (*Skeleton, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}
	n := len(vertices)
	for i, e := range edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return nil, fmt.Errorf("edge %d (%d, %d): %w", i, e[0], e[1], ErrVertexOutOfRange)
		}
	}
	for name, vals := range cfg.vertexProps {
		if len(vals) != n {
			return nil, fmt.Errorf("vertex property %q has %d values for %d vertices: %w", name, len(vals), n, ErrPropertyLength)
		}
	}
	for name, vals := range cfg.edgeProps {
		if len(vals) != len(edges) {
			return nil, fmt.Errorf("edge property %q has %d values for %d edges: %w", name, len(vals), len(edges), ErrPropertyLength)
		}
	}

	s := &Skeleton{
		vertices:    slices.Clone(vertices),
		edges:       slices.Clone(edges),
		vertexProps: cfg.vertexProps.Clone(),
		edgeProps:   cfg.edgeProps.Clone(),
		meshMap:     slices.Clone(cfg.meshMap),
		cache:       &derived{},
	}

	root := cfg.root
	if !cfg.hasRoot {
		var err error
		if root, err = s.defaultRoot(); err != nil {
			return nil, err
		}
	}
	if err := s.Reroot(root); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of vertices.
func (s *Skeleton) Len() int { return len(s.vertices) }

// Vertices returns a copy of the vertex positions.
func (s *Skeleton) Vertices() []r3.Vec { return slices.Clone(s.vertices) }

// Vertex returns the position of vertex v.
func (s *Skeleton) Vertex(v int) r3.Vec { return s.vertices[v] }

// Edges returns a copy of the edge list, each pair oriented (child, parent).
func (s *Skeleton) Edges() [][2]int { return slices.Clone(s.edges) }

// Root returns the root vertex.
func (s *Skeleton) Root() int { return s.root }

// Parent returns the parent of v. ok is false for the root, for vertices the
// orientation could not attach to the tree, and for out-of-range v.
func (s *Skeleton) Parent(v int) (int, bool) {
	if v < 0 || v >= len(s.parent) {
		return 0, false
	}
	p := s.parent[v]
	return p.id, p.ok
}

// ParentArray returns the parent of every vertex, with -1 for vertices that
// have none. It is meant for serialization; use [Skeleton.Parent] in code.
func (s *Skeleton) ParentArray() []int {
	out := make([]int, len(s.parent))
	for v, p := range s.parent {
		if p.ok {
			out[v] = p.id
		} else {
			out[v] = -1
		}
	}
	return out
}

// VertexProperties returns a copy of the vertex property arrays.
func (s *Skeleton) VertexProperties() Properties { return s.vertexProps.Clone() }

// EdgeProperties returns a copy of the edge property arrays.
func (s *Skeleton) EdgeProperties() Properties { return s.edgeProps.Clone() }

// VertexProperty returns a copy of one vertex property.
func (s *Skeleton) VertexProperty(name string) ([]float64, bool) {
	v, ok := s.vertexProps[name]
	return slices.Clone(v), ok
}

// PropertyNames returns the sorted names of the vertex properties.
func (s *Skeleton) PropertyNames() []string {
	return slices.Sorted(maps.Keys(s.vertexProps))
}

// MeshMap returns a copy of the mesh-to-skeleton vertex map, or nil.
func (s *Skeleton) MeshMap() []int { return slices.Clone(s.meshMap) }

// Graph returns the skeleton's adjacency as a csgraph. Directed graphs follow
// the (child, parent) orientation. The graph is cached until the next reroot.
func (s *Skeleton) Graph(weighted, directed bool) *csgraph.Graph {
	key := graphKey{weighted, directed}
	if g, ok := s.cache.graphs[key]; ok {
		return g
	}
	// Edges were validated in New, so Build cannot fail.
	g, err := csgraph.Build(s.vertices, s.edges, csgraph.Weighted(weighted), csgraph.Directed(directed))
	if err != nil {
		panic(fmt.Sprintf("skeleton: build graph: %v", err))
	}
	if s.cache.graphs == nil {
		s.cache.graphs = make(map[graphKey]*csgraph.Graph, 4)
	}
	s.cache.graphs[key] = g
	return g
}

// KDTree returns a nearest-neighbour index over the vertices, cached until
// the next reroot.
func (s *Skeleton) KDTree() *spatial.KDTree {
	if s.cache.kdtree == nil {
		s.cache.kdtree = spatial.NewKDTree(s.vertices)
	}
	return s.cache.kdtree
}

// Validate checks that the current orientation is a single rooted tree:
// |edges| == |vertices|-1, the root is the only vertex without a parent, and
// every parent chain ends at the root.
func (s *Skeleton) Validate() error {
	if len(s.edges) != len(s.vertices)-1 {
		return fmt.Errorf("%d edges for %d vertices: %w", len(s.edges), len(s.vertices), ErrNotTree)
	}
	for v, p := range s.parent {
		if !p.ok && v != s.root {
			return fmt.Errorf("vertex %d has no parent: %w", v, ErrNotTree)
		}
	}
	for v := range s.vertices {
		if top := s.chainTop(v); top != s.root {
			return fmt.Errorf("vertex %d does not reach root %d: %w", v, s.root, ErrNotTree)
		}
	}
	return nil
}

// chainTop follows parent pointers from v to the first vertex without one.
func (s *Skeleton) chainTop(v int) int {
	for {
		p, ok := s.Parent(v)
		if !ok {
			return v
		}
		v = p
	}
}
