package skeleton

import (
	"fmt"

	"github.com/matzehuels/meshskel/pkg/csgraph"
)

// Reroot orients the skeleton toward a new root.
//
// Hop distances from root are computed over the undirected edge set. Each
// edge is then stored as (child, parent) with the parent strictly closer to
// root; equidistant endpoints make the lower id the parent. Parent pointers
// are rebuilt from the new edges and every derived value is dropped.
//
// Rerooting twice at the same vertex yields the same orientation.
func (s *Skeleton) Reroot(root int) error {
	n := len(s.vertices)
	if root < 0 || root >= n {
		return fmt.Errorf("reroot at %d: %w", root, ErrVertexOutOfRange)
	}

	g, err := csgraph.Build(s.vertices, s.edges)
	if err != nil {
		return fmt.Errorf("reroot at %d: %w", root, err)
	}
	dist := g.Distances(root)

	edges := make([][2]int, len(s.edges))
	parent := make([]parentRef, n)
	for i, e := range s.edges {
		child, par := orient(e, dist)
		edges[i] = [2]int{child, par}
		if child == par {
			continue
		}
		if cur := parent[child]; !cur.ok || closer(par, cur.id, dist) {
			parent[child] = parentRef{id: par, ok: true}
		}
	}

	s.root = root
	s.edges = edges
	s.parent = parent
	s.cache = &derived{}
	return nil
}

// orient returns the endpoints of e as (child, parent).
func orient(e [2]int, dist []float64) (child, parent int) {
	du, dv := dist[e[0]], dist[e[1]]
	switch {
	case du > dv:
		return e[0], e[1]
	case dv > du:
		return e[1], e[0]
	}
	return max(e[0], e[1]), min(e[0], e[1])
}

// closer reports whether a precedes b by (distance, id).
func closer(a, b int, dist []float64) bool {
	if dist[a] != dist[b] {
		return dist[a] < dist[b]
	}
	return a < b
}

// defaultRoot picks the vertex farthest in hops from vertex 0.
func (s *Skeleton) defaultRoot() (int, error) {
	g, err := csgraph.Build(s.vertices, s.edges)
	if err != nil {
		return 0, err
	}
	a, _, _ := csgraph.FarPoints(g)
	if a < 0 {
		return 0, ErrNoVertices
	}
	return a, nil
}
