package skeleton

import "gonum.org/v1/gonum/spatial/r3"

func (s *Skeleton) edgeLength(u, v int) float64 {
	return r3.Norm(r3.Sub(s.vertices[u], s.vertices[v]))
}

// PathLength returns the summed Euclidean length of the given vertex paths,
// or of [Skeleton.Paths] when none are given.
func (s *Skeleton) PathLength(paths ...[]int) float64 {
	if len(paths) == 0 {
		s.computePaths()
		paths = s.cache.paths
	}
	var total float64
	for _, p := range paths {
		for i := 1; i < len(p); i++ {
			total += s.edgeLength(p[i-1], p[i])
		}
	}
	return total
}

// CableLength returns the summed length of all parent links, i.e. the total
// length of the tree.
func (s *Skeleton) CableLength() float64 {
	var total float64
	for v := range s.vertices {
		if p, ok := s.Parent(v); ok {
			total += s.edgeLength(v, p)
		}
	}
	return total
}

// DistanceToRoot returns the weighted shortest-path distance from the root to
// every vertex over the undirected edge set. For a tree this equals the
// length of each vertex's parent chain; unreachable vertices get +Inf.
func (s *Skeleton) DistanceToRoot() []float64 {
	return s.Graph(true, false).Distances(s.root)
}
