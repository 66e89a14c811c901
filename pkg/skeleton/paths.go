package skeleton

import (
	"math"
	"slices"
)

// PathToRoot returns v followed by its ancestors, ending at the root (or at
// the top of v's parent chain if it never reaches the root). Returns nil for
// an out-of-range v.
func (s *Skeleton) PathToRoot(v int) []int {
	if v < 0 || v >= len(s.vertices) {
		return nil
	}
	path := []int{v}
	for {
		p, ok := s.Parent(v)
		if !ok {
			return path
		}
		path = append(path, p)
		v = p
	}
}

// Paths decomposes the tree into leaf-to-ancestor walks.
//
// End points are taken farthest first by cable distance to the root. Each
// walk climbs parent pointers until it reaches a vertex that is already
// covered (the root, or a vertex of an earlier walk), which closes the walk
// as its last element. Every vertex reachable from the root appears in
// exactly one walk, apart from these shared anchors.
//
// End points whose chain never reaches the root are skipped; see
// [Skeleton.Unreachable].
func (s *Skeleton) Paths() [][]int {
	s.computePaths()
	out := make([][]int, len(s.cache.paths))
	for i, p := range s.cache.paths {
		out[i] = slices.Clone(p)
	}
	return out
}

// Unreachable returns the end points that [Skeleton.Paths] skipped because
// their parent chain does not reach the root.
func (s *Skeleton) Unreachable() []int {
	s.computePaths()
	return slices.Clone(s.cache.unreachable)
}

func (s *Skeleton) computePaths() {
	if s.cache.pathsDone {
		return
	}
	dist := s.cableToRoot()
	ends := s.EndPoints()
	slices.SortStableFunc(ends, func(a, b int) int {
		switch {
		case dist[a] > dist[b]:
			return -1
		case dist[a] < dist[b]:
			return 1
		}
		return 0
	})

	visited := make([]bool, len(s.vertices))
	visited[s.root] = true
	paths := [][]int{}
	unreachable := []int{}
	for _, ep := range ends {
		if math.IsInf(dist[ep], 1) {
			unreachable = append(unreachable, ep)
			continue
		}
		paths = append(paths, s.unvisitedPath(ep, visited))
	}

	s.cache.paths = paths
	s.cache.unreachable = unreachable
	s.cache.pathsDone = true
}

// unvisitedPath walks from v toward the root, marking vertices as it goes,
// and stops after appending the first vertex that was already visited.
func (s *Skeleton) unvisitedPath(v int, visited []bool) []int {
	path := []int{v}
	for !visited[v] {
		visited[v] = true
		p, ok := s.Parent(v)
		if !ok {
			break
		}
		path = append(path, p)
		v = p
	}
	return path
}

// cableToRoot returns the Euclidean length of each vertex's parent chain,
// with +Inf for chains that end somewhere other than the root.
func (s *Skeleton) cableToRoot() []float64 {
	n := len(s.vertices)
	dist := make([]float64, n)
	known := make([]bool, n)
	dist[s.root], known[s.root] = 0, true

	var stack []int
	for v := range n {
		for u := v; !known[u]; {
			stack = append(stack, u)
			p, ok := s.Parent(u)
			if !ok {
				dist[u], known[u] = math.Inf(1), true
				stack = stack[:len(stack)-1]
				break
			}
			u = p
		}
		for i := len(stack) - 1; i >= 0; i-- {
			u := stack[i]
			p, _ := s.Parent(u)
			dist[u] = dist[p] + s.edgeLength(u, p)
			known[u] = true
		}
		stack = stack[:0]
	}
	return dist
}
