package skeleton

import "slices"

// classify counts children under the current parent pointers and derives
// branch and end points. Repeated edges count once.
func (s *Skeleton) classify() {
	if s.cache.classified {
		return
	}
	children := make([][]int, len(s.vertices))
	for v, p := range s.parent {
		if p.ok {
			children[p.id] = append(children[p.id], v)
		}
	}

	branch := []int{}
	end := []int{}
	for v, cs := range children {
		switch {
		case len(cs) > 1:
			branch = append(branch, v)
		case len(cs) == 0:
			end = append(end, v)
		}
	}

	s.cache.children = children
	s.cache.branchPoints = branch
	s.cache.endPoints = end
	s.cache.classified = true
}

// Children returns the children of v in ascending order.
func (s *Skeleton) Children(v int) []int {
	if v < 0 || v >= len(s.vertices) {
		return nil
	}
	s.classify()
	return slices.Clone(s.cache.children[v])
}

// BranchPoints returns the vertices with more than one child, ascending.
func (s *Skeleton) BranchPoints() []int {
	s.classify()
	return slices.Clone(s.cache.branchPoints)
}

// NumBranchPoints returns len(BranchPoints()) without copying.
func (s *Skeleton) NumBranchPoints() int {
	s.classify()
	return len(s.cache.branchPoints)
}

// EndPoints returns the vertices with no children, ascending. A single-vertex
// skeleton's root is an end point.
func (s *Skeleton) EndPoints() []int {
	s.classify()
	return slices.Clone(s.cache.endPoints)
}

// NumEndPoints returns len(EndPoints()) without copying.
func (s *Skeleton) NumEndPoints() int {
	s.classify()
	return len(s.cache.endPoints)
}

// IsBranchPoint reports whether v has more than one child.
func (s *Skeleton) IsBranchPoint(v int) bool {
	if v < 0 || v >= len(s.vertices) {
		return false
	}
	s.classify()
	return len(s.cache.children[v]) > 1
}

// IsEndPoint reports whether v has no children.
func (s *Skeleton) IsEndPoint(v int) bool {
	if v < 0 || v >= len(s.vertices) {
		return false
	}
	s.classify()
	return len(s.cache.children[v]) == 0
}
