package skeleton

import "slices"

// Segments returns maximal runs of vertices between topologically interesting
// points. Each segment starts at an end point, a branch point or the root and
// climbs parent pointers until the next branch point or the root, which is
// excluded and starts a segment of its own. Every vertex belongs to exactly
// one segment.
//
// Segments are numbered in discovery order: end points ascending first, then
// branch points and the root as walks reach them.
func (s *Skeleton) Segments() [][]int {
	s.computeSegments()
	out := make([][]int, len(s.cache.segments))
	for i, seg := range s.cache.segments {
		out[i] = slices.Clone(seg)
	}
	return out
}

// SegmentMap returns the segment id of every vertex.
func (s *Skeleton) SegmentMap() []int {
	s.computeSegments()
	return slices.Clone(s.cache.segmentMap)
}

// NumSegments returns len(Segments()) without copying.
func (s *Skeleton) NumSegments() int {
	s.computeSegments()
	return len(s.cache.segments)
}

// SegmentLengths returns, per segment, the summed length of the edges from
// each of its vertices to their parents. The lengths add up to
// [Skeleton.CableLength].
func (s *Skeleton) SegmentLengths() []float64 {
	s.computeSegments()
	out := make([]float64, len(s.cache.segments))
	for i, seg := range s.cache.segments {
		for _, v := range seg {
			if p, ok := s.Parent(v); ok {
				out[i] += s.edgeLength(v, p)
			}
		}
	}
	return out
}

func (s *Skeleton) computeSegments() {
	if s.cache.segmentsDone {
		return
	}
	s.classify()

	n := len(s.vertices)
	segMap := make([]int, n)
	for i := range segMap {
		segMap[i] = -1
	}
	segments := [][]int{}

	queue := slices.Clone(s.cache.endPoints)
	queued := make([]bool, n)
	for _, v := range queue {
		queued[v] = true
	}

	for len(queue) > 0 {
		start := queue[0]
		queue = queue[1:]
		if segMap[start] >= 0 {
			continue
		}

		seg, stop := s.walkSegment(start, segMap)
		switch stop.kind {
		case stopBoundary:
			// A branch point or the root opens its own segment exactly once.
			if !queued[stop.vertex] {
				queued[stop.vertex] = true
				queue = append(queue, stop.vertex)
			}
		case stopChainEnd:
			// The chain ran out without meeting a boundary: the whole walk
			// is one segment.
		case stopAssigned:
			// Only reachable on malformed input where parent chains merge
			// below a vertex that is not a branch point.
		}

		id := len(segments)
		for _, v := range seg {
			segMap[v] = id
		}
		segments = append(segments, seg)
	}

	s.cache.segments = segments
	s.cache.segmentMap = segMap
	s.cache.segmentsDone = true
}

type stopKind int

const (
	stopBoundary stopKind = iota
	stopChainEnd
	stopAssigned
)

// segmentStop records why a segment walk ended and at which vertex.
type segmentStop struct {
	kind   stopKind
	vertex int
}

// walkSegment climbs from start until the next vertex is a boundary (branch
// point or root), already belongs to a segment, or does not exist.
func (s *Skeleton) walkSegment(start int, segMap []int) ([]int, segmentStop) {
	seg := []int{start}
	v := start
	for {
		p, ok := s.Parent(v)
		switch {
		case !ok:
			return seg, segmentStop{kind: stopChainEnd, vertex: v}
		case p == s.root || len(s.cache.children[p]) > 1:
			return seg, segmentStop{kind: stopBoundary, vertex: p}
		case segMap[p] >= 0:
			return seg, segmentStop{kind: stopAssigned, vertex: p}
		}
		seg = append(seg, p)
		v = p
	}
}
