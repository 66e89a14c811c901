// Package skeleton turns one connected component of a mesh-derived graph into
// a rooted tree and answers topological queries about it.
//
// # Overview
//
// A [Skeleton] owns an immutable vertex array (3-D positions) and an edge list.
// Rooting the skeleton orients every edge as (child, parent) so that the parent
// is strictly closer to the root, which yields a parent pointer per vertex and
// a consistent, acyclic, child-to-parent tree.
//
// From that orientation the skeleton derives:
//
//   - branch points (vertices with more than one child)
//   - end points (vertices with no children)
//   - a path decomposition: leaf-to-ancestor walks covering every vertex
//     reachable from the root, longest first
//   - a segment decomposition: runs of vertices between leaves, branch points
//     and the root, with an inverse vertex → segment map
//   - path lengths, cable length and distance to root
//
// # Rooting
//
// [New] roots the skeleton at the vertex passed with [WithRoot], or at an
// approximate extremity otherwise (the vertex farthest in hops from vertex 0).
// [Skeleton.Reroot] is the only mutator. It replaces the edge orientation and
// parent pointers wholesale and drops every derived cache in one step, so no
// cached value ever reflects a previous orientation.
//
// When both endpoints of an edge are equally far from the root, which only
// happens for duplicate edges, cycles or vertices unreachable from the root,
// the lower vertex id becomes the parent. A vertex with several candidate
// parents keeps the one that is closest to the root, again preferring the
// lower id.
//
// # Example
//
//	s, err := skeleton.New(vertices, [][2]int{{0, 1}, {1, 2}, {2, 3}}, skeleton.WithRoot(0))
//	if err != nil {
//	    return err
//	}
//	s.EndPoints()     // [3]
//	s.PathToRoot(3)   // [3 2 1 0]
//	s.Segments()      // [[3 2 1] [0]]
//
// # Concurrency
//
// Derived values are computed on first access and memoized, so even read
// methods mutate internal state. A Skeleton must not be shared between
// goroutines without external synchronization.
package skeleton
