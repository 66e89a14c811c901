// Package csgraph builds sparse adjacency graphs from vertex and edge arrays
// and answers the shortest-path and connectivity queries the skeleton engine
// needs.
//
// # Overview
//
// A [Graph] is built once from a vertex array (3-D positions) and an edge list
// of index pairs. It can be:
//
//   - unweighted (every edge costs one hop) or Euclidean-weighted
//   - undirected, or directed from the first to the second index of each pair
//
// The adjacency itself is a gonum simple graph, so every algorithm from
// gonum.org/v1/gonum/graph can run on it; this package wraps the handful of
// queries the rest of the module uses with plain integer vertex ids.
//
// # Queries
//
//	g, err := csgraph.Build(vertices, edges, csgraph.Weighted(true))
//	dist := g.Distances(root)         // math.Inf(1) where unreachable
//	n, labels, err := csgraph.Components(g) // per-vertex component label
//	a, b, d := csgraph.FarPoints(g)    // approximate diameter endpoints
//
// Self-loops carry no topology and are skipped. Repeated edges collapse into
// one adjacency entry.
//
// # Concurrency
//
// A Graph is immutable after Build and safe for concurrent readers.
package csgraph
