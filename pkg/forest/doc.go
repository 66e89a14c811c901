// Package forest splits an arbitrary vertex/edge set into connected components
// and manages one [skeleton.Skeleton] per component.
//
// # Index spaces
//
// Two numberings coexist:
//
//   - original: the position of a vertex in the arrays passed to [New]
//   - internal: the position of a vertex after the components are stacked
//     largest first, which is the numbering of [Forest.Vertices],
//     [Forest.Edges], [Forest.BranchPoints] and friends
//
// [Forest.VertexOrder] maps original to internal indices. Externally supplied
// vertex lists are translated through it with [Forest.RemapVertexList]; an
// index that has no translation comes back as [Missing] rather than a
// sentinel number.
//
// # Root
//
// A root passed with [WithRoot] is an original vertex index. Only the
// component containing it is rooted there; every other component picks its
// own default root. [Forest.Root] reports the root in internal numbering.
//
// # Mutability
//
// A Forest is immutable after [New] except for [Forest.AddVertexList].
// Rerooting one of its skeletons changes the orientation reported by
// [Forest.Edges] but not the index spaces.
package forest
