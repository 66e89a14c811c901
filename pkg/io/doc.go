// Package io reads skeleton input records and writes skeleton artifacts.
//
// # Input Format
//
// The input is a JSON object describing a mesh-derived graph:
//
//	{
//	  "vertices":        [[0, 0, 0], [1000, 0, 0], [2000, 0, 0]],
//	  "smooth_vertices": [[0, 0, 0], [990, 10, 0], [2000, 0, 0]],
//	  "edges":           [[0, 1], [1, 2]],
//	  "root":            0
//	}
//
// Required:
//   - vertices: one [x, y, z] triple per vertex
//   - edges: one [u, v] pair of vertex indices per edge
//
// Optional:
//   - smooth_vertices: an alternative coordinate set, used instead of
//     vertices when [ReadOptions].UseSmoothVertices is set (it is then
//     required)
//   - root: either a vertex index or an [x, y, z] coordinate, which is
//     resolved to the nearest vertex
//
// Missing required fields fail with a MISSING_FIELD coded error from
// [github.com/matzehuels/meshskel/pkg/errors] before any skeleton is built.
//
// # SWC Export
//
// [WriteSWC] writes one skeleton as an SWC morphology file, one row per
// vertex:
//
//	# key value
//	id type x y z radius parent
//
// Coordinates are divided by [SWCOptions].Scale (1000 by default, which turns
// nanometres into micrometres). The root's parent is -1. Type defaults to
// [LabelDendrite] and radius to a [DefaultRadius] placeholder scaled like the
// coordinates. [ReadSWC] parses the same format back.
//
// # Summary
//
// [Summarize] collects per-component statistics of a forest and
// [WriteSummary] encodes them as indented JSON.
package io
