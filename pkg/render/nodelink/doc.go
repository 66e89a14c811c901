// Package nodelink renders skeletons as node-link diagrams.
//
// [ToDOT] writes Graphviz DOT with one node per vertex and one edge per
// child-to-parent link. The root is drawn as a gold double circle, branch
// points in blue and end points as grey boxes. With [Options].Reduced only
// those key vertices are kept, which keeps diagrams of large skeletons
// readable:
//
//	dot := nodelink.ToDOT(s, nodelink.Options{Reduced: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [RenderSVG] lays the graph out in process with
// [github.com/goccy/go-graphviz].
package nodelink
