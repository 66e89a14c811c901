// Package pkg holds the meshskel libraries.
//
// # Overview
//
// meshskel turns skeleton graphs extracted from neuron meshes into rooted
// trees. The data flow is:
//
//	JSON record (vertices, edges, optional root)
//	         ↓
//	    [io] decode, resolve the root
//	         ↓
//	    [forest] split into connected components
//	         ↓
//	    [skeleton] root each component, derive paths and segments
//	         ↓
//	    SWC / JSON summary / DOT / SVG
//
// # Packages
//
//   - [csgraph]: sparse graph construction, shortest paths and components
//   - [spatial]: KD-tree nearest-neighbour queries
//   - [skeleton]: one rooted tree with branch points, end points, paths
//     and segments
//   - [forest]: all components of a skeleton graph with index mapping
//   - [repair]: candidate edges that bridge disconnected fragments
//   - [io]: JSON and SWC import and export, summaries
//   - [render/nodelink]: DOT and SVG node-link diagrams
//   - [pipeline]: load → build → export with caching
//   - [cache]: file, bolt, memory and redis artifact caches
//   - [observability]: pipeline, cache and HTTP hooks
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version information set at build time
//
// # Quick Start
//
//	data, _ := os.ReadFile("cell.json")
//	in, err := io.ReadJSON(bytes.NewReader(data), io.ReadOptions{})
//	if err != nil {
//	    return err
//	}
//	f, err := in.Forest()
//	if err != nil {
//	    return err
//	}
//	for i, s := range f.Skeletons() {
//	    fmt.Println(i, s.Len(), s.NumBranchPoints(), s.CableLength())
//	}
package pkg
