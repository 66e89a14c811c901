package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/meshskel/pkg/forest"
	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// ComponentSummary describes one skeleton of a forest. Vertex ids are local to
// the component; add Offset for the forest's internal numbering.
type ComponentSummary struct {
	Index        int     `json:"index"`
	Offset       int     `json:"offset"`
	Vertices     int     `json:"vertices"`
	Edges        int     `json:"edges"`
	Root         int     `json:"root"`
	BranchPoints int     `json:"branch_points"`
	EndPoints    int     `json:"end_points"`
	Segments     int     `json:"segments"`
	Paths        int     `json:"paths"`
	CableLength  float64 `json:"cable_length"`
	Unreachable  []int   `json:"unreachable,omitempty"`
}

// Summary describes a whole forest.
type Summary struct {
	Vertices   int                `json:"vertices"`
	Edges      int                `json:"edges"`
	Root       *int               `json:"root,omitempty"`
	Components []ComponentSummary `json:"components"`
}

// Summarize computes a summary of f. It forces path and segment computation
// on every skeleton.
func Summarize(f *forest.Forest) Summary {
	out := Summary{
		Vertices:   f.NumVertices(),
		Components: make([]ComponentSummary, f.Len()),
	}
	if root, ok := f.Root(); ok {
		out.Root = &root
	}
	for i, s := range f.Skeletons() {
		c := summarizeSkeleton(s)
		c.Index, c.Offset = i, f.Offset(i)
		out.Edges += c.Edges
		out.Components[i] = c
	}
	return out
}

func summarizeSkeleton(s *skeleton.Skeleton) ComponentSummary {
	return ComponentSummary{
		Vertices:     s.Len(),
		Edges:        len(s.Edges()),
		Root:         s.Root(),
		BranchPoints: s.NumBranchPoints(),
		EndPoints:    s.NumEndPoints(),
		Segments:     s.NumSegments(),
		Paths:        len(s.Paths()),
		CableLength:  s.CableLength(),
		Unreachable:  s.Unreachable(),
	}
}

// WriteSummary encodes sum as indented JSON.
func WriteSummary(w io.Writer, sum Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
