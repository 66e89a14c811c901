package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/meshskel/pkg/forest"
)

type output struct {
	Vertices [][3]float64 `json:"vertices"`
	Edges    [][2]int     `json:"edges"`
	Root     *int         `json:"root,omitempty"`
}

// WriteJSON encodes a forest as a skeleton record in internal numbering, with
// edges oriented (child, parent). The output can be re-read with [ReadJSON].
func WriteJSON(f *forest.Forest, w io.Writer) error {
	vs := f.Vertices()
	out := output{
		Vertices: make([][3]float64, len(vs)),
		Edges:    f.Edges(),
	}
	for i, v := range vs {
		out.Vertices[i] = [3]float64{v.X, v.Y, v.Z}
	}
	if out.Edges == nil {
		out.Edges = [][2]int{}
	}
	if root, ok := f.Root(); ok {
		out.Root = &root
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a forest to a JSON file at path.
func ExportJSON(f *forest.Forest, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteJSON(f, file)
}
