package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/forest"
	"github.com/matzehuels/meshskel/pkg/spatial"
)

// Input is a decoded skeleton record.
type Input struct {
	Vertices []r3.Vec
	Edges    [][2]int

	// Root is a vertex index, valid only when HasRoot is true. A coordinate
	// root has already been resolved to its nearest vertex.
	Root    int
	HasRoot bool
}

// ReadOptions configures [ReadJSON].
type ReadOptions struct {
	// UseSmoothVertices selects smooth_vertices instead of vertices.
	UseSmoothVertices bool
}

type record struct {
	Vertices       *[][]float64    `json:"vertices"`
	SmoothVertices *[][]float64    `json:"smooth_vertices"`
	Edges          *[][]int        `json:"edges"`
	Root           json.RawMessage `json:"root"`
}

// ReadJSON decodes a skeleton record from r. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ReadOptions) (*Input, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode skeleton record")
	}

	field, coords := "vertices", rec.Vertices
	if opts.UseSmoothVertices {
		field, coords = "smooth_vertices", rec.SmoothVertices
	}
	if coords == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "skeleton record has no %q field", field)
	}
	if rec.Edges == nil {
		return nil, errors.New(errors.ErrCodeMissingField, "skeleton record has no %q field", "edges")
	}

	in := &Input{
		Vertices: make([]r3.Vec, len(*coords)),
		Edges:    make([][2]int, len(*rec.Edges)),
	}
	for i, c := range *coords {
		if len(c) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s[%d] has %d values, want 3", field, i, len(c))
		}
		in.Vertices[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	for i, e := range *rec.Edges {
		if len(e) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edges[%d] has %d values, want 2", i, len(e))
		}
		in.Edges[i] = [2]int{e[0], e[1]}
	}
	for i, e := range in.Edges {
		if e[0] < 0 || e[0] >= len(in.Vertices) || e[1] < 0 || e[1] >= len(in.Vertices) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d (%d, %d) references a vertex outside [0, %d)", i, e[0], e[1], len(in.Vertices))
		}
	}

	if err := in.resolveRoot(rec.Root); err != nil {
		return nil, err
	}
	return in, nil
}

// ImportJSON reads the skeleton record at path.
func ImportJSON(path string, opts ReadOptions) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, opts)
}

// resolveRoot accepts null, an integer index or an [x, y, z] coordinate.
func (in *Input) resolveRoot(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if idx < 0 || idx >= len(in.Vertices) {
			return errors.New(errors.ErrCodeInvalidRoot, "root %d outside [0, %d)", idx, len(in.Vertices))
		}
		in.Root, in.HasRoot = idx, true
		return nil
	}

	var c [3]float64
	if err := json.Unmarshal(raw, &c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRoot, err, "root must be a vertex index or an [x, y, z] coordinate")
	}
	n, ok := spatial.NewKDTree(in.Vertices).Nearest(r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	if !ok {
		return errors.New(errors.ErrCodeInvalidRoot, "root coordinate given for an empty vertex set")
	}
	in.Root, in.HasRoot = n.Index, true
	return nil
}

// Forest builds a forest from the record, rooted at the record's root when
// it has one.
func (in *Input) Forest(opts ...forest.Option) (*forest.Forest, error) {
	if in.HasRoot {
		opts = append([]forest.Option{forest.WithRoot(in.Root)}, opts...)
	}
	return forest.New(in.Vertices, in.Edges, opts...)
}
