package io

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// SWC structure identifiers.
const (
	LabelUndefined = 0
	LabelSoma      = 1
	LabelAxon      = 2
	LabelDendrite  = 3
	LabelApical    = 4
)

// DefaultScale converts nanometre coordinates to micrometres.
const DefaultScale = 1000.0

// DefaultRadius is the radius written when none is supplied, in input units.
const DefaultRadius = 1000.0

// SWCOptions configures [WriteSWC]. The zero value writes dendrite labels,
// placeholder radii and a 1000× coordinate reduction.
type SWCOptions struct {
	// Labels holds one SWC type per vertex. Nil means LabelDendrite for all.
	Labels []int
	// Radius holds one radius per vertex in input units. Nil means
	// DefaultRadius for all.
	Radius []float64
	// Header lines are written as "# key value", sorted by key.
	Header map[string]string
	// Scale divides coordinates and radii. Zero means DefaultScale.
	Scale float64
}

func (o SWCOptions) validate(n int) error {
	if o.Labels != nil && len(o.Labels) != n {
		return errors.New(errors.ErrCodeInvalidInput, "%d labels for %d vertices", len(o.Labels), n)
	}
	if o.Radius != nil && len(o.Radius) != n {
		return errors.New(errors.ErrCodeInvalidInput, "%d radii for %d vertices", len(o.Radius), n)
	}
	for k := range o.Header {
		if err := errors.ValidateHeaderKey(k); err != nil {
			return err
		}
	}
	if o.Scale != 0 {
		return errors.ValidateScaling(o.Scale)
	}
	return nil
}

// WriteSWC writes s as an SWC file.
func WriteSWC(w io.Writer, s *skeleton.Skeleton, opts SWCOptions) error {
	if err := opts.validate(s.Len()); err != nil {
		return err
	}
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	bw := bufio.NewWriter(w)
	for _, k := range slices.Sorted(maps.Keys(opts.Header)) {
		fmt.Fprintf(bw, "# %s %s\n", k, strings.ReplaceAll(opts.Header[k], "\n", " "))
	}

	parents := s.ParentArray()
	for v, p := range s.Vertices() {
		label := LabelDendrite
		if opts.Labels != nil {
			label = opts.Labels[v]
		}
		radius := DefaultRadius
		if opts.Radius != nil {
			radius = opts.Radius[v]
		}
		fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n",
			v, label,
			formatFloat(p.X/scale), formatFloat(p.Y/scale), formatFloat(p.Z/scale),
			formatFloat(radius/scale),
			parents[v])
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write swc: %w", err)
	}
	return nil
}

// ExportSWC writes s to an SWC file at path.
func ExportSWC(path string, s *skeleton.Skeleton, opts SWCOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSWC(f, s, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SWCNode is one row of an SWC file.
type SWCNode struct {
	ID       int
	Label    int
	Position r3.Vec
	Radius   float64
	Parent   int // -1 for a root
}

// SWC is a parsed SWC file.
type SWC struct {
	Header map[string]string
	Nodes  []SWCNode
}

// ReadSWC parses an SWC file. Comment lines of the form "# key value" are
// collected into Header; other comments and blank lines are ignored.
func ReadSWC(r io.Reader) (*SWC, error) {
	out := &SWC{Header: map[string]string{}}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(text, "#"); ok {
			if k, v, ok := strings.Cut(strings.TrimSpace(rest), " "); ok {
				out.Header[k] = strings.TrimSpace(v)
			}
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 7 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "swc line %d: want 7 fields, got %d", line, len(fields))
		}
		var (
			n    SWCNode
			nums [4]float64
			err  error
		)
		if n.ID, err = strconv.Atoi(fields[0]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "swc line %d: id", line)
		}
		if n.Label, err = strconv.Atoi(fields[1]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "swc line %d: type", line)
		}
		for i := range nums {
			if nums[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "swc line %d: column %d", line, 3+i)
			}
		}
		if n.Parent, err = strconv.Atoi(fields[6]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "swc line %d: parent", line)
		}
		n.Position = r3.Vec{X: nums[0], Y: nums[1], Z: nums[2]}
		n.Radius = nums[3]
		out.Nodes = append(out.Nodes, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read swc: %w", err)
	}
	return out, nil
}

// Vertices returns node positions multiplied by scale, in row order.
func (s *SWC) Vertices(scale float64) []r3.Vec {
	out := make([]r3.Vec, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = r3.Scale(scale, n.Position)
	}
	return out
}

// Edges returns (child, parent) pairs as row indices. Parents that name no
// row are dropped.
func (s *SWC) Edges() [][2]int {
	row := make(map[int]int, len(s.Nodes))
	for i, n := range s.Nodes {
		row[n.ID] = i
	}
	var out [][2]int
	for i, n := range s.Nodes {
		if p, ok := row[n.Parent]; ok && n.Parent >= 0 {
			out = append(out, [2]int{i, p})
		}
	}
	return out
}

// Skeleton rebuilds a skeleton from the parsed rows, rooted at the first
// parentless node.
func (s *SWC) Skeleton(scale float64) (*skeleton.Skeleton, error) {
	var opts []skeleton.Option
	for i, n := range s.Nodes {
		if n.Parent < 0 {
			opts = append(opts, skeleton.WithRoot(i))
			break
		}
	}
	return skeleton.New(s.Vertices(scale), s.Edges(), opts...)
}
