package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Reduced draws only the root, branch points and end points, joining
	// each to its nearest key ancestor with an edge labelled by cable length.
	Reduced bool
	// Detailed adds coordinates to node labels.
	Detailed bool
	// Name is the graph name written to the DOT header. Empty means "skeleton".
	Name string
}

// node kinds, in drawing priority
const (
	kindPlain = iota
	kindEnd
	kindBranch
	kindRoot
)

// ToDOT converts a skeleton to Graphviz DOT. Edges point from child to parent
// and the layout runs bottom to top, so the root is drawn at the top.
func ToDOT(s *skeleton.Skeleton, opts Options) string {
	name := opts.Name
	if name == "" {
		name = "skeleton"
	}

	kinds := make([]int, s.Len())
	for _, v := range s.EndPoints() {
		kinds[v] = kindEnd
	}
	for _, v := range s.BranchPoints() {
		kinds[v] = kindBranch
	}
	kinds[s.Root()] = kindRoot

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", name)
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("\n")

	for v := range s.Len() {
		if opts.Reduced && kinds[v] == kindPlain {
			continue
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(fmtAttrs(v, kinds[v], s.Vertex(v), opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	if opts.Reduced {
		writeReducedEdges(&buf, s, kinds)
	} else {
		for v := range s.Len() {
			if p, ok := s.Parent(v); ok {
				fmt.Fprintf(&buf, "  %d -> %d;\n", v, p)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeReducedEdges links every non-root key vertex to the first key vertex
// on its parent chain.
func writeReducedEdges(buf *bytes.Buffer, s *skeleton.Skeleton, kinds []int) {
	for v := range s.Len() {
		if kinds[v] == kindPlain || kinds[v] == kindRoot {
			continue
		}
		path := []int{v}
		u, ok := s.Parent(v)
		for ok && kinds[u] == kindPlain {
			path = append(path, u)
			u, ok = s.Parent(u)
		}
		if !ok {
			continue
		}
		path = append(path, u)
		fmt.Fprintf(buf, "  %d -> %d [label=%q];\n", v, u, strconv.FormatFloat(s.PathLength(path), 'f', 1, 64))
	}
}

func fmtAttrs(v, kind int, pos r3.Vec, detailed bool) []string {
	label := strconv.Itoa(v)
	if detailed {
		label = fmt.Sprintf("%d\n(%.0f, %.0f, %.0f)", v, pos.X, pos.Y, pos.Z)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch kind {
	case kindRoot:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=gold")
	case kindBranch:
		attrs = append(attrs, "fillcolor=lightblue")
	case kindEnd:
		attrs = append(attrs, "shape=box", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching pixel size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
