package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
	"github.com/matzehuels/meshskel/pkg/observability"
	"github.com/matzehuels/meshskel/pkg/render/nodelink"
	"github.com/matzehuels/meshskel/pkg/skeleton"
)

// Vertex property names picked up by SWC export.
const (
	PropertyRadius = "radius"
	PropertyLabel  = "label"
)

// Export renders the requested artifacts. Per-component artifacts are
// rendered concurrently, one goroutine per skeleton; the result is ordered
// by component, then format.
func (r *Runner) Export(ctx context.Context, f *forest.Forest, sum skelio.Summary, opts Options) ([]Artifact, error) {
	if err := opts.exportDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()

	perComponent := make([][]Artifact, f.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range f.Skeletons() {
		g.Go(func() error {
			out, err := renderComponent(gctx, i, s, opts)
			if err != nil {
				return fmt.Errorf("component %d: %w", i, err)
			}
			perComponent[i] = out
			return nil
		})
	}
	err := g.Wait()

	var artifacts []Artifact
	if err == nil {
		for _, a := range perComponent {
			artifacts = append(artifacts, a...)
		}
		if opts.Wants(FormatJSON) {
			var buf bytes.Buffer
			if err = skelio.WriteSummary(&buf, sum); err == nil {
				artifacts = append(artifacts, Artifact{Name: "summary.json", Format: FormatJSON, Component: -1, Data: buf.Bytes()})
			}
		}
	}

	hooks.OnExportComplete(ctx, opts.Formats, len(artifacts), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderComponent(ctx context.Context, i int, s *skeleton.Skeleton, opts Options) ([]Artifact, error) {
	var out []Artifact
	name := func(ext string) string { return fmt.Sprintf("component-%d.%s", i, ext) }

	if opts.Wants(FormatSWC) {
		data, err := RenderSWC(s, i, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, Artifact{Name: name(FormatSWC), Format: FormatSWC, Component: i, Data: data})
	}

	if opts.Wants(FormatDOT) || opts.Wants(FormatSVG) {
		dot := nodelink.ToDOT(s, nodelink.Options{Reduced: opts.Reduced, Name: "component-" + strconv.Itoa(i)})
		if opts.Wants(FormatDOT) {
			out = append(out, Artifact{Name: name(FormatDOT), Format: FormatDOT, Component: i, Data: []byte(dot)})
		}
		if opts.Wants(FormatSVG) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out = append(out, Artifact{Name: name(FormatSVG), Format: FormatSVG, Component: i, Data: svg})
		}
	}
	return out, nil
}

// RenderSWC writes one skeleton as SWC. The "radius" and "label" vertex
// properties, when present, fill the radius and type columns; otherwise
// Options.Radius and Options.Label do. The component index is added to the
// header.
func RenderSWC(s *skeleton.Skeleton, component int, opts Options) ([]byte, error) {
	swc := skelio.SWCOptions{
		Scale:  opts.Scale,
		Header: maps.Clone(opts.Header),
	}
	if swc.Header == nil {
		swc.Header = map[string]string{}
	}
	swc.Header["component"] = strconv.Itoa(component)

	if radius, ok := s.VertexProperty(PropertyRadius); ok {
		swc.Radius = radius
	} else if opts.Radius != 0 {
		swc.Radius = make([]float64, s.Len())
		for v := range swc.Radius {
			swc.Radius[v] = opts.Radius
		}
	}
	if labels, ok := s.VertexProperty(PropertyLabel); ok {
		swc.Labels = make([]int, len(labels))
		for v, l := range labels {
			swc.Labels[v] = int(l)
		}
	} else if opts.Label != nil {
		swc.Labels = make([]int, s.Len())
		for v := range swc.Labels {
			swc.Labels[v] = *opts.Label
		}
	}

	var buf bytes.Buffer
	if err := skelio.WriteSWC(&buf, s, swc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Names lists artifact names in result order.
func Names(artifacts []Artifact) []string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.Name
	}
	return names
}
