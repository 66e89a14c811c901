package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/pipeline"
	"github.com/matzehuels/meshskel/pkg/render/nodelink"
)

type renderOpts struct {
	component int
	format    string
	output    string
	reduced   bool
	detailed  bool
	smooth    bool
}

// renderCommand draws one component as a node-link diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [input.json]",
		Short: "Render one component as a DOT or SVG diagram",
		Long: `Render one component of a skeleton as a node-link diagram.

Edges point from child to parent. The root, branch points and end points are
drawn in distinct styles. With --reduced only those key vertices are kept and
each edge is labelled with the path length it replaces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != pipeline.FormatDOT && opts.format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "render supports dot and svg, got %q", opts.format)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.component, "component", "c", 0, "component index (0 is the largest)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.component-<n>.<format>)")
	cmd.Flags().BoolVar(&opts.reduced, "reduced", false, "draw only root, branch and end points")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label vertices with their coordinates")
	cmd.Flags().BoolVar(&opts.smooth, "smooth", false, "use smooth_vertices instead of vertices")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	popts := c.baseOptions()
	popts.UseSmoothVertices = popts.UseSmoothVertices || opts.smooth
	f, err := c.loadForest(ctx, input, popts)
	if err != nil {
		return err
	}
	if opts.component < 0 || opts.component >= f.Len() {
		return errors.New(errors.ErrCodeComponentNotFound, "component %d not found (forest has %d)", opts.component, f.Len())
	}

	name := fmt.Sprintf("component-%d", opts.component)
	data := []byte(nodelink.ToDOT(f.Skeleton(opts.component), nodelink.Options{
		Reduced:  opts.reduced,
		Detailed: opts.detailed,
		Name:     name,
	}))
	if opts.format == pipeline.FormatSVG {
		if data, err = nodelink.RenderSVG(ctx, string(data)); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	path := opts.output
	if path == "" {
		base, err := outputBase(input, "")
		if err != nil {
			return err
		}
		path = base + "." + name + "." + opts.format
	} else if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Rendered component %d", opts.component)
	printFile(path)
	return nil
}
