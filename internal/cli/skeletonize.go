package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/pkg/pipeline"
)

// skeletonizeCommand creates the main command: record in, SWC files out.
func (c *CLI) skeletonizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		root       int
		label      int
		flags      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "skeletonize [input.json]",
		Short: "Split a skeleton into rooted components and export SWC",
		Long: `Split a skeleton record into connected components, root each one and
export the requested artifacts.

The input is a JSON object with "vertices" ([[x,y,z],...]), "edges"
([[a,b],...]) and optionally "smooth_vertices" and "root" (a vertex index or
an [x,y,z] coordinate). Each component is written as
<name>.component-<n>.swc; the json format adds <name>.summary.json.

Results are cached; use --no-cache to bypass the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("scale") {
				opts.Scale = flags.Scale
			}
			if f.Changed("smooth") {
				opts.UseSmoothVertices = flags.UseSmoothVertices
			}
			if f.Changed("radius") {
				opts.Radius = flags.Radius
			}
			if f.Changed("label") {
				opts.Label = &label
			}
			if f.Changed("root") {
				opts.Root = &root
			}
			opts.Header = flags.Header
			opts.Reduced = flags.Reduced
			opts.Refresh = flags.Refresh
			return c.runSkeletonize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: next to the input)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): swc (default), json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().Float64Var(&flags.Scale, "scale", pipeline.DefaultScale, "divide coordinates and radii by this factor in SWC output")
	cmd.Flags().BoolVar(&flags.UseSmoothVertices, "smooth", false, "use smooth_vertices instead of vertices")
	cmd.Flags().IntVar(&root, "root", 0, "root vertex index (overrides the record's root)")
	cmd.Flags().Float64Var(&flags.Radius, "radius", 0, "SWC radius for every node, in input units")
	cmd.Flags().IntVar(&label, "label", 0, "SWC type for every node")
	cmd.Flags().StringToStringVar(&flags.Header, "header", nil, "SWC header entries as key=value")
	cmd.Flags().BoolVar(&flags.Reduced, "reduced", false, "draw only root, branch and end points (dot, svg)")

	return cmd
}

func (c *CLI) runSkeletonize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	base, err := outputBase(input, output)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Source = input
	opts.Input = data

	spinner := newSpinner(ctx, "Building skeletons...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Skeletonize failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	prog := newProgress(loggerFromContext(ctx))
	printSuccess("Skeletonized %s", input)
	for _, a := range result.Artifacts {
		path := base + "." + a.Name
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Wrote %d files", len(result.Artifacts)))

	printStats(result.Stats.Vertices, result.Stats.Edges, result.Stats.Components, result.CacheHit)
	for _, comp := range result.Summary.Components {
		if n := len(comp.Unreachable); n > 0 {
			printWarning("component %d: %d end points unreachable from the root", comp.Index, n)
		}
	}
	printNewline()
	printNextStep("Inspect", appName+" info "+input)
	return nil
}
