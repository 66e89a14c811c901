package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
	"github.com/matzehuels/meshskel/pkg/pipeline"
)

// infoCommand prints a summary of every component without writing files.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		asJSON bool
		smooth bool
		root   int
	)

	cmd := &cobra.Command{
		Use:   "info [input.json]",
		Short: "Summarize the components of a skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if cmd.Flags().Changed("smooth") {
				opts.UseSmoothVertices = smooth
			}
			if cmd.Flags().Changed("root") {
				opts.Root = &root
			}
			f, err := c.loadForest(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			sum := skelio.Summarize(f)
			if asJSON {
				return skelio.WriteSummary(stdout, sum)
			}
			printInfoSummary(args[0], sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&smooth, "smooth", false, "use smooth_vertices instead of vertices")
	cmd.Flags().IntVar(&root, "root", 0, "root vertex index (overrides the record's root)")
	return cmd
}

// loadForest runs the load and build stages without touching the cache.
func (c *CLI) loadForest(ctx context.Context, input string, opts pipeline.Options) (*forest.Forest, error) {
	data, err := readInput(input)
	if err != nil {
		return nil, err
	}
	opts.Source, opts.Input = input, data

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	in, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	return runner.Build(ctx, in)
}

func printInfoSummary(input string, sum skelio.Summary) {
	fmt.Fprintln(stdout, StyleTitle.Render(input))
	printKeyValue("vertices", StyleNumber.Render(strconv.Itoa(sum.Vertices)))
	printKeyValue("edges", StyleNumber.Render(strconv.Itoa(sum.Edges)))
	printKeyValue("components", StyleNumber.Render(strconv.Itoa(len(sum.Components))))
	if sum.Root != nil {
		printKeyValue("root", StyleNumber.Render(strconv.Itoa(*sum.Root)))
	} else {
		printKeyValue("root", StyleDim.Render("default"))
	}
	fmt.Fprintln(stdout, summaryTable(sum))
}
