package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
	"github.com/irview/irview/pkg/pipeline"
)

// layoutCommand creates the layout command for computing snapshot layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a hierarchical layout from a graph snapshot",
		Long: `Compute a hierarchical layout from a graph snapshot.

The layout command takes a graph.json snapshot (a compiler dump converted to
the irview format) and computes node positions, edge routes, and group boxes.
The output is a layout.json file that can be rendered with 'render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	bindLayoutFlags(cmd, &opts)

	return cmd
}

// bindLayoutFlags registers the flags shared by every command that runs the
// pipeline. Defaults come from the config file via layoutOptions.
func bindLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.NodeGap, "node-gap", opts.NodeGap, "horizontal gap between nodes")
	cmd.Flags().Float64Var(&opts.LayerGap, "layer-gap", opts.LayerGap, "minimum vertical gap between layers")
	cmd.Flags().Float64Var(&opts.MaxLayerGap, "max-layer-gap", opts.MaxLayerGap, "maximum vertical gap between layers")
	cmd.Flags().Float64Var(&opts.GroupPadding, "group-padding", opts.GroupPadding, "padding inside group boxes")
	cmd.Flags().IntVar(&opts.Sweeps, "sweeps", opts.Sweeps, "crossing reduction sweeps")
	cmd.Flags().IntVar(&opts.MaxEdgeSpan, "max-edge-span", opts.MaxEdgeSpan, "cut edges spanning more layers than this (0 = never)")
	cmd.Flags().StringVar(&opts.BackEdgeStyle, "back-edge-style", opts.BackEdgeStyle, "back edge shape: curved (default), stepped")
	cmd.Flags().StringSliceVar(&opts.FirstLayer, "first-layer", nil, "node IDs to pin to the first layer")
	cmd.Flags().StringSliceVar(&opts.LastLayer, "last-layer", nil, "node IDs to pin to the last layer")
}

// runLayout loads the snapshot, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	runner := c.newRunner(noCache)
	defer runner.Cache.Close()

	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := layout.WriteFile(outputPath, result.Layout); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), result.Stats.Layers, result.CacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
