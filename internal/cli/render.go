package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/irview/irview/pkg/cache"
	"github.com/irview/irview/pkg/errors"
	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
	"github.com/irview/irview/pkg/observability"
	"github.com/irview/irview/pkg/pipeline"
	"github.com/irview/irview/pkg/render"
)

// Output formats accepted by the render command.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
	FormatPDF: true,
	FormatPNG: true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", f)
		}
	}
	return nil
}

// parseFormats parses the --format flag into a slice of output formats.
func parseFormats(s string) []string {
	if s == "" {
		return []string{FormatSVG}
	}
	return strings.Split(s, ",")
}

// renderCommand creates the render command for generating visual output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output      string
		formatsStr  string
		noCache     bool
		interactive bool
		scale       float64
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "render [graph.json|layout.json]",
		Short: "Render a snapshot or layout to SVG, DOT, PDF, or PNG",
		Long: `Render a snapshot or layout to SVG, DOT, PDF, or PNG.

The input may be a graph snapshot (layout is computed first, using the cache)
or a layout.json file produced by 'layout' (rendered directly). Multiple
formats may be requested comma-separated; each goes to its own file.

PDF and PNG conversion requires librsvg (rsvg-convert).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := validateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, renderOpts{
				output:      output,
				formats:     formats,
				noCache:     noCache,
				interactive: interactive,
				scale:       scale,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&interactive, "interactive", true, "embed hover highlighting in SVG output")
	cmd.Flags().Float64Var(&scale, "scale", 2.0, "PNG scale factor")
	bindLayoutFlags(cmd, &opts)

	return cmd
}

type renderOpts struct {
	output      string
	formats     []string
	noCache     bool
	interactive bool
	scale       float64
}

// runRender resolves the input to a (snapshot, layout) pair and writes each
// requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, ro renderOpts) error {
	runner := c.newRunner(ro.noCache)
	defer runner.Cache.Close()
	opts.Logger = c.Logger

	g, l, cacheHit, err := c.loadForRender(ctx, input, opts, runner)
	if err != nil {
		return err
	}

	base := basePath(ro.output, input)
	for _, format := range ro.formats {
		data, err := c.renderFormat(ctx, g, l, format, ro, runner)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := ro.output
		if path == "" || len(ro.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printSuccess("Render complete")
	if l != nil {
		printStats(l.NodeCount(), l.EdgeCount(), 0, cacheHit)
	}
	return nil
}

// loadForRender accepts either a snapshot or an already-computed layout.
// A snapshot is laid out through the runner; a layout file is used as-is
// (DOT output then works without the original snapshot only for IDs).
func (c *CLI) loadForRender(ctx context.Context, input string, opts pipeline.Options, runner *pipeline.Runner) (*graph.Graph, *layout.Layout, bool, error) {
	if isLayoutFile(input) {
		l, err := layout.ReadFile(input)
		if err != nil {
			return nil, nil, false, fmt.Errorf("load layout %s: %w", input, err)
		}
		return nil, l, true, nil
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load snapshot %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	result, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, nil, false, err
	}
	spinner.Stop()
	return g, result.Layout, result.CacheHit, nil
}

// isLayoutFile sniffs whether a JSON file is a layout (has node boxes) or a
// snapshot. The two formats share no required top-level keys.
func isLayoutFile(path string) bool {
	if strings.HasSuffix(path, ".layout.json") {
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var probe struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || len(probe.Nodes) == 0 {
		return false
	}
	var node struct {
		Layer *int `json:"layer"`
	}
	return json.Unmarshal(probe.Nodes[0], &node) == nil && node.Layer != nil
}

// renderFormat produces the bytes of one output format, consulting the
// render cache for the conversion formats.
func (c *CLI) renderFormat(ctx context.Context, g *graph.Graph, l *layout.Layout, format string, ro renderOpts, runner *pipeline.Runner) ([]byte, error) {
	if format == FormatDOT {
		if g == nil {
			return nil, errors.New(errors.ErrCodeUnsupported,
				"DOT output needs the graph snapshot, not a layout file")
		}
		return []byte(render.ToDOT(g, render.DOTOptions{})), nil
	}

	var svgOpts []render.SVGOption
	if g != nil {
		svgOpts = append(svgOpts, render.WithGraph(g))
	}
	if ro.interactive {
		svgOpts = append(svgOpts, render.WithInteraction())
	}
	svg := render.RenderSVG(l, svgOpts...)
	if format == FormatSVG {
		return svg, nil
	}

	// PDF/PNG conversion shells out; cache by layout content.
	key := runner.Keyer.RenderKey(cache.Hash(svg), format)
	if cached, hit, err := runner.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return cached, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	start := time.Now()
	var data []byte
	var err error
	switch format {
	case FormatPDF:
		data, err = render.ToPDF(svg)
	case FormatPNG:
		data, err = render.ToPNG(svg, ro.scale)
	}
	observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if err := runner.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, nil
}

// basePath derives the base output path from the output and input paths.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(strings.TrimSuffix(input, filepath.Ext(input)), ".layout")
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
