package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/irview/irview/pkg/errors"
	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/hier"
	"github.com/irview/irview/pkg/hier/coords"
	"github.com/irview/irview/pkg/hier/ordering"
	"github.com/irview/irview/pkg/hier/routing"
	"github.com/irview/irview/pkg/hier/stabilize"
	"github.com/irview/irview/pkg/hier/transform"
	"github.com/irview/irview/pkg/layout"
	"github.com/irview/irview/pkg/observability"
)

// Stats contains layout pass statistics.
type Stats struct {
	NodeCount int
	EdgeCount int
	Layers    int
	Crossings int
	Reversed  int
	Cut       int
	Total     time.Duration
}

// Compute runs one complete layout pass over a snapshot. It is a pure
// function of the snapshot and options: identical inputs produce identical
// layouts. Cancellation is checked between stages; an abandoned pass returns
// a CANCELLED_LAYOUT error and leaves no shared state behind.
func Compute(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, Stats, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Stats{}, err
	}

	start := time.Now()
	stats := Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()}
	observability.Pipeline().OnLayoutStart(ctx, g.ID(), g.NodeCount())

	fail := func(stage string) (*layout.Layout, Stats, error) {
		err := errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "layout abandoned before %s", stage)
		observability.Pipeline().OnLayoutComplete(ctx, g.ID(), time.Since(start), err)
		return nil, stats, err
	}
	timed := func(stage string, since time.Time) {
		observability.Pipeline().OnStage(ctx, stage, time.Since(since))
	}

	var hints *stabilize.Hints
	if !opts.NoStabilize {
		hints = stabilize.Derive(opts.Previous, opts.Identity)
	}

	lg := hier.Build(g)

	if ctx.Err() != nil {
		return fail("cycles")
	}
	t := time.Now()
	stats.Reversed = len(transform.BreakCycles(lg))
	timed("cycles", t)

	if ctx.Err() != nil {
		return fail("layers")
	}
	t = time.Now()
	transform.AssignLayers(lg)
	transform.PinLayers(lg, opts.FirstLayer, opts.LastLayer)
	timed("layers", t)

	if ctx.Err() != nil {
		return fail("subdivide")
	}
	t = time.Now()
	cut := transform.SplitLongEdges(lg, opts.MaxEdgeSpan)
	stats.Cut = len(cut)
	timed("subdivide", t)

	if ctx.Err() != nil {
		return fail("order")
	}
	t = time.Now()
	var ranks map[string]int
	if hints != nil {
		ranks = hints.Ranks
	}
	ordering.WeightedMedian{Sweeps: opts.Sweeps, InitialRanks: ranks}.Order(lg)
	stats.Crossings = hier.CountCrossings(lg)
	timed("order", t)

	if ctx.Err() != nil {
		return fail("coords")
	}
	t = time.Now()
	var xHints map[string]float64
	if hints != nil {
		xHints = hints.X
	}
	extent := coords.Assign(lg, coords.Options{
		NodeGap:      opts.NodeGap,
		LayerGap:     opts.LayerGap,
		MaxLayerGap:  opts.MaxLayerGap,
		GroupPadding: opts.GroupPadding,
		Sweeps:       opts.Sweeps,
		XHints:       xHints,
	})
	timed("coords", t)

	if ctx.Err() != nil {
		return fail("route")
	}
	t = time.Now()
	routes := routing.Route(lg, cut, routing.Options{BackEdgeStyle: opts.BackEdgeStyle})
	timed("route", t)

	l := assemble(g, lg, extent, routes)
	stats.Layers = lg.MaxLayer() + 1
	stats.Total = time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, g.ID(), stats.Total, nil)
	return l, stats, nil
}

// assemble converts the positioned layer graph into the output layout.
// Dummies stay internal; only real nodes get boxes.
func assemble(g *graph.Graph, lg *hier.LayerGraph, extent coords.Result, routes []layout.EdgeRoute) *layout.Layout {
	l := &layout.Layout{
		GraphID: g.ID(),
		Name:    g.Name(),
		Width:   extent.Width,
		Height:  extent.Height,
		Edges:   routes,
	}

	for _, id := range lg.NodeIDs() {
		n := lg.Node(id)
		if n.IsDummy() {
			continue
		}
		l.Nodes = append(l.Nodes, layout.NodeBox{
			ID:     n.ID,
			X:      n.X - n.Width/2,
			Y:      n.Y - n.Height/2,
			Width:  n.Width,
			Height: n.Height,
			Layer:  n.Layer,
		})
	}

	for _, box := range extent.Boxes {
		gr, _ := g.Group(box.GroupID)
		l.Groups = append(l.Groups, layout.GroupBox{
			ID:     box.GroupID,
			Label:  gr.Label,
			X:      box.MinX,
			Y:      box.MinY,
			Width:  box.MaxX - box.MinX,
			Height: box.MaxY - box.MinY,
		})
	}
	normalizeExtent(l)
	return l
}

// normalizeExtent finalizes Width and Height so they cover the whole
// drawing. Coordinate assignment sizes the extent from node and group boxes
// alone, but routing runs afterwards and may reach past it: back-edge lanes
// and self-loops swing right of the rightmost node, and loops on the first
// layer bend above y=0. The drawing is shifted back into the positive
// quadrant and the extent grown so every polyline point lies inside it.
func normalizeExtent(l *layout.Layout) {
	minX, minY := 0.0, 0.0
	maxX, maxY := l.Width, l.Height
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, n := range l.Nodes {
		grow(n.X, n.Y)
		grow(n.X+n.Width, n.Y+n.Height)
	}
	for _, b := range l.Groups {
		grow(b.X, b.Y)
		grow(b.X+b.Width, b.Y+b.Height)
	}
	for _, e := range l.Edges {
		for _, p := range e.Points {
			grow(p.X, p.Y)
		}
	}

	if minX != 0 || minY != 0 {
		for i := range l.Nodes {
			l.Nodes[i].X -= minX
			l.Nodes[i].Y -= minY
		}
		for i := range l.Groups {
			l.Groups[i].X -= minX
			l.Groups[i].Y -= minY
		}
		for i := range l.Edges {
			for j := range l.Edges[i].Points {
				l.Edges[i].Points[j].X -= minX
				l.Edges[i].Points[j].Y -= minY
			}
		}
	}
	l.Width = maxX - minX
	l.Height = maxY - minY
}
