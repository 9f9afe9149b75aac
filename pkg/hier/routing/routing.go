package routing

import (
	"slices"

	"github.com/irview/irview/pkg/hier"
	"github.com/irview/irview/pkg/layout"
)

// Back-edge style names accepted by [Options.BackEdgeStyle].
const (
	StyleCurved  = "curved"
	StyleStepped = "stepped"
)

// Defaults for zero-valued [Options] fields.
const (
	DefaultParallelOffset = 6.0
	DefaultLaneOffset     = 12.0
	DefaultLoopWidth      = 16.0
	DefaultStubLength     = 18.0
)

// Options configures edge routing. The zero value selects curved back edges
// and the default spacings.
type Options struct {
	// BackEdgeStyle selects the loop-back shape for adjacent-layer back
	// edges: StyleCurved (default) or StyleStepped.
	BackEdgeStyle string
	// ParallelOffset separates edges sharing both endpoints.
	ParallelOffset float64
	// LaneOffset separates back-edge lanes from the drawing and each other.
	LaneOffset float64
	// LoopWidth is the horizontal reach of self-loops.
	LoopWidth float64
	// StubLength is the length of the stubs drawn for cut edges.
	StubLength float64
}

func (o Options) withDefaults() Options {
	if o.BackEdgeStyle == "" {
		o.BackEdgeStyle = StyleCurved
	}
	if o.ParallelOffset <= 0 {
		o.ParallelOffset = DefaultParallelOffset
	}
	if o.LaneOffset <= 0 {
		o.LaneOffset = DefaultLaneOffset
	}
	if o.LoopWidth <= 0 {
		o.LoopWidth = DefaultLoopWidth
	}
	if o.StubLength <= 0 {
		o.StubLength = DefaultStubLength
	}
	return o
}

// clearance between a loop-back bend and the node border it passes.
const bendClearance = 8.0

// Route builds the polyline for every edge of the positioned graph. cut
// holds the edges detached by subdivision for exceeding the maximum span.
// Routes are returned in snapshot edge order.
func Route(lg *hier.LayerGraph, cut []*hier.Edge, opts Options) []layout.EdgeRoute {
	opts = opts.withDefaults()

	type numbered struct {
		id    int
		route layout.EdgeRoute
	}
	var routes []numbered

	segments := chains(lg)
	rightEdge := drawingRight(lg)
	lanes := assignLanes(lg, segments)

	for id, chain := range segments {
		routes = append(routes, numbered{id, routeChain(lg, chain, lanes[id], rightEdge, opts)})
	}
	for _, e := range cut {
		routes = append(routes, numbered{e.ID, routeCut(lg, e, opts)})
	}
	loopCount := make(map[string]int)
	for _, e := range lg.SelfLoops() {
		routes = append(routes, numbered{e.ID, routeLoop(lg, e, loopCount[e.From], opts)})
		loopCount[e.From]++
	}

	slices.SortFunc(routes, func(a, b numbered) int { return a.id - b.id })

	out := make([]layout.EdgeRoute, len(routes))
	for i, r := range routes {
		out[i] = r.route
	}
	spreadParallel(out, opts)
	return out
}

// chains groups the current edge segments by original edge ID, each chain
// sorted from the upper layer down.
func chains(lg *hier.LayerGraph) map[int][]*hier.Edge {
	m := make(map[int][]*hier.Edge)
	for _, e := range lg.Edges() {
		m[e.ID] = append(m[e.ID], e)
	}
	for _, chain := range m {
		slices.SortFunc(chain, func(a, b *hier.Edge) int {
			return lg.Node(a.From).Layer - lg.Node(b.From).Layer
		})
	}
	return m
}

// routeChain builds one edge's polyline from its segment chain. The chain is
// traversed in layering orientation and flipped at the end for back edges.
func routeChain(lg *hier.LayerGraph, chain []*hier.Edge, lane int, rightEdge float64, opts Options) layout.EdgeRoute {
	first, last := chain[0], chain[len(chain)-1]
	src, dst := lg.Node(first.From), lg.Node(last.To)

	points := []layout.Point{{X: src.X, Y: src.Y + src.Height/2}}
	for _, seg := range chain[:len(chain)-1] {
		d := lg.Node(seg.To)
		points = append(points, layout.Point{X: d.X, Y: d.Y})
	}
	points = append(points, layout.Point{X: dst.X, Y: dst.Y - dst.Height/2})

	label := ""
	for _, seg := range chain {
		if seg.Label != "" {
			label = seg.Label
		}
	}

	if !first.Reversed {
		return layout.EdgeRoute{From: src.ID, To: dst.ID, Label: label, Points: points}
	}

	// Back edge: the original edge runs dst→src. Adjacent-layer back edges
	// have no dummy channel and loop around the right side in their lane;
	// longer ones already route through dummies.
	if len(chain) == 1 {
		points = loopBack(src, dst, rightEdge+float64(lane+1)*opts.LaneOffset, opts)
	} else {
		slices.Reverse(points)
	}
	return layout.EdgeRoute{From: dst.ID, To: src.ID, Label: label, Points: points, Back: true}
}

// loopBack shapes an adjacent-layer back edge around the right side. upper
// and lower are in layering orientation; the polyline runs in the original
// direction, from the lower node up to the upper one.
func loopBack(upper, lower *hier.Node, laneX float64, opts Options) []layout.Point {
	start := layout.Point{X: lower.X, Y: lower.Y - lower.Height/2}
	end := layout.Point{X: upper.X, Y: upper.Y + upper.Height/2}
	outY := start.Y - bendClearance
	inY := end.Y + bendClearance

	if opts.BackEdgeStyle == StyleStepped {
		return []layout.Point{
			start,
			{X: start.X, Y: outY},
			{X: laneX, Y: outY},
			{X: laneX, Y: inY},
			{X: end.X, Y: inY},
			end,
		}
	}
	return []layout.Point{
		start,
		{X: laneX, Y: outY},
		{X: laneX, Y: inY},
		end,
	}
}

// routeCut emits endpoint stubs for an edge that was too long to route. The
// points are the source stub followed by the target stub, in the edge's
// original direction.
func routeCut(lg *hier.LayerGraph, e *hier.Edge, opts Options) layout.EdgeRoute {
	src, dst := lg.Node(e.From), lg.Node(e.To)
	points := []layout.Point{
		{X: src.X, Y: src.Y + src.Height/2},
		{X: src.X, Y: src.Y + src.Height/2 + opts.StubLength},
		{X: dst.X, Y: dst.Y - dst.Height/2 - opts.StubLength},
		{X: dst.X, Y: dst.Y - dst.Height/2},
	}
	from, to := src.ID, dst.ID
	if e.Reversed {
		slices.Reverse(points)
		from, to = to, from
	}
	return layout.EdgeRoute{From: from, To: to, Label: e.Label, Points: points, Back: e.Reversed, Cut: true}
}

// routeLoop draws the i-th self-loop of a node as an orthogonal loop on its
// right side.
func routeLoop(lg *hier.LayerGraph, e *hier.Edge, i int, opts Options) layout.EdgeRoute {
	n := lg.Node(e.From)
	reach := n.X + n.Width/2 + opts.LoopWidth + float64(i)*opts.ParallelOffset
	outX := n.X + n.Width/4
	bottom := n.Y + n.Height/2
	top := n.Y - n.Height/2

	points := []layout.Point{
		{X: outX, Y: bottom},
		{X: outX, Y: bottom + bendClearance},
		{X: reach, Y: bottom + bendClearance},
		{X: reach, Y: top - bendClearance},
		{X: outX, Y: top - bendClearance},
		{X: outX, Y: top},
	}
	return layout.EdgeRoute{From: e.From, To: e.To, Label: e.Label, Points: points, Self: true}
}

// spreadParallel offsets straight edges that share both endpoints so they do
// not draw on top of each other. Routed chains and loops never coincide, so
// only two-point routes are considered.
func spreadParallel(routes []layout.EdgeRoute, opts Options) {
	groups := make(map[[2]string][]int)
	for i, r := range routes {
		if len(r.Points) == 2 && !r.Self && !r.Cut {
			key := [2]string{r.From, r.To}
			groups[key] = append(groups[key], i)
		}
	}
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		for k, i := range idx {
			shift := (float64(k) - float64(len(idx)-1)/2) * opts.ParallelOffset
			for p := range routes[i].Points {
				routes[i].Points[p].X += shift
			}
		}
	}
}

// drawingRight returns the right border of the positioned nodes; back-edge
// lanes start just past it.
func drawingRight(lg *hier.LayerGraph) float64 {
	right := 0.0
	for _, id := range lg.NodeIDs() {
		n := lg.Node(id)
		if r := n.X + n.Width/2; r > right {
			right = r
		}
	}
	return right
}

// assignLanes gives every adjacent-layer back edge a lane so overlapping
// loop-backs do not share an x position. Lanes are assigned greedily in
// snapshot edge order; a lane is reusable once no overlapping span holds it.
// Back edges with a dummy chain route through their channel and need no
// lane.
func assignLanes(lg *hier.LayerGraph, segments map[int][]*hier.Edge) map[int]int {
	type span struct {
		id       int
		from, to int // layer range, from < to
	}
	var spans []span
	for id, chain := range segments {
		if len(chain) != 1 || !chain[0].Reversed {
			continue
		}
		e := chain[0]
		spans = append(spans, span{id, lg.Node(e.From).Layer, lg.Node(e.To).Layer})
	}
	slices.SortFunc(spans, func(a, b span) int { return a.id - b.id })

	lanes := make(map[int]int, len(spans))
	for i, s := range spans {
		used := make(map[int]bool)
		for j := 0; j < i; j++ {
			o := spans[j]
			if s.from < o.to && o.from < s.to {
				used[lanes[o.id]] = true
			}
		}
		lane := 0
		for used[lane] {
			lane++
		}
		lanes[s.id] = lane
	}
	return lanes
}
