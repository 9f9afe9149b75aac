package transform

import "github.com/irview/irview/pkg/hier"

// SplitLongEdges replaces every edge spanning more than one layer with a
// chain of dummy nodes, one per intermediate layer, so that afterwards every
// attached edge connects adjacent layers. All segments of a chain carry the
// original edge's ID and the dummies inherit the group of the tighter
// endpoint, keeping chains inside group bands where possible.
//
// When maxSpan is positive, edges spanning more than maxSpan layers are not
// subdivided: routing them through every intermediate layer would dominate
// the ordering phase on deep graphs. Such edges are detached from the graph
// and returned so the router can draw them as stubs; pass 0 to subdivide
// everything.
//
// Run after [AssignLayers]. The per-layer index is rebuilt on return.
func SplitLongEdges(lg *hier.LayerGraph, maxSpan int) []*hier.Edge {
	var long, cut []*hier.Edge
	for _, e := range lg.Edges() {
		span := lg.Node(e.To).Layer - lg.Node(e.From).Layer
		switch {
		case span <= 1:
		case maxSpan > 0 && span > maxSpan:
			cut = append(cut, e)
		default:
			long = append(long, e)
		}
	}

	for _, e := range cut {
		lg.RemoveEdge(e)
	}
	for _, e := range long {
		subdivide(lg, e)
	}
	lg.RebuildLayers()
	return cut
}

func subdivide(lg *hier.LayerGraph, e *hier.Edge) {
	src := lg.Node(e.From)
	dst := lg.Node(e.To)
	lg.RemoveEdge(e)

	prev := src.ID
	for layer := src.Layer + 1; layer < dst.Layer; layer++ {
		d := lg.AddDummy(e.ID, layer)
		d.Group = chainGroup(src, dst)
		lg.AddEdge(&hier.Edge{ID: e.ID, From: prev, To: d.ID, Reversed: e.Reversed})
		prev = d.ID
	}
	lg.AddEdge(&hier.Edge{ID: e.ID, From: prev, To: dst.ID, Label: e.Label, Reversed: e.Reversed})
}

// chainGroup picks the group for a chain's dummies. A chain between members
// of the same group stays inside it; anything else floats at top level so
// the dummies do not widen an unrelated group's box.
func chainGroup(src, dst *hier.Node) string {
	if src.Group == dst.Group {
		return src.Group
	}
	return ""
}
