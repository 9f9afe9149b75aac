package transform

import "github.com/irview/irview/pkg/hier"

// BreakCycles makes the layer graph acyclic by reversing every edge that
// closes a cycle. A depth-first traversal starts from the source nodes (no
// incoming edges) in deterministic node order, then covers any nodes left
// unvisited, so identical inputs always reverse the same edges. Reversed
// edges keep their identity and are flagged, letting the router restore the
// original direction when drawing.
//
// The returned slice holds the reversed edges in reversal order.
func BreakCycles(lg *hier.LayerGraph) []*hier.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, lg.NodeCount())
	var backEdges []*hier.Edge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, e := range lg.Out(id) {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				backEdges = append(backEdges, e)
			}
		}
		color[id] = black
	}

	for _, id := range lg.NodeIDs() {
		if len(lg.In(id)) == 0 && color[id] == white {
			dfs(id)
		}
	}
	for _, id := range lg.NodeIDs() {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		lg.Reverse(e)
	}
	return backEdges
}
