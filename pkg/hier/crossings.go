package hier

// CountCrossings returns the total number of edge-segment crossings in the
// current layer orderings, summed over every pair of adjacent layers.
// Crossing reduction uses it to compare candidate orderings.
func CountCrossings(lg *LayerGraph) int {
	layers := lg.LayerIDs()
	total := 0
	for i := 0; i+1 < len(layers); i++ {
		total += CountLayerCrossings(lg, lg.LayerNodes(layers[i]), lg.LayerNodes(layers[i+1]))
	}
	return total
}

// CountLayerCrossings counts segment crossings between two adjacent layers
// using a Fenwick tree, O(E log V) where E is the number of segments between
// the layers and V is the size of the lower layer.
//
// Two segments (u1,v1) and (u2,v2) cross if and only if
//
//	pos(u1) < pos(u2) && pos(v1) > pos(v2)
//
// which is the number of inversions in the sequence of target positions when
// segments are sorted by source position.
func CountLayerCrossings(lg *LayerGraph, upper, lower []*Node) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[string]int, len(lower))
	for i, n := range lower {
		lowerPos[n.ID] = i
	}

	// Collect target positions in source order. Out() slices are appended in
	// deterministic order, and within one source the relative order of equal
	// positions does not affect the inversion count.
	targets := make([]int, 0, len(upper)*2)
	for _, n := range upper {
		var row []int
		for _, e := range lg.Out(n.ID) {
			if pos, ok := lowerPos[e.To]; ok {
				row = append(row, pos)
			}
		}
		// Parallel segments from one node must not count against each other.
		insertionSort(row)
		targets = append(targets, row...)
	}
	if len(targets) < 2 {
		return 0
	}

	// Count inversions with a Fenwick tree over lower positions.
	fenwick := make([]int, len(lower)+1)
	crossings, seen := 0, 0
	for _, t := range targets {
		lessOrEqual := 0
		for q := t + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += seen - lessOrEqual
		seen++
		for idx := t + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// CountPairCrossings counts the crossings contributed by the ordered pair
// (left, right) against one adjacent layer. If usePred is true the layer
// above is consulted, otherwise the layer below. Transpose refinement swaps
// the pair when the swapped orientation yields fewer crossings.
func CountPairCrossings(lg *LayerGraph, left, right *Node, adjPos map[string]int, usePred bool) int {
	lp := neighborPositions(lg, left, adjPos, usePred)
	rp := neighborPositions(lg, right, adjPos, usePred)
	crossings := 0
	for _, l := range lp {
		for _, r := range rp {
			if l > r {
				crossings++
			}
		}
	}
	return crossings
}

func neighborPositions(lg *LayerGraph, n *Node, adjPos map[string]int, usePred bool) []int {
	var edges []*Edge
	if usePred {
		edges = lg.In(n.ID)
	} else {
		edges = lg.Out(n.ID)
	}
	pos := make([]int, 0, len(edges))
	for _, e := range edges {
		other := e.From
		if !usePred {
			other = e.To
		}
		if p, ok := adjPos[other]; ok {
			pos = append(pos, p)
		}
	}
	return pos
}

// insertionSort sorts tiny slices in place; segment fan-outs are small and
// this avoids the sort.Slice allocation in the hot counting loop.
func insertionSort(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
