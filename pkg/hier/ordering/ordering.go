package ordering

import (
	"slices"

	"github.com/irview/irview/pkg/hier"
)

// DefaultSweeps is the number of down-up sweep pairs used when a
// WeightedMedian is configured with zero Sweeps.
const DefaultSweeps = 8

// Orderer determines the position of every node within its layer. After
// Order returns, each node's Order field holds its index and the per-layer
// slices are sorted accordingly.
type Orderer interface {
	Order(lg *hier.LayerGraph)
}

// WeightedMedian is the median crossing-reduction heuristic with transpose
// refinement.
type WeightedMedian struct {
	// Sweeps is the number of alternating down/up sweep pairs; zero means
	// DefaultSweeps.
	Sweeps int
	// InitialRanks biases the initial ordering: nodes present in the map are
	// placed before absent ones within their layer, sorted by rank. Absent
	// nodes keep their deterministic graph order. May be nil.
	InitialRanks map[string]int
}

// Order runs the heuristic and commits the best ordering found.
func (wm WeightedMedian) Order(lg *hier.LayerGraph) {
	sweeps := wm.Sweeps
	if sweeps <= 0 {
		sweeps = DefaultSweeps
	}
	layers := lg.LayerIDs()
	if len(layers) == 0 {
		return
	}

	initial(lg, layers, wm.InitialRanks)

	best := capture(lg, layers)
	bestCross := hier.CountCrossings(lg)

	for i := 0; i < sweeps && bestCross > 0; i++ {
		if i%2 == 0 {
			sweepDown(lg, layers)
		} else {
			sweepUp(lg, layers)
		}
		transpose(lg, layers)

		cross := hier.CountCrossings(lg)
		if cross < bestCross {
			bestCross = cross
			best = capture(lg, layers)
		}
	}

	restore(lg, layers, best)
}

// initial assigns the starting order: the deterministic node order of each
// layer, with ranked nodes pulled to the front in rank order.
func initial(lg *hier.LayerGraph, layers []int, ranks map[string]int) {
	for _, l := range layers {
		nodes := lg.LayerNodes(l)
		if len(ranks) > 0 {
			slices.SortStableFunc(nodes, func(a, b *hier.Node) int {
				ra, okA := ranks[a.ID]
				rb, okB := ranks[b.ID]
				switch {
				case okA && okB:
					return ra - rb
				case okA:
					return -1
				case okB:
					return 1
				default:
					return 0
				}
			})
		}
		for i, n := range nodes {
			n.Order = i
		}
	}
}

// sweepDown reorders each layer after the first by the median position of
// its predecessors.
func sweepDown(lg *hier.LayerGraph, layers []int) {
	for i := 1; i < len(layers); i++ {
		reorder(lg, layers[i], layers[i-1], true)
	}
}

// sweepUp reorders each layer before the last by the median position of its
// successors.
func sweepUp(lg *hier.LayerGraph, layers []int) {
	for i := len(layers) - 2; i >= 0; i-- {
		reorder(lg, layers[i], layers[i+1], false)
	}
}

// reorder sorts one layer by the median adjacent position. Nodes with no
// neighbors in the adjacent layer keep their current position: they are
// assigned their own current order as the measure, which is stable under the
// stable sort.
func reorder(lg *hier.LayerGraph, layer, adjacent int, usePred bool) {
	adjPos := positions(lg.LayerNodes(adjacent))
	nodes := lg.LayerNodes(layer)

	measure := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		m, ok := median(lg, n, adjPos, usePred)
		if !ok {
			m = float64(n.Order)
		}
		measure[n.ID] = m
	}

	slices.SortStableFunc(nodes, func(a, b *hier.Node) int {
		switch ma, mb := measure[a.ID], measure[b.ID]; {
		case ma < mb:
			return -1
		case ma > mb:
			return 1
		default:
			return 0
		}
	})
	for i, n := range nodes {
		n.Order = i
	}
}

// median returns the median adjacent position of n, or false when n has no
// neighbors in the adjacent layer. For an even neighbor count the two middle
// positions are averaged.
func median(lg *hier.LayerGraph, n *hier.Node, adjPos map[string]int, usePred bool) (float64, bool) {
	edges := lg.In(n.ID)
	if !usePred {
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
	if len(pos) == 0 {
		return 0, false
	}
	slices.Sort(pos)
	mid := len(pos) / 2
	if len(pos)%2 == 1 {
		return float64(pos[mid]), true
	}
	return float64(pos[mid-1]+pos[mid]) / 2, true
}

// transpose greedily swaps adjacent pairs within each layer while a swap
// strictly reduces the crossings against both neighboring layers.
func transpose(lg *hier.LayerGraph, layers []int) {
	improved := true
	for pass := 0; improved && pass < 4; pass++ {
		improved = false
		for li, l := range layers {
			nodes := lg.LayerNodes(l)
			var above, below map[string]int
			if li > 0 {
				above = positions(lg.LayerNodes(layers[li-1]))
			}
			if li+1 < len(layers) {
				below = positions(lg.LayerNodes(layers[li+1]))
			}
			for i := 0; i+1 < len(nodes); i++ {
				left, right := nodes[i], nodes[i+1]
				current, swapped := 0, 0
				if above != nil {
					current += hier.CountPairCrossings(lg, left, right, above, true)
					swapped += hier.CountPairCrossings(lg, right, left, above, true)
				}
				if below != nil {
					current += hier.CountPairCrossings(lg, left, right, below, false)
					swapped += hier.CountPairCrossings(lg, right, left, below, false)
				}
				if swapped < current {
					nodes[i], nodes[i+1] = right, left
					nodes[i].Order, nodes[i+1].Order = i, i+1
					improved = true
				}
			}
		}
	}
}

func positions(nodes []*hier.Node) map[string]int {
	pos := make(map[string]int, len(nodes))
	for i, n := range nodes {
		pos[n.ID] = i
	}
	return pos
}

func capture(lg *hier.LayerGraph, layers []int) map[string]int {
	orders := make(map[string]int, lg.NodeCount())
	for _, l := range layers {
		for i, n := range lg.LayerNodes(l) {
			orders[n.ID] = i
		}
	}
	return orders
}

func restore(lg *hier.LayerGraph, layers []int, orders map[string]int) {
	for _, l := range layers {
		for _, n := range lg.LayerNodes(l) {
			n.Order = orders[n.ID]
		}
		lg.SortLayer(l)
	}
}
