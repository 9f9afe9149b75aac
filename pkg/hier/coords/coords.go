package coords

import (
	"math"
	"slices"

	"github.com/irview/irview/pkg/hier"
)

// Defaults used by [Options.withDefaults] for zero-valued fields.
const (
	DefaultNodeGap      = 20.0
	DefaultLayerGap     = 40.0
	DefaultMaxLayerGap  = 160.0
	DefaultGroupPadding = 15.0
	DefaultSweeps       = 8
)

// dummyPriority outranks any real node degree, keeping long edge chains
// straight through the priority sweeps.
const dummyPriority = 1 << 30

// Options configures coordinate assignment. The zero value selects the
// defaults.
type Options struct {
	// NodeGap is the minimum horizontal distance between node borders on
	// the same layer.
	NodeGap float64
	// LayerGap is the minimum vertical distance between layer bands. The
	// actual gap below a layer grows with the steepest edge crossing it,
	// clamped to MaxLayerGap.
	LayerGap    float64
	MaxLayerGap float64
	// GroupPadding is the margin between a group's members and its box.
	GroupPadding float64
	// Sweeps is the number of priority refinement sweep pairs.
	Sweeps int
	// XHints biases the initial packing: a node present in the map starts
	// at its hinted center when the packing order allows it. May be nil.
	XHints map[string]float64
}

func (o Options) withDefaults() Options {
	if o.NodeGap <= 0 {
		o.NodeGap = DefaultNodeGap
	}
	if o.LayerGap <= 0 {
		o.LayerGap = DefaultLayerGap
	}
	if o.MaxLayerGap <= 0 {
		o.MaxLayerGap = DefaultMaxLayerGap
	}
	if o.GroupPadding <= 0 {
		o.GroupPadding = DefaultGroupPadding
	}
	if o.Sweeps <= 0 {
		o.Sweeps = DefaultSweeps
	}
	return o
}

// Box is an axis-aligned group bounding box in drawing coordinates.
type Box struct {
	GroupID    string
	MinX, MinY float64
	MaxX, MaxY float64
}

// Result carries the group boxes and the overall drawing extent.
type Result struct {
	Boxes  []Box
	Width  float64
	Height float64
}

// Assign computes center coordinates for every node of an ordered layer
// graph and returns the group boxes and drawing extent. X grows rightward
// and Y grows downward; the drawing is normalized so it starts at the
// origin.
func Assign(lg *hier.LayerGraph, opts Options) Result {
	opts = opts.withDefaults()
	layers := lg.LayerIDs()
	if len(layers) == 0 {
		return Result{}
	}

	packLayers(lg, layers, opts)
	refineX(lg, layers, opts)
	assignY(lg, layers, opts)

	boxes := groupBoxes(lg, opts)
	boxes = pushOverlaps(lg, layers, boxes, opts)

	return normalize(lg, boxes, opts)
}

// packLayers assigns the initial left-to-right packing, honoring hints when
// they do not violate the minimum gap against the previous sibling.
func packLayers(lg *hier.LayerGraph, layers []int, opts Options) {
	for _, l := range layers {
		cursor := 0.0
		for _, n := range lg.LayerNodes(l) {
			x := cursor + n.Width/2
			if hint, ok := opts.XHints[n.ID]; ok && hint > x {
				x = hint
			}
			n.X = x
			cursor = x + n.Width/2 + opts.NodeGap
		}
	}
}

// refineX runs the priority method: alternating sweeps pull every node
// toward the mean of its adjacent-layer neighbors, displacing only
// lower-priority siblings.
func refineX(lg *hier.LayerGraph, layers []int, opts Options) {
	for sweep := 0; sweep < opts.Sweeps; sweep++ {
		if sweep%2 == 0 {
			for i := 1; i < len(layers); i++ {
				alignLayer(lg, layers[i], opts, true)
			}
		} else {
			for i := len(layers) - 2; i >= 0; i-- {
				alignLayer(lg, layers[i], opts, false)
			}
		}
	}
}

// alignLayer processes one layer's nodes from highest to lowest priority,
// moving each toward its neighbor mean within the room its lower-priority
// siblings allow.
func alignLayer(lg *hier.LayerGraph, layer int, opts Options, usePred bool) {
	nodes := lg.LayerNodes(layer)

	prios := make([]int, len(nodes))
	idx := make([]int, len(nodes))
	for i, n := range nodes {
		prios[i] = priority(lg, n)
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return prios[b] - prios[a] })

	for _, i := range idx {
		desired, ok := neighborMean(lg, nodes[i], usePred)
		if !ok {
			continue
		}
		moveNode(nodes, prios, i, desired, opts.NodeGap)
	}
}

func priority(lg *hier.LayerGraph, n *hier.Node) int {
	if n.IsDummy() {
		return dummyPriority
	}
	return len(lg.In(n.ID)) + len(lg.Out(n.ID))
}

// neighborMean returns the mean center X of the node's neighbors in the
// adjacent layer, or false when it has none.
func neighborMean(lg *hier.LayerGraph, n *hier.Node, usePred bool) (float64, bool) {
	edges := lg.In(n.ID)
	if !usePred {
		edges = lg.Out(n.ID)
	}
	if len(edges) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, e := range edges {
		other := e.From
		if !usePred {
			other = e.To
		}
		sum += lg.Node(other).X
	}
	return sum / float64(len(edges)), true
}

// moveNode shifts nodes[i] toward desired, pushing strictly lower-priority
// siblings out of the way and stopping at the first sibling of equal or
// higher priority.
func moveNode(nodes []*hier.Node, prios []int, i int, desired float64, gap float64) {
	n := nodes[i]
	switch {
	case desired > n.X:
		limit := math.Inf(1)
		need := n.Width / 2
		for j := i + 1; j < len(nodes); j++ {
			s := nodes[j]
			need += gap + s.Width
			if prios[j] >= prios[i] {
				limit = s.X + s.Width/2 - need
				break
			}
		}
		if desired > limit {
			desired = limit
		}
		if desired <= n.X {
			return
		}
		n.X = desired
		for j := i + 1; j < len(nodes); j++ {
			minX := nodes[j-1].X + nodes[j-1].Width/2 + gap + nodes[j].Width/2
			if nodes[j].X >= minX {
				break
			}
			nodes[j].X = minX
		}
	case desired < n.X:
		limit := math.Inf(-1)
		need := n.Width / 2
		for j := i - 1; j >= 0; j-- {
			s := nodes[j]
			need += gap + s.Width
			if prios[j] >= prios[i] {
				limit = s.X - s.Width/2 + need
				break
			}
		}
		if desired < limit {
			desired = limit
		}
		if desired >= n.X {
			return
		}
		n.X = desired
		for j := i - 1; j >= 0; j-- {
			maxX := nodes[j+1].X - nodes[j+1].Width/2 - gap - nodes[j].Width/2
			if nodes[j].X <= maxX {
				break
			}
			nodes[j].X = maxX
		}
	}
}

// assignY stacks the layers top to bottom. The gap below a layer widens with
// the steepest edge leaving it, clamped between LayerGap and MaxLayerGap.
func assignY(lg *hier.LayerGraph, layers []int, opts Options) {
	top := 0.0
	for i, l := range layers {
		height := 0.0
		for _, n := range lg.LayerNodes(l) {
			if n.Height > height {
				height = n.Height
			}
		}
		for _, n := range lg.LayerNodes(l) {
			n.Y = top + height/2
		}
		if i+1 < len(layers) {
			top += height + layerGap(lg, l, opts)
		}
	}
}

// layerGap computes the vertical gap below the given layer: a quarter of the
// widest horizontal jump among edges leaving the layer, clamped to the
// configured range. Gentle slopes keep the default gap; long jumps get more
// room so edge angles stay readable.
func layerGap(lg *hier.LayerGraph, layer int, opts Options) float64 {
	maxDX := 0.0
	for _, n := range lg.LayerNodes(layer) {
		for _, e := range lg.Out(n.ID) {
			if dx := math.Abs(lg.Node(e.To).X - n.X); dx > maxDX {
				maxDX = dx
			}
		}
	}
	gap := maxDX / 4
	if gap < opts.LayerGap {
		gap = opts.LayerGap
	}
	if gap > opts.MaxLayerGap {
		gap = opts.MaxLayerGap
	}
	return gap
}

// groupBoxes computes padded bounding boxes, children before parents so
// nested boxes are contained in their parents.
func groupBoxes(lg *hier.LayerGraph, opts Options) []Box {
	ids := lg.GroupIDs()
	if len(ids) == 0 {
		return nil
	}

	depth := func(gid string) int {
		d := 0
		for p := lg.GroupParent(gid); p != ""; p = lg.GroupParent(p) {
			d++
		}
		return d
	}
	ordered := slices.Clone(ids)
	slices.SortStableFunc(ordered, func(a, b string) int { return depth(b) - depth(a) })

	byID := make(map[string]*Box, len(ids))
	for _, gid := range ordered {
		box := &Box{GroupID: gid, MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
		for _, id := range lg.NodeIDs() {
			n := lg.Node(id)
			if n.Group != gid {
				continue
			}
			box.MinX = math.Min(box.MinX, n.X-n.Width/2)
			box.MaxX = math.Max(box.MaxX, n.X+n.Width/2)
			box.MinY = math.Min(box.MinY, n.Y-n.Height/2)
			box.MaxY = math.Max(box.MaxY, n.Y+n.Height/2)
		}
		for _, child := range ids {
			if lg.GroupParent(child) != gid {
				continue
			}
			cb := byID[child]
			box.MinX = math.Min(box.MinX, cb.MinX)
			box.MaxX = math.Max(box.MaxX, cb.MaxX)
			box.MinY = math.Min(box.MinY, cb.MinY)
			box.MaxY = math.Max(box.MaxY, cb.MaxY)
		}
		if box.MinX > box.MaxX { // empty group
			box.MinX, box.MinY, box.MaxX, box.MaxY = 0, 0, 0, 0
		} else {
			box.MinX -= opts.GroupPadding
			box.MinY -= opts.GroupPadding
			box.MaxX += opts.GroupPadding
			box.MaxY += opts.GroupPadding
		}
		byID[gid] = box
	}

	boxes := make([]Box, 0, len(ids))
	for _, gid := range ids {
		boxes = append(boxes, *byID[gid])
	}
	return boxes
}

// pushOverlaps shifts foreign nodes out of group boxes. A node overlapping a
// box it does not belong to is moved to the box's right edge, and its right
// siblings follow to preserve the minimum gap. Boxes are then recomputed
// once, since member positions never change.
func pushOverlaps(lg *hier.LayerGraph, layers []int, boxes []Box, opts Options) []Box {
	if len(boxes) == 0 {
		return boxes
	}
	moved := false
	for _, box := range boxes {
		for _, l := range layers {
			nodes := lg.LayerNodes(l)
			for i, n := range nodes {
				if inGroup(lg, n, box.GroupID) {
					continue
				}
				top, bottom := n.Y-n.Height/2, n.Y+n.Height/2
				if bottom <= box.MinY || top >= box.MaxY {
					continue
				}
				left, right := n.X-n.Width/2, n.X+n.Width/2
				if right <= box.MinX || left >= box.MaxX {
					continue
				}
				n.X = box.MaxX + opts.NodeGap + n.Width/2
				moved = true
				for j := i + 1; j < len(nodes); j++ {
					minX := nodes[j-1].X + nodes[j-1].Width/2 + opts.NodeGap + nodes[j].Width/2
					if nodes[j].X >= minX {
						break
					}
					nodes[j].X = minX
				}
			}
		}
	}
	if moved {
		return groupBoxes(lg, opts)
	}
	return boxes
}

// inGroup reports whether the node belongs to the group or any of its
// subgroups.
func inGroup(lg *hier.LayerGraph, n *hier.Node, gid string) bool {
	for g := n.Group; g != ""; g = lg.GroupParent(g) {
		if g == gid {
			return true
		}
	}
	return false
}

// normalize shifts the drawing so its top-left corner sits at the origin and
// returns the final extent.
func normalize(lg *hier.LayerGraph, boxes []Box, opts Options) Result {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, id := range lg.NodeIDs() {
		n := lg.Node(id)
		minX = math.Min(minX, n.X-n.Width/2)
		maxX = math.Max(maxX, n.X+n.Width/2)
		minY = math.Min(minY, n.Y-n.Height/2)
		maxY = math.Max(maxY, n.Y+n.Height/2)
	}
	for _, b := range boxes {
		minX = math.Min(minX, b.MinX)
		maxX = math.Max(maxX, b.MaxX)
		minY = math.Min(minY, b.MinY)
		maxY = math.Max(maxY, b.MaxY)
	}
	if minX > maxX {
		return Result{}
	}

	for _, id := range lg.NodeIDs() {
		n := lg.Node(id)
		n.X -= minX
		n.Y -= minY
	}
	for i := range boxes {
		boxes[i].MinX -= minX
		boxes[i].MaxX -= minX
		boxes[i].MinY -= minY
		boxes[i].MaxY -= minY
	}
	return Result{Boxes: boxes, Width: maxX - minX, Height: maxY - minY}
}
