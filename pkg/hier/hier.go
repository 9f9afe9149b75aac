package hier

import (
	"fmt"
	"slices"

	"github.com/irview/irview/pkg/graph"
)

// NodeKind distinguishes real snapshot nodes from synthetic nodes created
// while preparing the layering.
type NodeKind int

const (
	// NodeReal is an original node from the graph snapshot.
	NodeReal NodeKind = iota
	// NodeDummy is a synthetic node inserted on an intermediate layer so a
	// long edge spans only adjacent layers. Dummies carry the EdgeID of the
	// edge they subdivide and are ordered like ordinary nodes.
	NodeDummy
)

// Node is a working node of the layering. X and Y are center coordinates,
// assigned late in the pipeline by the coordinate stage.
type Node struct {
	ID     string
	Kind   NodeKind
	EdgeID int // for dummies, index of the subdivided edge; -1 otherwise
	Group  string

	Layer int
	Order int // position within the layer, set by crossing reduction

	Width  float64
	Height float64
	X, Y   float64
}

// IsDummy reports whether the node was inserted to break a long edge.
func (n *Node) IsDummy() bool { return n.Kind == NodeDummy }

// Edge is a working edge. From and To are in layering orientation: after
// cycle breaking every edge points from a lower to a higher layer, and
// Reversed records that the snapshot edge ran the other way. ID indexes the
// snapshot's edge list and is shared by all segments of a split edge.
type Edge struct {
	ID       int
	From     string
	To       string
	Label    string
	Reversed bool
}

// LayerGraph is the private working structure of one layout pass. It is not
// safe for concurrent use; each pipeline invocation builds its own and
// discards it when the pass completes.
type LayerGraph struct {
	nodes map[string]*Node
	ids   []string // deterministic iteration order: sorted reals, then dummies in creation order
	edges []*Edge
	loops []*Edge // self-loops, set aside before cycle breaking

	out map[string][]*Edge
	in  map[string][]*Edge

	groupParent map[string]string // group ID → parent group ID ("" for top level)
	groupIDs    []string          // sorted

	layers map[int][]*Node
}

// Build derives a LayerGraph from an immutable snapshot. Self-loops are set
// aside immediately (they carry no layering information) and surface again
// in [LayerGraph.SelfLoops] for the edge router.
func Build(g *graph.Graph) *LayerGraph {
	lg := &LayerGraph{
		nodes:       make(map[string]*Node, g.NodeCount()),
		ids:         make([]string, 0, g.NodeCount()),
		out:         make(map[string][]*Edge),
		in:          make(map[string][]*Edge),
		groupParent: make(map[string]string, g.GroupCount()),
		groupIDs:    g.GroupIDs(),
	}
	for _, gid := range lg.groupIDs {
		grp, _ := g.Group(gid)
		lg.groupParent[gid] = grp.Parent
	}
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		ln := &Node{
			ID:     n.ID,
			Kind:   NodeReal,
			EdgeID: -1,
			Group:  n.Group,
			Width:  n.Width,
			Height: n.Height,
		}
		lg.nodes[ln.ID] = ln
		lg.ids = append(lg.ids, ln.ID)
	}
	for i, e := range g.Edges() {
		le := &Edge{ID: i, From: e.From, To: e.To, Label: e.Label}
		if e.IsSelfLoop() {
			lg.loops = append(lg.loops, le)
			continue
		}
		lg.edges = append(lg.edges, le)
		lg.out[le.From] = append(lg.out[le.From], le)
		lg.in[le.To] = append(lg.in[le.To], le)
	}
	return lg
}

// Node returns the working node with the given ID, or nil when absent.
func (lg *LayerGraph) Node(id string) *Node { return lg.nodes[id] }

// NodeIDs returns all node IDs in the deterministic iteration order. The
// slice is shared; callers must not modify it.
func (lg *LayerGraph) NodeIDs() []string { return lg.ids }

// NodeCount returns the number of working nodes, dummies included.
func (lg *LayerGraph) NodeCount() int { return len(lg.nodes) }

// Edges returns the current edge set. After SplitLongEdges, segments of a
// split edge share the original edge's ID. The slice is shared.
func (lg *LayerGraph) Edges() []*Edge { return lg.edges }

// SelfLoops returns the self-loop edges set aside at build time.
func (lg *LayerGraph) SelfLoops() []*Edge { return lg.loops }

// GroupIDs returns the group IDs in sorted order. The slice is shared.
func (lg *LayerGraph) GroupIDs() []string { return lg.groupIDs }

// GroupParent returns the parent of a group, or "" for top-level groups.
func (lg *LayerGraph) GroupParent(id string) string { return lg.groupParent[id] }

// Out returns the edges leaving the node. The slice is shared.
func (lg *LayerGraph) Out(id string) []*Edge { return lg.out[id] }

// In returns the edges entering the node. The slice is shared.
func (lg *LayerGraph) In(id string) []*Edge { return lg.in[id] }

// Reverse flips an edge in place, recording the reversal. The edge keeps its
// ID; the adjacency indexes are updated.
func (lg *LayerGraph) Reverse(e *Edge) {
	lg.out[e.From] = deleteEdge(lg.out[e.From], e)
	lg.in[e.To] = deleteEdge(lg.in[e.To], e)
	e.From, e.To = e.To, e.From
	e.Reversed = !e.Reversed
	lg.out[e.From] = append(lg.out[e.From], e)
	lg.in[e.To] = append(lg.in[e.To], e)
}

// RemoveEdge detaches an edge from the graph and its adjacency indexes.
func (lg *LayerGraph) RemoveEdge(e *Edge) {
	lg.edges = deleteEdge(lg.edges, e)
	lg.out[e.From] = deleteEdge(lg.out[e.From], e)
	lg.in[e.To] = deleteEdge(lg.in[e.To], e)
}

// AddEdge attaches a new working edge. Used by the subdivision stage when
// replacing a long edge with per-layer segments.
func (lg *LayerGraph) AddEdge(e *Edge) {
	lg.edges = append(lg.edges, e)
	lg.out[e.From] = append(lg.out[e.From], e)
	lg.in[e.To] = append(lg.in[e.To], e)
}

// AddDummy creates a dummy node for the given edge on the given layer and
// registers it. Dummy IDs are generated deterministically from the edge ID
// and layer, so identical inputs produce identical layerings. Node IDs are
// arbitrary strings, so a snapshot node may already occupy the generated ID;
// suffixing until free keeps the generation deterministic without clobbering
// the real node.
func (lg *LayerGraph) AddDummy(edgeID, layer int) *Node {
	id := fmt.Sprintf("dummy:%d:%d", edgeID, layer)
	for lg.nodes[id] != nil {
		id += "+"
	}
	n := &Node{
		ID:     id,
		Kind:   NodeDummy,
		EdgeID: edgeID,
		Layer:  layer,
	}
	lg.nodes[n.ID] = n
	lg.ids = append(lg.ids, n.ID)
	return n
}

// RebuildLayers groups nodes by their Layer field in the deterministic node
// order. Call after any stage that changes layer assignments.
func (lg *LayerGraph) RebuildLayers() {
	lg.layers = make(map[int][]*Node)
	for _, id := range lg.ids {
		n := lg.nodes[id]
		lg.layers[n.Layer] = append(lg.layers[n.Layer], n)
	}
}

// LayerNodes returns the nodes on the given layer. The slice is shared and
// is reordered in place by crossing reduction.
func (lg *LayerGraph) LayerNodes(layer int) []*Node { return lg.layers[layer] }

// LayerIDs returns the occupied layer indexes in ascending order.
func (lg *LayerGraph) LayerIDs() []int {
	ids := make([]int, 0, len(lg.layers))
	for l := range lg.layers {
		ids = append(ids, l)
	}
	slices.Sort(ids)
	return ids
}

// MaxLayer returns the highest occupied layer, or 0 for an empty graph.
func (lg *LayerGraph) MaxLayer() int {
	max := 0
	for l := range lg.layers {
		if l > max {
			max = l
		}
	}
	return max
}

// SortLayer re-sorts a layer slice by the nodes' Order fields, keeping the
// deterministic order for ties.
func (lg *LayerGraph) SortLayer(layer int) {
	slices.SortStableFunc(lg.layers[layer], func(a, b *Node) int { return a.Order - b.Order })
}

func deleteEdge(s []*Edge, e *Edge) []*Edge {
	return slices.DeleteFunc(s, func(x *Edge) bool { return x == e })
}
