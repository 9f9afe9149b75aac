package transform

import "github.com/irview/irview/pkg/hier"

// AssignLayers places every node on a layer using longest-path placement:
// sources (no incoming edges) sit on layer 0 and every other node sits one
// past the deepest of its predecessors. Run [BreakCycles] first; the
// traversal assumes an acyclic graph.
//
// Groups constrain the placement. Each group is layered as a single block
// whose height is the number of layers its members need internally, computed
// recursively for nested groups. This keeps every group's members on a
// contiguous band of layers. When the group structure is not compatible with
// the edge directions (collapsing some group to a single block would create
// a cycle between blocks), the group constraint is dropped for that pass and
// nodes are layered individually, preserving the strict forward direction of
// every edge.
//
// The computed layers are written into the nodes and the per-layer index is
// rebuilt.
func AssignLayers(lg *hier.LayerGraph) {
	rel, ok := layerScope(lg, "")
	if !ok {
		rel = layerFlat(lg)
	}
	for _, id := range lg.NodeIDs() {
		lg.Node(id).Layer = rel[id]
	}
	lg.RebuildLayers()
}

// layerScope layers the direct children of one group scope ("" is the top
// level). Children are the nodes whose innermost group is the scope plus the
// subgroups whose parent is the scope. Subgroups are layered recursively and
// then treated as single blocks spanning their inner depth. Returns absolute
// layers relative to the scope's first layer for every node transitively
// contained in the scope, and false when the collapsed child graph has a
// cycle.
func layerScope(lg *hier.LayerGraph, scope string) (map[string]int, bool) {
	type child struct {
		id     string // node ID, or group ID for subgroups
		height int
		inner  map[string]int // nil for plain nodes
	}

	var children []*child
	owner := make(map[string]int) // node ID → index into children

	for _, gid := range lg.GroupIDs() {
		if lg.GroupParent(gid) != scope {
			continue
		}
		inner, ok := layerScope(lg, gid)
		if !ok {
			return nil, false
		}
		c := &child{id: gid, height: 1, inner: inner}
		for id, l := range inner {
			owner[id] = len(children)
			if l+1 > c.height {
				c.height = l + 1
			}
		}
		children = append(children, c)
	}
	for _, id := range lg.NodeIDs() {
		if lg.Node(id).Group != scope {
			continue
		}
		owner[id] = len(children)
		children = append(children, &child{id: id, height: 1})
	}

	// Lift edges onto the collapsed child graph. Only edges whose endpoints
	// both live in this scope and fall into different children matter here;
	// the rest are handled by a deeper or shallower scope.
	succ := make([][]int, len(children))
	inDegree := make([]int, len(children))
	for _, e := range lg.Edges() {
		from, okF := owner[e.From]
		to, okT := owner[e.To]
		if !okF || !okT || from == to {
			continue
		}
		succ[from] = append(succ[from], to)
		inDegree[to]++
	}

	// Weighted longest path over the collapsed graph: a successor starts
	// after the full band of its predecessor.
	layer := make([]int, len(children))
	var queue []int
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++
		for _, next := range succ[curr] {
			if l := layer[curr] + children[curr].height; l > layer[next] {
				layer[next] = l
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if processed != len(children) {
		return nil, false
	}

	rel := make(map[string]int, len(owner))
	for i, c := range children {
		if c.inner == nil {
			rel[c.id] = layer[i]
			continue
		}
		for id, l := range c.inner {
			rel[id] = layer[i] + l
		}
	}
	return rel, true
}

// layerFlat is the fallback longest-path layering that ignores groups.
func layerFlat(lg *hier.LayerGraph) map[string]int {
	rel := make(map[string]int, lg.NodeCount())
	inDegree := make(map[string]int, lg.NodeCount())
	var queue []string

	for _, id := range lg.NodeIDs() {
		inDegree[id] = len(lg.In(id))
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, e := range lg.Out(curr) {
			if l := rel[curr] + 1; l > rel[e.To] {
				rel[e.To] = l
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return rel
}

// PinLayers moves hinted nodes to the outermost layers. A first-layer hint
// applies only to nodes without incoming edges and a last-layer hint only to
// nodes without outgoing edges; moving anything else would break the strict
// forward direction of the edges, so those hints are ignored, as are IDs not
// present in the graph. Run after [AssignLayers] and before edge subdivision.
func PinLayers(lg *hier.LayerGraph, first, last []string) {
	moved := false
	for _, id := range first {
		n := lg.Node(id)
		if n == nil || len(lg.In(id)) > 0 || n.Layer == 0 {
			continue
		}
		n.Layer = 0
		moved = true
	}
	max := lg.MaxLayer()
	for _, id := range last {
		n := lg.Node(id)
		if n == nil || len(lg.Out(id)) > 0 || n.Layer == max {
			continue
		}
		n.Layer = max
		moved = true
	}
	if moved {
		lg.RebuildLayers()
	}
}
