package coords

import (
	"math"
	"testing"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/hier"
	"github.com/irview/irview/pkg/hier/ordering"
	"github.com/irview/irview/pkg/hier/transform"
)

type spec struct {
	nodes      []string
	edges      [][2]string
	groups     map[string]graph.Group
	membership map[string]string
}

func build(t *testing.T, s spec) *hier.LayerGraph {
	t.Helper()
	b := graph.NewBuilder()
	for id, gr := range s.groups {
		gr.ID = id
		if err := b.AddGroup(gr); err != nil {
			t.Fatalf("AddGroup(%q): %v", id, err)
		}
	}
	for _, id := range s.nodes {
		n := graph.Node{ID: id, Width: 40, Height: 20, Group: s.membership[id]}
		if err := b.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
	}
	for _, e := range s.edges {
		b.AddEdge(graph.Edge{From: e[0], To: e[1]})
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	lg := hier.Build(g)
	transform.BreakCycles(lg)
	transform.AssignLayers(lg)
	transform.SplitLongEdges(lg, 0)
	ordering.WeightedMedian{}.Order(lg)
	return lg
}

func assertGaps(t *testing.T, lg *hier.LayerGraph, gap float64) {
	t.Helper()
	for _, l := range lg.LayerIDs() {
		nodes := lg.LayerNodes(l)
		for i := 1; i < len(nodes); i++ {
			left, right := nodes[i-1], nodes[i]
			dist := (right.X - right.Width/2) - (left.X + left.Width/2)
			if dist < gap-1e-9 {
				t.Errorf("layer %d: gap between %s and %s = %.2f, want >= %.2f",
					l, left.ID, right.ID, dist, gap)
			}
		}
	}
}

func TestAssign_ChainIsVerticallyAligned(t *testing.T) {
	lg := build(t, spec{
		nodes: []string{"a", "b", "c"},
		edges: [][2]string{{"a", "b"}, {"b", "c"}},
	})

	Assign(lg, Options{})

	ax, bx, cx := lg.Node("a").X, lg.Node("b").X, lg.Node("c").X
	if math.Abs(ax-bx) > 1e-9 || math.Abs(bx-cx) > 1e-9 {
		t.Errorf("chain x = %.2f %.2f %.2f, want aligned", ax, bx, cx)
	}
}

func TestAssign_RespectsNodeGap(t *testing.T) {
	lg := build(t, spec{
		nodes: []string{"a", "b", "c", "d", "e"},
		edges: [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"a", "e"}},
	})

	Assign(lg, Options{NodeGap: 30})

	assertGaps(t, lg, 30)
}

func TestAssign_LayersDoNotOverlap(t *testing.T) {
	lg := build(t, spec{
		nodes: []string{"a", "b", "c"},
		edges: [][2]string{{"a", "b"}, {"b", "c"}},
	})

	Assign(lg, Options{LayerGap: 40})

	ya, yb, yc := lg.Node("a").Y, lg.Node("b").Y, lg.Node("c").Y
	// Node height 20 plus gap 40: centers at least 60 apart.
	if yb-ya < 60-1e-9 || yc-yb < 60-1e-9 {
		t.Errorf("layer centers %.2f %.2f %.2f, want at least 60 apart", ya, yb, yc)
	}
}

func TestAssign_NormalizedToOrigin(t *testing.T) {
	lg := build(t, spec{
		nodes: []string{"a", "b", "c", "d"},
		edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	})

	res := Assign(lg, Options{})

	minX, minY := math.Inf(1), math.Inf(1)
	for _, id := range lg.NodeIDs() {
		n := lg.Node(id)
		minX = math.Min(minX, n.X-n.Width/2)
		minY = math.Min(minY, n.Y-n.Height/2)
	}
	if math.Abs(minX) > 1e-9 || math.Abs(minY) > 1e-9 {
		t.Errorf("drawing min = (%.2f, %.2f), want origin", minX, minY)
	}
	if res.Width <= 0 || res.Height <= 0 {
		t.Errorf("extent = %.2f×%.2f, want positive", res.Width, res.Height)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	s := spec{
		nodes: []string{"a", "b", "c", "d", "e", "f"},
		edges: [][2]string{{"a", "c"}, {"a", "d"}, {"b", "d"}, {"b", "e"}, {"d", "f"}},
	}
	first := build(t, s)
	Assign(first, Options{})
	second := build(t, s)
	Assign(second, Options{})

	for _, id := range first.NodeIDs() {
		fn, sn := first.Node(id), second.Node(id)
		if fn.X != sn.X || fn.Y != sn.Y {
			t.Errorf("node %s at (%.2f,%.2f) vs (%.2f,%.2f) across identical runs",
				id, fn.X, fn.Y, sn.X, sn.Y)
		}
	}
}

func TestAssign_GroupBoxContainsMembers(t *testing.T) {
	lg := build(t, spec{
		nodes:      []string{"entry", "x", "y", "exit"},
		edges:      [][2]string{{"entry", "x"}, {"x", "y"}, {"y", "exit"}},
		groups:     map[string]graph.Group{"g": {Label: "body"}},
		membership: map[string]string{"x": "g", "y": "g"},
	})

	res := Assign(lg, Options{GroupPadding: 10})

	if len(res.Boxes) != 1 {
		t.Fatalf("box count = %d, want 1", len(res.Boxes))
	}
	box := res.Boxes[0]
	for _, id := range []string{"x", "y"} {
		n := lg.Node(id)
		if n.X-n.Width/2 < box.MinX || n.X+n.Width/2 > box.MaxX ||
			n.Y-n.Height/2 < box.MinY || n.Y+n.Height/2 > box.MaxY {
			t.Errorf("member %s outside group box", id)
		}
	}
	// Padding keeps members off the border.
	n := lg.Node("x")
	if (n.Y-n.Height/2)-box.MinY < 10-1e-9 {
		t.Errorf("top padding = %.2f, want >= 10", (n.Y-n.Height/2)-box.MinY)
	}
}

func TestAssign_NestedGroupBoxesAreContained(t *testing.T) {
	lg := build(t, spec{
		nodes:  []string{"a", "b", "c"},
		edges:  [][2]string{{"a", "b"}, {"b", "c"}},
		groups: map[string]graph.Group{"outer": {}, "inner": {Parent: "outer"}},
		membership: map[string]string{
			"a": "outer", "b": "inner", "c": "inner",
		},
	})

	res := Assign(lg, Options{})

	var outer, inner Box
	for _, b := range res.Boxes {
		switch b.GroupID {
		case "outer":
			outer = b
		case "inner":
			inner = b
		}
	}
	if inner.MinX < outer.MinX || inner.MaxX > outer.MaxX ||
		inner.MinY < outer.MinY || inner.MaxY > outer.MaxY {
		t.Errorf("inner box %+v not contained in outer %+v", inner, outer)
	}
}

func TestAssign_ForeignNodePushedOutOfBox(t *testing.T) {
	// side shares layers with the group band but is not a member; it must
	// not end up inside the box.
	lg := build(t, spec{
		nodes: []string{"entry", "x", "y", "side", "exit"},
		edges: [][2]string{
			{"entry", "x"}, {"x", "y"}, {"y", "exit"},
			{"entry", "side"}, {"side", "exit"},
		},
		groups:     map[string]graph.Group{"g": {}},
		membership: map[string]string{"x": "g", "y": "g"},
	})

	res := Assign(lg, Options{})

	if len(res.Boxes) != 1 {
		t.Fatalf("box count = %d, want 1", len(res.Boxes))
	}
	box := res.Boxes[0]
	n := lg.Node("side")
	overlapsY := n.Y+n.Height/2 > box.MinY && n.Y-n.Height/2 < box.MaxY
	overlapsX := n.X+n.Width/2 > box.MinX && n.X-n.Width/2 < box.MaxX
	if overlapsY && overlapsX {
		t.Errorf("side at (%.2f,%.2f) overlaps group box %+v", n.X, n.Y, box)
	}
}

func TestAssign_XHintsBiasPlacement(t *testing.T) {
	lg := build(t, spec{nodes: []string{"a"}})

	Assign(lg, Options{XHints: map[string]float64{"a": 500}})

	// A single node normalizes back to the origin regardless of the hint;
	// the hint must not break the extent.
	n := lg.Node("a")
	if n.X != n.Width/2 {
		t.Errorf("x = %.2f, want %.2f", n.X, n.Width/2)
	}
}

func TestAssign_EmptyGraph(t *testing.T) {
	lg := build(t, spec{})

	res := Assign(lg, Options{})

	if res.Width != 0 || res.Height != 0 || len(res.Boxes) != 0 {
		t.Errorf("empty graph produced extent %.2f×%.2f with %d boxes",
			res.Width, res.Height, len(res.Boxes))
	}
}
