package hier

import (
	"testing"

	"github.com/irview/irview/pkg/graph"
)

func build(t *testing.T, nodes []string, edges [][2]string) *LayerGraph {
	t.Helper()
	b := graph.NewBuilder()
	for _, id := range nodes {
		if err := b.AddNode(graph.Node{ID: id, Width: 40, Height: 20}); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
	}
	for _, e := range edges {
		b.AddEdge(graph.Edge{From: e[0], To: e[1]})
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	return Build(g)
}

func TestBuild_SetsSelfLoopsAside(t *testing.T) {
	lg := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "a"}})

	if len(lg.Edges()) != 1 {
		t.Errorf("working edges = %d, want 1", len(lg.Edges()))
	}
	loops := lg.SelfLoops()
	if len(loops) != 1 || loops[0].From != "a" {
		t.Errorf("self loops = %v, want one on a", loops)
	}
	if len(lg.Out("a")) != 1 {
		t.Errorf("Out(a) = %d edges, want 1 (loop excluded)", len(lg.Out("a")))
	}
}

func TestReverse_KeepsIDAndTogglesFlag(t *testing.T) {
	lg := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	e := lg.Edges()[0]

	lg.Reverse(e)
	if e.From != "b" || e.To != "a" || !e.Reversed {
		t.Errorf("after Reverse: %+v", e)
	}
	if len(lg.Out("b")) != 1 || len(lg.In("a")) != 1 {
		t.Error("adjacency not updated")
	}

	lg.Reverse(e)
	if e.From != "a" || e.Reversed {
		t.Errorf("double Reverse is not a no-op: %+v", e)
	}
}

func TestAddDummy_DeterministicID(t *testing.T) {
	lg := build(t, []string{"a"}, nil)
	d := lg.AddDummy(3, 2)
	if d.ID != "dummy:3:2" {
		t.Errorf("dummy ID = %q", d.ID)
	}
	if !d.IsDummy() || d.EdgeID != 3 || d.Layer != 2 {
		t.Errorf("dummy = %+v", d)
	}
	if lg.Node("dummy:3:2") != d {
		t.Error("dummy not registered")
	}
}

func TestAddDummy_SkipsTakenID(t *testing.T) {
	// A snapshot node may carry the exact ID a dummy would generate.
	lg := build(t, []string{"dummy:0:1", "a"}, nil)
	real := lg.Node("dummy:0:1")

	d := lg.AddDummy(0, 1)

	if d.ID != "dummy:0:1+" {
		t.Errorf("dummy ID = %q, want dummy:0:1+", d.ID)
	}
	if lg.Node("dummy:0:1") != real || real.IsDummy() {
		t.Error("real node clobbered by dummy")
	}
	if lg.Node(d.ID) != d {
		t.Error("dummy not registered under its own ID")
	}
}

func TestRebuildLayers(t *testing.T) {
	lg := build(t, []string{"a", "b", "c"}, nil)
	lg.Node("a").Layer = 0
	lg.Node("b").Layer = 1
	lg.Node("c").Layer = 1
	lg.RebuildLayers()

	if got := lg.LayerIDs(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("LayerIDs() = %v", got)
	}
	if lg.MaxLayer() != 1 {
		t.Errorf("MaxLayer() = %d", lg.MaxLayer())
	}
	if nodes := lg.LayerNodes(1); len(nodes) != 2 {
		t.Errorf("layer 1 has %d nodes", len(nodes))
	}
}

// Two straight segments sharing no endpoints, sources and targets in
// opposite order: exactly one crossing.
func TestCountLayerCrossings_SingleCross(t *testing.T) {
	lg := build(t, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "y"}, {"b", "x"}})
	for _, id := range []string{"a", "b"} {
		lg.Node(id).Layer = 0
	}
	for _, id := range []string{"x", "y"} {
		lg.Node(id).Layer = 1
	}
	lg.RebuildLayers()

	if got := CountCrossings(lg); got != 1 {
		t.Errorf("crossings = %d, want 1", got)
	}
}

func TestCountLayerCrossings_ParallelNoCross(t *testing.T) {
	lg := build(t, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "x"}, {"b", "y"}})
	for _, id := range []string{"a", "b"} {
		lg.Node(id).Layer = 0
	}
	for _, id := range []string{"x", "y"} {
		lg.Node(id).Layer = 1
	}
	lg.RebuildLayers()

	if got := CountCrossings(lg); got != 0 {
		t.Errorf("crossings = %d, want 0", got)
	}
}

func TestCountLayerCrossings_CompleteBipartite(t *testing.T) {
	// K2,2 drawn with both sources connected to both targets: exactly one
	// crossing regardless of ordering.
	lg := build(t, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}})
	for _, id := range []string{"a", "b"} {
		lg.Node(id).Layer = 0
	}
	for _, id := range []string{"x", "y"} {
		lg.Node(id).Layer = 1
	}
	lg.RebuildLayers()

	if got := CountCrossings(lg); got != 1 {
		t.Errorf("crossings = %d, want 1", got)
	}
}
