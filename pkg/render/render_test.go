package render

import (
	"strings"
	"testing"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
)

func sampleLayout() *layout.Layout {
	return &layout.Layout{
		Name:   "sample",
		Width:  200,
		Height: 120,
		Nodes: []layout.NodeBox{
			{ID: "a", X: 10, Y: 10, Width: 60, Height: 24, Layer: 0},
			{ID: "b", X: 10, Y: 80, Width: 60, Height: 24, Layer: 1},
		},
		Edges: []layout.EdgeRoute{
			{From: "a", To: "b", Points: []layout.Point{{X: 40, Y: 34}, {X: 40, Y: 80}}},
		},
		Groups: []layout.GroupBox{
			{ID: "g", Label: "loop body", X: 5, Y: 70, Width: 80, Height: 40},
		},
	}
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	if err := b.AddGroup(graph.Group{ID: "g", Label: "loop body"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if err := b.AddNode(graph.Node{ID: "a", Label: "Start", Width: 60, Height: 24}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := b.AddNode(graph.Node{ID: "b", Label: "Phi <3>", Width: 60, Height: 24, Group: "g"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	b.AddEdge(graph.Edge{From: "a", To: "b"})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestRenderSVG_ContainsGeometry(t *testing.T) {
	svg := string(RenderSVG(sampleLayout()))

	for _, want := range []string{
		`viewBox="0 0 240.0 160.0"`,
		`id="node-a"`,
		`id="node-b"`,
		`<polyline class="edge"`,
		`class="group"`,
		`loop body`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestRenderSVG_LabelsFromGraph(t *testing.T) {
	svg := string(RenderSVG(sampleLayout(), WithGraph(sampleGraph(t))))

	if !strings.Contains(svg, ">Start<") {
		t.Error("SVG does not use graph label for node a")
	}
	if !strings.Contains(svg, "Phi &lt;3&gt;") {
		t.Error("SVG label not escaped")
	}
}

func TestRenderSVG_BackEdgeColored(t *testing.T) {
	l := sampleLayout()
	l.Edges = append(l.Edges, layout.EdgeRoute{
		From: "b", To: "a", Back: true,
		Points: []layout.Point{{X: 40, Y: 104}, {X: 90, Y: 104}, {X: 90, Y: 22}, {X: 70, Y: 22}},
	})

	svg := string(RenderSVG(l))
	if !strings.Contains(svg, `stroke="#c04040"`) {
		t.Error("back edge not drawn in its own color")
	}
}

func TestRenderSVG_InteractionOptIn(t *testing.T) {
	plain := string(RenderSVG(sampleLayout()))
	if strings.Contains(plain, "<script>") {
		t.Error("script embedded without WithInteraction")
	}

	wired := string(RenderSVG(sampleLayout(), WithInteraction()))
	if !strings.Contains(wired, "<script>") {
		t.Error("WithInteraction did not embed the script")
	}
}

func TestToDOT_NodesEdgesClusters(t *testing.T) {
	dot := ToDOT(sampleGraph(t), DOTOptions{})

	for _, want := range []string{
		"digraph G {",
		`"a" [label="Start"]`,
		`subgraph "cluster_g"`,
		`label="loop body"`,
		`"a" -> "b";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_NestedClusters(t *testing.T) {
	b := graph.NewBuilder()
	if err := b.AddGroup(graph.Group{ID: "outer"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddGroup(graph.Group{ID: "inner", Parent: "outer"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddNode(graph.Node{ID: "n", Group: "inner"}); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, DOTOptions{})
	outerIdx := strings.Index(dot, `"cluster_outer"`)
	innerIdx := strings.Index(dot, `"cluster_inner"`)
	if outerIdx < 0 || innerIdx < 0 || innerIdx < outerIdx {
		t.Errorf("inner cluster not nested inside outer:\n%s", dot)
	}
}
