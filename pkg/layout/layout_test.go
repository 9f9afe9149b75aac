package layout

import (
	"bytes"
	"testing"
)

func sample() *Layout {
	return &Layout{
		GraphID: "snap-1",
		Name:    "after parsing",
		Width:   200,
		Height:  120,
		Nodes: []NodeBox{
			{ID: "a", X: 10, Y: 0, Width: 40, Height: 20, Layer: 0},
			{ID: "b", X: 10, Y: 60, Width: 40, Height: 20, Layer: 1},
		},
		Edges: []EdgeRoute{
			{From: "a", To: "b", Points: []Point{{X: 30, Y: 20}, {X: 30, Y: 60}}},
		},
		Groups: []GroupBox{
			{ID: "g", Label: "body", X: 0, Y: 50, Width: 60, Height: 40},
		},
	}
}

func TestNodeBox_Center(t *testing.T) {
	b := NodeBox{X: 10, Y: 20, Width: 40, Height: 20}
	if b.CenterX() != 30 || b.CenterY() != 30 {
		t.Errorf("center = (%.1f, %.1f), want (30, 30)", b.CenterX(), b.CenterY())
	}
}

func TestLayout_NodeLookup(t *testing.T) {
	l := sample()

	b, ok := l.Node("b")
	if !ok {
		t.Fatal("Node(b) not found")
	}
	if b.Y != 60 {
		t.Errorf("b.Y = %.1f, want 60", b.Y)
	}
	if _, ok := l.Node("missing"); ok {
		t.Error("Node(missing) found, want absent")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	l := sample()

	var buf bytes.Buffer
	if err := Write(&buf, l); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read(): %v", err)
	}

	if got.GraphID != l.GraphID || got.Width != l.Width || got.Height != l.Height {
		t.Errorf("header = %q %.1f×%.1f, want %q %.1f×%.1f",
			got.GraphID, got.Width, got.Height, l.GraphID, l.Width, l.Height)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 || len(got.Groups) != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", len(got.Nodes), len(got.Edges), len(got.Groups))
	}
	if got.Edges[0].Points[1] != (Point{X: 30, Y: 60}) {
		t.Errorf("edge point = %+v, want {30 60}", got.Edges[0].Points[1])
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	first, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal(): %v", err)
	}
	second, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal(): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical layouts encoded differently")
	}
}
