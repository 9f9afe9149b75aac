package graph

import (
	"bytes"
	"errors"
	"testing"

	irerrors "github.com/irview/irview/pkg/errors"
)

func TestBuilder_Valid(t *testing.T) {
	b := NewBuilder()
	b.SetName("after parsing")
	if err := b.AddGroup(Group{ID: "g1", Label: "loop"}); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	for _, n := range []Node{
		{ID: "0", Label: "Start", Width: 50, Height: 20},
		{ID: "1", Label: "Add", Width: 40, Height: 20, Group: "g1"},
		{ID: "2", Label: "Return", Width: 60, Height: 20},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	b.AddEdge(Edge{From: "0", To: "1"})
	b.AddEdge(Edge{From: "1", To: "2", Label: "control"})

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	if g.ID() == "" {
		t.Error("snapshot ID not assigned")
	}
	if g.Name() != "after parsing" {
		t.Errorf("Name() = %q", g.Name())
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 || g.GroupCount() != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", g.NodeCount(), g.EdgeCount(), g.GroupCount())
	}

	n, ok := g.Node("1")
	if !ok || n.Label != "Add" || n.Group != "g1" {
		t.Errorf("Node(1) = %+v, %v", n, ok)
	}
	if got := g.Members("g1"); len(got) != 1 || got[0] != "1" {
		t.Errorf("Members(g1) = %v", got)
	}
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("empty node ID", func(t *testing.T) {
		b := NewBuilder()
		if err := b.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
			t.Errorf("error = %v, want ErrInvalidNodeID", err)
		}
	})

	t.Run("duplicate node ID", func(t *testing.T) {
		b := NewBuilder()
		if err := b.AddNode(Node{ID: "a"}); err != nil {
			t.Fatal(err)
		}
		if err := b.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
			t.Errorf("error = %v, want ErrDuplicateNodeID", err)
		}
	})

	t.Run("dangling edge", func(t *testing.T) {
		b := NewBuilder()
		if err := b.AddNode(Node{ID: "a"}); err != nil {
			t.Fatal(err)
		}
		b.AddEdge(Edge{From: "a", To: "ghost"})
		if _, err := b.Build(); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("error = %v, want ErrInvalidReference", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		b := NewBuilder()
		if err := b.AddNode(Node{ID: "a", Group: "ghost"}); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Build(); !errors.Is(err, ErrInvalidReference) {
			t.Errorf("error = %v, want ErrInvalidReference", err)
		}
	})

	t.Run("group cycle", func(t *testing.T) {
		b := NewBuilder()
		if err := b.AddGroup(Group{ID: "x", Parent: "y"}); err != nil {
			t.Fatal(err)
		}
		if err := b.AddGroup(Group{ID: "y", Parent: "x"}); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Build(); !errors.Is(err, ErrGroupCycle) {
			t.Errorf("error = %v, want ErrGroupCycle", err)
		}
	})

	t.Run("builder error is sticky", func(t *testing.T) {
		b := NewBuilder()
		_ = b.AddNode(Node{})
		if err := b.AddNode(Node{ID: "fine"}); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Build(); !errors.Is(err, ErrInvalidNodeID) {
			t.Errorf("Build() = %v, want the first AddNode error", err)
		}
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	b := NewBuilder()
	b.SetName("mid tier")
	if err := b.AddGroup(Group{ID: "outer"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddGroup(Group{ID: "inner", Label: "body", Parent: "outer"}); err != nil {
		t.Fatal(err)
	}
	for _, n := range []Node{
		{ID: "a", Width: 40, Height: 20},
		{ID: "b", Label: "Phi", Width: 40, Height: 20, Group: "inner"},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	b.AddEdge(Edge{From: "a", To: "b"})
	b.AddEdge(Edge{From: "b", To: "b"})
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if back.ID() != g.ID() {
		t.Errorf("snapshot ID changed: %s vs %s", back.ID(), g.ID())
	}
	if back.Name() != g.Name() {
		t.Errorf("name changed: %q vs %q", back.Name(), g.Name())
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("counts changed: %d/%d vs %d/%d",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	n, ok := back.Node("b")
	if !ok || n.Label != "Phi" || n.Group != "inner" {
		t.Errorf("Node(b) after round trip = %+v, %v", n, ok)
	}
	gr, ok := back.Group("inner")
	if !ok || gr.Parent != "outer" {
		t.Errorf("Group(inner) after round trip = %+v, %v", gr, ok)
	}
}

func TestMarshalContent_IgnoresSnapshotID(t *testing.T) {
	mk := func() *Graph {
		b := NewBuilder()
		if err := b.AddNode(Node{ID: "a", Width: 10, Height: 10}); err != nil {
			t.Fatal(err)
		}
		g, err := b.Build()
		if err != nil {
			t.Fatal(err)
		}
		return g
	}

	g1, g2 := mk(), mk()
	if g1.ID() == g2.ID() {
		t.Fatal("separate builds share a snapshot ID")
	}

	d1, err := MarshalContent(g1)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := MarshalContent(g2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d1, d2) {
		t.Error("content bytes differ for identical snapshots")
	}
}

func TestSelfIdentity(t *testing.T) {
	b := NewBuilder()
	for _, id := range []string{"a", "b"} {
		if err := b.AddNode(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	m := SelfIdentity(g)
	for _, id := range []string{"a", "b"} {
		if old, ok := m.Previous(id); !ok || old != id {
			t.Errorf("Previous(%s) = %q, %v", id, old, ok)
		}
	}
	if _, ok := m.Previous("ghost"); ok {
		t.Error("unknown node matched")
	}

	var nilMap IdentityMap
	if _, ok := nilMap.Previous("a"); ok {
		t.Error("nil map matched a node")
	}
}

func TestToGraph_CodedErrors(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		code     irerrors.Code
		sentinel error
	}{
		{
			name: "dangling edge",
			snapshot: Snapshot{
				Nodes: []SnapshotNode{{ID: "a", Width: 40, Height: 20}},
				Edges: []SnapshotEdge{{From: "a", To: "ghost"}},
			},
			code:     irerrors.ErrCodeInvalidReference,
			sentinel: ErrInvalidReference,
		},
		{
			name: "duplicate node",
			snapshot: Snapshot{
				Nodes: []SnapshotNode{
					{ID: "a", Width: 40, Height: 20},
					{ID: "a", Width: 40, Height: 20},
				},
			},
			code:     irerrors.ErrCodeInvalidGraph,
			sentinel: ErrDuplicateNodeID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGraph(tt.snapshot)
			if err == nil {
				t.Fatal("ToGraph() succeeded, want error")
			}
			if got := irerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
		})
	}
}
