package graph

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	irerrors "github.com/irview/irview/pkg/errors"
)

// Snapshot is the canonical JSON form of a [Graph]. It is the wire format of
// the ingestion boundary: produced by compiler dump converters and filter
// tools, consumed by the layout pipeline.
//
// The format is designed for round-trip fidelity: decode → layout → encode
// never loses structure, and encoding is deterministic (sorted nodes, edges,
// and groups).
type Snapshot struct {
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name,omitempty"`
	Nodes  []SnapshotNode `json:"nodes"`
	Edges  []SnapshotEdge `json:"edges,omitempty"`
	Groups []SnapshotGrp  `json:"groups,omitempty"`
}

// SnapshotNode is the JSON form of a [Node].
type SnapshotNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Group  string  `json:"group,omitempty"`
}

// SnapshotEdge is the JSON form of an [Edge].
type SnapshotEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// SnapshotGrp is the JSON form of a [Group].
type SnapshotGrp struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// FromGraph converts a Graph to its serialization form. Nodes and groups are
// emitted in sorted ID order; edges sorted by (from, to, label).
func FromGraph(g *Graph) Snapshot {
	s := Snapshot{
		ID:    g.ID(),
		Name:  g.Name(),
		Nodes: make([]SnapshotNode, 0, g.NodeCount()),
	}
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		s.Nodes = append(s.Nodes, SnapshotNode{
			ID:     n.ID,
			Label:  n.Label,
			Width:  n.Width,
			Height: n.Height,
			Group:  n.Group,
		})
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, SnapshotEdge{From: e.From, To: e.To, Label: e.Label})
	}
	slices.SortStableFunc(s.Edges, func(a, b SnapshotEdge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	for _, id := range g.GroupIDs() {
		gr, _ := g.Group(id)
		s.Groups = append(s.Groups, SnapshotGrp{ID: gr.ID, Label: gr.Label, Parent: gr.Parent})
	}
	return s
}

// ToGraph converts a decoded Snapshot into an immutable Graph, validating
// structural integrity via [Builder]. Validation failures carry a coded
// error: [irerrors.ErrCodeInvalidReference] for dangling edge or group
// references, [irerrors.ErrCodeInvalidGraph] for everything else. The
// builder sentinels stay reachable through errors.Is.
func ToGraph(s Snapshot) (*Graph, error) {
	b := NewBuilder()
	b.SetName(s.Name)
	for _, gr := range s.Groups {
		if err := b.AddGroup(Group{ID: gr.ID, Label: gr.Label, Parent: gr.Parent}); err != nil {
			return nil, irerrors.Wrap(irerrors.ErrCodeInvalidGraph, err, "add group %s", gr.ID)
		}
	}
	for _, n := range s.Nodes {
		err := b.AddNode(Node{
			ID:     n.ID,
			Label:  n.Label,
			Width:  n.Width,
			Height: n.Height,
			Group:  n.Group,
		})
		if err != nil {
			return nil, irerrors.Wrap(irerrors.ErrCodeInvalidGraph, err, "add node %s", n.ID)
		}
	}
	for _, e := range s.Edges {
		b.AddEdge(Edge{From: e.From, To: e.To, Label: e.Label})
	}
	g, err := b.Build()
	if err != nil {
		code := irerrors.ErrCodeInvalidGraph
		if errors.Is(err, ErrInvalidReference) {
			code = irerrors.ErrCodeInvalidReference
		}
		return nil, irerrors.Wrap(code, err, "build snapshot")
	}
	if s.ID != "" {
		g.id = s.ID
	}
	return g, nil
}

// MarshalContent converts a Graph to JSON bytes with the snapshot ID
// stripped. Two snapshots with the same nodes, edges, and groups produce
// identical bytes regardless of when they were built, which makes the output
// suitable for content addressing.
func MarshalContent(g *Graph) ([]byte, error) {
	s := FromGraph(g)
	s.ID = ""
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalGraph converts a Graph to JSON bytes.
// Output is deterministic for identical snapshots.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// WriteGraphFile writes a Graph to a JSON file with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// ReadGraph decodes a JSON snapshot from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(s)
}

// ReadGraphFile reads a JSON snapshot file and returns the decoded Graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

func writeGraphTo(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
