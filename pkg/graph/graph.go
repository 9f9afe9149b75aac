package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrInvalidNodeID is returned by [Builder.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Builder.AddNode] when a node with
	// the same ID was already added. Node IDs must be unique per snapshot.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidGroupID is returned by [Builder.AddGroup] when the group ID
	// is empty or collides with an existing group.
	ErrInvalidGroupID = errors.New("invalid group ID")

	// ErrInvalidReference is returned by [Builder.Build] when an edge or a
	// group references a node or group not present in the snapshot. This is
	// a contract violation by the ingestion layer, not a recoverable state.
	ErrInvalidReference = errors.New("invalid graph reference")

	// ErrGroupCycle is returned by [Builder.Build] when group containment
	// is not a forest (a group directly or transitively contains itself).
	ErrGroupCycle = errors.New("group containment must form a forest")
)

// Node is a single IR node as dumped by the compiler. ID is the compiler's
// stable identifier and survives across graph versions; Width and Height are
// the display size computed by the (external) renderer.
type Node struct {
	ID     string
	Label  string
	Width  float64
	Height float64
	Group  string // containing group ID, empty for top-level nodes
}

// Edge is a directed connection between two nodes of the same snapshot.
// An edge with From == To is a self-loop, which is valid input.
type Edge struct {
	From  string
	To    string
	Label string
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// Group is a nestable cluster of nodes rendered as a collapsible region.
// Parent is the containing group ID, empty for top-level groups.
// Containment must form a forest.
type Group struct {
	ID     string
	Label  string
	Parent string
}

// Graph is an immutable IR snapshot. It is safe for concurrent reads; the
// layout pipeline never mutates it. Construct one with [Builder] or by
// decoding the canonical JSON form.
type Graph struct {
	id      string
	name    string
	nodes   map[string]Node
	nodeIDs []string // sorted, the canonical iteration order
	edges   []Edge
	groups  map[string]Group
}

// ID returns the snapshot identifier assigned at build time.
func (g *Graph) ID() string { return g.id }

// Name returns the display name of the snapshot (e.g. the phase that dumped
// it), or "" when the dump carried none.
func (g *Graph) Name() string { return g.name }

// NodeCount returns the number of nodes in the snapshot.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the snapshot.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or a zero Node and
// false when absent.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in sorted order. The slice is shared; callers
// must not modify it.
func (g *Graph) NodeIDs() []string { return g.nodeIDs }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Group returns the group with the given ID and true, or a zero Group and
// false when absent.
func (g *Graph) Group(id string) (Group, bool) {
	gr, ok := g.groups[id]
	return gr, ok
}

// GroupIDs returns all group IDs in sorted order.
func (g *Graph) GroupIDs() []string {
	ids := make([]string, 0, len(g.groups))
	for id := range g.groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// GroupCount returns the number of groups in the snapshot.
func (g *Graph) GroupCount() int { return len(g.groups) }

// Members returns the IDs of nodes directly contained in the group, sorted.
func (g *Graph) Members(groupID string) []string {
	var members []string
	for _, id := range g.nodeIDs {
		if g.nodes[id].Group == groupID {
			members = append(members, id)
		}
	}
	return members
}

// Subgroups returns the IDs of groups whose parent is the given group,
// sorted. Pass "" for top-level groups.
func (g *Graph) Subgroups(groupID string) []string {
	var subs []string
	for id, gr := range g.groups {
		if gr.Parent == groupID {
			subs = append(subs, id)
		}
	}
	slices.Sort(subs)
	return subs
}

// Builder assembles an immutable [Graph]. The zero value is not usable;
// create one with [NewBuilder].
type Builder struct {
	name   string
	nodes  map[string]Node
	edges  []Edge
	groups map[string]Group
	err    error
}

// NewBuilder creates an empty snapshot builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:  make(map[string]Node),
		groups: make(map[string]Group),
	}
}

// SetName sets the snapshot display name (typically the compiler phase).
func (b *Builder) SetName(name string) { b.name = name }

// AddNode adds a node to the snapshot under construction.
// Returns ErrInvalidNodeID for empty IDs and ErrDuplicateNodeID when the ID
// was already added.
func (b *Builder) AddNode(n Node) error {
	if n.ID == "" {
		return b.fail(fmt.Errorf("%w", ErrInvalidNodeID))
	}
	if _, exists := b.nodes[n.ID]; exists {
		return b.fail(fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID))
	}
	b.nodes[n.ID] = n
	return nil
}

// AddEdge adds a directed edge. Endpoint existence is checked at Build time
// so nodes and edges may arrive in any order.
func (b *Builder) AddEdge(e Edge) {
	b.edges = append(b.edges, e)
}

// AddGroup registers a group. Parent existence is checked at Build time.
func (b *Builder) AddGroup(gr Group) error {
	if gr.ID == "" {
		return b.fail(fmt.Errorf("%w: empty", ErrInvalidGroupID))
	}
	if _, exists := b.groups[gr.ID]; exists {
		return b.fail(fmt.Errorf("%w: duplicate %s", ErrInvalidGroupID, gr.ID))
	}
	b.groups[gr.ID] = gr
	return nil
}

// Build validates the assembled structure and returns the immutable Graph.
// It returns ErrInvalidReference when an edge endpoint, a node's group, or a
// group's parent does not exist, and ErrGroupCycle when group containment is
// cyclic. A snapshot ID is assigned when the dump did not carry one.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, e := range b.edges {
		if _, ok := b.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: edge source %q", ErrInvalidReference, e.From)
		}
		if _, ok := b.nodes[e.To]; !ok {
			return nil, fmt.Errorf("%w: edge target %q", ErrInvalidReference, e.To)
		}
	}
	for id, n := range b.nodes {
		if n.Group == "" {
			continue
		}
		if _, ok := b.groups[n.Group]; !ok {
			return nil, fmt.Errorf("%w: node %q in unknown group %q", ErrInvalidReference, id, n.Group)
		}
	}
	for id, gr := range b.groups {
		if gr.Parent == "" {
			continue
		}
		if _, ok := b.groups[gr.Parent]; !ok {
			return nil, fmt.Errorf("%w: group %q in unknown group %q", ErrInvalidReference, id, gr.Parent)
		}
	}
	if err := b.checkGroupForest(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return &Graph{
		id:      uuid.NewString(),
		name:    b.name,
		nodes:   b.nodes,
		nodeIDs: ids,
		edges:   b.edges,
		groups:  b.groups,
	}, nil
}

// checkGroupForest walks parent chains; a chain longer than the group count
// or revisiting a group means containment is cyclic.
func (b *Builder) checkGroupForest() error {
	for id := range b.groups {
		seen := map[string]bool{id: true}
		for cur := b.groups[id].Parent; cur != ""; cur = b.groups[cur].Parent {
			if seen[cur] {
				return fmt.Errorf("%w: via %s", ErrGroupCycle, id)
			}
			seen[cur] = true
		}
	}
	return nil
}

// fail records the first builder error so Build can surface it even when a
// caller ignores intermediate returns.
func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}
