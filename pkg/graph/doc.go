// Package graph defines the immutable IR graph snapshot that feeds the
// layout pipeline.
//
// A [Graph] is one dump of a compiler's intermediate representation at a
// single point in time: typed nodes with display sizes, directed edges, and
// nested groups (basic blocks, inlined scopes). Snapshots arrive from
// ingestion or filtering, are consumed once by the layout pipeline, and are
// never mutated afterwards.
//
// # Building Snapshots
//
// Use a [Builder] to assemble a snapshot. The builder validates structural
// integrity as the graph is assembled : edges and groups may only reference
// nodes that exist in the same snapshot:
//
//	b := graph.NewBuilder()
//	b.AddNode(graph.Node{ID: "0", Label: "Start", Width: 80, Height: 30})
//	b.AddNode(graph.Node{ID: "1", Label: "Return", Width: 90, Height: 30})
//	b.AddEdge(graph.Edge{From: "0", To: "1"})
//	g, err := b.Build()
//
// Cycles and self-loops are valid; the layout pipeline handles both. Only
// dangling references are rejected, since they indicate a contract violation
// by the ingestion layer.
//
// # Identity Across Versions
//
// Node IDs are stable across graph versions (the compiler assigns them).
// An [IdentityMap], produced by the external diff component, maps node IDs
// in a new snapshot to their counterparts in the previous one. The layout
// stabilizer consumes it to keep unchanged nodes visually still.
//
// # Serialization
//
// Snapshots have a canonical JSON form used at the ingestion boundary (CLI
// files, HTTP POST bodies, watched dump directories). See [MarshalGraph],
// [ReadGraph], and friends. Output is deterministic: nodes, edges, and
// groups are sorted.
package graph
