// Package transform provides the structural transformations that prepare a
// layer graph for ordering and coordinate assignment.
//
// # Overview
//
// Compiler IR graphs arrive as arbitrary directed graphs: they contain loop
// back edges, edges that would span many layers, and nested group structure.
// This package normalizes them into a canonical layered form where:
//
//   - Every edge points from a lower layer to a strictly higher layer
//   - Every edge connects adjacent layers (long edges are subdivided)
//   - Members of a group occupy a contiguous band of layers
//
// # Cycle Breaking
//
// [BreakCycles] makes the graph acyclic by reversing edges instead of
// removing them. A depth-first traversal from the sources marks edges that
// close a cycle, and each such edge is flipped in place with its Reversed
// flag set, so the edge router can later draw it in its original direction
// with a loop-back shape.
//
// # Layer Assignment
//
// [AssignLayers] computes a layer for every node using longest-path
// placement: each node sits one past the deepest of its predecessors, and
// sources sit on layer 0. Groups constrain the placement; a group is layered
// as a single block whose height is the number of layers its members need,
// which keeps each group's members on contiguous layers.
//
// # Edge Subdivision
//
// [SplitLongEdges] replaces every edge spanning more than one layer with a
// chain of dummy nodes, one per intermediate layer. All segments of a chain
// share the original edge's ID so the router can reassemble the polyline.
// Edges whose span exceeds a configurable maximum are detached instead of
// subdivided and are returned to the caller for stub routing.
package transform
