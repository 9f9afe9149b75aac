// Package hier holds the mutable working structure of the hierarchical
// layout pipeline.
//
// A [LayerGraph] is derived from an immutable graph snapshot at the start of
// a layout pass and discarded when the pass completes. It augments every
// node with a layer and an order, every edge with a reversed flag, and hosts
// the synthetic dummy nodes inserted so long edges only connect adjacent
// layers. Each pipeline invocation owns a private LayerGraph; no layout
// state is ever shared across concurrent invocations.
//
// The pipeline stages live in subpackages and mutate the LayerGraph in a
// fixed sequence:
//
//	hier.Build → transform.BreakCycles → transform.AssignLayers →
//	transform.SplitLongEdges → ordering → coords → routing
//
// This package also provides edge-crossing counting between adjacent layers
// using a Fenwick tree, the primitive underlying crossing reduction.
package hier
