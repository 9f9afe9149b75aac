// Package coords assigns pixel coordinates to an ordered layer graph.
//
// # Horizontal Placement
//
// [Assign] first packs each layer left to right with the configured node
// gap, then refines with the priority method: in alternating downward and
// upward sweeps every node is pulled toward the mean position of its
// neighbors in the adjacent layer, displacing lower-priority siblings but
// never nodes of higher priority. Dummy nodes get the highest priority, so
// long edge chains straighten into vertical lines; among real nodes the
// priority is the neighbor degree. Ties and nodes without neighbors stay
// where they are, keeping the pass deterministic.
//
// # Vertical Placement
//
// Layers are stacked top to bottom. Each layer is as tall as its tallest
// node and the gap below a layer grows with the steepest edge crossing that
// boundary, clamped between the configured minimum and maximum, so dense
// graphs with wide horizontal jumps get extra breathing room.
//
// # Group Boxes
//
// After node placement the bounding box of every group is computed from its
// members and subgroups plus padding. Non-member nodes overlapping a box on
// the box's layers are pushed aside so boxes never visually capture foreign
// nodes.
package coords
