// Package routing turns the positioned layer graph into edge polylines.
//
// Forward edges leave the source's bottom border, pass through the centers
// of their dummy chain, and enter the target's top border, so subdivided
// edges draw as one continuous polyline per original edge.
//
// Back edges (reversed during cycle breaking) are emitted in their original
// direction with the Back flag set. Adjacent-layer back edges loop around
// the right side of the drawing in a dedicated lane per overlapping span;
// the lane shape is either curved (two bend points) or stepped (orthogonal
// segments). Self-loops draw as small orthogonal loops on the node's right.
//
// Edges detached for spanning too many layers are routed as endpoint stubs
// with the Cut flag set; renderers typically bridge the stubs with a dashed
// line or elide the middle entirely.
package routing
