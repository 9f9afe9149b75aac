// Package ordering arranges the nodes within each layer to minimize edge
// crossings.
//
// Finding a minimum-crossing ordering is NP-hard, so this package implements
// the classic weighted-median heuristic: each node is repeatedly placed near
// the median position of its neighbors in the adjacent layer, with
// alternating top-down and bottom-up sweeps and a transpose refinement that
// swaps adjacent pairs whenever the swap strictly reduces crossings. The
// best ordering seen across all sweeps is kept.
//
// All tie-breaking is stable with respect to the incoming order, so the
// result is a deterministic function of the layer graph and the initial
// ranks. Callers can seed the initial ranks (for example from a previous
// layout of the same graph) to bias the heuristic toward a familiar
// arrangement.
package ordering
