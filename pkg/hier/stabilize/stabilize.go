// Package stabilize derives placement hints from a previous layout so that
// successive layouts of slowly changing graphs stay visually similar.
//
// A compiler emits one snapshot per phase, and most nodes survive from one
// phase to the next under new IDs. An identity map relates new node IDs to
// their previous ones; this package projects the previous layout through
// that map into ordering ranks and horizontal positions for the next pass.
// Nodes without a previous incarnation get no hint and are placed purely by
// the heuristics, which pulls them toward their already-hinted neighbors.
//
// The hints only bias the heuristics. The pipeline itself is a deterministic
// function of the snapshot and the hints, so laying out an unchanged graph
// with its own identity projection reproduces the previous drawing exactly.
package stabilize

import (
	"cmp"
	"slices"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
)

// Hints biases the ordering and coordinate stages toward a previous layout.
type Hints struct {
	// Ranks orders hinted nodes left to right within their layers.
	Ranks map[string]int
	// X holds the previous center x per hinted node.
	X map[string]float64
}

// Derive projects a previous layout through an identity map. Both arguments
// may be nil; a nil result means no stabilization.
func Derive(prev *layout.Layout, idmap graph.IdentityMap) *Hints {
	if prev == nil || idmap == nil {
		return nil
	}

	type placed struct {
		id string
		x  float64
	}
	var nodes []placed
	for newID := range idmap {
		oldID, ok := idmap.Previous(newID)
		if !ok {
			continue
		}
		box, ok := prev.Node(oldID)
		if !ok {
			continue
		}
		nodes = append(nodes, placed{newID, box.CenterX()})
	}
	if len(nodes) == 0 {
		return nil
	}

	// Rank by previous x, ties by ID, so the left-to-right reading order of
	// the previous drawing carries over.
	slices.SortFunc(nodes, func(a, b placed) int {
		switch {
		case a.x < b.x:
			return -1
		case a.x > b.x:
			return 1
		default:
			return cmp.Compare(a.id, b.id)
		}
	})

	h := &Hints{
		Ranks: make(map[string]int, len(nodes)),
		X:     make(map[string]float64, len(nodes)),
	}
	for i, n := range nodes {
		h.Ranks[n.id] = i
		h.X[n.id] = n.x
	}
	return h
}
