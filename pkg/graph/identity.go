package graph

// IdentityMap records the node correspondence between a new snapshot and the
// previous one, as produced by the external diff component. Keys are node IDs
// in the new snapshot; values are the matching node IDs in the previous
// snapshot. Nodes without a match (newly created) are simply absent.
//
// A nil IdentityMap means "no diff available"; the stabilizer then skips
// stabilization and the layout is computed from scratch.
type IdentityMap map[string]string

// SelfIdentity builds the trivial map in which every node of g corresponds
// to itself. This is what the diff component produces when nothing changed,
// and what tests use to assert position stability.
func SelfIdentity(g *Graph) IdentityMap {
	m := make(IdentityMap, g.NodeCount())
	for _, id := range g.NodeIDs() {
		m[id] = id
	}
	return m
}

// Previous returns the previous-snapshot ID matched to newID and true, or
// "" and false when the node is new. A nil map matches nothing.
func (m IdentityMap) Previous(newID string) (string, bool) {
	if m == nil {
		return "", false
	}
	old, ok := m[newID]
	return old, ok
}
