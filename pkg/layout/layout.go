// Package layout defines the result of a layout pass: positioned nodes,
// routed edges, and group boxes in drawing coordinates. X grows rightward
// and Y grows downward; the drawing starts at the origin.
package layout

// Point is one vertex of an edge polyline.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeBox is a positioned node. X and Y are the top-left corner.
type NodeBox struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Layer  int     `json:"layer"`
}

// CenterX returns the horizontal center of the box.
func (b NodeBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b NodeBox) CenterY() float64 { return b.Y + b.Height/2 }

// EdgeRoute is one routed edge. Points run from the source to the target in
// the edge's original direction; for back edges that means top to bottom
// along the polyline is reversed relative to the layering.
type EdgeRoute struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Label  string  `json:"label,omitempty"`
	Points []Point `json:"points"`

	// Back marks an edge that ran against the layering and was reversed
	// during layout; renderers draw it with a loop-back shape.
	Back bool `json:"back,omitempty"`
	// Self marks a self-loop.
	Self bool `json:"self,omitempty"`
	// Cut marks an edge that spanned too many layers to route through the
	// intermediate layers; its points are stubs at both endpoints.
	Cut bool `json:"cut,omitempty"`
}

// GroupBox is the rectangle drawn around a group's members.
type GroupBox struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout is the complete positioned drawing of one graph snapshot. Nodes are
// sorted by ID and edges follow the snapshot's edge order, so two layouts of
// the same graph compare byte-for-byte once serialized.
type Layout struct {
	GraphID string  `json:"graph_id"`
	Name    string  `json:"name,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	Nodes  []NodeBox   `json:"nodes"`
	Edges  []EdgeRoute `json:"edges"`
	Groups []GroupBox  `json:"groups,omitempty"`

	index map[string]int
}

// Node returns the positioned box for a node ID.
func (l *Layout) Node(id string) (NodeBox, bool) {
	if l.index == nil {
		l.index = make(map[string]int, len(l.Nodes))
		for i, b := range l.Nodes {
			l.index[b.ID] = i
		}
	}
	i, ok := l.index[id]
	if !ok {
		return NodeBox{}, false
	}
	return l.Nodes[i], true
}

// NodeCount returns the number of positioned nodes.
func (l *Layout) NodeCount() int { return len(l.Nodes) }

// EdgeCount returns the number of routed edges.
func (l *Layout) EdgeCount() int { return len(l.Edges) }
