package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
)

const nodeInteractionCSS = `
    .node { transition: stroke-width 0.15s ease; }
    .node.highlight { stroke-width: 3; }
    .edge { transition: stroke-opacity 0.15s ease; }
    .edge.dim { stroke-opacity: 0.15; }`

const nodeInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
      document.querySelectorAll('.edge').forEach(e => e.classList.toggle('dim', e.dataset.from !== id && e.dataset.to !== id));
    }
    function clearHighlight() {
      document.querySelectorAll('.node, .edge').forEach(el => el.classList.remove('highlight', 'dim'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	graph       *graph.Graph
	margin      float64
	interactive bool
}

// WithGraph attaches the snapshot so nodes are labeled with their original
// labels instead of their IDs.
func WithGraph(g *graph.Graph) SVGOption { return func(r *svgRenderer) { r.graph = g } }

// WithMargin sets the whitespace around the drawing (default 20).
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithInteraction embeds hover highlighting script into the SVG.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws the layout as it was computed. Groups are painted first,
// then edges, then nodes, so nodes always sit on top of the wiring.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{margin: 20}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w := l.Width + 2*r.margin
	h := l.Height + 2*r.margin
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "<style>%s</style>\n", nodeInteractionCSS)
	fmt.Fprintf(&buf, `<g transform="translate(%.1f,%.1f)">`+"\n", r.margin, r.margin)

	for _, gb := range l.Groups {
		r.renderGroup(&buf, gb)
	}
	for _, e := range l.Edges {
		r.renderEdge(&buf, e)
	}
	for _, n := range l.Nodes {
		r.renderNode(&buf, n)
	}

	buf.WriteString("</g>\n")
	if r.interactive {
		fmt.Fprintf(&buf, "<script>//<![CDATA[\n%s\n//]]></script>\n", nodeInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderGroup(buf *bytes.Buffer, gb layout.GroupBox) {
	fmt.Fprintf(buf,
		`<rect class="group" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="#f4f4f8" stroke="#b8b8c8" stroke-dasharray="4 2"/>`+"\n",
		gb.X, gb.Y, gb.Width, gb.Height)
	if gb.Label != "" {
		fmt.Fprintf(buf,
			`<text class="group-label" x="%.1f" y="%.1f" font-size="10" fill="#70708a">%s</text>`+"\n",
			gb.X+4, gb.Y+12, escape(gb.Label))
	}
}

func (r *svgRenderer) renderEdge(buf *bytes.Buffer, e layout.EdgeRoute) {
	if len(e.Points) < 2 {
		return
	}
	stroke := "#555566"
	dash := ""
	switch {
	case e.Back:
		stroke = "#c04040"
	case e.Cut:
		dash = ` stroke-dasharray="3 3"`
	}
	fmt.Fprintf(buf,
		`<polyline class="edge" data-from=%q data-to=%q points="%s" fill="none" stroke="%s" stroke-width="1.2"%s/>`+"\n",
		e.From, e.To, pointsAttr(e.Points), stroke, dash)
	r.renderArrowhead(buf, e, stroke)
}

// renderArrowhead draws a small triangle at the final point, oriented along
// the last segment.
func (r *svgRenderer) renderArrowhead(buf *bytes.Buffer, e layout.EdgeRoute, stroke string) {
	n := len(e.Points)
	tip := e.Points[n-1]
	prev := e.Points[n-2]
	dx, dy := tip.X-prev.X, tip.Y-prev.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ax, ay := dx/length, dy/length
	const size = 5.0
	bx, by := tip.X-ax*size, tip.Y-ay*size
	fmt.Fprintf(buf,
		`<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="%s"/>`+"\n",
		tip.X, tip.Y,
		bx-ay*size/2, by+ax*size/2,
		bx+ay*size/2, by-ax*size/2,
		stroke)
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n layout.NodeBox) {
	fmt.Fprintf(buf,
		`<rect class="node" id="node-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="#ffffff" stroke="#333344" stroke-width="1.2"/>`+"\n",
		escape(n.ID), n.X, n.Y, n.Width, n.Height)
	fmt.Fprintf(buf,
		`<text x="%.1f" y="%.1f" font-size="11" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		n.CenterX(), n.CenterY(), escape(r.label(n)))
}

func (r *svgRenderer) label(n layout.NodeBox) string {
	if r.graph != nil {
		if gn, ok := r.graph.Node(n.ID); ok && gn.Label != "" {
			return gn.Label
		}
	}
	return n.ID
}

func pointsAttr(pts []layout.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
