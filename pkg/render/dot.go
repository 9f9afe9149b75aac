package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/irview/irview/pkg/errors"
	"github.com/irview/irview/pkg/graph"
)

// DOTOptions configures DOT generation.
type DOTOptions struct {
	// Detailed includes node IDs alongside labels.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT source. Groups become clusters,
// nested groups nested clusters. The output discards any computed layout;
// it exists for cross-checking and for external Graphviz tooling.
func ToDOT(g *graph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	// Nodes grouped under their cluster; top-level nodes first.
	byGroup := make(map[string][]string)
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		byGroup[n.Group] = append(byGroup[n.Group], id)
	}
	for _, id := range byGroup[""] {
		writeDOTNode(&buf, g, id, opts, "  ")
	}
	for _, gid := range g.GroupIDs() {
		gr, _ := g.Group(gid)
		if gr.Parent == "" {
			writeDOTCluster(&buf, g, gid, byGroup, opts, "  ")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTCluster(buf *bytes.Buffer, g *graph.Graph, gid string, byGroup map[string][]string, opts DOTOptions, indent string) {
	gr, _ := g.Group(gid)
	fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", indent, gid)
	if gr.Label != "" {
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, gr.Label)
	}
	fmt.Fprintf(buf, "%s  style=dashed;\n", indent)
	for _, id := range byGroup[gid] {
		writeDOTNode(buf, g, id, opts, indent+"  ")
	}
	for _, child := range g.GroupIDs() {
		cg, _ := g.Group(child)
		if cg.Parent == gid {
			writeDOTCluster(buf, g, child, byGroup, opts, indent+"  ")
		}
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeDOTNode(buf *bytes.Buffer, g *graph.Graph, id string, opts DOTOptions, indent string) {
	n, _ := g.Node(id)
	label := n.Label
	if label == "" {
		label = n.ID
	} else if opts.Detailed && label != n.ID {
		label = label + "\n" + n.ID
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, id, strings.Join(attrs, ", "))
}

// RenderDOT renders DOT source to SVG in-process via Graphviz.
func RenderDOT(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render DOT")
	}
	return buf.Bytes(), nil
}
