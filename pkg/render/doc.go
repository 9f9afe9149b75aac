// Package render turns computed layouts into visual output formats.
//
// # Overview
//
// A renderer consumes a [layout.Layout] produced by the pipeline and emits
// bytes in a display format:
//
//   - SVG: the native output, drawn directly from layout geometry
//   - DOT: Graphviz source for external tooling, plus in-process SVG
//     rendering of that source via go-graphviz
//   - PDF/PNG: conversions of the native SVG (requires rsvg-convert)
//
// # Native SVG
//
// [RenderSVG] draws the layout exactly as computed: node boxes at their
// assigned coordinates, edge polylines through their routed bend points,
// group rectangles behind their members. Nothing is re-laid-out, so the
// picture is a faithful view of what the pipeline decided.
//
//	svg := render.RenderSVG(l, render.WithGraph(g))
//
// # Graphviz Output
//
// [ToDOT] emits the snapshot as DOT source, with groups as clusters. This
// discards the computed layout and lets Graphviz arrange the picture, which
// is useful for cross-checking the native layout or feeding external tools.
//
//	dot := render.ToDOT(g, render.DOTOptions{})
//	svg, err := render.RenderDOT(dot)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG bytes using the external rsvg-convert
// tool (from librsvg).
package render
