// Package nodelink renders DBN diagrams through Graphviz.
//
// # Overview
//
// This package is the alternative to the native SVG sink. It writes the
// expanded diagram as DOT source and lets Graphviz draw it. Node positions
// are never computed by Graphviz: every node carries a pinned pos="x,y!"
// attribute and the graph is laid out with the neato engine, which honours
// pins.
//
// # Usage
//
//	dot := nodelink.ToDOT(diagram, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF, PNG or JPG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The [ToDOT] output can also be saved (the "dot" export format) and
// processed with the Graphviz command line tools:
//
//	neato -n2 -Tsvg model.dot > model.svg
//
// Labels use HTML-like labels with <SUB> for the slice offset. Variables
// are dashed, observed nodes are filled grey, and the structural pair of a
// first-slice variable is drawn with dir=none.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
