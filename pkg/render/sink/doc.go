// Package sink renders expanded DBN diagrams into output formats.
//
// # Overview
//
// A "sink" transforms an [expand.Diagram] into a final output format.
// This package provides renderers for:
//
//   - SVG: drawn natively, one circle per placement
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster image output (requires rsvg-convert)
//   - JPG: raster output without transparency (requires rsvg-convert)
//   - JSON: the diagram itself, for external tools
//
// # SVG Output
//
// [RenderSVG] draws random variables as solid circles and variables as
// dashed ones. Observed nodes are shaded, continuous nodes get a heavier
// outline. Edges are straight arrows clipped at the node boundary; the
// structural pair between a first-slice variable and its parent is drawn
// without arrow heads. Labels are typeset with [tex.Parse], so X_{\tau+1}
// becomes X with a τ+1 subscript.
//
//	svg := sink.RenderSVG(diagram,
//	    sink.WithUnit(96),
//	    sink.WithBackground("white"),
//	)
//
// Plot and label parameters of a template become extra attributes of the
// node circle and its text.
//
// # PDF, PNG and JPG Output
//
// [RenderPDF], [RenderPNG] and [RenderJPG] first generate SVG, then convert
// via [render.ToPDF], [render.ToPNG] and [render.ToJPG]:
//
//	pdf, err := sink.RenderPDF(ctx, diagram)
//	png, err := sink.RenderPNG(ctx, diagram, sink.WithScale(2))
//
// These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
package sink
