// Package render provides output conversion for DBN diagrams.
//
// # Overview
//
// Diagrams are first drawn as SVG, either natively (the [sink] subpackage)
// or by Graphviz (the [nodelink] subpackage). This package converts that SVG
// into the raster and print formats an export can request:
//
//   - [ToPDF] for print output
//   - [ToPNG] for raster output at a given scale
//   - [ToJPG] for raster output without transparency
//
// # Format Conversion
//
// Conversion shells out to rsvg-convert (from librsvg). A missing binary is
// reported as [errors.ErrCodeRenderFailed] with installation hints.
//
//	svg := sink.RenderSVG(diagram)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// # Labels
//
// The [tex] subpackage turns TeX-style labels such as X_{\tau+1} into
// display text for both renderers.
//
// [sink]: github.com/matzehuels/dbnplot/pkg/render/sink
// [nodelink]: github.com/matzehuels/dbnplot/pkg/render/nodelink
// [tex]: github.com/matzehuels/dbnplot/pkg/render/tex
package render
