package pipeline

import (
	"context"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/render/nodelink"
	"github.com/matzehuels/dbnplot/pkg/render/sink"
)

// Render generates a single artifact in the given format.
// JSON and DOT output do not depend on the engine.
func Render(ctx context.Context, d *expand.Diagram, format string, opts Options) ([]byte, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return sink.RenderJSON(d, sink.WithJSONModel(opts.Title), sink.WithJSONIndent())
	case FormatDOT:
		return []byte(nodelink.ToDOT(d, buildDOTOptions(opts))), nil
	}

	if opts.Engine == EngineGraphviz {
		return renderGraphviz(ctx, d, format, opts)
	}
	return renderNative(ctx, d, format, opts)
}

// renderNative draws with the built-in SVG sink.
func renderNative(ctx context.Context, d *expand.Diagram, format string, opts Options) ([]byte, error) {
	svgOpts := buildSVGOptions(opts)

	switch format {
	case FormatSVG:
		return sink.RenderSVG(d, svgOpts...), nil
	case FormatPDF:
		return sink.RenderPDF(ctx, d, sink.WithPDFSVGOptions(svgOpts...))
	case FormatPNG:
		return sink.RenderPNG(ctx, d, sink.WithRasterSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatJPG:
		return sink.RenderJPG(ctx, d, sink.WithRasterSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported native format: %s", format)
	}
}

// renderGraphviz draws through Graphviz with pinned node positions.
func renderGraphviz(ctx context.Context, d *expand.Diagram, format string, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(d, buildDOTOptions(opts))

	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case FormatJPG:
		return nodelink.RenderJPG(ctx, dot, opts.Scale)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported graphviz format: %s", format)
	}
}

// buildSVGOptions constructs SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithUnit(opts.Unit)}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

// buildDOTOptions converts the pixel unit into Graphviz inches.
func buildDOTOptions(opts Options) nodelink.Options {
	unit := opts.Unit
	if !(unit > 0) {
		unit = DefaultUnit
	}
	return nodelink.Options{
		Inches:     unit / 72,
		Background: opts.Background,
	}
}
