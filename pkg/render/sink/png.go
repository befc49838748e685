package sink

import (
	"context"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/render"
)

// DefaultScale is the raster scale factor used when none is given.
const DefaultScale = 2.0

// RasterOption configures PNG and JPG rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithRasterSVGOptions passes options through to the underlying SVG renderer.
func WithRasterSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

func newRasterRenderer(opts ...RasterOption) rasterRenderer {
	r := rasterRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderPNG renders the diagram as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, d *expand.Diagram, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts...)
	return render.ToPNG(ctx, RenderSVG(d, r.svgOpts...), r.scale)
}

// RenderJPG renders the diagram as JPEG on a white background.
func RenderJPG(ctx context.Context, d *expand.Diagram, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts...)
	return render.ToJPG(ctx, RenderSVG(d, r.svgOpts...), r.scale)
}
