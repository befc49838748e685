package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/render"
	"github.com/matzehuels/dbnplot/pkg/render/tex"
)

// Options configures DOT generation.
type Options struct {
	// Inches is the size of one grid unit in the output. Zero means 1.
	Inches float64
	// FontName is the Graphviz font for labels. Empty means "Times-Roman".
	FontName string
	// Background is the graph background color. Empty means transparent.
	Background string
}

func (o Options) withDefaults() Options {
	if !(o.Inches > 0) {
		o.Inches = 1
	}
	if o.FontName == "" {
		o.FontName = "Times-Roman"
	}
	if o.Background == "" {
		o.Background = "transparent"
	}
	return o
}

// ToDOT converts a diagram to Graphviz DOT source for the neato engine.
// Every node is pinned at its computed position, so Graphviz only routes
// edges and draws shapes. The y axis is flipped because Graphviz grows
// upwards.
func ToDOT(d *expand.Diagram, opts Options) string {
	opts = opts.withDefaults()
	unit := opts.Inches

	var buf bytes.Buffer
	buf.WriteString("digraph DBN {\n")
	buf.WriteString("  layout=neato;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", opts.Background)
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, width=%s, style=filled, fillcolor=white, fontname=%q];\n",
		num(2*0.4*unit), opts.FontName)
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	placed := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		placed[n.Instance] = true
		attrs := nodeAttrs(n, d.Canvas.Height, unit)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Instance, strings.Join(attrs, ", "))
	}

	for _, m := range d.Markers {
		fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", label=\"…\", pos=\"%s,%s!\"];\n",
			"dots_"+string(m.Side), num(m.X*unit), num((d.Canvas.Height-m.Y)*unit))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if !placed[e.From] || !placed[e.To] {
			continue
		}
		if e.Arrow() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [dir=none];\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n expand.Placement, height, unit float64) []string {
	attrs := []string{
		"label=" + htmlLabel(n.Label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.X*unit), num((height-n.Y)*unit)),
		"penwidth=" + num(n.Style.LineWidth*2),
	}
	if n.Style.Dashed {
		attrs = append(attrs, `style="dashed,filled"`)
	}
	if n.Observed {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return append(attrs, paramAttrs(n.PlotParams)...)
}

// htmlLabel renders a TeX-style label as a Graphviz HTML-like label.
func htmlLabel(label string) string {
	l := tex.Parse(label)
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(html.EscapeString(l.Base))
	if l.Sub != "" {
		b.WriteString("<SUB>" + html.EscapeString(l.Sub) + "</SUB>")
	}
	if l.Sup != "" {
		b.WriteString("<SUP>" + html.EscapeString(l.Sup) + "</SUP>")
	}
	b.WriteString(">")
	return b.String()
}

var dotIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// paramAttrs passes plot parameters through as DOT attributes. Keys that are
// not plain identifiers, that would unpin the node, or that turn it into a
// link are dropped.
func paramAttrs(p dbn.Params) []string {
	var out []string
	for _, k := range p.Keys() {
		if !dotIdentRe.MatchString(k) || k == "pos" || k == "label" || linkAttr(k) {
			continue
		}
		v, _ := p.Get(k)
		out = append(out, fmt.Sprintf("%s=%q", k, v))
	}
	return out
}

// linkAttr matches URL, href, target and their head/tail/edge/label variants.
func linkAttr(k string) bool {
	k = strings.ToLower(k)
	return strings.Contains(k, "url") || strings.Contains(k, "href") || strings.Contains(k, "target")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders DOT source to SVG using the Graphviz neato engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a plain
// viewBox and pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// RenderJPG renders DOT source as JPEG via SVG conversion.
func RenderJPG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToJPG(ctx, svg, scale)
}
