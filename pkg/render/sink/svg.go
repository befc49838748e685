package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/render/tex"
)

// Drawing constants, in grid units unless noted.
const (
	// NodeRadius is the radius of every node circle.
	NodeRadius = 0.4
	// DefaultUnit is the number of pixels per grid unit.
	DefaultUnit = 72.0

	fontScale       = 0.28
	pointsPerUnit   = 36.0
	observedFill    = "#d9d9d9"
	defaultFill     = "white"
	strokeColor     = "black"
	arrowMarkerID   = "dbn-arrow"
	ellipsisGlyph   = "…"
	subscriptScale  = "70%"
	defaultFontFace = "Latin Modern Math, STIX Two Math, Cambria Math, serif"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	unit       float64
	background string
	font       string
	title      string
}

// WithUnit sets the number of pixels per grid unit (default 72).
func WithUnit(px float64) SVGOption { return func(r *svgRenderer) { r.unit = px } }

// WithBackground fills the canvas with the given CSS color. The default
// background is transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithFont sets the font-family used for labels.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.font = family } }

// WithTitle adds a <title> element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{unit: DefaultUnit, font: defaultFontFace}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.unit > 0) {
		r.unit = DefaultUnit
	}
	return r
}

// RenderSVG draws the diagram as a standalone SVG document.
func RenderSVG(d *expand.Diagram, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := d.Canvas.Width*r.unit, d.Canvas.Height*r.unit

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	r.renderDefs(&buf)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", w, h, escapeXML(r.background))
	}

	placed := make(map[string]expand.Placement, len(d.Nodes))
	for _, n := range d.Nodes {
		placed[n.Instance] = n
	}

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range d.Edges {
		from, okFrom := placed[e.From]
		to, okTo := placed[e.To]
		if !okFrom || !okTo {
			continue
		}
		r.renderEdge(&buf, from, to, e)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range d.Nodes {
		r.renderNode(&buf, n)
		r.renderLabel(&buf, n)
	}
	buf.WriteString("  </g>\n")

	for _, m := range d.Markers {
		r.renderMarker(&buf, m)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>
    </marker>
  </defs>
`, arrowMarkerID, strokeColor)
}

func (r svgRenderer) renderNode(buf *bytes.Buffer, n expand.Placement) {
	fill := defaultFill
	if n.Observed {
		fill = observedFill
	}
	attrs := attrList{
		{"id", "node-" + idSafe(n.Instance)},
		{"class", "node " + n.Type.String()},
		{"cx", coord(n.X * r.unit)},
		{"cy", coord(n.Y * r.unit)},
		{"r", coord(NodeRadius * r.unit)},
		{"fill", fill},
		{"stroke", strokeColor},
		{"stroke-width", coord(n.Style.LineWidth * r.unit / pointsPerUnit)},
	}
	if n.Style.Dashed {
		dash := fmt.Sprintf("%.1f", 0.06*r.unit)
		attrs = attrs.set("stroke-dasharray", dash+" "+dash)
	}
	attrs = attrs.merge(n.PlotParams)

	buf.WriteString("    <circle")
	attrs.write(buf)
	buf.WriteString("/>\n")
}

func (r svgRenderer) renderLabel(buf *bytes.Buffer, n expand.Placement) {
	l := tex.Parse(n.Label)
	attrs := attrList{
		{"class", "label"},
		{"x", coord(n.X * r.unit)},
		{"y", coord(n.Y * r.unit)},
		{"text-anchor", "middle"},
		{"dominant-baseline", "central"},
		{"font-family", r.font},
		{"font-size", fmt.Sprintf("%.1f", fontScale*r.unit)},
	}.merge(n.LabelParams)

	buf.WriteString("    <text")
	attrs.write(buf)
	buf.WriteString(">")
	buf.WriteString(escapeXML(l.Base))
	if l.Sub != "" {
		fmt.Fprintf(buf, `<tspan baseline-shift="sub" font-size="%s">%s</tspan>`, subscriptScale, escapeXML(l.Sub))
	}
	if l.Sup != "" {
		fmt.Fprintf(buf, `<tspan baseline-shift="super" font-size="%s">%s</tspan>`, subscriptScale, escapeXML(l.Sup))
	}
	buf.WriteString("</text>\n")
}

func (r svgRenderer) renderEdge(buf *bytes.Buffer, from, to expand.Placement, e expand.Edge) {
	x1, y1, x2, y2, ok := clip(from, to)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `    <line class="edge %s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"`,
		e.Kind, x1*r.unit, y1*r.unit, x2*r.unit, y2*r.unit, strokeColor, expand.ThinLine*r.unit/pointsPerUnit*1.5)
	if e.Arrow() {
		fmt.Fprintf(buf, ` marker-end="url(#%s)"`, arrowMarkerID)
	}
	buf.WriteString("/>\n")
}

func (r svgRenderer) renderMarker(buf *bytes.Buffer, m expand.Marker) {
	fmt.Fprintf(buf, `  <text class="ellipsis %s" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f">%s</text>`+"\n",
		m.Side, m.X*r.unit, m.Y*r.unit, escapeXML(r.font), fontScale*r.unit, ellipsisGlyph)
}

// clip shortens the segment between two node centres so that it starts and
// ends on the circle outlines. It reports false for overlapping nodes,
// including self-loops.
func clip(from, to expand.Placement) (x1, y1, x2, y2 float64, ok bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	dist := math.Hypot(dx, dy)
	if dist <= 2*NodeRadius {
		return 0, 0, 0, 0, false
	}
	ux, uy := dx/dist, dy/dist
	return from.X + ux*NodeRadius, from.Y + uy*NodeRadius,
		to.X - ux*NodeRadius, to.Y - uy*NodeRadius, true
}

type attr struct{ name, value string }

// attrList is an ordered set of XML attributes.
type attrList []attr

func (l attrList) set(name, value string) attrList {
	for i := range l {
		if l[i].name == name {
			l[i].value = value
			return l
		}
	}
	return append(l, attr{name, value})
}

// merge applies user parameters on top of the built-in attributes. Keys are
// reduced to characters valid in an XML attribute name; event handlers and
// links are dropped.
func (l attrList) merge(p dbn.Params) attrList {
	for _, k := range p.Keys() {
		name := attrName(k)
		if name == "" || !allowedAttr(name) {
			continue
		}
		v, _ := p.Get(k)
		l = l.set(name, v)
	}
	return l
}

func (l attrList) write(buf *bytes.Buffer) {
	for _, a := range l {
		fmt.Fprintf(buf, ` %s="%s"`, a.name, escapeXML(a.value))
	}
}

func coord(v float64) string { return fmt.Sprintf("%.2f", v) }

func attrName(k string) string {
	var b strings.Builder
	for _, c := range k {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteRune(c)
		case c >= '0' && c <= '9', c == '-', c == '.', c == ':':
			if b.Len() > 0 {
				b.WriteRune(c)
			}
		case c == ' ':
			if b.Len() > 0 {
				b.WriteByte('-')
			}
		}
	}
	return b.String()
}

// allowedAttr rejects attributes that run script or load other documents.
func allowedAttr(name string) bool {
	local := strings.ToLower(name)
	if i := strings.LastIndexByte(local, ':'); i >= 0 {
		local = local[i+1:]
	}
	return !strings.HasPrefix(local, "on") && local != "href" && local != "src"
}

// idSafe strips the TeX backslash from instance names like \Sigma.
func idSafe(s string) string {
	return strings.NewReplacer(`\`, "", " ", "_").Replace(s)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
