package expand

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/dbnplot/pkg/dbn"
)

// Expand replicates the templates of reg across opts.AmountSlices() slices.
//
// Options are checked first, then the template invariants; on any violation
// no diagram is built. Nodes are emitted slice by slice in attach order;
// edges follow the same order, same-slice parents before previous-slice
// parents.
func Expand(reg *dbn.Registry, opts Options) (*Diagram, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	e, err := newExpander(reg, opts)
	if err != nil {
		return nil, err
	}
	e.placeNodes()
	e.resolveEdges()
	e.placeMarkers()
	return e.d, nil
}

type entry struct {
	tpl  dbn.Template
	role dbn.Role
}

type expander struct {
	opts    Options
	entries []entry
	byName  map[string]entry

	maxY              float64
	slotWidth         float64
	leading, trailing bool
	leftPad           float64

	d *Diagram
}

func newExpander(reg *dbn.Registry, opts Options) (*expander, error) {
	e := &expander{
		opts:   opts,
		byName: make(map[string]entry, reg.Len()),
		maxY:   reg.MaxY(),
	}
	for _, t := range reg.Templates() {
		role, err := t.Role()
		if err != nil {
			return nil, err
		}
		en := entry{tpl: t, role: role}
		e.entries = append(e.entries, en)
		e.byName[t.Name] = en
	}

	e.slotWidth = (1 + reg.MaxX()) * opts.NodeSpacing
	e.leading, e.trailing = opts.Dots.Resolve(opts.Centered())
	pad := opts.NodeSpacing / 2
	if e.leading {
		e.leftPad = pad
	}

	width := 2*opts.Margin + e.slotWidth*float64(opts.AmountSlices())
	if e.leading {
		width += pad
	}
	if e.trailing {
		width += pad
	}

	e.d = &Diagram{
		Canvas: Canvas{
			Width:  width,
			Height: 2*opts.Margin + (1+e.maxY)*opts.NodeSpacing,
		},
		NodeSpacing:  opts.NodeSpacing,
		Slices:       opts.AmountSlices(),
		SliceBefore:  opts.SliceBefore,
		CenterSuffix: opts.CenterSuffix,
		Nodes:        []Placement{},
		Edges:        []Edge{},
	}
	return e, nil
}

// instance returns the instance name of template name in slice sid.
// Variables have a single instance named after the template.
func (e *expander) instance(name string, sid int) string {
	if e.byName[name].tpl.Type == dbn.Variable {
		return name
	}
	return name + strconv.Itoa(sid)
}

// paint reports whether a template with the given role is drawn in slice sid.
func (e *expander) paint(role dbn.Role, sid int) bool {
	switch role {
	case dbn.RoleRandom:
		return true
	case dbn.RoleFirstSlice:
		return !e.opts.Centered() && sid == 0
	case dbn.RoleShared:
		if e.opts.Centered() {
			return e.opts.Offset(sid) == 0
		}
		return sid == SharedSlice(e.opts.SliceBefore, e.opts.SliceAfter)
	default:
		panic(fmt.Sprintf("expand: unhandled role %s", role))
	}
}

// SharedSlice is the slice index at which a shared variable is drawn in
// absolute mode: floor((after - before + 1) / 2). The result is negative,
// meaning the variable is not drawn, when before exceeds after by two or more.
func SharedSlice(before, after int) int {
	return floorDiv(after-before+1, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func (e *expander) placeNodes() {
	sp := e.opts.NodeSpacing
	for sid := 0; sid < e.opts.AmountSlices(); sid++ {
		snum := e.opts.Offset(sid)
		for _, en := range e.entries {
			if !e.paint(en.role, sid) {
				continue
			}
			t := en.tpl
			e.d.Nodes = append(e.d.Nodes, Placement{
				Instance:    e.instance(t.Name, sid),
				Template:    t.Name,
				Label:       Label(t.Name, e.opts.CenterSuffix, snum),
				X:           e.opts.Margin + e.leftPad + float64(sid)*e.slotWidth + (t.X+0.5)*sp,
				Y:           e.opts.Margin + (t.Y+0.5)*sp,
				Slice:       sid,
				Offset:      snum,
				Type:        t.Type,
				Style:       styleFor(t),
				Observed:    t.Type == dbn.Observed,
				PlotParams:  t.PlotParams,
				LabelParams: t.LabelParams,
			})
		}
	}
}

func styleFor(t dbn.Template) Style {
	s := Style{Dashed: t.Type == dbn.Variable, LineWidth: ThinLine}
	if t.Continuous && t.Type.IsRandom() {
		s.LineWidth = ThickLine
	}
	return s
}

func (e *expander) resolveEdges() {
	for sid := 0; sid < e.opts.AmountSlices(); sid++ {
		snum := e.opts.Offset(sid)
		for _, en := range e.entries {
			e.sameSliceEdges(en, sid, snum)
			e.previousSliceEdges(en, sid)
		}
	}
}

func (e *expander) sameSliceEdges(en entry, sid, snum int) {
	t := en.tpl
	for _, p := range t.ParentsNow {
		switch en.role {
		case dbn.RoleRandom:
			e.addEdge(e.instance(p, sid), e.instance(t.Name, sid), EdgeSameSlice)
		case dbn.RoleShared:
			// The variable's instance name does not vary by slice, so the
			// fan-out is emitted once, at the last slice.
			if snum != e.opts.SliceAfter {
				continue
			}
			if e.byName[p].tpl.Type == dbn.Variable {
				e.addEdge(t.Name, p, EdgeFanOut)
				continue
			}
			for s := 0; s < e.opts.AmountSlices(); s++ {
				e.addEdge(t.Name, e.instance(p, s), EdgeFanOut)
			}
		case dbn.RoleFirstSlice:
			// unreachable: first-slice variables have no same-slice parents
		}
	}
}

func (e *expander) previousSliceEdges(en entry, sid int) {
	t := en.tpl
	for _, p := range t.ParentsPrevious {
		switch en.role {
		case dbn.RoleRandom:
			if sid > 0 {
				e.addEdge(e.instance(p, sid-1), e.instance(t.Name, sid), EdgeTemporal)
			}
		case dbn.RoleFirstSlice:
			if !e.opts.Centered() && sid == 0 {
				e.addEdge(e.instance(p, 0), t.Name, EdgeStructural)
				e.addEdge(t.Name, e.instance(p, 0), EdgeStructural)
			}
		case dbn.RoleShared:
			// unreachable: shared variables have no previous-slice parents
		}
	}
}

func (e *expander) addEdge(from, to string, kind EdgeKind) {
	e.d.Edges = append(e.d.Edges, Edge{From: from, To: to, Kind: kind})
}

func (e *expander) placeMarkers() {
	sp := e.opts.NodeSpacing
	y := e.opts.Margin + (1+e.maxY)*sp/2
	if e.leading {
		e.d.Markers = append(e.d.Markers, Marker{Side: Leading, X: e.opts.Margin + sp/4, Y: y})
	}
	if e.trailing {
		e.d.Markers = append(e.d.Markers, Marker{Side: Trailing, X: e.d.Canvas.Width - e.opts.Margin - sp/4, Y: y})
	}
}
