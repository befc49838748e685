package expand

import (
	"fmt"

	"github.com/matzehuels/dbnplot/pkg/dbn"
)

// Line widths used for node outlines.
const (
	ThinLine  = 0.5
	ThickLine = 1.5
)

// Canvas is the drawing area in grid units.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style describes how a node outline is drawn.
type Style struct {
	Dashed    bool    `json:"dashed,omitempty"`
	LineWidth float64 `json:"line_width"`
}

// Placement is one drawn node instance.
type Placement struct {
	// Instance is the per-slice key edges refer to (e.g. "X2", or "Sigma"
	// for a variable).
	Instance string `json:"instance"`
	// Template is the name of the template this instance came from.
	Template string `json:"template"`
	// Label is the TeX-style display text, e.g. X_{\tau+1}.
	Label string `json:"label"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	Slice  int `json:"slice"`
	Offset int `json:"offset"`

	Type     dbn.NodeType `json:"type"`
	Style    Style        `json:"style"`
	Observed bool         `json:"observed,omitempty"`

	PlotParams  dbn.Params `json:"plot_params"`
	LabelParams dbn.Params `json:"label_params"`
}

// EdgeKind records which rule produced an edge.
type EdgeKind int

const (
	// EdgeSameSlice links a same-slice parent to its child.
	EdgeSameSlice EdgeKind = iota
	// EdgeTemporal links a parent in the previous slice to its child.
	EdgeTemporal
	// EdgeFanOut links a shared variable to every instance of a parent.
	EdgeFanOut
	// EdgeStructural is one half of the bidirectional pair between a
	// first-slice variable and its parent. Renderers draw it without arrow heads.
	EdgeStructural
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeSameSlice:
		return "same-slice"
	case EdgeTemporal:
		return "temporal"
	case EdgeFanOut:
		return "fan-out"
	case EdgeStructural:
		return "structural"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKind) UnmarshalText(b []byte) error {
	for _, c := range []EdgeKind{EdgeSameSlice, EdgeTemporal, EdgeFanOut, EdgeStructural} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown edge kind %q", b)
}

// Edge is a directed edge between two instance names.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Arrow reports whether the edge is drawn with an arrow head.
func (e Edge) Arrow() bool { return e.Kind != EdgeStructural }

// MarkerSide tells which end of the slice sequence a marker decorates.
type MarkerSide string

// Marker sides.
const (
	Leading  MarkerSide = "leading"
	Trailing MarkerSide = "trailing"
)

// Marker is an ellipsis decoration.
type Marker struct {
	Side MarkerSide `json:"side"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

// Diagram is the result of an expansion. Coordinates are in grid units with
// the origin at the top-left corner and y growing downwards.
type Diagram struct {
	Canvas       Canvas  `json:"canvas"`
	NodeSpacing  float64 `json:"node_spacing"`
	Slices       int     `json:"slices"`
	SliceBefore  int     `json:"slice_before"`
	CenterSuffix string  `json:"center_suffix,omitempty"`

	Nodes   []Placement `json:"nodes"`
	Edges   []Edge      `json:"edges"`
	Markers []Marker    `json:"markers,omitempty"`
}

// Node returns the placement with the given instance name.
func (d *Diagram) Node(instance string) (Placement, bool) {
	for _, n := range d.Nodes {
		if n.Instance == instance {
			return n, true
		}
	}
	return Placement{}, false
}

// NodesFor returns the placements created from the named template, in
// slice order.
func (d *Diagram) NodesFor(template string) []Placement {
	var out []Placement
	for _, n := range d.Nodes {
		if n.Template == template {
			out = append(out, n)
		}
	}
	return out
}

// EdgesFrom returns the edges whose source is instance.
func (d *Diagram) EdgesFrom(instance string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.From == instance {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarises a diagram.
type Stats struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Slices  int `json:"slices"`
	Markers int `json:"markers"`
	// Dangling counts edges with an endpoint that was never placed. Renderers
	// skip these edges.
	Dangling int `json:"dangling"`
}

// Stats returns counts for logging and display.
func (d *Diagram) Stats() Stats {
	placed := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		placed[n.Instance] = true
	}
	s := Stats{Nodes: len(d.Nodes), Edges: len(d.Edges), Slices: d.Slices, Markers: len(d.Markers)}
	for _, e := range d.Edges {
		if !placed[e.From] || !placed[e.To] {
			s.Dangling++
		}
	}
	return s
}
