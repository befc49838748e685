package dbn

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/dbnplot/pkg/errors"
)

// NodeType is the semantic type of a template.
type NodeType int

const (
	// Hidden is an unobserved random variable.
	Hidden NodeType = iota
	// Observed is an observed random variable; renderers shade it.
	Observed
	// Variable is not a random variable but a node tied to a set of slices,
	// e.g. a parameter shared across time. It is drawn with a dashed outline.
	Variable
)

var nodeTypeNames = [...]string{
	Hidden:   "hidden",
	Observed: "observed",
	Variable: "variable",
}

// String returns the lower-case name used in model files.
func (t NodeType) String() string {
	if t < Hidden || t > Variable {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// IsRandom reports whether the type denotes a random variable.
func (t NodeType) IsRandom() bool { return t == Hidden || t == Observed }

// ParseNodeType parses a model-file node type. Matching is case-insensitive
// and the empty string means [Hidden].
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hidden":
		return Hidden, nil
	case "observed":
		return Observed, nil
	case "variable":
		return Variable, nil
	default:
		return Hidden, errors.New(errors.ErrCodeInvalidTemplate,
			"unknown node type %q (must be one of: hidden, observed, variable)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(b []byte) error {
	v, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Params is an immutable set of styling attributes passed through to the
// renderers untouched. The zero value is an empty set.
//
// Params copies its input on construction, so two templates never share
// style state even when built from the same map.
type Params struct {
	m map[string]string
}

// NewParams returns Params holding a copy of m.
func NewParams(m map[string]string) Params {
	if len(m) == 0 {
		return Params{}
	}
	return Params{m: maps.Clone(m)}
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.m[key]
	return v, ok
}

// Len returns the number of attributes.
func (p Params) Len() int { return len(p.m) }

// Keys returns the attribute names in sorted order.
func (p Params) Keys() []string { return slices.Sorted(maps.Keys(p.m)) }

// Map returns a copy of the attributes. It returns nil for empty Params.
func (p Params) Map() map[string]string {
	if len(p.m) == 0 {
		return nil
	}
	return maps.Clone(p.m)
}

// MarshalJSON encodes the attributes as a JSON object.
func (p Params) MarshalJSON() ([]byte, error) {
	if p.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.m)
}

// UnmarshalJSON decodes a JSON object of string values.
func (p *Params) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*p = NewParams(m)
	return nil
}

// Template describes one logical variable of the slice.
//
// X and Y are grid coordinates within a slice, measured in node units from
// the top-left corner. Both must be non-negative.
type Template struct {
	Name       string
	X, Y       float64
	Type       NodeType
	Continuous bool

	// ParentsPrevious lists parents whose edges come from the preceding slice.
	ParentsPrevious []string
	// ParentsNow lists parents whose edges come from the same slice.
	ParentsNow []string

	PlotParams  Params
	LabelParams Params
}

// Role is the placement behaviour a template resolves to.
type Role int

const (
	// RoleRandom templates get one instance per slice.
	RoleRandom Role = iota
	// RoleFirstSlice variables appear only in the first displayed slice,
	// and only when slices are numbered absolutely.
	RoleFirstSlice
	// RoleShared variables appear once and are referenced from every slice.
	RoleShared
)

func (r Role) String() string {
	switch r {
	case RoleRandom:
		return "random"
	case RoleFirstSlice:
		return "first-slice"
	case RoleShared:
		return "shared"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Role resolves the template's placement behaviour. It fails for Variable
// templates that declare both parent lists. A Variable without parents is a
// shared constant: drawn once, with no edges of its own.
func (t Template) Role() (Role, error) {
	if t.Type != Variable {
		return RoleRandom, nil
	}
	prev, now := len(t.ParentsPrevious) > 0, len(t.ParentsNow) > 0
	switch {
	case prev && now:
		return 0, errors.New(errors.ErrCodeInvalidTemplate,
			"variable %q declares both previous-slice and same-slice parents", t.Name)
	case prev:
		return RoleFirstSlice, nil
	default:
		return RoleShared, nil
	}
}

// Parents returns all parent names, previous-slice parents first.
func (t Template) Parents() []string {
	out := make([]string, 0, len(t.ParentsPrevious)+len(t.ParentsNow))
	out = append(out, t.ParentsPrevious...)
	return append(out, t.ParentsNow...)
}

// clone returns a copy whose parent slices are not shared with the caller.
func (t Template) clone() Template {
	t.ParentsPrevious = slices.Clone(t.ParentsPrevious)
	t.ParentsNow = slices.Clone(t.ParentsNow)
	return t
}
