package model

import (
	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
)

// Model is a parsed model file.
type Model struct {
	// Name identifies the model, by default the file name without extension.
	// It is used to derive the export file name.
	Name   string `json:"-" yaml:"-" toml:"-"`
	Export Export `json:"export" yaml:"export" toml:"export"`
	Nodes  []Node `json:"nodes" yaml:"nodes" toml:"node"`
}

// Export holds the export settings stored with a model. Nil and empty fields
// are unset and leave the caller's settings alone.
type Export struct {
	SliceBefore  *int     `json:"slice_before,omitempty" yaml:"slice_before,omitempty" toml:"slice_before,omitempty"`
	SliceAfter   *int     `json:"slice_after,omitempty" yaml:"slice_after,omitempty" toml:"slice_after,omitempty"`
	NodeSpacing  *float64 `json:"node_spacing,omitempty" yaml:"node_spacing,omitempty" toml:"node_spacing,omitempty"`
	CenterSuffix *string  `json:"center_suffix,omitempty" yaml:"center_suffix,omitempty" toml:"center_suffix,omitempty"`
	Dots         string   `json:"dots,omitempty" yaml:"dots,omitempty" toml:"dots,omitempty"`
	File         string   `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Dir          string   `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
}

// Node is one node template as written in a model file.
type Node struct {
	Name            string            `json:"name" yaml:"name" toml:"name"`
	X               float64           `json:"x" yaml:"x" toml:"x"`
	Y               float64           `json:"y" yaml:"y" toml:"y"`
	Type            string            `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Continuous      bool              `json:"continuous,omitempty" yaml:"continuous,omitempty" toml:"continuous,omitempty"`
	ParentsPrevious []string          `json:"parents_previous,omitempty" yaml:"parents_previous,omitempty" toml:"parents_previous,omitempty"`
	ParentsNow      []string          `json:"parents_now,omitempty" yaml:"parents_now,omitempty" toml:"parents_now,omitempty"`
	Plot            map[string]string `json:"plot,omitempty" yaml:"plot,omitempty" toml:"plot,omitempty"`
	Label           map[string]string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// Template converts the node into a registry template.
func (n Node) Template() (dbn.Template, error) {
	nt, err := dbn.ParseNodeType(n.Type)
	if err != nil {
		return dbn.Template{}, err
	}
	return dbn.Template{
		Name:            n.Name,
		X:               n.X,
		Y:               n.Y,
		Type:            nt,
		Continuous:      n.Continuous,
		ParentsPrevious: n.ParentsPrevious,
		ParentsNow:      n.ParentsNow,
		PlotParams:      dbn.NewParams(n.Plot),
		LabelParams:     dbn.NewParams(n.Label),
	}, nil
}

// Registry attaches every node in document order and returns the first
// failure, such as a duplicate name or an unknown node type.
func (m *Model) Registry() (*dbn.Registry, error) {
	reg := dbn.NewRegistry()
	for _, n := range m.Nodes {
		t, err := n.Template()
		if err != nil {
			return nil, err
		}
		if err := reg.Attach(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Apply overlays the set fields of e onto opts.
func (e Export) Apply(opts *expand.Options) error {
	if e.SliceBefore != nil {
		opts.SliceBefore = *e.SliceBefore
	}
	if e.SliceAfter != nil {
		opts.SliceAfter = *e.SliceAfter
	}
	if e.NodeSpacing != nil {
		opts.NodeSpacing = *e.NodeSpacing
	}
	if e.CenterSuffix != nil {
		opts.CenterSuffix = *e.CenterSuffix
	}
	if e.Dots != "" {
		dots, err := expand.ParseDotsConfig(e.Dots)
		if err != nil {
			return err
		}
		opts.Dots = dots
	}
	return nil
}
