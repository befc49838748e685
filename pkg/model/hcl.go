package model

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclModelFile represents the top-level structure of an HCL model for decoding.
type hclModelFile struct {
	Export *hclExport `hcl:"export,block"`
	Nodes  []*hclNode `hcl:"node,block"`
}

type hclExport struct {
	SliceBefore  *int     `hcl:"slice_before,optional"`
	SliceAfter   *int     `hcl:"slice_after,optional"`
	NodeSpacing  *float64 `hcl:"node_spacing,optional"`
	CenterSuffix *string  `hcl:"center_suffix,optional"`
	Dots         string   `hcl:"dots,optional"`
	File         string   `hcl:"file,optional"`
	Dir          string   `hcl:"dir,optional"`
}

type hclNode struct {
	Name            string            `hcl:"name,label"`
	X               float64           `hcl:"x,optional"`
	Y               float64           `hcl:"y,optional"`
	Type            string            `hcl:"type,optional"`
	Continuous      bool              `hcl:"continuous,optional"`
	ParentsPrevious []string          `hcl:"parents_previous,optional"`
	ParentsNow      []string          `hcl:"parents_now,optional"`
	Plot            map[string]string `hcl:"plot,optional"`
	Label           map[string]string `hcl:"label,optional"`
}

func parseHCL(data []byte, filename string) (*Model, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclModelFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	m := &Model{Nodes: make([]Node, 0, len(parsed.Nodes))}
	if e := parsed.Export; e != nil {
		m.Export = Export{
			SliceBefore:  e.SliceBefore,
			SliceAfter:   e.SliceAfter,
			NodeSpacing:  e.NodeSpacing,
			CenterSuffix: e.CenterSuffix,
			Dots:         e.Dots,
			File:         e.File,
			Dir:          e.Dir,
		}
	}
	for _, n := range parsed.Nodes {
		m.Nodes = append(m.Nodes, Node{
			Name:            n.Name,
			X:               n.X,
			Y:               n.Y,
			Type:            n.Type,
			Continuous:      n.Continuous,
			ParentsPrevious: n.ParentsPrevious,
			ParentsNow:      n.ParentsNow,
			Plot:            n.Plot,
			Label:           n.Label,
		})
	}
	return m, nil
}
