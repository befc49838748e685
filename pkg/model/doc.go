// Package model loads DBN descriptions from files.
//
// A model file lists node templates and, optionally, the export settings
// the author wants by default. Four formats are understood: TOML, YAML, HCL
// and JSON. They share one document shape; in TOML:
//
//	[export]
//	slice_before  = 2
//	slice_after   = 1
//	center_suffix = '\tau'
//	dots          = "auto"
//
//	[[node]]
//	name = "X"
//	x = 0
//	y = 1
//	parents_previous = ["X"]
//
//	[[node]]
//	name = "Y"
//	x = 0
//	y = 2
//	type = "observed"
//	continuous = true
//	parents_now = ["X"]
//
// YAML and JSON use the same keys with "nodes" as the list key. HCL uses
// labelled blocks:
//
//	node "X" {
//	  x = 0
//	  y = 1
//	  parents_previous = ["X"]
//	}
//
// [Model.Registry] attaches the nodes in document order, which is also the
// order in which their instances and edges are emitted. Unknown keys are
// rejected in every format.
package model
