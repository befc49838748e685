// Package dbn holds the slice template of a dynamic Bayesian network diagram.
//
// # Overview
//
// A dynamic Bayesian network is drawn as one time slice replicated a number
// of times. The slice is described once, as a set of [Template] values
// attached to a [Registry]:
//
//	reg := dbn.NewRegistry()
//	_ = reg.Attach(dbn.Template{Name: "X", X: 0, Y: 1, ParentsPrevious: []string{"X"}})
//	_ = reg.Attach(dbn.Template{Name: "Y", X: 0, Y: 2, Type: dbn.Observed, ParentsNow: []string{"X"}})
//
// The registry is then handed to the expansion engine in [expand], which turns
// it into concrete, positioned node instances and edges for a given number of
// slices.
//
// # Node Types
//
// [Hidden] and [Observed] nodes are ordinary random variables: one instance
// per slice. [Variable] nodes are bookkeeping nodes tied to a set of slices
// rather than a single one, such as a parameter shared across time. A
// Variable is drawn at most once, and how it connects depends on which parent
// list it uses (see [Role]).
//
// # Validation
//
// [Registry.Attach] only rejects duplicate names. Template invariants
// (continuity, parent lists, coordinates, dangling parent references) are
// checked lazily by [Registry.Validate], which the expansion engine runs
// before laying anything out.
//
// [expand]: github.com/matzehuels/dbnplot/pkg/dbn/expand
package dbn
