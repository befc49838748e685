// Package expand turns a DBN slice template into a concrete diagram.
//
// # Overview
//
// [Expand] replicates every template of a [dbn.Registry] across
// SliceBefore + SliceAfter + 1 time slices and resolves parent references
// into directed edges between the resulting instances:
//
//	d, err := expand.Expand(reg, expand.Options{
//	    SliceBefore:  2,
//	    SliceAfter:   1,
//	    NodeSpacing:  1,
//	    CenterSuffix: `\tau`,
//	    Dots:         expand.DotsAuto,
//	})
//
// The result is a [Diagram]: a canvas size, positioned [Placement] records,
// [Edge] records and optional ellipsis [Marker] records. Positions are derived
// directly from the template coordinates; nothing is laid out automatically.
//
// # Display Modes
//
// An empty CenterSuffix selects absolute mode: labels carry the slice
// number (X_{0}, X_{1}, ...). A non-empty suffix selects centered mode:
// labels are offsets around an anchor slice (X_{\tau-1}, X_{\tau},
// X_{\tau+1}).
//
// # Variables
//
// Variable templates are drawn at most once. A variable with previous-slice
// parents is drawn in the first slice in absolute mode and not at all in
// centered mode. A variable with same-slice parents is drawn at the anchor
// slice in centered mode and at slice floor((SliceAfter-SliceBefore+1)/2) in
// absolute mode, and fans out one edge to every instance of each parent.
//
// # Two Passes
//
// All nodes are placed before any edge is resolved, because an edge may
// point at an instance from a slice that comes later in slice order.
package expand
