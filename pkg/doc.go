// Package pkg provides the core libraries for dbnplot.
//
// # Overview
//
// dbnplot draws dynamic Bayesian networks: one time slice is described as a
// set of node templates, and the diagram shows that slice unrolled over a
// window of slices with edges resolved inside and between them. The pkg
// directory is organized as follows:
//
//  1. [dbn] and [dbn/expand] - Domain logic (templates, slice expansion)
//  2. [model] - Model files (TOML, YAML, HCL, JSON)
//  3. [render] - Output (native SVG, Graphviz, PDF/PNG/JPG conversion)
//  4. [pipeline] - Orchestration (load → expand → render → export)
//  5. [cache], [observability], [errors], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow through dbnplot:
//
//	Model file (hmm.toml)
//	         ↓
//	    [model] package (parse, attach templates)
//	         ↓
//	    [dbn] Registry (validated slice template)
//	         ↓
//	    [dbn/expand] package (placements, edges, markers)
//	         ↓
//	    [render/sink] or [render/nodelink]
//	         ↓
//	    SVG/PDF/PNG/JPG/JSON/DOT output
//
// # Quick Start
//
// Load a model and export it:
//
//	m, reg, err := pipeline.Load(ctx, "examples/hmm.toml")
//	if err != nil {
//	    return err
//	}
//	opts := pipeline.DefaultOptions()
//	if err := opts.ApplyModel(m); err != nil {
//	    return err
//	}
//	opts.ExportFile = "hmm.svg"
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Export(ctx, reg, opts)
//
// Or drive the engine directly:
//
//	reg := dbn.NewRegistry()
//	_ = reg.Attach(dbn.Template{Name: "X", Y: 0, ParentsPrevious: []string{"X"}})
//	_ = reg.Attach(dbn.Template{Name: "Y", Y: 1, Type: dbn.Observed, ParentsNow: []string{"X"}})
//
//	d, err := expand.Expand(reg, expand.DefaultOptions())
//	svg := sink.RenderSVG(d)
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/dbn/...                # Specific package
//	go test -run Example                 # Examples only
//
// [dbn]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/dbn
// [dbn/expand]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/dbn/expand
// [model]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/model
// [render]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dbnplot/pkg/buildinfo
package pkg
