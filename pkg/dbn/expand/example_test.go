package expand_test

import (
	"fmt"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
)

func ExampleExpand() {
	reg := dbn.NewRegistry()
	_ = reg.Attach(dbn.Template{Name: "X", X: 0, Y: 0, ParentsPrevious: []string{"X"}})
	_ = reg.Attach(dbn.Template{Name: "Y", X: 0, Y: 1, Type: dbn.Observed, ParentsNow: []string{"X"}})

	d, err := expand.Expand(reg, expand.DefaultOptions())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range d.Nodes {
		fmt.Printf("%s %s (%.1f, %.1f)\n", n.Instance, n.Label, n.X, n.Y)
	}
	for _, e := range d.Edges {
		fmt.Printf("%s -> %s [%s]\n", e.From, e.To, e.Kind)
	}
	// Output:
	// X0 X_{\tau-1} (0.5, 0.5)
	// Y0 Y_{\tau-1} (0.5, 1.5)
	// X1 X_{\tau} (1.5, 0.5)
	// Y1 Y_{\tau} (1.5, 1.5)
	// X2 X_{\tau+1} (2.5, 0.5)
	// Y2 Y_{\tau+1} (2.5, 1.5)
	// X0 -> Y0 [same-slice]
	// X0 -> X1 [temporal]
	// X1 -> Y1 [same-slice]
	// X1 -> X2 [temporal]
	// X2 -> Y2 [same-slice]
}
