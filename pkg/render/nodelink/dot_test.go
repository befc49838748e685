package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
)

func diagram(t *testing.T, suffix string) *expand.Diagram {
	t.Helper()
	reg := dbn.NewRegistry()
	for _, tpl := range []dbn.Template{
		{Name: "X", X: 0, Y: 1, ParentsPrevious: []string{"X"}},
		{Name: "Y", X: 0, Y: 2, Type: dbn.Observed, ParentsNow: []string{"X"},
			PlotParams: dbn.NewParams(map[string]string{"color": "red", "pos": "0,0", "bad key": "x"})},
		{Name: `\pi`, X: 0, Y: 0, Type: dbn.Variable, ParentsPrevious: []string{"X"}},
	} {
		if err := reg.Attach(tpl); err != nil {
			t.Fatalf("Attach: %v", err)
		}
	}
	opts := expand.DefaultOptions()
	opts.CenterSuffix = suffix
	opts.Dots = expand.DotsBoth
	d, err := expand.Expand(reg, opts)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	return d
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(diagram(t, `\tau`), Options{})

	for _, want := range []string{
		"digraph DBN {",
		"layout=neato;",
		`"X0" [label=<X<SUB>τ-1</SUB>>, pos="1,1.5!", penwidth=1`,
		`"X0" -> "X1";`,
		`"X1" -> "Y1";`,
		"fillcolor=lightgrey",
		`color="red"`,
		`"dots_leading" [shape=plaintext`,
		`"dots_trailing" [shape=plaintext`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `pos="0,0"`) {
		t.Error("plot params must not unpin nodes")
	}
	if strings.Contains(dot, "bad key") {
		t.Error("invalid attribute names must be dropped")
	}
}

func TestToDOTStructuralEdges(t *testing.T) {
	dot := ToDOT(diagram(t, ""), Options{})

	if !strings.Contains(dot, `"X0" -> "\\pi" [dir=none];`) {
		t.Errorf("missing structural edge:\n%s", dot)
	}
	if !strings.Contains(dot, `"\\pi" -> "X0" [dir=none];`) {
		t.Errorf("missing reverse structural edge:\n%s", dot)
	}
	if !strings.Contains(dot, `style="dashed,filled"`) {
		t.Error("variable should be dashed")
	}
}

func TestToDOTScalesPositions(t *testing.T) {
	d := &expand.Diagram{
		Canvas: expand.Canvas{Width: 2, Height: 2},
		Nodes:  []expand.Placement{{Instance: "A0", Label: "A_{0}", X: 0.5, Y: 0.5, Style: expand.Style{LineWidth: 0.5}}},
	}
	dot := ToDOT(d, Options{Inches: 2})
	if !strings.Contains(dot, `pos="1,3!"`) {
		t.Errorf("expected scaled, flipped position:\n%s", dot)
	}
	if !strings.Contains(dot, "width=1.6") {
		t.Errorf("expected scaled node width:\n%s", dot)
	}
}

func TestParamAttrsDropLinks(t *testing.T) {
	p := dbn.NewParams(map[string]string{
		"URL":      "javascript:alert(1)",
		"href":     "javascript:alert(2)",
		"edgeURL":  "x",
		"target":   "_top",
		"penwidth": "2",
	})
	got := paramAttrs(p)
	if len(got) != 1 || got[0] != `penwidth="2"` {
		t.Errorf("paramAttrs = %v, want [penwidth=\"2\"]", got)
	}
}

func TestHTMLLabelEscapes(t *testing.T) {
	if got := htmlLabel(`a<b_{c&d}`); got != "<a&lt;b<SUB>c&amp;d</SUB>>" {
		t.Errorf("htmlLabel = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if !strings.Contains(out, "<g/>") {
		t.Error("body must be preserved")
	}
}
