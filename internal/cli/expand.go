package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/render/sink"
	"github.com/matzehuels/dbnplot/pkg/render/tex"
)

// expandCommand creates the expand command, which prints the result of the
// slice expansion without rendering it.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		flags  expandFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "expand <model>",
		Short: "Print the placed nodes and resolved edges of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, reg, opts, err := c.loadModel(ctx, args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}

			d, err := c.newRunner(true).Expand(ctx, reg, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := sink.RenderJSON(d, sink.WithJSONModel(m.Name), sink.WithJSONIndent())
				if err != nil {
					return err
				}
				_, err = out.Write(append(data, '\n'))
				return err
			}
			printDiagram(out, d)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diagram as JSON")
	return cmd
}

// printDiagram prints the placements, edges and markers of d as tables.
func printDiagram(w io.Writer, d *expand.Diagram) {
	fmt.Fprintln(w, StyleTitle.Render("Nodes"))
	nodes := newTable("Instance", "Label", "Type", "Slice", "Offset", "X", "Y")
	for _, n := range d.Nodes {
		nodes.Row(
			n.Instance,
			tex.Unicode(n.Label),
			n.Type.String(),
			strconv.Itoa(n.Slice),
			strconv.Itoa(n.Offset),
			formatCoord(n.X),
			formatCoord(n.Y),
		)
	}
	fmt.Fprintln(w, nodes.Render())

	fmt.Fprintln(w, StyleTitle.Render("Edges"))
	placed := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		placed[n.Instance] = true
	}
	edges := newTable("From", "To", "Kind", "")
	for _, e := range d.Edges {
		note := ""
		if !placed[e.From] || !placed[e.To] {
			note = StyleWarning.Render("not drawn")
		}
		edges.Row(e.From, e.To, e.Kind.String(), note)
	}
	fmt.Fprintln(w, edges.Render())

	for _, mk := range d.Markers {
		printDetail(w, "%s dots at (%s, %s)", mk.Side, formatCoord(mk.X), formatCoord(mk.Y))
	}
	printStats(w, d.Stats(), false)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
