package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/errors"
)

// validateCommand creates the validate command. It loads the model, checks
// every template and expands it once with the model's own settings.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model>",
		Short: "Check a model file and print diagram statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			m, reg, opts, err := c.loadModel(ctx, args[0])
			if err != nil {
				printError(out, "%s", errors.UserMessage(err))
				return err
			}
			if err := reg.Validate(); err != nil {
				printError(out, "%s", errors.UserMessage(err))
				return err
			}

			d, err := c.newRunner(true).Expand(ctx, reg, opts)
			if err != nil {
				printError(out, "%s", errors.UserMessage(err))
				return err
			}

			printSuccess(out, "%s is valid", StyleHighlight.Render(m.Name))
			printTemplates(out, reg)
			printKeyValue(out, "mode", displayMode(opts.CenterSuffix))
			printKeyValue(out, "dots", opts.Dots.String())
			printStats(out, d.Stats(), false)

			file := opts.ExportFile
			if file == "" {
				file = defaultExportFile(m)
			}
			printNextStep(out, "Export it", fmt.Sprintf("%s render %s -o %s", appName, args[0], file))
			return nil
		},
	}
}

// printTemplates prints the number of templates per node type.
func printTemplates(w io.Writer, reg *dbn.Registry) {
	counts := map[dbn.NodeType]int{}
	for _, t := range reg.Templates() {
		counts[t.Type]++
	}
	parts := make([]string, 0, 3)
	for _, typ := range []dbn.NodeType{dbn.Hidden, dbn.Observed, dbn.Variable} {
		if n := counts[typ]; n > 0 {
			parts = append(parts, strconv.Itoa(n)+" "+typ.String())
		}
	}
	printKeyValue(w, "templates", fmt.Sprintf("%d (%s)", reg.Len(), strings.Join(parts, ", ")))
}

func displayMode(suffix string) string {
	if suffix == "" {
		return "absolute"
	}
	return "centered (" + suffix + ")"
}
