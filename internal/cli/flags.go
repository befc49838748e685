package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

// expandFlags holds the command-line overrides of the expansion settings.
// Only flags the user actually set are applied, so the model file keeps
// precedence over the built-in defaults.
type expandFlags struct {
	before  int
	after   int
	spacing float64
	suffix  string
	dots    string
	margin  float64
}

func (f *expandFlags) register(cmd *cobra.Command) {
	def := expand.DefaultOptions()
	cmd.Flags().IntVar(&f.before, "before", def.SliceBefore, "slices drawn before the anchor slice")
	cmd.Flags().IntVar(&f.after, "after", def.SliceAfter, "slices drawn after the anchor slice")
	cmd.Flags().Float64Var(&f.spacing, "spacing", def.NodeSpacing, "node spacing in grid units")
	cmd.Flags().StringVar(&f.suffix, "suffix", def.CenterSuffix, `centered slice suffix, e.g. "\tau"; empty numbers slices absolutely`)
	cmd.Flags().StringVar(&f.dots, "dots", def.Dots.String(), "ellipsis markers: disabled, first, last, both, auto")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "canvas margin in grid units")
}

func (f *expandFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed
	if changed("before") {
		opts.SliceBefore = f.before
	}
	if changed("after") {
		opts.SliceAfter = f.after
	}
	if changed("spacing") {
		opts.NodeSpacing = f.spacing
	}
	if changed("suffix") {
		opts.CenterSuffix = f.suffix
	}
	if changed("margin") {
		opts.Margin = f.margin
	}
	if changed("dots") {
		dots, err := expand.ParseDotsConfig(f.dots)
		if err != nil {
			return err
		}
		opts.Dots = dots
	}
	return nil
}
