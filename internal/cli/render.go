package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/internal/metrics"
	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/observability"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	expand expandFlags

	outputs    []string // export files; the format follows each extension
	dir        string   // directory the files are written to
	engine     string   // "native" or "graphviz"
	scale      float64  // raster scale factor for png and jpg
	background string   // background color, empty for transparent
	title      string   // title drawn above the diagram

	noCache     bool
	metricsFile string // node-exporter textfile written after the run
}

// renderCommand creates the render command, the export operation of the
// pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Export a model as SVG, PDF, PNG, JPG, JSON or DOT",
		Long: `Export a model file as a diagram.

The output format follows the file extension. Without -o the file named in the
model's export section is used, or <model>.pdf if there is none. -o may be
given several times to write several files; each is expanded and rendered on
its own.`,
		Example: `  dbnplot render examples/hmm.toml
  dbnplot render examples/hmm.toml -o hmm.svg -o hmm.json --after 3
  dbnplot render examples/hmm.yaml --suffix "" --dots last --dir out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.expand.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.outputs, "output", "o", nil, "output file (repeatable)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "export directory (created if missing)")
	cmd.Flags().StringVar(&opts.engine, "engine", pipeline.DefaultEngine, "render engine: native, graphviz")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "raster scale factor for png and jpg")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (default transparent)")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG <title> metadata (not drawn)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the artifact cache")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics of this run to a textfile")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, ro *renderOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if ro.metricsFile != "" {
		m := metrics.New()
		m.Install()
		defer observability.Reset()
		defer func() {
			if err := m.WriteToTextfile(ro.metricsFile); err != nil {
				c.Logger.Warn("write metrics", "path", ro.metricsFile, "err", err)
			}
		}()
	}

	m, reg, opts, err := c.loadModel(ctx, path)
	if err != nil {
		return err
	}
	if err := ro.apply(cmd, &opts); err != nil {
		return err
	}

	files := ro.outputs
	if len(files) == 0 {
		file := opts.ExportFile
		if file == "" {
			file = defaultExportFile(m)
		}
		files = []string{file}
	}

	runner := c.newRunner(ro.noCache)
	defer runner.Close()

	for _, file := range files {
		opts.ExportFile = file
		if err := c.export(ctx, out, runner, reg, opts); err != nil {
			return err
		}
	}
	return nil
}

// apply overlays the flags the user set onto opts.
func (ro *renderOpts) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	if err := ro.expand.apply(cmd, opts); err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if changed("dir") {
		opts.ExportDir = ro.dir
	}
	if changed("engine") {
		opts.Engine = ro.engine
	}
	if changed("scale") {
		opts.Scale = ro.scale
	}
	if changed("background") {
		opts.Background = ro.background
	}
	if changed("title") {
		opts.Title = ro.title
	}
	opts.NoCache = ro.noCache
	return nil
}

func (c *CLI) export(ctx context.Context, out io.Writer, runner *pipeline.Runner, reg *dbn.Registry, opts pipeline.Options) error {
	prog := newProgress(c.Logger)
	res, err := runner.Export(ctx, reg, opts)
	if err != nil {
		return fmt.Errorf("export %s: %w", opts.ExportFile, err)
	}
	prog.debug("Exported %s", res.Path)

	printSuccess(out, "Exported %s", StyleHighlight.Render(res.Format))
	printFile(out, res.Path)
	if res.DirCreated {
		printDetail(out, "created directory %s", opts.ExportDir)
	}
	printStats(out, res.Stats.Stats, res.CacheHit)
	return nil
}
