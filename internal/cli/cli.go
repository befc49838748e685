// Package cli implements the dbnplot command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/internal/config"
	"github.com/matzehuels/dbnplot/pkg/buildinfo"
	"github.com/matzehuels/dbnplot/pkg/cache"
	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/model"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dbnplot"

	// defaultExportExt is the extension of the export file derived from the
	// model name when neither the model nor the command line names one.
	defaultExportExt = ".pdf"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is read from the config file and DBNPLOT_* variables before
	// any subcommand runs.
	Config config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dbnplot draws dynamic Bayesian networks unrolled over time",
		Long: `dbnplot reads a slice template of a dynamic Bayesian network from a TOML, YAML,
HCL or JSON model file, unrolls it over a window of time slices and exports
the diagram as SVG, PDF, PNG, JPG, JSON or Graphviz DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = config.DefaultCacheDir()
	}
	c.Config = cfg
	c.Logger.Debug("configuration loaded", "path", config.Path())
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache that cannot be
// opened is logged and replaced by a null cache; rendering never depends on
// it.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	cc := c.Config.Cache
	if noCache {
		cc.Disabled = true
	}
	ca, err := cc.OpenCache()
	if err != nil {
		c.Logger.Warn("artifact cache unavailable", "err", err)
		ca = cache.NewNullCache()
	}
	r := pipeline.NewRunner(ca, nil, c.Logger)
	r.TTL = cc.TTL
	return r
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the pipeline defaults with the configured export
// settings applied.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if err := c.Config.Apply(&opts); err != nil {
		return opts, err
	}
	opts.Logger = c.Logger
	return opts, nil
}

// loadModel reads a model file and resolves its options: defaults, then the
// config file, then the model's export section. Flags are applied by the
// caller.
func (c *CLI) loadModel(ctx context.Context, path string) (*model.Model, *dbn.Registry, pipeline.Options, error) {
	opts, err := c.baseOptions()
	if err != nil {
		return nil, nil, opts, err
	}

	prog := newProgress(c.Logger)
	m, reg, err := pipeline.Load(ctx, path)
	if err != nil {
		return nil, nil, opts, err
	}
	prog.debug("Loaded %s (%d templates)", filepath.Base(path), reg.Len())

	if err := opts.ApplyModel(m); err != nil {
		return nil, nil, opts, err
	}
	return m, reg, opts, nil
}

// defaultExportFile names the export after the model when no file was given.
func defaultExportFile(m *model.Model) string {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return pipeline.DefaultExportFile
	}
	return name + defaultExportExt
}
