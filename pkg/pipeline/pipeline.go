// Package pipeline provides the load → expand → render → export pipeline
// for dbnplot.
//
// The CLI, the HTTP server and the interactive explorer all drive diagrams
// through this package so that defaults, validation, caching and logging
// behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: parse a model file into a template registry ([Load], [LoadBytes])
//  2. Expand: unroll the templates over the requested slices ([Runner.Expand])
//  3. Render: produce an artifact in one of the export formats ([Runner.Render])
//  4. Export: write the artifact under the export directory ([Runner.Export])
//
// # Usage
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	_, reg, err := pipeline.Load(ctx, "examples/hmm.toml")
//	if err != nil {
//	    return err
//	}
//	opts := pipeline.DefaultOptions()
//	opts.ExportFile = "hmm.svg"
//	result, err := runner.Export(ctx, reg, opts)
//
// Every option is validated, and the export file name is checked against
// the extension allow-list, before anything is rendered or written.
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dbnplot/pkg/cache"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Explorer
// =============================================================================

const (
	// DefaultExportFile is the export file name used when none is given.
	DefaultExportFile = "out.pdf"

	// DefaultEngine is the default rendering engine.
	DefaultEngine = EngineNative

	// DefaultScale is the default raster scale for PNG and JPG output.
	DefaultScale = sink.DefaultScale

	// DefaultUnit is the default size of one grid unit in SVG pixels.
	DefaultUnit = sink.DefaultUnit
)

// Engine constants select the renderer that draws the diagram.
const (
	// EngineNative draws with the built-in SVG sink.
	EngineNative = "native"
	// EngineGraphviz draws through Graphviz neato with pinned positions.
	EngineGraphviz = "graphviz"
)

// ValidEngines is the set of supported rendering engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJPG  = "jpg"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats. "jpeg" is accepted as
// an alias of [FormatJPG] by [NormalizeFormat].
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJPG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for expanding and exporting a diagram.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Expand options
	SliceBefore  int               `json:"slice_before"`
	SliceAfter   int               `json:"slice_after"`
	NodeSpacing  float64           `json:"node_spacing"`
	CenterSuffix string            `json:"center_suffix"`
	Dots         expand.DotsConfig `json:"dots"`
	Margin       float64           `json:"margin,omitempty"`

	// Export options
	ExportFile string `json:"export_file,omitempty"`
	ExportDir  string `json:"export_dir,omitempty"`

	// Render options
	Engine     string  `json:"engine,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Unit       float64 `json:"unit,omitempty"`
	Background string  `json:"background,omitempty"`
	Title      string  `json:"title,omitempty"`

	// Control options
	NoCache bool `json:"no_cache,omitempty"` // Skip the artifact cache entirely

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns options with the expansion defaults of
// [expand.DefaultOptions] and the render defaults of this package.
func DefaultOptions() Options {
	eo := expand.DefaultOptions()
	return Options{
		SliceBefore:  eo.SliceBefore,
		SliceAfter:   eo.SliceAfter,
		NodeSpacing:  eo.NodeSpacing,
		CenterSuffix: eo.CenterSuffix,
		Dots:         eo.Dots,
		Engine:       DefaultEngine,
		Scale:        DefaultScale,
		Unit:         DefaultUnit,
	}
}

// ExpandOptions extracts the expansion request.
func (o Options) ExpandOptions() expand.Options {
	return expand.Options{
		SliceBefore:  o.SliceBefore,
		SliceAfter:   o.SliceAfter,
		NodeSpacing:  o.NodeSpacing,
		CenterSuffix: o.CenterSuffix,
		Dots:         o.Dots,
		Margin:       o.Margin,
	}
}

// SetExpandOptions copies an expansion request into o.
func (o *Options) SetExpandOptions(eo expand.Options) {
	o.SliceBefore = eo.SliceBefore
	o.SliceAfter = eo.SliceAfter
	o.NodeSpacing = eo.NodeSpacing
	o.CenterSuffix = eo.CenterSuffix
	o.Dots = eo.Dots
	o.Margin = eo.Margin
}

// =============================================================================
// Validation - Stage-specific validation and defaults
// =============================================================================

// ValidateForExpand validates the slice counts, spacing, margin and dots.
func (o *Options) ValidateForExpand() error {
	o.setLoggerDefault()
	return o.ExpandOptions().Validate()
}

// ValidateForRender validates options for rendering into format.
func (o *Options) ValidateForRender(format string) error {
	o.SetRenderDefaults()
	if _, err := NormalizeFormat(format); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if !(o.Scale > 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "scale must be > 0, got %g", o.Scale)
	}
	if !(o.Unit > 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "unit must be > 0, got %g", o.Unit)
	}
	return nil
}

// ValidateForExport validates every option needed by [Runner.Export],
// including the export file name and directory. An empty export file falls
// back to [DefaultExportFile].
func (o *Options) ValidateForExport() error {
	if err := o.ValidateForExpand(); err != nil {
		return err
	}
	if o.ExportFile == "" {
		o.ExportFile = DefaultExportFile
	}
	if err := errors.ValidateExportFile(o.ExportFile); err != nil {
		return err
	}
	if err := errors.ValidatePath(o.ExportDir); err != nil {
		return err
	}
	return o.ValidateForRender(FormatOf(o.ExportFile))
}

// SetRenderDefaults applies default values for render options.
func (o *Options) SetRenderDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	o.setLoggerDefault()
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ExportPath returns the destination path of the export.
func (o Options) ExportPath() string {
	name := o.ExportFile
	if name == "" {
		name = DefaultExportFile
	}
	return filepath.Join(o.ExportDir, name)
}

// ArtifactKeyOpts returns the render settings that identify a cached artifact.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Engine: o.Engine,
		Scale:  o.Scale,
		Unit:   o.Unit,

		Background: o.Background,
		Title:      o.Title,
	}
}

// =============================================================================
// Validation Helpers
// =============================================================================

// NormalizeFormat lower-cases format, maps "jpeg" to [FormatJPG] and checks
// it against [ValidFormats].
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "jpeg" {
		f = FormatJPG
	}
	if !ValidFormats[f] {
		return "", errors.New(errors.ErrCodeUnsupportedFormat,
			"invalid format: %q (must be svg, pdf, png, jpg, json, or dot)", format)
	}
	return f, nil
}

// FormatOf returns the output format implied by a file name's extension.
// Unknown extensions are returned lower-cased and fail [NormalizeFormat].
func FormatOf(file string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if f, err := NormalizeFormat(ext); err == nil {
		return f
	}
	return ext
}

// ValidateEngine checks if an engine is supported.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidParameter,
			"invalid engine: %q (must be 'native' or 'graphviz')", engine)
	}
	return nil
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Result contains the output of an export.
type Result struct {
	Diagram     *expand.Diagram `json:"-"`
	DiagramHash string          `json:"diagram_hash"`
	Path        string          `json:"path"`
	Format      string          `json:"format"`
	Bytes       int             `json:"bytes"`
	DirCreated  bool            `json:"dir_created,omitempty"`
	CacheHit    bool            `json:"cache_hit"`
	Stats       Stats           `json:"stats"`
}

// Stats contains diagram counts and stage timings.
type Stats struct {
	expand.Stats
	ExpandTime time.Duration `json:"expand_time"`
	RenderTime time.Duration `json:"render_time"`
	WriteTime  time.Duration `json:"write_time"`
}
