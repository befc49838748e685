package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dbnplot/pkg/cache"
	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the explorer and the HTTP server use it so caching and logging
// behave the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached artifacts. Zero means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Export runs the complete expand → render → write pipeline.
//
// All options, including the export file name, are validated before the
// diagram is expanded, so a bad extension never leaves a partial file
// behind. The export directory is created if it is missing.
func (r *Runner) Export(ctx context.Context, reg *dbn.Registry, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := FormatOf(opts.ExportFile)
	result := &Result{
		Path:   opts.ExportPath(),
		Format: format,
	}

	// Stage 1: Expand
	expandStart := time.Now()
	d, err := r.Expand(ctx, reg, opts)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	result.Diagram = d
	result.Stats.Stats = d.Stats()
	result.Stats.ExpandTime = time.Since(expandStart)

	r.Logger.Info("expanded diagram",
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"slices", result.Stats.Slices,
		"duration", result.Stats.ExpandTime)

	// Stage 2: Render
	renderStart := time.Now()
	data, hit, err := r.RenderWithCacheInfo(ctx, d, format, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)
	if hash, err := diagramHash(d); err == nil {
		result.DiagramHash = hash
	}

	r.Logger.Info("rendered diagram",
		"format", format,
		"engine", opts.Engine,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	// Stage 3: Write
	writeStart := time.Now()
	created, err := ensureDir(opts.ExportDir)
	if err != nil {
		return nil, err
	}
	result.DirCreated = created
	if created {
		r.Logger.Info("created export directory", "dir", opts.ExportDir)
	} else {
		r.Logger.Debug("export directory exists", "dir", opts.ExportDir)
	}

	if err := os.WriteFile(result.Path, data, 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", result.Path)
	}
	result.Bytes = len(data)
	result.Stats.WriteTime = time.Since(writeStart)

	r.Logger.Info("exported diagram", "path", result.Path, "bytes", result.Bytes)
	return result, nil
}

// Expand validates the expansion options and unrolls the registry.
func (r *Runner) Expand(ctx context.Context, reg *dbn.Registry, opts Options) (*expand.Diagram, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExpand(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eo := opts.ExpandOptions()
	hooks := observability.Pipeline()
	hooks.OnExpandStart(ctx, eo.AmountSlices())
	start := time.Now()

	d, err := expand.Expand(reg, eo)

	var nodes, edges int
	if d != nil {
		nodes, edges = len(d.Nodes), len(d.Edges)
	}
	hooks.OnExpandComplete(ctx, nodes, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if dangling := d.Stats().Dangling; dangling > 0 {
		opts.Logger.Warn("edges point at variables outside the drawn slices", "dangling", dangling)
	}
	opts.Logger.Debug("expansion complete",
		"slices", eo.AmountSlices(),
		"centered", eo.Centered(),
		"canvas_width", d.Canvas.Width,
		"canvas_height", d.Canvas.Height)
	return d, nil
}

// RenderWithCacheInfo renders a single artifact with caching and returns
// cache hit info. Cache failures are logged at debug level and otherwise
// ignored.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *expand.Diagram, format string, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(format); err != nil {
		return nil, false, err
	}
	format, _ = NormalizeFormat(format)
	cacheHooks := observability.Cache()

	// Compute cache key from diagram data
	var cacheKey string
	if !opts.NoCache {
		hash, err := diagramHash(d)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram for cache key")
		}
		cacheKey = r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))

		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			cacheHooks.OnCacheError(ctx, "get", err)
			opts.Logger.Debug("cache read failed", "key", cacheKey, "err", err)
		case hit:
			cacheHooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		default:
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format, opts.Engine)
	start := time.Now()

	data, err := Render(ctx, d, format, opts)
	hooks.OnRenderComplete(ctx, format, opts.Engine, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if !opts.NoCache {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl()); err != nil {
			cacheHooks.OnCacheError(ctx, "set", err)
			opts.Logger.Debug("cache write failed", "key", cacheKey, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return data, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *expand.Diagram, format string, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, d, format, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.DefaultTTL
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// diagramHash identifies an expanded diagram for artifact cache keys.
func diagramHash(d *expand.Diagram) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// ensureDir creates dir if it does not exist and reports whether it did.
// The empty string is the current directory.
func ensureDir(dir string) (bool, error) {
	if dir == "" {
		return false, nil
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, errors.New(errors.ErrCodeInvalidPath, "export dir %s is not a directory", dir)
	case !os.IsNotExist(err):
		return false, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat export dir %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidPath, err, "create export dir %s", dir)
	}
	return true, nil
}
