package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbnplot/pkg/cache"
	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/observability"
	"github.com/matzehuels/dbnplot/pkg/render/sink"
)

const hmmModel = "../../examples/hmm.toml"

func loadHMM(t *testing.T) (Options, *dbn.Registry) {
	t.Helper()
	m, reg, err := Load(context.Background(), hmmModel)
	require.NoError(t, err)

	opts := DefaultOptions()
	require.NoError(t, opts.ApplyModel(m))
	return opts, reg
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"pdf", "pdf", false},
		{"png", "png", false},
		{"jpg", "jpg", false},
		{"jpeg", "jpg", false},
		{"JPEG", "jpg", false},
		{".json", "json", false},
		{"dot", "dot", false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.format, got, tt.want)
		}
		if tt.wantErr && !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
			t.Errorf("NormalizeFormat(%q) code = %s, want UNSUPPORTED_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"out.pdf":       "pdf",
		"hmm.SVG":       "svg",
		"photo.jpeg":    "jpg",
		"graph.dot":     "dot",
		"notes.txt":     "txt",
		"no-extension":  "",
		"dir.v2/hmm.js": "js",
	}
	for file, want := range tests {
		if got := FormatOf(file); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", file, got, want)
		}
	}
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{"native", false},
		{"graphviz", false},
		{"dot", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, expand.DefaultSliceBefore, opts.SliceBefore)
	assert.Equal(t, expand.DefaultSliceAfter, opts.SliceAfter)
	assert.Equal(t, expand.DefaultNodeSpacing, opts.NodeSpacing)
	assert.Equal(t, expand.DefaultCenterSuffix, opts.CenterSuffix)
	assert.Equal(t, expand.DotsDisabled, opts.Dots)
	assert.Equal(t, EngineNative, opts.Engine)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.Equal(t, DefaultUnit, opts.Unit)
	assert.Empty(t, opts.ExportFile)
}

func TestSetRenderDefaults(t *testing.T) {
	var opts Options
	opts.SetRenderDefaults()
	assert.Equal(t, DefaultEngine, opts.Engine)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.Equal(t, DefaultUnit, opts.Unit)
	assert.NotNil(t, opts.Logger)

	// Explicit values survive
	opts = Options{Engine: EngineGraphviz, Scale: 3, Unit: 50}
	opts.SetRenderDefaults()
	assert.Equal(t, EngineGraphviz, opts.Engine)
	assert.Equal(t, 3.0, opts.Scale)
	assert.Equal(t, 50.0, opts.Unit)
}

func TestValidateForExport(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"defaults", func(*Options) {}, ""},
		{"jpeg alias", func(o *Options) { o.ExportFile = "hmm.jpeg" }, ""},
		{"unsupported extension", func(o *Options) { o.ExportFile = "hmm.gif" }, errors.ErrCodeUnsupportedFormat},
		{"no extension", func(o *Options) { o.ExportFile = "hmm" }, errors.ErrCodeUnsupportedFormat},
		{"path in file name", func(o *Options) { o.ExportFile = "../hmm.svg" }, errors.ErrCodeInvalidPath},
		{"control char in dir", func(o *Options) { o.ExportDir = "out\x00" }, errors.ErrCodeInvalidPath},
		{"negative before", func(o *Options) { o.SliceBefore = -1 }, errors.ErrCodeInvalidParameter},
		{"negative after", func(o *Options) { o.SliceAfter = -1 }, errors.ErrCodeInvalidParameter},
		{"zero spacing", func(o *Options) { o.NodeSpacing = 0 }, errors.ErrCodeInvalidParameter},
		{"unknown dots", func(o *Options) { o.Dots = expand.DotsConfig(42) }, errors.ErrCodeInvalidParameter},
		{"unknown engine", func(o *Options) { o.Engine = "cairo" }, errors.ErrCodeInvalidParameter},
		{"negative scale", func(o *Options) { o.Scale = -2 }, errors.ErrCodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.ValidateForExport()
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestValidateForExportDefaultFile(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.ValidateForExport())
	assert.Equal(t, DefaultExportFile, opts.ExportFile)
	assert.Equal(t, "out.pdf", opts.ExportPath())

	opts.ExportDir = "figures"
	assert.Equal(t, filepath.Join("figures", "out.pdf"), opts.ExportPath())
}

func TestApplyModel(t *testing.T) {
	opts, reg := loadHMM(t)
	assert.Equal(t, 4, reg.Len())
	assert.Equal(t, 2, opts.SliceBefore)
	assert.Equal(t, 1, opts.SliceAfter)
	assert.Equal(t, `\tau`, opts.CenterSuffix)
	assert.Equal(t, expand.DotsAuto, opts.Dots)
	assert.Equal(t, "hmm.pdf", opts.ExportFile)
	assert.Equal(t, 1.0, opts.NodeSpacing, "unset fields keep their value")
}

func TestLoadBytes(t *testing.T) {
	data, err := os.ReadFile(hmmModel)
	require.NoError(t, err)

	m, reg, err := LoadBytes(context.Background(), data, "toml", "posted")
	require.NoError(t, err)
	assert.Equal(t, "posted", m.Name)
	assert.True(t, reg.Has(`\Sigma`))

	_, _, err = LoadBytes(context.Background(), data, "xml", "posted")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedFormat))
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestExportWritesFiles(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(nil, nil, nil)
	dir := filepath.Join(t.TempDir(), "figures", "hmm")

	for _, file := range []string{"hmm.svg", "hmm.json", "hmm.dot"} {
		t.Run(file, func(t *testing.T) {
			o := opts
			o.ExportFile = file
			o.ExportDir = dir

			result, err := runner.Export(context.Background(), reg, o)
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(dir, file))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, file), result.Path)
			assert.Equal(t, len(data), result.Bytes)
			assert.Equal(t, FormatOf(file), result.Format)
			assert.False(t, result.CacheHit)
			assert.NotEmpty(t, result.DiagramHash)
			assert.Equal(t, 9, result.Stats.Nodes, "4 X, 4 Y and one Sigma")
			assert.Equal(t, 4, result.Stats.Slices)
		})
	}
}

func TestExportCreatesDirectoryOnce(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(nil, nil, nil)
	opts.ExportDir = filepath.Join(t.TempDir(), "new")
	opts.ExportFile = "hmm.svg"

	first, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.True(t, first.DirCreated)

	second, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.False(t, second.DirCreated)
}

func TestExportRejectsBeforeIO(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(nil, nil, nil)
	dir := filepath.Join(t.TempDir(), "never")
	opts.ExportDir = dir

	for _, file := range []string{"hmm.txt", "hmm.tiff", "../hmm.svg"} {
		opts.ExportFile = file
		_, err := runner.Export(context.Background(), reg, opts)
		require.Error(t, err, file)
		assert.True(t, errors.IsInputError(err), file)
	}

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "export dir must not be created for rejected exports")
}

func TestExportDefaultFileName(t *testing.T) {
	// Validation fills in the fallback name without rendering.
	opts := DefaultOptions()
	opts.ExportDir = t.TempDir()
	require.NoError(t, opts.ValidateForExport())
	assert.Equal(t, filepath.Join(opts.ExportDir, "out.pdf"), opts.ExportPath())
}

func TestExportInvalidTemplate(t *testing.T) {
	reg := dbn.NewRegistry()
	require.NoError(t, reg.Attach(dbn.Template{Name: "X", ParentsNow: []string{"Missing"}}))

	opts := DefaultOptions()
	opts.ExportDir = t.TempDir()
	opts.ExportFile = "x.svg"

	_, err := NewRunner(nil, nil, nil).Export(context.Background(), reg, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTemplate))
}

func TestExportCanceledContext(t *testing.T) {
	opts, reg := loadHMM(t)
	opts.ExportDir = t.TempDir()
	opts.ExportFile = "hmm.svg"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Export(ctx, reg, opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpandAndRenderStopOnDoneContext(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(nil, nil, nil)

	d, err := runner.Expand(context.Background(), reg, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err = runner.Expand(ctx, reg, opts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	opts.NoCache = true
	_, err = runner.Render(ctx, d, FormatSVG, opts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpandRejectsTooManySlices(t *testing.T) {
	opts, reg := loadHMM(t)
	opts.SliceBefore = expand.MaxSlices

	_, err := NewRunner(nil, nil, nil).Expand(context.Background(), reg, opts)
	assert.Equal(t, errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func TestExportCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts, reg := loadHMM(t)
	opts.ExportDir = t.TempDir()
	opts.ExportFile = "hmm.svg"

	first, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Bytes, second.Bytes)
	assert.Equal(t, first.DiagramHash, second.DiagramHash)

	// A different slice count is a different diagram.
	opts.SliceAfter = 3
	third, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	// NoCache bypasses the cache even for a known diagram.
	opts.NoCache = true
	fourth, err := runner.Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.False(t, fourth.CacheHit)
}

// failingCache reports an error on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, os.ErrPermission
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return os.ErrPermission
}
func (failingCache) Delete(context.Context, string) error { return os.ErrPermission }
func (failingCache) Close() error                         { return nil }

func TestRenderIgnoresCacheErrors(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(failingCache{}, nil, nil)

	d, err := runner.Expand(context.Background(), reg, opts)
	require.NoError(t, err)

	data, hit, err := runner.RenderWithCacheInfo(context.Background(), d, FormatSVG, opts)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, bytes.Contains(data, []byte("<svg")))
}

func TestRenderFormats(t *testing.T) {
	opts, reg := loadHMM(t)
	runner := NewRunner(nil, nil, nil)
	d, err := runner.Expand(context.Background(), reg, opts)
	require.NoError(t, err)

	svg, err := runner.Render(context.Background(), d, FormatSVG, opts)
	require.NoError(t, err)
	assert.Contains(t, string(svg), `id="node-Sigma"`)

	dot, err := runner.Render(context.Background(), d, FormatDOT, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "digraph DBN"))

	// DOT and JSON do not depend on the engine.
	opts.Engine = EngineGraphviz
	dot2, err := runner.Render(context.Background(), d, FormatDOT, opts)
	require.NoError(t, err)
	assert.Equal(t, dot, dot2)

	js, err := runner.Render(context.Background(), d, FormatJSON, opts)
	require.NoError(t, err)
	back, err := sink.ReadJSON(js)
	require.NoError(t, err)
	require.Len(t, back.Nodes, len(d.Nodes))
	for i, n := range d.Nodes {
		assert.Equal(t, n.Instance, back.Nodes[i].Instance)
	}
	assert.Equal(t, d.Edges, back.Edges)

	_, err = runner.Render(context.Background(), d, "gif", opts)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedFormat))
}

// recordingHooks counts pipeline hook calls.
type recordingHooks struct {
	observability.NoopPipelineHooks
	expands, renders int
	lastNodes        int
	lastFormat       string
}

func (h *recordingHooks) OnExpandComplete(_ context.Context, nodes, _ int, _ time.Duration, _ error) {
	h.expands++
	h.lastNodes = nodes
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format, _ string, _ int, _ time.Duration, _ error) {
	h.renders++
	h.lastFormat = format
}

func TestExportFiresHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	opts, reg := loadHMM(t)
	opts.ExportDir = t.TempDir()
	opts.ExportFile = "hmm.json"

	_, err := NewRunner(nil, nil, nil).Export(context.Background(), reg, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, hooks.expands)
	assert.Equal(t, 1, hooks.renders)
	assert.Equal(t, 9, hooks.lastNodes)
	assert.Equal(t, FormatJSON, hooks.lastFormat)
}
