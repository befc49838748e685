package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
)

const examplesDir = "../../examples"

func TestLoadHMMInEveryFormat(t *testing.T) {
	for _, ext := range []string{"toml", "yaml", "hcl", "json"} {
		t.Run(ext, func(t *testing.T) {
			m, err := Load(filepath.Join(examplesDir, "hmm."+ext))
			require.NoError(t, err)

			assert.Equal(t, "hmm", m.Name)
			require.NotNil(t, m.Export.SliceBefore)
			assert.Equal(t, 2, *m.Export.SliceBefore)
			require.NotNil(t, m.Export.CenterSuffix)
			assert.Equal(t, `\tau`, *m.Export.CenterSuffix)
			assert.Equal(t, "hmm.pdf", m.Export.File)

			reg, err := m.Registry()
			require.NoError(t, err)
			require.Equal(t, 4, reg.Len())

			var names []string
			for _, tpl := range reg.Templates() {
				names = append(names, tpl.Name)
			}
			assert.Equal(t, []string{"X", "Y", `\Sigma`, `\pi`}, names)

			y, _ := reg.Get("Y")
			assert.Equal(t, dbn.Observed, y.Type)
			assert.True(t, y.Continuous)
			assert.Equal(t, []string{"X"}, y.ParentsNow)

			opts := expand.DefaultOptions()
			require.NoError(t, m.Export.Apply(&opts))
			assert.Equal(t, expand.DotsAuto, opts.Dots)

			d, err := expand.Expand(reg, opts)
			require.NoError(t, err)
			assert.Len(t, d.NodesFor("X"), 4)
			assert.Len(t, d.NodesFor("Y"), 4)
			assert.Len(t, d.NodesFor(`\Sigma`), 1)
			assert.Empty(t, d.NodesFor(`\pi`))
		})
	}
}

func TestLoadFactorial(t *testing.T) {
	m, err := Load(filepath.Join(examplesDir, "factorial.toml"))
	require.NoError(t, err)

	reg, err := m.Registry()
	require.NoError(t, err)

	b, _ := reg.Get("B")
	fill, ok := b.PlotParams.Get("fill")
	assert.True(t, ok)
	assert.Equal(t, "#eef3ff", fill)

	theta, _ := reg.Get(`\theta`)
	style, _ := theta.LabelParams.Get("font-style")
	assert.Equal(t, "italic", style)

	opts := expand.DefaultOptions()
	require.NoError(t, m.Export.Apply(&opts))
	assert.False(t, opts.Centered())
	assert.Equal(t, expand.DotsOnlyLast, opts.Dots)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		code   errors.Code
	}{
		{"unknown toml key", "[[node]]\nname = \"X\"\ncolour = \"red\"\n", FormatTOML, errors.ErrCodeInvalidInput},
		{"unknown yaml key", "nodes:\n  - name: X\n    colour: red\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"unknown json key", `{"nodes": [{"name": "X", "colour": "red"}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"unknown hcl attribute", "node \"X\" {\n  colour = \"red\"\n}\n", FormatHCL, errors.ErrCodeInvalidInput},
		{"broken toml", "[[node]\n", FormatTOML, errors.ErrCodeInvalidInput},
		{"broken hcl", "node {", FormatHCL, errors.ErrCodeInvalidInput},
		{"unknown format", "", Format("xml"), errors.ErrCodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "got %v", err)
		})
	}
}

func TestParseEmptyDocuments(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML, FormatHCL} {
		m, err := Parse(nil, f)
		require.NoError(t, err, f)
		assert.Empty(t, m.Nodes, f)
	}
}

func TestRegistryErrors(t *testing.T) {
	m := &Model{Nodes: []Node{{Name: "X"}, {Name: "X"}}}
	_, err := m.Registry()
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateName))

	m = &Model{Nodes: []Node{{Name: "X", Type: "latent"}}}
	_, err = m.Registry()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTemplate))
}

func TestExportApplyKeepsUnsetFields(t *testing.T) {
	opts := expand.DefaultOptions()
	require.NoError(t, Export{}.Apply(&opts))
	assert.Equal(t, expand.DefaultOptions(), opts)

	empty := ""
	require.NoError(t, Export{CenterSuffix: &empty}.Apply(&opts))
	assert.False(t, opts.Centered())

	err := Export{Dots: "sometimes"}.Apply(&opts)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.toml":     FormatTOML,
		"a.yml":      FormatYAML,
		"dir/a.YAML": FormatYAML,
		"a.hcl":      FormatHCL,
		"a.json":     FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	for _, bad := range []string{"model", "model.xml"} {
		_, err := FormatFromPath(bad)
		assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedFormat), bad)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadNamesModelAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - name: A\n"), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chain", m.Name)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, "A", m.Nodes[0].Name)
}
