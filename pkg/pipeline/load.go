package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/model"
	"github.com/matzehuels/dbnplot/pkg/observability"
)

// Load reads a model file and attaches its nodes to a new registry.
func Load(ctx context.Context, path string) (*model.Model, *dbn.Registry, error) {
	format, _ := model.FormatFromPath(path)
	return loadWithHooks(ctx, string(format), func() (*model.Model, error) {
		return model.Load(path)
	})
}

// LoadBytes parses model data in the given format and attaches its nodes to
// a new registry. name becomes the model name.
func LoadBytes(ctx context.Context, data []byte, format, name string) (*model.Model, *dbn.Registry, error) {
	return loadWithHooks(ctx, format, func() (*model.Model, error) {
		m, err := model.ParseNamed(data, model.Format(format), name+"."+format)
		if err != nil {
			return nil, err
		}
		m.Name = name
		return m, nil
	})
}

func loadWithHooks(ctx context.Context, format string, parse func() (*model.Model, error)) (*model.Model, *dbn.Registry, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, format)
	start := time.Now()

	m, err := parse()
	var reg *dbn.Registry
	if err == nil {
		reg, err = m.Registry()
	}

	templates := 0
	if reg != nil {
		templates = reg.Len()
	}
	hooks.OnLoadComplete(ctx, format, templates, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return m, reg, nil
}

// ApplyModel overlays the export settings stored in a model file onto o.
// Callers apply explicit user overrides afterwards.
func (o *Options) ApplyModel(m *model.Model) error {
	eo := o.ExpandOptions()
	if err := m.Export.Apply(&eo); err != nil {
		return err
	}
	o.SetExpandOptions(eo)

	if m.Export.File != "" {
		o.ExportFile = m.Export.File
	}
	if m.Export.Dir != "" {
		o.ExportDir = m.Export.Dir
	}
	return nil
}
