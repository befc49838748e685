package server

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/dbnplot/pkg/dbn"
	"github.com/matzehuels/dbnplot/pkg/dbn/expand"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/model"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
	"github.com/matzehuels/dbnplot/pkg/render/sink"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJPG:  "image/jpeg",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// modelTypes maps request media types to model formats.
var modelTypes = map[string]model.Format{
	"application/toml":   model.FormatTOML,
	"application/yaml":   model.FormatYAML,
	"application/x-yaml": model.FormatYAML,
	"text/yaml":          model.FormatYAML,
	"application/json":   model.FormatJSON,
	"application/hcl":    model.FormatHCL,
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, reg, m, err := s.prepare(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
		if m.Export.File != "" {
			format = pipeline.FormatOf(m.Export.File)
		}
	}
	format, err = pipeline.NormalizeFormat(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := applyRenderQuery(&opts, q); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.runner.Expand(r.Context(), reg, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), d, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set(headerCache, cacheStatus)
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	opts, reg, m, err := s.prepare(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.runner.Expand(r.Context(), reg, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(d, sink.WithJSONModel(m.Name))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram"))
		return
	}

	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// prepare reads the posted model, builds its registry and resolves the
// expansion options: server defaults, then the model's export section, then
// query parameters.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (pipeline.Options, *dbn.Registry, *model.Model, error) {
	opts := s.defaults
	opts.Logger = s.logger.With("render_id", renderIDFrom(r.Context()))

	format, err := modelFormat(r)
	if err != nil {
		return opts, nil, nil, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return opts, nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return opts, nil, nil, errors.New(errors.ErrCodeInvalidInput, "request body must contain a model file")
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "model"
	}
	m, reg, err := pipeline.LoadBytes(r.Context(), body, string(format), name)
	if err != nil {
		return opts, nil, nil, err
	}
	if err := opts.ApplyModel(m); err != nil {
		return opts, nil, nil, err
	}
	if err := applyExpandQuery(&opts, r.URL.Query()); err != nil {
		return opts, nil, nil, err
	}
	return opts, reg, m, nil
}

// modelFormat picks the model format from the query or the Content-Type.
func modelFormat(r *http.Request) (model.Format, error) {
	if f := r.URL.Query().Get("model"); f != "" {
		return model.ParseFormat(f)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil {
			if f, ok := modelTypes[mt]; ok {
				return f, nil
			}
		}
	}
	return model.FormatTOML, nil
}

func applyExpandQuery(opts *pipeline.Options, q url.Values) error {
	if err := intParam(q, "before", &opts.SliceBefore); err != nil {
		return err
	}
	if err := intParam(q, "after", &opts.SliceAfter); err != nil {
		return err
	}
	if err := floatParam(q, "spacing", &opts.NodeSpacing); err != nil {
		return err
	}
	if err := floatParam(q, "margin", &opts.Margin); err != nil {
		return err
	}
	if q.Has("suffix") {
		opts.CenterSuffix = q.Get("suffix")
	}
	if q.Has("dots") {
		dots, err := expand.ParseDotsConfig(q.Get("dots"))
		if err != nil {
			return err
		}
		opts.Dots = dots
	}
	return nil
}

func applyRenderQuery(opts *pipeline.Options, q url.Values) error {
	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	if err := floatParam(q, "scale", &opts.Scale); err != nil {
		return err
	}
	return floatParam(q, "unit", &opts.Unit)
}

func intParam(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidParameter, "%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func floatParam(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidParameter, "%s must be a number, got %q", key, v)
	}
	*dst = f
	return nil
}
