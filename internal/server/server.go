// Package server exposes the dbnplot pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/render   model file in the body, artifact in the response
//	POST /v1/expand   model file in the body, expanded diagram as JSON
//	GET  /healthz     liveness and build information
//	GET  /metrics     Prometheus metrics (when configured)
//
// The model format is taken from the "model" query parameter, then from the
// Content-Type header, and defaults to TOML. Expansion settings stored in the
// model can be overridden with the query parameters before, after, spacing,
// suffix, dots and margin. /v1/render also accepts format, engine, scale,
// unit and background.
//
// Every response carries an X-Render-ID header with a fresh UUID that also
// appears in the server log. Errors are JSON objects with the machine
// readable code of pkg/errors.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dbnplot/pkg/buildinfo"
	"github.com/matzehuels/dbnplot/pkg/errors"
	"github.com/matzehuels/dbnplot/pkg/pipeline"
)

const (
	// DefaultMaxBodyBytes limits the size of posted model files.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRenderTimeout bounds a single render request.
	DefaultRenderTimeout = 30 * time.Second

	headerRenderID = "X-Render-ID"
	headerCache    = "X-Cache"
)

// Options configures a [Server].
type Options struct {
	// Runner executes the pipeline. Nil means an uncached runner.
	Runner *pipeline.Runner
	// Defaults are the pipeline options every request starts from.
	Defaults pipeline.Options
	// Metrics serves GET /metrics. Nil disables the endpoint.
	Metrics http.Handler
	// Logger receives one line per request. Nil means log.Default().
	Logger *log.Logger

	MaxBodyBytes  int64
	RenderTimeout time.Duration
}

// Server is the dbnplot HTTP API.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	metrics  http.Handler
	logger   *log.Logger

	maxBody int64
	timeout time.Duration
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		runner:   opts.Runner,
		defaults: opts.Defaults,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		maxBody:  opts.MaxBodyBytes,
		timeout:  opts.RenderTimeout,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRenderTimeout
	}
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Post("/render", s.handleRender)
		r.Post("/expand", s.handleExpand)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
	RenderID string      `json:"render_id,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto an HTTP status and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(err)

	id := renderIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "render_id", id, "code", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "render_id", id, "code", code, "err", err)
	}

	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err), RenderID: id})
}

// statusFor returns the HTTP status of err. Input errors are 4xx, everything
// else is a server error.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	if errors.IsInputError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
