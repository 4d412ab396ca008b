// Package httpapi exposes runs and snapshot rendering over HTTP.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tessera-io/tessera/internal/logging"
	"github.com/tessera-io/tessera/internal/metrics"
	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/render"
	"github.com/tessera-io/tessera/pkg/runbook"
)

//go:embed openapi.yaml
var specFS embed.FS

// Launcher starts a run in the background and returns its ID.
type Launcher interface {
	Start(ctx context.Context, vars map[string]string) string
}

// Config wires the handler's dependencies.
type Config struct {
	Store    ports.RunStore
	Launcher Launcher
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// Server handles the HTTP API.
type Server struct {
	cfg Config
}

// Spec returns the embedded OpenAPI document.
func Spec() []byte {
	data, _ := specFS.ReadFile("openapi.yaml")
	return data
}

// ValidateSpec loads and validates the embedded OpenAPI document. Called at
// startup so a broken spec fails fast, and from tests.
func ValidateSpec(ctx context.Context) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(Spec())
	if err != nil {
		return fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validate openapi spec: %w", err)
	}
	return nil
}

// NewHandler builds the router. The embedded spec is validated on the way.
func NewHandler(ctx context.Context, cfg Config) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if err := ValidateSpec(ctx); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}
	r := chi.NewRouter()

	r.Get("/healthz", s.healthz)
	r.Get("/openapi.yaml", s.spec)
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/runs", s.listRuns)
	r.Post("/runs", s.startRun)
	r.Get("/runs/{runID}", s.getRun)
	r.Delete("/runs/{runID}", s.deleteRun)
	r.Get("/runs/{runID}/log", s.getRunLog)
	r.Post("/render", s.renderSnapshot)

	return r, nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(Spec())
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.internalError(w, "list runs", err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Launcher == nil {
		http.Error(w, "no runbook configured", http.StatusServiceUnavailable)
		return
	}
	var body struct {
		Vars map[string]string `json:"vars"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	runID := s.cfg.Launcher.Start(r.Context(), body.Vars)
	s.cfg.Logger.Info("run started", "run_id", runID, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	state, err := s.cfg.Store.Load(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if err == runbook.ErrRunNotFound {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		s.internalError(w, "load run", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "runID")); err != nil {
		s.internalError(w, "delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getRunLog(w http.ResponseWriter, r *http.Request) {
	state, err := s.cfg.Store.Load(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if err == runbook.ErrRunNotFound {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		s.internalError(w, "load run", err)
		return
	}
	if state.LogPath == "" {
		http.Error(w, "run has no log", http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(state.LogPath)
	if err != nil {
		http.Error(w, "log unavailable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

type renderRequest struct {
	Shape     string `json:"shape"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Wireframe bool   `json:"wireframe"`
	Caption   string `json:"caption"`
}

func (s *Server) renderSnapshot(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	m, ok := mesh.ByName(req.Shape)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown shape %q", req.Shape), http.StatusBadRequest)
		return
	}

	img := render.Snapshot(render.NewScene(m), render.SnapshotOptions{
		Width:     req.Width,
		Height:    req.Height,
		Caption:   req.Caption,
		Wireframe: req.Wireframe,
	})
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RendersTotal.Inc()
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.cfg.Logger.Error("encode snapshot", "error", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	s.cfg.Logger.Error(what, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
