package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	irerrors "github.com/irview/irview/pkg/errors"
	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/observability"
	"github.com/irview/irview/pkg/pipeline"
	"github.com/irview/irview/pkg/render"
)

// serveCommand creates the serve command running the layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Endpoints:
  POST /v1/layout          compute a layout for a snapshot (JSON body)
  POST /v1/render?format=  render a snapshot to svg or dot
  GET  /healthz            liveness probe
  GET  /metrics            Prometheus metrics (when enabled in config)

Layout options may be passed in the request body under "options".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8317)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	if c.Config.Serve.Metrics {
		hooks := observability.NewPrometheusHooks()
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}

	runner := c.newRunner(noCache)
	defer runner.Cache.Close()

	srv := &layoutServer{runner: runner, cli: c}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/v1/layout", srv.handleLayout)
	r.Post("/v1/render", srv.handleRender)
	r.Get("/healthz", srv.handleHealthz)
	if c.Config.Serve.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", addr, "metrics", c.Config.Serve.Metrics)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// layoutServer holds the HTTP handler dependencies.
type layoutServer struct {
	runner *pipeline.Runner
	cli    *CLI
}

// layoutRequest is the body of POST /v1/layout and /v1/render.
type layoutRequest struct {
	Snapshot graph.Snapshot    `json:"snapshot"`
	Options  *pipeline.Options `json:"options,omitempty"`
}

// layoutResponse is the body of a successful POST /v1/layout.
type layoutResponse struct {
	Layout    json.RawMessage `json:"layout"`
	GraphHash string          `json:"graph_hash"`
	CacheHit  bool            `json:"cache_hit"`
	Stats     statsResponse   `json:"stats"`
}

type statsResponse struct {
	NodeCount  int   `json:"node_count"`
	EdgeCount  int   `json:"edge_count"`
	Layers     int   `json:"layers"`
	Crossings  int   `json:"crossings"`
	Reversed   int   `json:"reversed"`
	Cut        int   `json:"cut"`
	DurationMs int64 `json:"duration_ms"`
}

// POST /v1/layout computes a layout for a snapshot.
func (s *layoutServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, opts, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	data, err := json.Marshal(result.Layout)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Layout:    data,
		GraphHash: result.GraphHash,
		CacheHit:  result.CacheHit,
		Stats: statsResponse{
			NodeCount:  result.Stats.NodeCount,
			EdgeCount:  result.Stats.EdgeCount,
			Layers:     result.Stats.Layers,
			Crossings:  result.Stats.Crossings,
			Reversed:   result.Stats.Reversed,
			Cut:        result.Stats.Cut,
			DurationMs: result.Stats.Total.Milliseconds(),
		},
	})
}

// POST /v1/render renders a snapshot in one round trip.
func (s *layoutServer) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatSVG
	}
	if format != FormatSVG && format != FormatDOT {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q (svg or dot)", format))
		return
	}

	g, opts, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	if format == FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(render.ToDOT(g, render.DOTOptions{})))
		return
	}

	result, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		writeLayoutError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(render.RenderSVG(result.Layout, render.WithGraph(g), render.WithInteraction()))
}

// GET /healthz is the liveness probe.
func (s *layoutServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *layoutServer) decodeRequest(w http.ResponseWriter, r *http.Request) (*graph.Graph, pipeline.Options, bool) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return nil, pipeline.Options{}, false
	}

	g, err := graph.ToGraph(req.Snapshot)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid snapshot: %s", err))
		return nil, pipeline.Options{}, false
	}

	opts := s.cli.layoutOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	opts.Logger = s.cli.Logger
	return g, opts, true
}

// writeLayoutError maps pipeline error codes onto HTTP statuses.
func writeLayoutError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch irerrors.GetCode(err) {
	case irerrors.ErrCodeInvalidOptions, irerrors.ErrCodeInvalidGraph,
		irerrors.ErrCodeInvalidReference, irerrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case irerrors.ErrCodeCancelled:
		status = http.StatusRequestTimeout
	}
	writeError(w, status, irerrors.UserMessage(err))
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
