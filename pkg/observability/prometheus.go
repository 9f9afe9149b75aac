package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements PipelineHooks and CacheHooks on top of
// Prometheus collectors. Metrics register on the default registry; the serve
// command exposes them on /metrics.
type PrometheusHooks struct {
	layoutsStarted   prometheus.Counter
	layoutsCompleted *prometheus.CounterVec
	layoutDuration   prometheus.Histogram
	layoutNodes      prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	rendersCompleted *prometheus.CounterVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec
}

// NewPrometheusHooks creates the collectors. Call once per process;
// promauto panics on duplicate registration.
func NewPrometheusHooks() *PrometheusHooks {
	return &PrometheusHooks{
		layoutsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "irview_layouts_started_total",
			Help: "Total number of layout passes started.",
		}),
		layoutsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "irview_layouts_completed_total",
			Help: "Total number of layout passes completed, labelled by status.",
		}, []string{"status"}),
		layoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "irview_layout_duration_ms",
			Help:    "End-to-end layout pass latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
		}),
		layoutNodes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "irview_layout_nodes",
			Help:    "Node count per layout pass.",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000},
		}),
		stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irview_stage_duration_ms",
			Help:    "Per-stage latency in milliseconds, labelled by stage.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 2500},
		}, []string{"stage"}),
		rendersCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "irview_renders_completed_total",
			Help: "Total number of rendered artifacts, labelled by format and status.",
		}, []string{"format", "status"}),
		cacheOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "irview_cache_operations_total",
			Help: "Cache operations, labelled by key type and outcome.",
		}, []string{"key_type", "outcome"}),
		cacheBytes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "irview_cache_written_bytes_total",
			Help: "Bytes written to the cache, labelled by key type.",
		}, []string{"key_type"}),
	}
}

// OnLayoutStart implements PipelineHooks.
func (p *PrometheusHooks) OnLayoutStart(_ context.Context, _ string, nodeCount int) {
	p.layoutsStarted.Inc()
	p.layoutNodes.Observe(float64(nodeCount))
}

// OnLayoutComplete implements PipelineHooks.
func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	p.layoutsCompleted.WithLabelValues(status(err)).Inc()
	if err == nil {
		p.layoutDuration.Observe(float64(d.Milliseconds()))
	}
}

// OnStage implements PipelineHooks.
func (p *PrometheusHooks) OnStage(_ context.Context, stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// OnRenderComplete implements PipelineHooks.
func (p *PrometheusHooks) OnRenderComplete(_ context.Context, format string, _ time.Duration, err error) {
	p.rendersCompleted.WithLabelValues(format, status(err)).Inc()
}

// OnCacheHit implements CacheHooks.
func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements CacheHooks.
func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements CacheHooks.
func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
)
