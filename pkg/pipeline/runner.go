package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/irview/irview/pkg/cache"
	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
	"github.com/irview/irview/pkg/observability"
)

// Runner encapsulates layout execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// layout results. Multiple goroutines can safely use the same Runner with
// different snapshots.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Layout computes the layout for a snapshot, consulting the cache first.
//
// Stabilized passes (Previous and Identity set) bypass the cache: their
// result depends on the previous drawing, which the content-addressed key
// cannot capture.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}

	result := &Result{}

	data, err := graph.MarshalContent(g)
	if err != nil {
		return nil, err
	}
	result.GraphHash = cache.Hash(data)

	stabilized := !opts.NoStabilize && opts.Previous != nil && opts.Identity != nil
	key := r.Keyer.LayoutKey(result.GraphHash, opts.keyOpts())

	// An unchanged graph keeps its previous drawing exactly: every node maps
	// to itself and the previous layout covers the same node and edge sets.
	if stabilized && unchanged(g, opts.Previous, opts.Identity) {
		result.Layout = opts.Previous
		result.CacheHit = true
		r.Logger.Debug("snapshot unchanged, reusing previous layout", "graph", g.ID())
		return result, nil
	}

	if !opts.Refresh && !stabilized {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := layout.Read(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				result.Layout = l
				result.CacheHit = true
				r.Logger.Debug("layout cache hit", "graph", g.ID())
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	l, stats, err := Compute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats = stats

	r.Logger.Info("computed layout",
		"graph", g.ID(),
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"layers", stats.Layers,
		"crossings", stats.Crossings,
		"duration", time.Since(start))

	if !stabilized {
		if data, err := layout.Marshal(l); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}

	return result, nil
}

// unchanged reports whether the snapshot is the previous one under new IDs
// that all map to themselves.
func unchanged(g *graph.Graph, prev *layout.Layout, idmap graph.IdentityMap) bool {
	if prev.NodeCount() != g.NodeCount() || prev.EdgeCount() != g.EdgeCount() {
		return false
	}
	for _, id := range g.NodeIDs() {
		old, ok := idmap.Previous(id)
		if !ok || old != id {
			return false
		}
		if _, ok := prev.Node(id); !ok {
			return false
		}
	}
	return true
}
