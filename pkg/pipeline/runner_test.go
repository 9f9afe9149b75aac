package pipeline

import (
	"context"
	"testing"

	"github.com/irview/irview/pkg/cache"
	"github.com/irview/irview/pkg/graph"
)

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return NewRunner(c, nil, nil)
}

func TestRunner_CacheRoundTrip(t *testing.T) {
	r := newFileRunner(t)
	mk := func() *graph.Graph {
		return buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	}
	ctx := context.Background()

	first, err := r.Layout(ctx, mk(), Options{})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if first.CacheHit {
		t.Error("first pass reported a cache hit")
	}

	second, err := r.Layout(ctx, mk(), Options{})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if !second.CacheHit {
		t.Error("second pass missed the cache")
	}
	if second.GraphHash != first.GraphHash {
		t.Errorf("hashes differ across identical snapshots: %s vs %s",
			first.GraphHash, second.GraphHash)
	}

	for _, b1 := range first.Layout.Nodes {
		b2, ok := second.Layout.Node(b1.ID)
		if !ok || b1 != b2 {
			t.Errorf("cached node %s = %+v, computed %+v", b1.ID, b2, b1)
		}
	}
}

func TestRunner_RefreshBypassesCache(t *testing.T) {
	r := newFileRunner(t)
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	ctx := context.Background()

	if _, err := r.Layout(ctx, g, Options{}); err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	res, err := r.Layout(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if res.CacheHit {
		t.Error("Refresh pass reported a cache hit")
	}
}

func TestRunner_OptionsChangeKey(t *testing.T) {
	r := newFileRunner(t)
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	ctx := context.Background()

	if _, err := r.Layout(ctx, g, Options{}); err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	res, err := r.Layout(ctx, g, Options{NodeGap: 99})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if res.CacheHit {
		t.Error("pass with different spacing hit the default-options entry")
	}
}

func TestRunner_UnchangedSnapshotKeepsLayout(t *testing.T) {
	r := newFileRunner(t)
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	ctx := context.Background()

	base, err := r.Layout(ctx, g, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}

	res, err := r.Layout(ctx, g, Options{
		Previous: base.Layout,
		Identity: graph.SelfIdentity(g),
	})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if res.Layout != base.Layout {
		t.Error("unchanged snapshot did not reuse the previous layout")
	}
}

func TestRunner_StabilizedPassSkipsCacheWrite(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()

	prevGraph := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	base, err := r.Layout(ctx, prevGraph, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}

	// Grown snapshot: the stabilized result depends on base and must not be
	// served to callers that lay the same snapshot out cold.
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	idmap := graph.IdentityMap{"a": "a", "b": "b"}

	stab, err := r.Layout(ctx, g, Options{Previous: base.Layout, Identity: idmap})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if stab.CacheHit {
		t.Error("stabilized pass consulted the cache")
	}

	cold, err := r.Layout(ctx, g, Options{})
	if err != nil {
		t.Fatalf("Layout(): %v", err)
	}
	if cold.CacheHit {
		t.Error("cold pass found an entry the stabilized pass should not have written")
	}
}

func TestRunner_NilCacheDisablesCaching(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := r.Layout(ctx, g, Options{})
		if err != nil {
			t.Fatalf("Layout(): %v", err)
		}
		if res.CacheHit {
			t.Errorf("pass %d hit a null cache", i)
		}
	}
}
