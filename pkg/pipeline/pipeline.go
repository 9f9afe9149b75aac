// Package pipeline provides the core layout pipeline for irview.
//
// This package implements the complete snapshot → layout computation that
// can be used by CLI, HTTP, and watch components. By centralizing this
// logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// A layout pass runs six stages over a private working structure:
//
//  1. Build: derive the layer graph, setting self-loops aside
//  2. Break cycles: reverse back edges so the graph is acyclic
//  3. Assign layers: longest-path placement with group bands
//  4. Order: weighted-median crossing reduction
//  5. Coordinates: priority-based x, stacked y, group boxes
//  6. Route: polylines for every edge
//
// Each invocation owns its working structure, so a Runner can lay out
// different snapshots concurrently. Cancellation is checked between stages.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Layout(ctx, g, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Layout.Width)
//
// For stabilized successive layouts, pass the previous result and an
// identity map:
//
//	opts.Previous = prev
//	opts.Identity = idmap
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/irview/irview/pkg/cache"
	"github.com/irview/irview/pkg/errors"
	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/hier/coords"
	"github.com/irview/irview/pkg/hier/routing"
	"github.com/irview/irview/pkg/layout"
)

// Defaults applied by [Options.ValidateAndSetDefaults].
const (
	DefaultNodeGap      = coords.DefaultNodeGap
	DefaultLayerGap     = coords.DefaultLayerGap
	DefaultMaxLayerGap  = coords.DefaultMaxLayerGap
	DefaultGroupPadding = coords.DefaultGroupPadding
	DefaultSweeps       = 8

	// DefaultMaxEdgeSpan caps how many layers an edge may be routed
	// through before it is drawn as stubs. Zero would route everything;
	// compiler graphs contain edges spanning hundreds of layers, which
	// dominate crossing reduction for no visual benefit.
	DefaultMaxEdgeSpan = 64
)

// ValidBackEdgeStyles is the set of supported back-edge shapes.
var ValidBackEdgeStyles = map[string]bool{
	routing.StyleCurved:  true,
	routing.StyleStepped: true,
}

// Options contains all configuration for a layout pass.
// This struct supports JSON serialization for HTTP requests.
type Options struct {
	// Spacing options
	NodeGap      float64 `json:"node_gap,omitempty"`
	LayerGap     float64 `json:"layer_gap,omitempty"`
	MaxLayerGap  float64 `json:"max_layer_gap,omitempty"`
	GroupPadding float64 `json:"group_padding,omitempty"`

	// Algorithm options
	Sweeps        int    `json:"sweeps,omitempty"`
	MaxEdgeSpan   int    `json:"max_edge_span,omitempty"`
	BackEdgeStyle string `json:"back_edge_style,omitempty"`

	// FirstLayer and LastLayer pin the named nodes to the outermost
	// layers. Pins that would reverse an edge are ignored; compiler
	// frontends use these for entry and exit blocks.
	FirstLayer []string `json:"first_layer,omitempty"`
	LastLayer  []string `json:"last_layer,omitempty"`

	// NoStabilize disables hint derivation even when Previous and
	// Identity are set.
	NoStabilize bool `json:"no_stabilize,omitempty"`

	// Refresh bypasses the cache for this pass.
	Refresh bool `json:"refresh,omitempty"`

	// Stabilization inputs (not serialized)
	Previous *layout.Layout    `json:"-"`
	Identity graph.IdentityMap `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults. This
// method is idempotent - calling it multiple times has the same effect as
// calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.NodeGap < 0 || o.LayerGap < 0 || o.MaxLayerGap < 0 || o.GroupPadding < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "spacing options must not be negative")
	}
	if o.Sweeps < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "sweeps must not be negative")
	}
	if o.MaxEdgeSpan < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max_edge_span must not be negative")
	}

	if o.NodeGap == 0 {
		o.NodeGap = DefaultNodeGap
	}
	if o.LayerGap == 0 {
		o.LayerGap = DefaultLayerGap
	}
	if o.MaxLayerGap == 0 {
		o.MaxLayerGap = DefaultMaxLayerGap
	}
	if o.MaxLayerGap < o.LayerGap {
		return errors.New(errors.ErrCodeInvalidOptions,
			"max_layer_gap %.1f is below layer_gap %.1f", o.MaxLayerGap, o.LayerGap)
	}
	if o.GroupPadding == 0 {
		o.GroupPadding = DefaultGroupPadding
	}
	if o.Sweeps == 0 {
		o.Sweeps = DefaultSweeps
	}
	if o.MaxEdgeSpan == 0 {
		o.MaxEdgeSpan = DefaultMaxEdgeSpan
	}
	if o.BackEdgeStyle == "" {
		o.BackEdgeStyle = routing.StyleCurved
	}
	if !ValidBackEdgeStyles[o.BackEdgeStyle] {
		return errors.New(errors.ErrCodeInvalidOptions,
			"invalid back_edge_style: %q (must be curved or stepped)", o.BackEdgeStyle)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// keyOpts projects the options onto the cache key fields.
func (o *Options) keyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		NodeGap:       o.NodeGap,
		LayerGap:      o.LayerGap,
		MaxLayerGap:   o.MaxLayerGap,
		GroupPadding:  o.GroupPadding,
		Sweeps:        o.Sweeps,
		MaxEdgeSpan:   o.MaxEdgeSpan,
		BackEdgeStyle: o.BackEdgeStyle,
		FirstLayer:    o.FirstLayer,
		LastLayer:     o.LastLayer,
	}
}

// Result contains the outputs of a layout pass.
type Result struct {
	// Layout is the positioned drawing.
	Layout *layout.Layout

	// GraphHash is the content hash of the snapshot, usable as a cache or
	// identity handle.
	GraphHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool
}
