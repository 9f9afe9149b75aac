package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer generates cache keys for the pipeline stages. Keys must be pure
// functions of their inputs: the same snapshot and options always map to the
// same key.
type Keyer interface {
	// LayoutKey identifies a layout result by the snapshot's content hash
	// and the layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// RenderKey identifies a rendered artifact by the layout's content hash
	// and the output format.
	RenderKey(layoutHash, format string) string
}

// LayoutKeyOpts holds the option fields that influence a layout result.
type LayoutKeyOpts struct {
	NodeGap       float64  `json:"node_gap"`
	LayerGap      float64  `json:"layer_gap"`
	MaxLayerGap   float64  `json:"max_layer_gap"`
	GroupPadding  float64  `json:"group_padding"`
	Sweeps        int      `json:"sweeps"`
	MaxEdgeSpan   int      `json:"max_edge_span"`
	BackEdgeStyle string   `json:"back_edge_style"`
	FirstLayer    []string `json:"first_layer,omitempty"`
	LastLayer     []string `json:"last_layer,omitempty"`
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// RenderKey generates a key for artifact caching.
func (k *DefaultKeyer) RenderKey(layoutHash, format string) string {
	return hashKey("render", layoutHash, format)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
