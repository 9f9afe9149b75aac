package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid multiple", []string{"svg", "pdf", "png"}, false},
		{"invalid format", []string{"jpeg"}, true},
		{"mixed valid invalid", []string{"svg", "jpeg"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derive from input", "", "graph.json", "graph"},
		{"strip layout suffix", "", "graph.layout.json", "graph"},
		{"output with format ext", "out.svg", "graph.json", "out"},
		{"output without ext", "out", "graph.json", "out"},
		{"output with other ext", "out.data", "graph.json", "out.data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestIsLayoutFile(t *testing.T) {
	dir := t.TempDir()

	layoutPath := filepath.Join(dir, "out.json")
	l := &layout.Layout{
		Nodes: []layout.NodeBox{{ID: "a", Width: 10, Height: 10, Layer: 0}},
	}
	if err := layout.WriteFile(layoutPath, l); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b := graph.NewBuilder()
	if err := b.AddNode(graph.Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	graphPath := filepath.Join(dir, "graph.json")
	if err := graph.WriteGraphFile(g, graphPath); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"layout json", layoutPath, true},
		{"snapshot json", graphPath, false},
		{"layout suffix", filepath.Join(dir, "x.layout.json"), true},
		{"missing file", filepath.Join(dir, "nope.json"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLayoutFile(tt.path); got != tt.want {
				t.Errorf("isLayoutFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSurvivingNodes(t *testing.T) {
	prev := &layout.Layout{
		Nodes: []layout.NodeBox{{ID: "a"}, {ID: "b"}},
	}

	b := graph.NewBuilder()
	for _, id := range []string{"b", "c"} {
		if err := b.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	m := survivingNodes(prev, g)
	if len(m) != 1 {
		t.Fatalf("surviving = %v, want only b", m)
	}
	if old, ok := m.Previous("b"); !ok || old != "b" {
		t.Errorf("b not mapped to itself: %v", m)
	}
	if _, ok := m.Previous("c"); ok {
		t.Error("new node c should not be mapped")
	}
}

func TestSurvivingNodes_NoOverlap(t *testing.T) {
	prev := &layout.Layout{Nodes: []layout.NodeBox{{ID: "x"}}}

	b := graph.NewBuilder()
	if err := b.AddNode(graph.Node{ID: "y"}); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if m := survivingNodes(prev, g); m != nil {
		t.Errorf("surviving = %v, want nil for disjoint snapshots", m)
	}
}

func TestCacheDirPrefersConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/tmp/custom-cache"
	if got := c.cacheDir(); got != "/tmp/custom-cache" {
		t.Errorf("cacheDir() = %q, want configured directory", got)
	}
}

func TestLayoutOptionsCarriesStabilize(t *testing.T) {
	c := New(os.Stderr, LogInfo)

	c.Config.Layout.Stabilize = true
	if c.layoutOptions().NoStabilize {
		t.Error("NoStabilize = true with stabilize enabled in config")
	}

	c.Config.Layout.Stabilize = false
	if !c.layoutOptions().NoStabilize {
		t.Error("NoStabilize = false with stabilize disabled in config")
	}
}
