package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/irview/irview/pkg/graph"
	"github.com/irview/irview/pkg/layout"
	"github.com/irview/irview/pkg/pipeline"
	"github.com/irview/irview/pkg/render"
)

// watchDebounce coalesces the burst of events an editor emits per save.
const watchDebounce = 100 * time.Millisecond

// watchCommand creates the watch command for live re-layout.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output      string
		noStabilize bool
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "watch [graph.json]",
		Short: "Re-layout a snapshot file whenever it changes",
		Long: `Re-layout a snapshot file whenever it changes.

The watch command monitors a snapshot file and recomputes the layout on every
write, rendering the result as SVG. Successive layouts are stabilized: nodes
that survive between snapshots keep their relative positions, so the picture
doesn't jump around while a compiler dump is being regenerated.

When snapshots arrive faster than layouts complete, older passes are
discarded; the output always reflects the newest snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts, output, noStabilize)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG file (default: <input>.svg)")
	cmd.Flags().BoolVar(&noStabilize, "no-stabilize", !c.Config.Layout.Stabilize, "recompute each layout from scratch")
	bindLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, output string, noStabilize bool) error {
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}

	// Stabilized passes depend on the previous drawing; the cache cannot
	// serve them. Watch mode therefore runs uncached.
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	opts.Logger = c.Logger
	opts.NoStabilize = noStabilize

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: editors and dump tools often
	// replace the file by rename, which drops a file-level watch.
	dir := filepath.Dir(input)
	if err := w.Add(dir); err != nil {
		return err
	}
	target := filepath.Base(input)

	var view pipeline.View
	session := &watchSession{
		cli:    c,
		runner: runner,
		view:   &view,
		input:  input,
		output: output,
	}

	// Initial layout before the first change.
	session.relayout(ctx, opts)

	printInfo("Watching %s", input)
	printDetail("Output: %s", output)

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			go session.relayout(ctx, opts)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		}
	}
}

// watchSession carries the state shared by successive layout passes.
type watchSession struct {
	cli    *CLI
	runner *pipeline.Runner
	view   *pipeline.View
	input  string
	output string
}

// relayout runs one stabilized pass and publishes the result. A pass that
// finishes after a newer one began is discarded without touching the output.
func (s *watchSession) relayout(ctx context.Context, opts pipeline.Options) {
	token := s.view.Begin()

	g, err := graph.ReadGraphFile(s.input)
	if err != nil {
		s.cli.Logger.Warn("snapshot unreadable, keeping previous layout", "err", err)
		return
	}

	prev := s.view.Current()
	if prev != nil && !opts.NoStabilize {
		opts.Previous = prev
		opts.Identity = survivingNodes(prev, g)
	}

	result, err := s.runner.Layout(ctx, g, opts)
	if err != nil {
		s.cli.Logger.Error("layout failed", "err", err)
		return
	}

	if !s.view.Publish(token, result.Layout) {
		s.cli.Logger.Debug("discarding superseded layout", "graph", g.ID())
		return
	}

	svg := render.RenderSVG(result.Layout, render.WithGraph(g), render.WithInteraction())
	if err := os.WriteFile(s.output, svg, 0o644); err != nil {
		s.cli.Logger.Error("write output", "path", s.output, "err", err)
		return
	}
	s.cli.Logger.Info("layout updated",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"layers", result.Stats.Layers)
}

// survivingNodes maps every node present in both the previous layout and the
// new snapshot to itself. Compiler dumps keep stable node IDs across phases,
// so shared IDs are the same program point.
func survivingNodes(prev *layout.Layout, g *graph.Graph) graph.IdentityMap {
	m := make(graph.IdentityMap)
	for _, id := range g.NodeIDs() {
		if _, ok := prev.Node(id); ok {
			m[id] = id
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
