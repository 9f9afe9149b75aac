// Package cli implements the irview command-line interface.
//
// This package provides commands for laying out compiler graph snapshots,
// rendering them to visual formats, serving layouts over HTTP, and watching
// snapshot files for live re-layout. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a hierarchical layout from a graph snapshot
//   - render: Render a snapshot or layout to SVG, DOT, PDF, or PNG
//   - serve: Run the layout service over HTTP
//   - watch: Re-layout a snapshot file whenever it changes
//   - cache: Manage the layout cache
//   - config: Inspect and initialize the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/irview/irview/pkg/buildinfo"
	"github.com/irview/irview/pkg/cache"
	"github.com/irview/irview/pkg/config"
	"github.com/irview/irview/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "irview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Load(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "irview lays out and renders compiler IR graphs",
		Long:         `irview computes hierarchical layouts for compiler IR graph snapshots and renders them as SVG, DOT, PDF, or PNG. Layouts are deterministic and cached, and successive snapshots of the same method keep their node positions stable.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), nil, c.Logger)
}

// newCache builds the cache backend named in the config. Backend failures
// degrade to no caching rather than failing the command.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache()
	case "redis":
		return cache.NewRedisCache(c.Config.Cache.RedisAddr, c.Config.Cache.RedisPassword, c.Config.Cache.RedisDB)
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			dir = config.CacheDir()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "dir", dir, "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// layoutOptions builds pipeline options from config file defaults.
// Flags bind directly into the returned struct and override these.
func (c *CLI) layoutOptions() pipeline.Options {
	lc := c.Config.Layout
	return pipeline.Options{
		NodeGap:       lc.NodeGap,
		LayerGap:      lc.LayerGap,
		MaxLayerGap:   lc.MaxLayerGap,
		GroupPadding:  lc.GroupPadding,
		Sweeps:        lc.Sweeps,
		MaxEdgeSpan:   lc.MaxEdgeSpan,
		BackEdgeStyle: lc.BackEdgeStyle,
		NoStabilize:   !lc.Stabilize,
	}
}
