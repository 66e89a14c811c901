// Package cli implements the meshskel command-line interface.
//
// # Commands
//
//   - skeletonize: split a skeleton record into components and write SWC
//     (and optionally JSON, DOT or SVG) files
//   - info: print a per-component summary table
//   - render: draw one component as a DOT or SVG node-link diagram
//   - serve: run the HTTP API
//   - cache: inspect or clear the artifact cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/meshskel/config.toml (or the file given
// with --config, TOML or YAML), then a .env file and MESHSKEL_* environment
// variables, then command-line flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the command context.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/pkg/buildinfo"
	"github.com/matzehuels/meshskel/pkg/cache"
	"github.com/matzehuels/meshskel/pkg/observability"
	"github.com/matzehuels/meshskel/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "meshskel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
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
		Short:        "meshskel turns mesh skeletons into rooted trees",
		Long:         `meshskel splits skeleton graphs extracted from neuron meshes into connected components, roots each one, and exports SWC morphologies, summaries and node-link diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))
			observability.SetCacheHooks(observability.NewLogHooks(c.Logger))
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/meshskel/config.toml)")

	root.AddCommand(c.skeletonizeCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := cache.Open(ctx, c.Config.cacheConfig(noCache))
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		store = cache.NewNullCache()
	}
	return pipeline.NewRunner(store, c.Config.keyer(), c.Logger), nil
}

// baseOptions returns pipeline options seeded from the config.
func (c *CLI) baseOptions() pipeline.Options {
	label := c.Config.NodeLabel
	ttl, _ := c.Config.ttl()
	return pipeline.Options{
		UseSmoothVertices: c.Config.UseSmoothVertices,
		Scale:             c.Config.XYZScaling,
		Radius:            c.Config.Radius,
		Label:             &label,
		TTL:               ttl,
		Logger:            c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSWC}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
