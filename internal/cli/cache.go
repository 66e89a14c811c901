package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached artifact bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.cacheConfig(false)
			store, err := cache.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", cfg.Backend, err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("The %s cache holds nothing to clear", cfg.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %s cache", cfg.Backend)
			if cfg.Backend == cache.BackendFile || cfg.Backend == cache.BackendBolt {
				printDetail("Directory: %s", cfg.Dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, c.Config.cacheConfig(false).Dir)
			return nil
		},
	}
}
