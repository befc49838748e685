package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/internal/config"
	"github.com/matzehuels/dbnplot/pkg/cache"
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
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if c.Config.Cache.Disabled {
				printInfo(out, "Cache is disabled")
				return nil
			}

			ca, err := c.Config.Cache.OpenCache()
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ca.Close()

			clearer, ok := ca.(cache.Clearer)
			if !ok {
				printInfo(out, "Cache backend cannot be cleared")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(out, "Cleared artifact cache")
			printDetail(out, "%s", cacheLocation(c.Config.Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached artifacts are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.Config.Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory or a Redis
// address with its key prefix.
func cacheLocation(cc config.CacheConfig) string {
	if cc.RedisAddr != "" {
		return fmt.Sprintf("redis://%s/%d (prefix %q)", cc.RedisAddr, cc.RedisDB, cc.RedisPrefix)
	}
	return cc.Dir
}
