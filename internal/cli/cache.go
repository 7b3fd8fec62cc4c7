package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached API responses, datasets and layouts",
		Long: `Remove all entries of the file cache.

Redis entries expire after the configured ttl and are not cleared here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend != config.CacheFile {
				return fmt.Errorf("cache clear supports the file backend only (configured: %s)", c.cfg.Cache.Backend)
			}
			dir, err := c.cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			count, err := countEntries(dir)
			if errors.Is(err, fs.ErrNotExist) || (err == nil && count == 0) {
				printInfo("Cache is empty")
				return nil
			}
			if err != nil {
				return err
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %s", plural(count, "cached entry", "cached entries"))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// countEntries counts regular files below dir.
func countEntries(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, err
	}
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n, err
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cache entries are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.cfg.Cache.Backend {
			case config.CacheRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d %s*\n", c.cfg.Cache.RedisAddr, c.cfg.Cache.RedisDB, c.cfg.Cache.Prefix)
			case config.CacheNone:
				fmt.Fprintln(cmd.OutOrStdout(), "caching disabled")
			default:
				dir, err := c.cfg.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}
