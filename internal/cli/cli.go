package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/buildinfo"
	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/config"
	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
	"github.com/matzehuels/tierviz/pkg/pipeline"
	"github.com/matzehuels/tierviz/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tierviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the configuration loaded for the running command.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tierviz lays out scenario outcome charts",
		Long: `Tierviz computes the geometry of water-scenario outcome charts: a tier
grid of unit dots, a treemap and a bar chart. Layouts are written as JSON
documents for a renderer, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tierviz/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.scenariosCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default path when it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
		path = p
	}
	cfg, warnings, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	for _, w := range warnings {
		c.Logger.Warn(w, "file", path)
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", path, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache and
// the COEQWAL client. keyer may be nil.
func (c *CLI) newRunner(ctx context.Context, noCache bool, keyer cache.Keyer) (*pipeline.Runner, *coeqwal.Client, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	client := c.newClient(backend)
	if keyer != nil {
		client.SetKeyer(keyer)
	}

	runner := pipeline.NewRunner(backend, keyer, client, c.Logger)
	runner.LayoutOptions = c.cfg.LayoutOptions()
	runner.TTL = c.cfg.Cache.TTL.Duration
	return runner, client, nil
}

// newClient creates a COEQWAL client from the [api] settings.
func (c *CLI) newClient(backend cache.Cache) *coeqwal.Client {
	client := coeqwal.NewClient(backend, c.cfg.Cache.TTL.Duration)
	client.SetBaseURL(c.cfg.API.BaseURL)
	client.SetHTTPClient(&http.Client{Timeout: c.cfg.API.Timeout.Duration})
	client.SetLogger(c.Logger)
	return client
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.cfg.Cache.RedisAddr,
			Password: c.cfg.Cache.RedisPassword,
			DB:       c.cfg.Cache.RedisDB,
			Prefix:   c.cfg.Cache.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newStore opens the configured layout store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	sc := c.cfg.Store
	switch sc.Backend {
	case config.StoreFile:
		return store.NewFileStore(sc.Dir)
	case config.StoreSQLite:
		return store.NewSQLiteStore(ctx, sc.Path)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoOptions{
			URI:        sc.URI,
			Database:   sc.Database,
			Collection: sc.Collection,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
