// Package cli implements the spangrid command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/pkg/buildinfo"
	"github.com/matzehuels/spangrid/pkg/cache"
	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/observability"
	"github.com/matzehuels/spangrid/pkg/state"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spangrid"

	// envRedisAddr selects the Redis state store when set.
	envRedisAddr = "SPANGRID_REDIS_ADDR"
)

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

	// redisAddr is bound to the --redis persistent flag.
	redisAddr string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableTracing logs placement, cache and request events at debug level.
func (c *CLI) EnableTracing() {
	observability.NewLogHooks(c.Logger).Install()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spangrid lays out multi-span items in lane grids",
		Long:         `Spangrid places items that span several columns or rows into a fixed number of lanes, the way a virtualized grid does while it scrolls, and can jump straight to any position.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.redisAddr, "redis", os.Getenv(envRedisAddr), "Redis address for saved states and the layout cache (env "+envRedisAddr+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.jumpCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a layout runner for CLI use. With a Redis address the
// layout cache is shared through Redis under the application's key prefix.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*layout.Runner, error) {
	if !noCache && c.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, c.redisAddr)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis layout cache", "addr", c.redisAddr)
		return layout.NewRunner(rc, cache.NewScopedKeyer(nil, appName+":"), c.Logger), nil
	}
	fc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return layout.NewRunner(fc, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the Redis store when an address is configured and the file
// store otherwise.
func (c *CLI) newStore(ctx context.Context) (state.Store, error) {
	if c.redisAddr != "" {
		c.Logger.Debug("using redis state store", "addr", c.redisAddr)
		s, err := state.NewRedisStore(ctx, c.redisAddr)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := state.NewFileStore("")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spangrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// bindGridFlags registers the flags shared by every command that lays out a
// manifest. Zero values defer to the manifest header.
func bindGridFlags(cmd *cobra.Command, opts *layout.Options) {
	cmd.Flags().StringVar(&opts.Orientation, "orientation", "", "scroll axis: vertical, horizontal (default: manifest)")
	cmd.Flags().IntVarP(&opts.Lanes, "lanes", "l", 0, "number of lanes (default: manifest, then 3)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "container width (default: manifest)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "container height (default: manifest)")
}
