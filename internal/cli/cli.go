// Package cli implements the pshelf command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/buildinfo"
	"github.com/pshelf/pshelf/pkg/cache"
	"github.com/pshelf/pshelf/pkg/feed"
	"github.com/pshelf/pshelf/pkg/repository"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pshelf"

	// cacheTTL is how long cached feed responses stay fresh. Gallery
	// listings change slowly; fifteen minutes keeps repeat lookups fast
	// without hiding new releases for long.
	cacheTTL = 15 * time.Minute

	// redisEnv names the optional Redis cache backend. When set, cached
	// responses are shared through Redis instead of the local disk.
	redisEnv = "PSHELF_REDIS_ADDR"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pshelf",
		Short:        "Pshelf searches and downloads packages from PowerShell repositories",
		Long:         `Pshelf is a CLI client for NuGet v2 package repositories such as the PowerShell Gallery. It searches, lists versions, resolves dependency trees, and downloads packages.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.downloadCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.repoCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Repository & Client Factories
// =============================================================================

// openRepository resolves the repository to talk to: the named one, or
// the highest-priority entry when name is empty.
func (c *CLI) openRepository(name string) (repository.Repository, error) {
	reg, err := repository.Load("")
	if err != nil {
		return repository.Repository{}, err
	}
	if name != "" {
		return reg.Get(name)
	}
	return reg.Default()
}

// openClient builds the protocol client for the selected repository.
func (c *CLI) openClient(name string) (repository.Repository, feed.Client, error) {
	repo, err := c.openRepository(name)
	if err != nil {
		return repository.Repository{}, nil, err
	}
	client, err := repo.Client(c.Logger)
	if err != nil {
		return repository.Repository{}, nil, err
	}
	return repo, client, nil
}

func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(redisEnv); addr != "" {
		return cache.NewRedisCache(ctx, addr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Cached Lookups
// =============================================================================

// findCached runs a query through the cache: a fresh hit returns the
// stored pages, otherwise the client fetches and the full result is
// stored. Partial results are never cached.
func (c *CLI) findCached(ctx context.Context, store cache.Cache, client feed.Client, repoURL string, q feed.Query, refresh bool) (feed.Result, bool, error) {
	key := cache.Key("find", repoURL, q.Name, q.Tags, q.Version, rangeKey(q.Range), q.Prerelease, q.LatestOnly)

	if !refresh {
		if data, ok, err := store.Get(ctx, key); err == nil && ok {
			var res feed.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return res, true, nil
			}
		}
	}

	res, err := client.Find(ctx, q)
	if err != nil {
		return res, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := store.Set(ctx, key, data, cacheTTL); err != nil {
			c.Logger.Debug("cache write failed", "err", err)
		}
	}
	return res, false, nil
}

func rangeKey(r *feed.VersionRange) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// queryEntries fetches a query through the cache and parses the
// resulting pages into entries.
func (c *CLI) queryEntries(ctx context.Context, store cache.Cache, client feed.Client, repoURL string, q feed.Query, refresh bool) ([]Entry, error) {
	result, _, err := c.findCached(ctx, store, client, repoURL, q, refresh)
	if err != nil {
		return nil, err
	}
	return parseEntries(result.Pages)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pshelf/).
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
