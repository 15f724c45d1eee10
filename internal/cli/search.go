package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/feed"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		repoName   string
		tags       []string
		prerelease bool
		refresh    bool
		noCache    bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "search [pattern]",
		Short: "Search packages by name pattern and tags",
		Long: `Search packages in a repository.

With no pattern every package is listed, one entry per package. A
pattern containing * matches names by wildcard (Az*, *Get, *sql*,
Az*Tools); anything else is an exact name lookup. Tags restrict the
results further.

Examples:
  pshelf search                              # everything
  pshelf search Az*                          # names starting with Az
  pshelf search --tag DSC                    # packages tagged DSC
  pshelf search PowerShellGet --tag Provider # exact name plus tag`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := feed.Query{Tags: tags, Prerelease: prerelease}
			if len(args) == 1 {
				q.Name = args[0]
			}
			return c.runSearch(cmd.Context(), q, repoName, refresh, noCache, raw)
		},
	}

	cmd.Flags().StringVarP(&repoName, "repository", "r", "", "repository name (default: highest priority)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "filter by tag (repeatable)")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "include prerelease versions")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw response pages instead of a table")

	return cmd
}

// runSearch executes the query and renders the aggregated result.
func (c *CLI) runSearch(ctx context.Context, q feed.Query, repoName string, refresh, noCache, raw bool) error {
	repo, client, err := c.openClient(repoName)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Searching %s...", repo.Name))
	spinner.Start()
	result, cached, err := c.findCached(ctx, store, client, repo.URL, q, refresh)
	if err != nil && len(result.Pages) == 0 {
		spinner.StopWithError("Search failed")
		return err
	}
	spinner.Stop()
	if err != nil {
		printWarning("Partial results: %v", err)
	}

	return c.printResult(result, cached, raw)
}

// printResult renders an aggregated result as a table, or dumps the raw
// response pages when asked to.
func (c *CLI) printResult(result feed.Result, cached, raw bool) error {
	if raw {
		for _, page := range result.Pages {
			fmt.Println(page)
		}
		return nil
	}

	entries, err := parseEntries(result.Pages)
	if err != nil {
		printWarning("Some pages could not be parsed: %v", err)
	}
	if len(entries) == 0 {
		printInfo("No packages found")
		return nil
	}

	fmt.Println(renderEntryTable(entries))
	printResultStats(len(entries), len(result.Pages), cached)
	return nil
}
