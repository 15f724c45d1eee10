package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/feed"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		repoName   string
		prerelease bool
		refresh    bool
		noCache    bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "versions <name>",
		Short: "List all published versions of a package",
		Long: `List every published version of a package, newest first.

Only stable releases are shown by default; --prerelease includes
preview builds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// An unbounded range lists everything the feed has for the name.
			q := feed.Query{Name: args[0], Range: &feed.VersionRange{}, Prerelease: prerelease}
			return c.runVersions(cmd.Context(), q, repoName, refresh, noCache, raw)
		},
	}

	cmd.Flags().StringVarP(&repoName, "repository", "r", "", "repository name (default: highest priority)")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "include prerelease versions")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw response pages instead of a list")

	return cmd
}

// runVersions lists the versions of one package.
func (c *CLI) runVersions(ctx context.Context, q feed.Query, repoName string, refresh, noCache, raw bool) error {
	repo, client, err := c.openClient(repoName)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Listing %s versions...", q.Name))
	spinner.Start()
	result, cached, err := c.findCached(ctx, store, client, repo.URL, q, refresh)
	if err != nil && len(result.Pages) == 0 {
		spinner.StopWithError("Listing failed")
		return err
	}
	spinner.Stop()
	if err != nil {
		printWarning("Partial results: %v", err)
	}

	if raw {
		return c.printResult(result, cached, true)
	}

	entries, parseErr := parseEntries(result.Pages)
	if parseErr != nil {
		printWarning("Some pages could not be parsed: %v", parseErr)
	}
	if len(entries) == 0 {
		printInfo("No versions found")
		return nil
	}

	// The server echoes the canonical spelling of the name.
	printInfo("Versions of %s", StyleHighlight.Render(entries[0].Name))
	for _, e := range entries {
		line := "  " + StyleValue.Render(e.Version)
		if e.Prerelease {
			line += " " + StyleWarning.Render("prerelease")
		}
		fmt.Println(line)
	}
	printResultStats(len(entries), len(result.Pages), cached)
	return nil
}
