package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/feed"
)

// findCommand creates the find command for exact package lookups.
func (c *CLI) findCommand() *cobra.Command {
	var (
		repoName   string
		tags       []string
		prerelease bool
		refresh    bool
		noCache    bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "find <name> [version]",
		Short: "Find a package by exact name, version, or version range",
		Long: `Find a package by its exact name.

Without a version the latest release is returned. A plain version like
2.2.5 looks up that exact release, bracket notation selects a range
("[2.0.0, 3.0.0)"), and * lists every version.

Examples:
  pshelf find Carbon
  pshelf find Carbon 2.2.5
  pshelf find Carbon "[2.0.0, 3.0.0)"
  pshelf find Carbon --prerelease`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := ""
			if len(args) == 2 {
				spec = args[1]
			}
			q, err := findQuery(args[0], spec, tags, prerelease)
			if err != nil {
				return err
			}
			return c.runFind(cmd.Context(), q, repoName, refresh, noCache, raw)
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

// findQuery maps the name and version arguments onto a feed query. A
// bare version is an exact lookup; brackets, parens, or a wildcard
// select a range.
func findQuery(name, spec string, tags []string, prerelease bool) (feed.Query, error) {
	q := feed.Query{Name: name, Tags: tags, Prerelease: prerelease}
	switch {
	case spec == "":
	case strings.ContainsAny(spec, "[]()*"):
		r, err := feed.ParseRange(spec)
		if err != nil {
			return feed.Query{}, err
		}
		q.Range = r
	default:
		q.Version = spec
	}
	return q, nil
}

// runFind executes the lookup. A single match prints as a detail card,
// several matches as a table.
func (c *CLI) runFind(ctx context.Context, q feed.Query, repoName string, refresh, noCache, raw bool) error {
	repo, client, err := c.openClient(repoName)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Finding %s in %s...", q.Name, repo.Name))
	spinner.Start()
	result, cached, err := c.findCached(ctx, store, client, repo.URL, q, refresh)
	if err != nil && len(result.Pages) == 0 {
		spinner.StopWithError("Lookup failed")
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
	switch len(entries) {
	case 0:
		printInfo("No packages found")
		return nil
	case 1:
		printEntryDetail(entries[0])
	default:
		fmt.Println(renderEntryTable(entries))
	}
	printResultStats(len(entries), len(result.Pages), cached)
	return nil
}

// printEntryDetail prints one package as labeled fields.
func printEntryDetail(e Entry) {
	fmt.Println(StyleTitle.Render(e.Name))
	printKeyValue("Version", e.Version)
	if e.Prerelease {
		printKeyValue("Channel", "prerelease")
	}
	if len(e.Tags) > 0 {
		printKeyValue("Tags", strings.Join(e.Tags, ", "))
	}
	if e.Description != "" {
		printKeyValue("Description", truncate(e.Description, 100))
	}
	if len(e.Dependencies) > 0 {
		deps := make([]string, len(e.Dependencies))
		for i, d := range e.Dependencies {
			deps[i] = d.Name
			if d.Range != "" {
				deps[i] += " " + d.Range
			}
		}
		printKeyValue("Dependencies", strings.Join(deps, ", "))
	}
}
