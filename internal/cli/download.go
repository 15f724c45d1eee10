package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/cache"
	"github.com/pshelf/pshelf/pkg/feed"
)

// downloadCommand creates the download command.
func (c *CLI) downloadCommand() *cobra.Command {
	var (
		repoName   string
		output     string
		pick       bool
		prerelease bool
		refresh    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "download <name> [version]",
		Short: "Download a package archive (.nupkg)",
		Long: `Download a package archive.

Without a version the latest release is fetched. With --pick an
interactive list of published versions is shown to choose from.

Examples:
  pshelf download Carbon
  pshelf download Carbon 2.2.5 -o /tmp/carbon.nupkg
  pshelf download Carbon --pick`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 2 {
				version = args[1]
			}
			return c.runDownload(cmd.Context(), args[0], version, repoName, output, pick, prerelease, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&repoName, "repository", "r", "", "repository name (default: highest priority)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.<version>.nupkg)")
	cmd.Flags().BoolVar(&pick, "pick", false, "pick the version interactively")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "allow prerelease versions")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDownload resolves the release to fetch and streams it to disk.
// The package is always resolved through the feed first so the file
// name and success message carry the canonical name and version.
func (c *CLI) runDownload(ctx context.Context, name, version, repoName, output string, pick, prerelease, refresh, noCache bool) error {
	if strings.Contains(name, "*") {
		return fmt.Errorf("%w: download needs an exact package name, not a pattern", feed.ErrArgument)
	}

	repo, client, err := c.openClient(repoName)
	if err != nil {
		return err
	}
	if !repo.Trusted {
		printWarning("Repository %s is not trusted", repo.Name)
	}

	store, err := newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	var entry Entry
	if pick {
		picked, err := c.pickVersion(ctx, store, client, repo.URL, name, prerelease, refresh)
		if err != nil {
			return err
		}
		if picked == nil {
			printDetail("No selection made")
			return nil
		}
		entry = *picked
	} else {
		q := feed.Query{Name: name, Prerelease: prerelease}
		if version != "" {
			q = feed.Query{Name: name, Version: version}
		}

		spinner := newSpinner(ctx, fmt.Sprintf("Resolving %s...", name))
		spinner.Start()
		entries, err := c.queryEntries(ctx, store, client, repo.URL, q, refresh)
		if err != nil {
			spinner.StopWithError("Resolve failed")
			return err
		}
		if len(entries) == 0 {
			spinner.StopWithError("Resolve failed")
			if version != "" {
				return fmt.Errorf("%w: %s %s in %s", feed.ErrNotFound, name, version, repo.Name)
			}
			return fmt.Errorf("%w: %s in %s", feed.ErrNotFound, name, repo.Name)
		}
		entry = entries[0]
		spinner.Stop()
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Downloading %s %s...", entry.Name, entry.Version))
	spinner.Start()

	body, err := client.Download(ctx, entry.Name, entry.Version)
	if err != nil {
		spinner.StopWithError("Download failed")
		return err
	}
	defer body.Close()

	path := output
	if path == "" {
		path = fmt.Sprintf("%s.%s.nupkg", entry.Name, entry.Version)
	}
	f, err := os.Create(path)
	if err != nil {
		spinner.StopWithError("Download failed")
		return err
	}
	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		spinner.StopWithError("Download failed")
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Downloaded %s %s", entry.Name, entry.Version))
	printFile(path)
	printDetail("%d bytes", n)
	return nil
}

// pickVersion lists the package's versions and lets the user choose
// one interactively. A nil entry means the picker was dismissed.
func (c *CLI) pickVersion(ctx context.Context, store cache.Cache, client feed.Client, repoURL, name string, prerelease, refresh bool) (*Entry, error) {
	spinner := newSpinner(ctx, fmt.Sprintf("Listing %s versions...", name))
	spinner.Start()
	q := feed.Query{Name: name, Range: &feed.VersionRange{}, Prerelease: prerelease}
	entries, err := c.queryEntries(ctx, store, client, repoURL, q, refresh)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", feed.ErrNotFound, name)
	}

	m := NewVersionPickerModel(entries[0].Name, entries)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	fm, ok := finalModel.(VersionPickerModel)
	if !ok || fm.Selected == nil {
		return nil, nil
	}
	return fm.Selected, nil
}
