package cli

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/pshelf/pshelf/pkg/cache"
	"github.com/pshelf/pshelf/pkg/feed"
)

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		repoName   string
		output     string
		format     string
		depth      int
		prerelease bool
		refresh    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "deps <name> [version]",
		Short: "Resolve and render a package dependency tree",
		Long: `Resolve the dependency tree of a package.

Each dependency is resolved to the newest published version satisfying
its declared range. The tree prints as indented text by default;
--format dot emits Graphviz DOT, --format svg renders it to a file.

Examples:
  pshelf deps Carbon
  pshelf deps PowerShellGet 2.2.5 --depth 3
  pshelf deps Carbon --format svg -o carbon.svg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 2 {
				version = args[1]
			}
			return c.runDeps(cmd.Context(), args[0], version, repoName, output, format, depth, prerelease, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&repoName, "repository", "r", "", "repository name (default: highest priority)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout for tree and dot)")
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: tree, dot, svg")
	cmd.Flags().IntVar(&depth, "depth", 5, "maximum dependency depth")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "allow prerelease versions")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDeps resolves the root package and walks its dependency tree.
func (c *CLI) runDeps(ctx context.Context, name, version, repoName, output, format string, depth int, prerelease, refresh, noCache bool) error {
	if format != "tree" && format != "dot" && format != "svg" {
		return fmt.Errorf("%w: unknown format %q (expected tree, dot, or svg)", feed.ErrArgument, format)
	}
	if strings.Contains(name, "*") {
		return fmt.Errorf("%w: dependency resolution needs an exact package name", feed.ErrArgument)
	}

	repo, client, err := c.openClient(repoName)
	if err != nil {
		return err
	}
	store, err := newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	q := feed.Query{Name: name, Prerelease: prerelease}
	if version != "" {
		q = feed.Query{Name: name, Version: version}
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Resolving dependencies of %s...", name))
	spinner.Start()

	entries, err := c.queryEntries(ctx, store, client, repo.URL, q, refresh)
	if err != nil {
		spinner.StopWithError("Resolve failed")
		return err
	}
	if len(entries) == 0 {
		spinner.StopWithError("Resolve failed")
		return fmt.Errorf("%w: %s in %s", feed.ErrNotFound, name, repo.Name)
	}

	g := c.walkDeps(ctx, store, client, repo.URL, entries[0], depth, prerelease, refresh)
	spinner.Stop()
	for _, w := range g.warnings {
		printWarning("%s", w)
	}

	switch format {
	case "tree":
		printDepTree(g)
		printDetail("%d packages, %d dependencies", len(g.nodes), len(g.edges))
	case "dot":
		if err := writeOutput(output, []byte(g.toDOT())); err != nil {
			return err
		}
	case "svg":
		svg, err := renderSVG(ctx, g.toDOT())
		if err != nil {
			return err
		}
		path := output
		if path == "" {
			path = fmt.Sprintf("%s-deps.svg", entries[0].Name)
		}
		if err := os.WriteFile(path, svg, 0644); err != nil {
			return err
		}
		printSuccess("Rendered dependency tree of %s", entries[0].Name)
		printFile(path)
	}
	return nil
}

// =============================================================================
// Dependency Graph
// =============================================================================

// depGraph is a resolved dependency tree. Nodes are keyed by folded
// package name so differently-cased references collapse into one node.
type depGraph struct {
	root     string
	nodes    map[string]Entry
	edges    []depEdge
	warnings []string
}

type depEdge struct {
	From, To string
}

// walkDeps resolves dependencies breadth-first up to maxDepth levels
// below the root. Unresolvable dependencies stay in the graph as bare
// nodes and a warning is recorded; cycles terminate via the seen set.
func (c *CLI) walkDeps(ctx context.Context, store cache.Cache, client feed.Client, repoURL string, root Entry, maxDepth int, prerelease, refresh bool) *depGraph {
	g := &depGraph{
		root:  root.Name,
		nodes: map[string]Entry{strings.ToLower(root.Name): root},
	}

	type frame struct {
		entry Entry
		depth int
	}
	queue := []frame{{root, 0}}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth >= maxDepth {
			continue
		}

		for _, dep := range f.entry.Dependencies {
			key := strings.ToLower(dep.Name)
			if existing, seen := g.nodes[key]; seen {
				g.edges = append(g.edges, depEdge{From: f.entry.Name, To: existing.Name})
				continue
			}

			resolved, err := c.resolveDependency(ctx, store, client, repoURL, dep, prerelease, refresh)
			if err != nil {
				g.warnings = append(g.warnings, fmt.Sprintf("cannot resolve %s %s: %v", dep.Name, dep.Range, err))
				g.nodes[key] = Entry{Name: dep.Name}
				g.edges = append(g.edges, depEdge{From: f.entry.Name, To: dep.Name})
				continue
			}

			g.nodes[key] = resolved
			g.edges = append(g.edges, depEdge{From: f.entry.Name, To: resolved.Name})
			queue = append(queue, frame{resolved, f.depth + 1})
		}
	}
	return g
}

// resolveDependency finds the newest version satisfying the declared
// range. An empty range means any version.
func (c *CLI) resolveDependency(ctx context.Context, store cache.Cache, client feed.Client, repoURL string, dep Dependency, prerelease, refresh bool) (Entry, error) {
	r := &feed.VersionRange{}
	if dep.Range != "" {
		parsed, err := feed.ParseRange(dep.Range)
		if err != nil {
			return Entry{}, err
		}
		r = parsed
	}

	q := feed.Query{Name: dep.Name, Range: r, Prerelease: prerelease, LatestOnly: true}
	entries, err := c.queryEntries(ctx, store, client, repoURL, q, refresh)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, feed.ErrNotFound
	}
	return entries[0], nil
}

// =============================================================================
// Rendering
// =============================================================================

// printDepTree prints the graph as an indented tree from the root.
// Already-printed packages are not expanded again.
func printDepTree(g *depGraph) {
	children := map[string][]string{}
	for _, e := range g.edges {
		children[strings.ToLower(e.From)] = append(children[strings.ToLower(e.From)], e.To)
	}

	seen := map[string]bool{}
	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		key := strings.ToLower(name)
		entry := g.nodes[key]
		label := entry.Name
		if label == "" {
			label = name
		}

		line := strings.Repeat("  ", depth) + StyleValue.Render(label)
		if entry.Version != "" {
			line += " " + StyleDim.Render(entry.Version)
		}
		fmt.Println(line)

		if seen[key] {
			return
		}
		seen[key] = true
		for _, child := range children[key] {
			walk(child, depth+1)
		}
	}
	walk(g.root, 0)
}

// toDOT converts the graph to Graphviz DOT format.
func (g *depGraph) toDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, key := range slices.Sorted(maps.Keys(g.nodes)) {
		n := g.nodes[key]
		label := n.Name
		if n.Version != "" {
			label += "\n" + n.Version
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.Name, label)
	}

	buf.WriteString("\n")
	for _, e := range g.edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// renderSVG renders a DOT graph to SVG using Graphviz.
func renderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
