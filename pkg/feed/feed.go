// Package feed defines the repository-facing search API shared by all
// server protocol implementations.
//
// A feed client translates high-level queries (by name, tag, version, or
// wildcard pattern) into protocol-specific requests and aggregates the
// server's paginated responses into raw result pages. Implementations live
// in subpackages, one per wire protocol.
package feed

import (
	"context"
	"io"
)

// Format identifies the wire format of the pages in a Result.
type Format string

const (
	// FormatXML marks pages as Atom/XML documents.
	FormatXML Format = "xml"

	// FormatJSON marks pages as JSON documents.
	FormatJSON Format = "json"
)

// Result holds the raw response pages collected for a query, in fetch
// order. Pages are deliberately left unparsed; callers decode entries in
// whatever depth they need.
type Result struct {
	Pages  []string
	Format Format
}

// Client searches and downloads from a single package repository.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client interface {
	// Find runs a search query and returns the raw response pages.
	// On a mid-search failure the pages fetched so far are returned
	// together with the error.
	Find(ctx context.Context, q Query) (Result, error)

	// FindByCommand looks up packages that export the given command
	// names. Protocols without a command index fail with ErrUnsupported.
	FindByCommand(ctx context.Context, names []string, prerelease bool) (Result, error)

	// Download streams the packaged content for an exact package name.
	// An empty version downloads the latest stable release. The caller
	// must close the returned reader.
	Download(ctx context.Context, name, version string) (io.ReadCloser, error)
}
