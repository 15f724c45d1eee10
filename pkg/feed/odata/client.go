// Package odata implements the feed client for v2 (OData/Atom) package
// repositories such as the PowerShell Gallery.
//
// The v2 protocol exposes two search endpoints: Search() for queries that
// may match many packages, and FindPackagesById() for queries scoped to a
// single package. Both serve Atom XML pages with an inline total count;
// the client walks the pages sequentially and hands back the raw page
// bodies (see [github.com/pshelf/pshelf/pkg/feed.Result]).
package odata

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pshelf/pshelf/pkg/feed"
)

// Client talks to a single v2 repository endpoint.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	base      string
	transport *feed.Transport
	logger    *log.Logger
}

// New creates a client for the v2 feed at base, e.g.
// "https://www.powershellgallery.com/api/v2". A nil transport gets a
// default unauthenticated one; a nil logger falls back to log.Default().
func New(base string, transport *feed.Transport, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	if transport == nil {
		transport = feed.NewTransport(nil, nil, logger)
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		transport: transport,
		logger:    logger,
	}
}

// Find implements feed.Client. On a mid-search failure the pages fetched
// so far are returned together with the classified error.
func (c *Client) Find(ctx context.Context, q feed.Query) (feed.Result, error) {
	req, err := buildQuery(c.base, q)
	if err != nil {
		return feed.Result{Format: feed.FormatXML}, err
	}
	kind, _ := q.Kind()

	logger := c.logger.With("op", uuid.NewString(), "kind", string(kind))
	logger.Debug("running feed query", "endpoint", req.endpoint)

	start := time.Now()
	res, err := c.fetchPages(ctx, logger, req, batchSize(kind, q.LatestOnly), q.LatestOnly)
	if err != nil {
		logger.Debug("feed query failed", "pages", len(res.Pages), "err", err)
		return res, err
	}
	logger.Debug("feed query done", "pages", len(res.Pages),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// FindByCommand implements feed.Client. The v2 protocol has no command or
// resource index to search, so this always fails with ErrUnsupported.
func (c *Client) FindByCommand(ctx context.Context, names []string, prerelease bool) (feed.Result, error) {
	return feed.Result{Format: feed.FormatXML},
		fmt.Errorf("%w: command search requires a v3 repository", feed.ErrUnsupported)
}

// Download implements feed.Client. The version must be exact; an empty
// version downloads the latest stable release.
func (c *Client) Download(ctx context.Context, name, version string) (io.ReadCloser, error) {
	if name == "" || strings.Contains(name, "*") {
		return nil, fmt.Errorf("%w: download requires an exact package name", feed.ErrArgument)
	}
	if version != "" {
		v, err := parseVersion(version)
		if err != nil {
			return nil, err
		}
		version = normalized(v)
	}

	c.logger.Debug("downloading package", "op", uuid.NewString(), "name", name, "version", version)
	return c.transport.Get(ctx, contentURL(c.base, name, version))
}

var _ feed.Client = (*Client)(nil)
