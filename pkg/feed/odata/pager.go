package odata

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pshelf/pshelf/pkg/feed"
)

// Batch sizes the gallery protocol pages results in. An unfiltered
// listing pages in large chunks; every other listing uses small pages,
// and a latest-only lookup asks for a single entry.
const (
	pageSizeAll    = 6000
	pageSize       = 100
	pageSizeLatest = 1
)

// batchSize returns the $top value for a query shape.
func batchSize(kind feed.Kind, latestOnly bool) int {
	switch {
	case latestOnly:
		return pageSizeLatest
	case kind == feed.KindAll:
		return pageSizeAll
	default:
		return pageSize
	}
}

// fetchPages runs the paginated fetch loop for req.
//
// The first page's inline count fixes the number of additional pages as
// count/top, computed once against the total; later pages are fetched
// sequentially with $skip advanced by the batch size. The loop stops at
// the first failure and returns the pages collected so far together with
// the error. A latest-only fetch never paginates.
func (c *Client) fetchPages(ctx context.Context, logger *log.Logger, req request, top int, latestOnly bool) (feed.Result, error) {
	res := feed.Result{Format: feed.FormatXML}

	page, err := c.transport.GetString(ctx, pageURL(req, 0, top))
	if err != nil {
		return res, err
	}
	res.Pages = append(res.Pages, page)
	if latestOnly {
		return res, nil
	}

	count, err := extractCount(page)
	if err != nil {
		return res, err
	}
	additional := count / top
	logger.Debug("first page fetched", "count", count, "batch", top, "additional", additional)

	skip := 0
	for range additional {
		skip += top
		page, err := c.transport.GetString(ctx, pageURL(req, skip, top))
		if err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, page)
		logger.Debug("page fetched", "skip", skip)
	}
	return res, nil
}

// pageURL renders the URL for one page of results. Query parameter order
// is kept stable: the builder's parameters first, then ordering, inline
// count, and the paging window.
func pageURL(req request, skip, top int) string {
	var b strings.Builder
	b.WriteString(req.endpoint)

	sep := byte('?')
	write := func(key, value string) {
		b.WriteByte(sep)
		sep = '&'
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	for _, p := range req.params {
		write(p.key, p.value)
	}
	write("$orderby", req.orderBy)
	write("$inlinecount", "allpages")
	write("$skip", strconv.Itoa(skip))
	write("$top", strconv.Itoa(top))
	return b.String()
}
