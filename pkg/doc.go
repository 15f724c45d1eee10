// Package pkg provides the core libraries for the pshelf gallery client.
//
// # Overview
//
// Pshelf talks to NuGet v2 (OData/Atom) package repositories such as the
// PowerShell Gallery. The pkg directory is organized into four areas:
//
//  1. [feed] - Query model, error taxonomy, HTTP transport, and the v2
//     protocol client in [feed/odata]
//  2. [repository] - Named repository registry persisted as TOML, with
//     environment-based credentials
//  3. [cache] - Response caching (file-backed, Redis, or disabled)
//  4. [buildinfo] - Version metadata injected at build time
//
// # Quick Start
//
// Search a repository and collect the raw response pages:
//
//	client := odata.New("https://www.powershellgallery.com/api/v2", nil, nil)
//	res, err := client.Find(ctx, feed.Query{Name: "Az.*"})
//
// The command layer in internal/cli builds on these packages; nothing in
// pkg depends back on it.
//
// [feed]: https://pkg.go.dev/github.com/pshelf/pshelf/pkg/feed
// [feed/odata]: https://pkg.go.dev/github.com/pshelf/pshelf/pkg/feed/odata
// [repository]: https://pkg.go.dev/github.com/pshelf/pshelf/pkg/repository
// [cache]: https://pkg.go.dev/github.com/pshelf/pshelf/pkg/cache
// [buildinfo]: https://pkg.go.dev/github.com/pshelf/pshelf/pkg/buildinfo
package pkg
