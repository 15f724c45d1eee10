package odata

import (
	"fmt"
	"net/url"
)

// contentURL returns the package content endpoint for a name and optional
// exact version. With no version the server redirects to the latest
// stable release.
func contentURL(base, name, version string) string {
	if version == "" {
		return fmt.Sprintf("%s/package/%s", base, url.PathEscape(name))
	}
	return fmt.Sprintf("%s/package/%s/%s", base, url.PathEscape(name), url.PathEscape(version))
}
