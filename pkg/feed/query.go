package feed

import (
	"fmt"
	"strings"
)

// Kind classifies the shape of a search query. Protocol implementations
// key their request construction off the kind.
type Kind string

const (
	KindAll         Kind = "all"          // every package, latest version each
	KindTags        Kind = "tags"         // latest versions filtered by tags
	KindName        Kind = "name"         // latest version of one package
	KindNameTags    Kind = "name-tags"    // latest version of one package, tag-filtered
	KindGlob        Kind = "glob"         // latest versions matching a wildcard name
	KindGlobTags    Kind = "glob-tags"    // wildcard name plus tag filter
	KindVersion     Kind = "version"      // one exact package version
	KindVersionTags Kind = "version-tags" // one exact package version, tag-filtered
	KindRange       Kind = "range"        // all versions of a package within a range
)

// Query describes a package search. The zero value lists every package.
//
// Name may contain "*" wildcards; which pattern shapes are accepted is up
// to the protocol implementation. Version and Range are mutually exclusive
// and both require an exact Name.
type Query struct {
	Name       string
	Tags       []string
	Version    string
	Range      *VersionRange
	Prerelease bool

	// LatestOnly restricts the search to the single newest matching
	// entry instead of aggregating the full result set.
	LatestOnly bool
}

// Kind classifies q into one of the supported query shapes. It fails with
// ErrArgument when the fields cannot be combined, for example a wildcard
// name together with a version range.
func (q Query) Kind() (Kind, error) {
	glob := strings.Contains(q.Name, "*")

	switch {
	case q.Version != "" && q.Range != nil:
		return "", fmt.Errorf("%w: version and version range are mutually exclusive", ErrArgument)
	case (q.Version != "" || q.Range != nil) && q.Name == "":
		return "", fmt.Errorf("%w: version searches require a package name", ErrArgument)
	case (q.Version != "" || q.Range != nil) && glob:
		return "", fmt.Errorf("%w: version searches require an exact package name, not a pattern", ErrArgument)
	case q.Range != nil && len(q.Tags) > 0:
		return "", fmt.Errorf("%w: version ranges cannot be combined with tags", ErrArgument)
	}

	switch {
	case q.Range != nil:
		return KindRange, nil
	case q.Version != "":
		if len(q.Tags) > 0 {
			return KindVersionTags, nil
		}
		return KindVersion, nil
	case glob:
		if len(q.Tags) > 0 {
			return KindGlobTags, nil
		}
		return KindGlob, nil
	case q.Name != "":
		if len(q.Tags) > 0 {
			return KindNameTags, nil
		}
		return KindName, nil
	case len(q.Tags) > 0:
		return KindTags, nil
	default:
		return KindAll, nil
	}
}
