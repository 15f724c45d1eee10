package odata

import (
	"fmt"

	"github.com/pshelf/pshelf/pkg/feed"
)

// request is a fully built search query before pagination parameters are
// applied. params preserves insertion order so built URLs stay stable.
type request struct {
	endpoint string  // absolute URL without a query string
	params   []param // ordered query parameters
	orderBy  string  // $orderby clause, appended with the paging params
}

type param struct {
	key   string
	value string
}

// buildQuery translates q into the endpoint and $filter expression for its
// variant.
//
// Queries that list many packages go through Search() ordered by Id;
// queries scoped to one package go through FindPackagesById() ordered by
// NormalizedVersion, and always carry an exact identity fragment
// (Id eq '<name>') so tag and version fragments cannot widen the match.
func buildQuery(base string, q feed.Query) (request, error) {
	kind, err := q.Kind()
	if err != nil {
		return request{}, err
	}

	var f filter
	switch kind {
	case feed.KindAll, feed.KindTags:
		f.add(latestFragment(q.Prerelease))
		addTagFragments(&f, q.Tags)
		return searchRequest(base, &f, q.Prerelease), nil

	case feed.KindGlob, feed.KindGlobTags:
		globFrags, err := globFragments(q.Name)
		if err != nil {
			return request{}, err
		}
		for _, frag := range globFrags {
			f.add(frag)
		}
		addTagFragments(&f, q.Tags)
		f.add(latestFragment(q.Prerelease))
		return searchRequest(base, &f, q.Prerelease), nil

	case feed.KindName, feed.KindNameTags:
		f.add(latestFragment(q.Prerelease))
		f.addf("Id eq %s", quote(q.Name))
		addTagFragments(&f, q.Tags)
		return packagesByIDRequest(base, q.Name, &f), nil

	case feed.KindVersion, feed.KindVersionTags:
		v, err := parseVersion(q.Version)
		if err != nil {
			return request{}, err
		}
		f.addf("NormalizedVersion eq %s", quote(normalized(v)))
		f.addf("Id eq %s", quote(q.Name))
		addTagFragments(&f, q.Tags)
		return packagesByIDRequest(base, q.Name, &f), nil

	case feed.KindRange:
		for _, frag := range rangeFragments(q.Range) {
			f.add(frag)
		}
		f.addf("Id eq %s", quote(q.Name))
		if !q.Prerelease {
			f.add("IsPrerelease eq false")
		}
		return packagesByIDRequest(base, q.Name, &f), nil

	default:
		return request{}, fmt.Errorf("%w: query kind %q", feed.ErrArgument, kind)
	}
}

// searchRequest shapes a Search() query. The includePrerelease switch is a
// plain query parameter on this endpoint, not a filter fragment.
func searchRequest(base string, f *filter, prerelease bool) request {
	req := request{
		endpoint: base + "/Search()",
		params:   []param{{"$filter", f.String()}},
		orderBy:  "Id desc",
	}
	if prerelease {
		req.params = append(req.params, param{"includePrerelease", "true"})
	}
	return req
}

// packagesByIDRequest shapes a FindPackagesById() query for one package.
func packagesByIDRequest(base, name string, f *filter) request {
	return request{
		endpoint: base + "/FindPackagesById()",
		params: []param{
			{"id", quote(name)},
			{"$filter", f.String()},
		},
		orderBy: "NormalizedVersion desc",
	}
}

// latestFragment selects between the stable-latest and any-latest flags.
func latestFragment(prerelease bool) string {
	if prerelease {
		return "IsAbsoluteLatestVersion"
	}
	return "IsLatestVersion"
}

func addTagFragments(f *filter, tags []string) {
	for _, tag := range tags {
		f.addf("substringof(%s, Tags) eq true", quote(tag))
	}
}
