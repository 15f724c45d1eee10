package odata

import (
	"fmt"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/pshelf/pshelf/pkg/feed"
)

// parseVersion parses an exact version string, mapping syntax errors onto
// ErrArgument.
func parseVersion(s string) (*goversion.Version, error) {
	v, err := goversion.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", feed.ErrArgument, s, err)
	}
	return v, nil
}

// normalized renders v the way the gallery stores NormalizedVersion:
// at least three numeric segments, a fourth only when non-zero, the
// prerelease label kept, and build metadata dropped.
func normalized(v *goversion.Version) string {
	segs := v.Segments64()
	if len(segs) == 4 && segs[3] == 0 {
		segs = segs[:3]
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = strconv.FormatInt(s, 10)
	}
	out := strings.Join(parts, ".")
	if pre := v.Prerelease(); pre != "" {
		out += "-" + pre
	}
	return out
}

// rangeFragments renders a version interval as NormalizedVersion
// comparisons, low bound first. A nil or unbounded range yields nothing,
// which turns the query into a full version listing.
func rangeFragments(r *feed.VersionRange) []string {
	if r == nil {
		return nil
	}
	var frags []string
	if r.Min != nil {
		op := "gt"
		if r.MinInclusive {
			op = "ge"
		}
		frags = append(frags, fmt.Sprintf("NormalizedVersion %s %s", op, quote(normalized(r.Min))))
	}
	if r.Max != nil {
		op := "lt"
		if r.MaxInclusive {
			op = "le"
		}
		frags = append(frags, fmt.Sprintf("NormalizedVersion %s %s", op, quote(normalized(r.Max))))
	}
	return frags
}
