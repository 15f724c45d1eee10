package feed

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// VersionRange is an interval over package versions using NuGet bracket
// notation. A nil Min or Max leaves that side unbounded; the zero value
// matches every version.
type VersionRange struct {
	Min          *goversion.Version
	Max          *goversion.Version
	MinInclusive bool
	MaxInclusive bool
}

// ParseRange parses a version range in bracket notation:
//
//	[1.0.0, 2.0.0]   1.0.0 <= v <= 2.0.0
//	(1.0.0, 2.0.0)   1.0.0 <  v <  2.0.0
//	[1.0.0, )        v >= 1.0.0
//	(, 2.0.0]        v <= 2.0.0
//	[1.0.0]          exactly 1.0.0
//	1.0.0            v >= 1.0.0 (bare minimum shorthand)
//	*                every version
//
// Malformed input fails with ErrArgument.
func ParseRange(s string) (*VersionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty version range", ErrArgument)
	}
	if s == "*" {
		return &VersionRange{}, nil
	}

	open := s[0]
	if open != '[' && open != '(' {
		// Bare version: inclusive minimum, no upper bound.
		v, err := goversion.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("%w: version %q: %v", ErrArgument, s, err)
		}
		return &VersionRange{Min: v, MinInclusive: true}, nil
	}

	closing := s[len(s)-1]
	if closing != ']' && closing != ')' {
		return nil, fmt.Errorf("%w: unterminated version range %q", ErrArgument, s)
	}

	r := &VersionRange{
		MinInclusive: open == '[',
		MaxInclusive: closing == ']',
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	switch len(parts) {
	case 1:
		// Exact pin, e.g. [1.0.0].
		if open != '[' || closing != ']' {
			return nil, fmt.Errorf("%w: exact version range %q must use square brackets", ErrArgument, s)
		}
		v, err := goversion.NewVersion(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: version range %q: %v", ErrArgument, s, err)
		}
		r.Min, r.Max = v, v
	case 2:
		if lo := strings.TrimSpace(parts[0]); lo != "" {
			v, err := goversion.NewVersion(lo)
			if err != nil {
				return nil, fmt.Errorf("%w: version range %q: %v", ErrArgument, s, err)
			}
			r.Min = v
		}
		if hi := strings.TrimSpace(parts[1]); hi != "" {
			v, err := goversion.NewVersion(hi)
			if err != nil {
				return nil, fmt.Errorf("%w: version range %q: %v", ErrArgument, s, err)
			}
			r.Max = v
		}
		if r.Min == nil && r.Max == nil {
			return nil, fmt.Errorf("%w: version range %q has no bounds", ErrArgument, s)
		}
	default:
		return nil, fmt.Errorf("%w: version range %q", ErrArgument, s)
	}
	return r, nil
}

// String renders the range in bracket notation using the original bound
// spellings. The unbounded range renders as "*".
func (r *VersionRange) String() string {
	if r.Min == nil && r.Max == nil {
		return "*"
	}
	open, closing := "(", ")"
	if r.MinInclusive {
		open = "["
	}
	if r.MaxInclusive {
		closing = "]"
	}
	var lo, hi string
	if r.Min != nil {
		lo = r.Min.Original()
	}
	if r.Max != nil {
		hi = r.Max.Original()
	}
	return open + lo + ", " + hi + closing
}
