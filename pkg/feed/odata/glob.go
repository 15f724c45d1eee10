package odata

import (
	"fmt"
	"strings"

	"github.com/pshelf/pshelf/pkg/feed"
)

// globFragments converts a wildcard name pattern into $filter fragments
// against the Id field. The v2 protocol can express four shapes:
//
//	term*        startswith
//	*term        endswith
//	*term*       contains
//	left*right   startswith and endswith
//
// Anything else, including a bare "*", fails with ErrArgument.
func globFragments(pattern string) ([]string, error) {
	var terms []string
	for _, term := range strings.Split(pattern, "*") {
		if term != "" {
			terms = append(terms, term)
		}
	}
	leading := strings.HasPrefix(pattern, "*")
	trailing := strings.HasSuffix(pattern, "*")

	switch {
	case len(terms) == 0:
		return nil, fmt.Errorf("%w: name pattern %q matches every package", feed.ErrArgument, pattern)
	case len(terms) == 1 && leading && trailing:
		return []string{fmt.Sprintf("substringof(%s, Id) eq true", quote(terms[0]))}, nil
	case len(terms) == 1 && trailing:
		return []string{fmt.Sprintf("startswith(Id, %s)", quote(terms[0]))}, nil
	case len(terms) == 1 && leading:
		return []string{fmt.Sprintf("endswith(Id, %s)", quote(terms[0]))}, nil
	case len(terms) == 2 && !leading && !trailing:
		return []string{
			fmt.Sprintf("startswith(Id, %s)", quote(terms[0])),
			fmt.Sprintf("endswith(Id, %s)", quote(terms[1])),
		}, nil
	default:
		return nil, fmt.Errorf("%w: name pattern %q is not supported; use shapes like Az*, *Get, *sql*, or Az*Tools",
			feed.ErrArgument, pattern)
	}
}
