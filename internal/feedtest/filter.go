package feedtest

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

type predicate func(Package) bool

// parseFilter splits a $filter expression on " and " and compiles each
// fragment into a predicate. Package ids and tags match case-insensitively
// like the real gallery.
func parseFilter(expr string) ([]predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var preds []predicate
	for _, frag := range strings.Split(expr, " and ") {
		pred, err := parseFragment(strings.TrimSpace(frag))
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func parseFragment(frag string) (predicate, error) {
	switch {
	case frag == "IsLatestVersion":
		return func(p Package) bool { return p.IsLatest }, nil

	case frag == "IsAbsoluteLatestVersion":
		return func(p Package) bool { return p.IsAbsoluteLatest }, nil

	case frag == "IsPrerelease eq false":
		return func(p Package) bool { return !p.Prerelease }, nil

	case strings.HasPrefix(frag, "Id eq "):
		want := unquote(strings.TrimPrefix(frag, "Id eq "))
		return func(p Package) bool { return strings.EqualFold(p.ID, want) }, nil

	case strings.HasPrefix(frag, "startswith(Id, ") && strings.HasSuffix(frag, ")"):
		term := fold(unquote(trimAround(frag, "startswith(Id, ", ")")))
		return func(p Package) bool { return strings.HasPrefix(fold(p.ID), term) }, nil

	case strings.HasPrefix(frag, "endswith(Id, ") && strings.HasSuffix(frag, ")"):
		term := fold(unquote(trimAround(frag, "endswith(Id, ", ")")))
		return func(p Package) bool { return strings.HasSuffix(fold(p.ID), term) }, nil

	case strings.HasPrefix(frag, "substringof(") && strings.HasSuffix(frag, ", Id) eq true"):
		term := fold(unquote(trimAround(frag, "substringof(", ", Id) eq true")))
		return func(p Package) bool { return strings.Contains(fold(p.ID), term) }, nil

	case strings.HasPrefix(frag, "substringof(") && strings.HasSuffix(frag, ", Tags) eq true"):
		term := fold(unquote(trimAround(frag, "substringof(", ", Tags) eq true")))
		return func(p Package) bool { return strings.Contains(fold(p.Tags), term) }, nil

	case strings.HasPrefix(frag, "NormalizedVersion "):
		op, quoted, ok := strings.Cut(strings.TrimPrefix(frag, "NormalizedVersion "), " ")
		if !ok {
			return nil, fmt.Errorf("unsupported filter fragment %q", frag)
		}
		switch op {
		case "eq", "ge", "gt", "le", "lt":
		default:
			return nil, fmt.Errorf("unsupported version operator %q", op)
		}
		want, err := goversion.NewVersion(unquote(quoted))
		if err != nil {
			return nil, fmt.Errorf("bad version in fragment %q: %v", frag, err)
		}
		return func(p Package) bool {
			v, err := goversion.NewVersion(p.Version)
			if err != nil {
				return false
			}
			cmp := v.Compare(want)
			switch op {
			case "eq":
				return cmp == 0
			case "ge":
				return cmp >= 0
			case "gt":
				return cmp > 0
			case "le":
				return cmp <= 0
			default: // lt
				return cmp < 0
			}
		}, nil

	default:
		return nil, fmt.Errorf("unsupported filter fragment %q", frag)
	}
}

func trimAround(s, prefix, suffix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix)
}

// unquote strips the surrounding OData string quotes and undoes the
// doubled-quote escaping.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "''", "'")
}

func fold(s string) string {
	return strings.ToLower(s)
}
