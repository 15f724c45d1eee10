package odata

import (
	"fmt"
	"strings"
)

// filter accumulates $filter fragments. Fragments are joined with " and "
// when rendered, so a dangling separator cannot be produced regardless of
// the order callers append in.
type filter struct {
	frags []string
}

func (f *filter) add(frag string) {
	f.frags = append(f.frags, frag)
}

func (f *filter) addf(format string, args ...any) {
	f.frags = append(f.frags, fmt.Sprintf(format, args...))
}

func (f *filter) String() string {
	return strings.Join(f.frags, " and ")
}

// quote renders s as an OData string literal. Embedded single quotes are
// doubled per the OData escaping convention.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
