package cli

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Entry is one package record parsed out of a feed response page. The
// feed layer hands back raw pages; this is the thin display-side view
// of them used by the table renderers and the dependency walker.
type Entry struct {
	Name         string
	Version      string
	Prerelease   bool
	Tags         []string
	Description  string
	Dependencies []Dependency
}

// Dependency names a required package and the version range it accepts,
// in the feed's bracket notation ("[1.0.0, 2.0.0)"); empty means any.
type Dependency struct {
	Name  string
	Range string
}

// Atom document shapes for encoding/xml. Field paths match element
// local names, so the m:/d: namespace prefixes do not matter here.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title        string `xml:"title"`
	Version      string `xml:"properties>Version"`
	Normalized   string `xml:"properties>NormalizedVersion"`
	IsPrerelease string `xml:"properties>IsPrerelease"`
	Tags         string `xml:"properties>Tags"`
	Description  string `xml:"properties>Description"`
	Dependencies string `xml:"properties>Dependencies"`
}

// parseEntries extracts package entries from raw response pages, in
// page order. Pages already collected are returned even when a later
// page fails to parse.
func parseEntries(pages []string) ([]Entry, error) {
	var entries []Entry
	for _, page := range pages {
		var f atomFeed
		if err := xml.Unmarshal([]byte(page), &f); err != nil {
			return entries, fmt.Errorf("parse feed page: %w", err)
		}
		for _, e := range f.Entries {
			version := e.Normalized
			if version == "" {
				version = e.Version
			}
			entries = append(entries, Entry{
				Name:         e.Title,
				Version:      version,
				Prerelease:   e.IsPrerelease == "true",
				Tags:         strings.Fields(e.Tags),
				Description:  e.Description,
				Dependencies: parseDependencies(e.Dependencies),
			})
		}
	}
	return entries, nil
}

// parseDependencies splits the feed's dependency property, a |-separated
// list of id:range:framework triples. Framework-only groups have an
// empty id and are skipped.
func parseDependencies(s string) []Dependency {
	var deps []Dependency
	for _, part := range strings.Split(s, "|") {
		fields := strings.Split(part, ":")
		if fields[0] == "" {
			continue
		}
		d := Dependency{Name: fields[0]}
		if len(fields) > 1 {
			d.Range = fields[1]
		}
		deps = append(deps, d)
	}
	return deps
}
