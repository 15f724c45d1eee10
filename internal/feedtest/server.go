// Package feedtest provides an in-memory v2 feed server for tests.
//
// The server understands just enough of the v2 query language to exercise
// clients end to end: exact Id matches, startswith/endswith/substringof,
// NormalizedVersion comparisons, the latest-version flags, and skip/top
// paging with an inline total count. Unknown filter fragments fail the
// request with a 400 so builder regressions surface in tests.
package feedtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	goversion "github.com/hashicorp/go-version"
)

// Package is one package version served by the stub feed.
type Package struct {
	ID               string
	Version          string // normalized version, e.g. "2.2.5" or "3.0.0-beta16"
	Prerelease       bool
	IsLatest         bool   // latest stable version of its package
	IsAbsoluteLatest bool   // latest version including prereleases
	Tags             string // space-separated tag list
	Dependencies     string // wire form "Name:[range]:|Name2::"
	Description      string
	Content          []byte // bytes served from the package content endpoint
}

// Server wraps an httptest server speaking the v2 feed protocol.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	packages []Package
	requests []string
}

// NewServer starts a stub feed serving pkgs. It is shut down automatically
// when the test finishes.
func NewServer(t testing.TB, pkgs ...Package) *Server {
	t.Helper()

	s := &Server{packages: pkgs}
	r := chi.NewRouter()
	r.Get("/Search()", s.handleSearch)
	r.Get("/FindPackagesById()", s.handleFind)
	r.Get("/package/{id}", s.handleContent)
	r.Get("/package/{id}/{version}", s.handleContent)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Requests returns the request URIs seen so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.URL.RequestURI())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.serveQuery(w, r, "")
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	id := unquote(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}
	s.serveQuery(w, r, id)
}

// serveQuery evaluates the filter, sorts, windows by skip/top, and writes
// the Atom page. id restricts matches to one package when non-empty.
func (s *Server) serveQuery(w http.ResponseWriter, r *http.Request, id string) {
	q := r.URL.Query()

	preds, err := parseFilter(q.Get("$filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	pkgs := append([]Package(nil), s.packages...)
	s.mu.Unlock()

	var matches []Package
	for _, p := range pkgs {
		if id != "" && !strings.EqualFold(p.ID, id) {
			continue
		}
		if matchesAll(p, preds) {
			matches = append(matches, p)
		}
	}
	sortMatches(matches, q.Get("$orderby"))

	total := len(matches)
	skip := atoiDefault(q.Get("$skip"), 0)
	top := atoiDefault(q.Get("$top"), total)
	if skip > len(matches) {
		skip = len(matches)
	}
	end := skip + top
	if end > len(matches) {
		end = len(matches)
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	writeFeed(w, total, matches[skip:end])
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	id := chi.URLParam(r, "id")
	version := chi.URLParam(r, "version")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.packages {
		if !strings.EqualFold(p.ID, id) {
			continue
		}
		if version == "" && !p.IsLatest {
			continue
		}
		if version != "" && !strings.EqualFold(p.Version, version) {
			continue
		}
		content := p.Content
		if content == nil {
			content = fmt.Appendf(nil, "nupkg:%s:%s", p.ID, p.Version)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(content)
		return
	}
	http.NotFound(w, r)
}

func matchesAll(p Package, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(p) {
			return false
		}
	}
	return true
}

func sortMatches(pkgs []Package, orderBy string) {
	switch {
	case strings.HasPrefix(orderBy, "NormalizedVersion"):
		sort.SliceStable(pkgs, func(i, j int) bool {
			return compareVersions(pkgs[i].Version, pkgs[j].Version) > 0
		})
	default: // "Id desc"
		sort.SliceStable(pkgs, func(i, j int) bool {
			return strings.ToLower(pkgs[i].ID) > strings.ToLower(pkgs[j].ID)
		})
	}
}

func compareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeFeed(w io.Writer, total int, pkgs []Package) {
	fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>`+"\n")
	fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices" xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">`+"\n")
	fmt.Fprintf(w, "  <m:count>%d</m:count>\n", total)
	for _, p := range pkgs {
		fmt.Fprint(w, "  <entry>\n")
		fmt.Fprintf(w, "    <title type=\"text\">%s</title>\n", escape(p.ID))
		fmt.Fprint(w, "    <m:properties>\n")
		fmt.Fprintf(w, "      <d:Version>%s</d:Version>\n", escape(p.Version))
		fmt.Fprintf(w, "      <d:NormalizedVersion>%s</d:NormalizedVersion>\n", escape(p.Version))
		fmt.Fprintf(w, "      <d:IsPrerelease m:type=\"Edm.Boolean\">%t</d:IsPrerelease>\n", p.Prerelease)
		fmt.Fprintf(w, "      <d:Tags>%s</d:Tags>\n", escape(p.Tags))
		fmt.Fprintf(w, "      <d:Dependencies>%s</d:Dependencies>\n", escape(p.Dependencies))
		fmt.Fprintf(w, "      <d:Description>%s</d:Description>\n", escape(p.Description))
		fmt.Fprint(w, "    </m:properties>\n")
		fmt.Fprint(w, "  </entry>\n")
	}
	fmt.Fprint(w, "</feed>\n")
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return xmlEscaper.Replace(s)
}
