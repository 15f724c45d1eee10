// Package repository manages the set of configured package repositories.
//
// Repositories are named endpoints persisted in a TOML file under the
// user's config directory. Each entry carries a priority (lower wins),
// a trusted flag, and optional credentials resolved from the
// environment at request time so that secrets never land on disk.
package repository

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pshelf/pshelf/pkg/feed"
	"github.com/pshelf/pshelf/pkg/feed/odata"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when a named repository is not registered.
	ErrNotFound = errors.New("repository not found")

	// ErrExists is returned when registering a name that is already taken.
	ErrExists = errors.New("repository already exists")
)

// DefaultPriority is assigned to repositories registered without an
// explicit priority. Lower values are consulted first.
const DefaultPriority = 50

// PSGallery is the repository every fresh registry starts with.
var PSGallery = Repository{
	Name:     "PSGallery",
	URL:      "https://www.powershellgallery.com/api/v2",
	Priority: DefaultPriority,
}

// Repository describes one configured package feed.
type Repository struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Trusted  bool   `toml:"trusted,omitempty"`
	Priority int    `toml:"priority"`

	// APIVersion selects the protocol client. Empty means v2.
	APIVersion string `toml:"api_version,omitempty"`

	// Username plus SecretEnv selects basic auth; SecretEnv alone selects
	// a bearer token. SecretEnv names an environment variable holding the
	// secret, which is never written to the config file.
	Username  string `toml:"username,omitempty"`
	SecretEnv string `toml:"secret_env,omitempty"`
}

// Client builds the protocol client for this repository. The choice is
// driven by the configured APIVersion, never by probing the endpoint.
func (r Repository) Client(logger *log.Logger) (feed.Client, error) {
	switch strings.ToLower(r.APIVersion) {
	case "", "v2":
		auth, err := r.auth()
		if err != nil {
			return nil, err
		}
		transport := feed.NewTransport(nil, auth, logger)
		return odata.New(r.URL, transport, logger), nil
	case "v3":
		return nil, fmt.Errorf("%w: v3 repositories are not supported", feed.ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: unknown api version %q", feed.ErrArgument, r.APIVersion)
	}
}

// auth resolves the repository credentials from the environment.
func (r Repository) auth() (feed.Auth, error) {
	if r.SecretEnv == "" {
		return nil, nil
	}
	secret := os.Getenv(r.SecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("credential variable %s is not set", r.SecretEnv)
	}
	if r.Username != "" {
		return feed.BasicAuth{Username: r.Username, Password: secret}, nil
	}
	return feed.TokenAuth{Token: secret}, nil
}

func (r Repository) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: repository name is required", feed.ErrArgument)
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: repository url %q must be http(s)", feed.ErrArgument, r.URL)
	}
	return nil
}

// Registry is the loaded collection of repositories.
type Registry struct {
	path  string
	repos []Repository
}

// List returns all repositories sorted by priority, then name.
func (g *Registry) List() []Repository {
	out := make([]Repository, len(g.repos))
	copy(out, g.repos)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get looks up a repository by name, case-insensitively.
func (g *Registry) Get(name string) (Repository, error) {
	for _, r := range g.repos {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return Repository{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Default returns the highest-priority repository.
func (g *Registry) Default() (Repository, error) {
	repos := g.List()
	if len(repos) == 0 {
		return Repository{}, fmt.Errorf("%w: no repositories registered", ErrNotFound)
	}
	return repos[0], nil
}

// Add registers a new repository. The URL loses any trailing slash and
// an unset priority becomes DefaultPriority.
func (g *Registry) Add(r Repository) error {
	r.URL = strings.TrimRight(r.URL, "/")
	if r.Priority == 0 {
		r.Priority = DefaultPriority
	}
	if err := r.validate(); err != nil {
		return err
	}
	if _, err := g.Get(r.Name); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, r.Name)
	}
	g.repos = append(g.repos, r)
	return nil
}

// Remove unregisters a repository by name.
func (g *Registry) Remove(name string) error {
	for i, r := range g.repos {
		if strings.EqualFold(r.Name, name) {
			g.repos = append(g.repos[:i], g.repos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// SetTrusted flips the trusted flag on a registered repository.
func (g *Registry) SetTrusted(name string, trusted bool) error {
	for i, r := range g.repos {
		if strings.EqualFold(r.Name, name) {
			g.repos[i].Trusted = trusted
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}
