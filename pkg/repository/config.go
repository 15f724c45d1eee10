package repository

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// configFile is the on-disk shape: a list of [[repository]] tables.
type configFile struct {
	Repositories []Repository `toml:"repository"`
}

// DefaultPath returns the standard location of the repositories file,
// ~/.config/pshelf/repositories.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "pshelf", "repositories.toml"), nil
}

// Load reads the registry from path. An empty path means DefaultPath.
// A missing file yields a registry seeded with PSGallery; it is not
// written until Save is called.
func Load(path string) (*Registry, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{path: path, repos: []Repository{PSGallery}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f configFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Registry{path: path, repos: f.Repositories}, nil
}

// Save writes the registry back to the file it was loaded from.
func (g *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(configFile{Repositories: g.repos}); err != nil {
		return fmt.Errorf("encode repositories: %w", err)
	}
	if err := os.WriteFile(g.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write %s: %w", g.path, err)
	}
	return nil
}

// Path returns the file backing this registry.
func (g *Registry) Path() string {
	return g.path
}
