package bank

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed data/*
var builtinFS embed.FS

// SourceBuiltin marks banks compiled into the binary.
const SourceBuiltin = "builtin"

// Registry holds the banks available to the player, keyed by slug.
type Registry struct {
	banks map[string]*Bank

	// Warnings collects per-file load failures from the user bank
	// directory. A broken user file never hides the built-in banks.
	Warnings []error
}

// NewRegistry loads the built-in banks and then every *.json, *.yaml
// and *.yml file in dir. When two banks share a slug the higher version
// wins; on a tie the user file wins. An empty dir skips the user scan,
// and a missing dir is not an error.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{banks: make(map[string]*Bank)}

	if err := r.loadBuiltins(); err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read banks dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if _, err := FormatFromPath(p); err != nil {
			continue
		}
		b, err := LoadFile(p)
		if err != nil {
			r.Warnings = append(r.Warnings, err)
			continue
		}
		r.add(b, true)
	}
	return r, nil
}

func (r *Registry) loadBuiltins() error {
	entries, err := builtinFS.ReadDir("data")
	if err != nil {
		return fmt.Errorf("read builtin banks: %w", err)
	}
	for _, e := range entries {
		name := path.Join("data", e.Name())
		format, err := FormatFromPath(name)
		if err != nil {
			continue
		}
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read builtin bank %s: %w", name, err)
		}
		b, err := Parse(data, format, SourceBuiltin)
		if err != nil {
			return fmt.Errorf("builtin bank %s: %w", name, err)
		}
		r.add(b, false)
	}
	return nil
}

func (r *Registry) add(b *Bank, winsTie bool) {
	cur, ok := r.banks[b.Slug]
	switch {
	case !ok, Newer(b, cur):
		r.banks[b.Slug] = b
	case winsTie && !Newer(cur, b):
		r.banks[b.Slug] = b
	}
}

// Get returns the bank with the given slug.
func (r *Registry) Get(slug string) (*Bank, error) {
	b, ok := r.banks[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return b, nil
}

// List returns all banks sorted by slug.
func (r *Registry) List() []*Bank {
	out := make([]*Bank, 0, len(r.banks))
	for _, b := range r.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Slugs returns the known slugs in sorted order.
func (r *Registry) Slugs() []string {
	list := r.List()
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.Slug
	}
	return out
}
