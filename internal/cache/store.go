// Package cache persists resolved embed HTML keyed by a normalized URL.
// Entries never expire; a cleared entry is simply re-resolved.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store defines the interface for embed cache persistence.
type Store interface {
	// Get returns the cached HTML for key. A missing entry is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, key string) (html string, ok bool, err error)

	// Put writes or overwrites the entry for key.
	Put(ctx context.Context, key, html string) error
}

// Admin is implemented by stores that support the cache CLI subcommands.
type Admin interface {
	Store
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Location() string
}

// Options selects and configures a backend for Open.
type Options struct {
	Dir        string
	Backend    string // "file" or "sqlite"
	MemorySize int    // entries kept in an in-process LRU; 0 disables it
}

// Open creates the configured store, creating its directory if needed.
// Errors here mean the environment is misconfigured and are fatal to startup.
func Open(opts Options) (Admin, error) {
	var (
		store Admin
		err   error
	)
	switch strings.ToLower(opts.Backend) {
	case "", "file":
		store, err = NewFileStore(opts.Dir)
	case "sqlite":
		store, err = NewSQLiteStore(filepath.Join(opts.Dir, sqliteFile))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if opts.MemorySize > 0 {
		return NewMemoryStore(store, opts.MemorySize)
	}
	return store, nil
}
