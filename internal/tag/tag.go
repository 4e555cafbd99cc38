// Package tag is the boundary a templating host calls: it pulls the URL
// out of raw tag text and hands it to the resolver.
package tag

import (
	"context"
	"regexp"

	"golang.org/x/sync/errgroup"
)

// Tag names exposed to the host.
const (
	NameCached   = "oembed"
	NameUncached = "oembednocache"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Resolver resolves a URL to HTML and never fails.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string, caching bool) string
}

// Adapter renders one tag form.
type Adapter struct {
	resolver Resolver
	caching  bool
}

// New creates an Adapter. caching selects between the cached and the
// cache-bypassing tag form.
func New(resolver Resolver, caching bool) *Adapter {
	return &Adapter{resolver: resolver, caching: caching}
}

// Caching reports whether the adapter uses the cache.
func (a *Adapter) Caching() bool {
	return a.caching
}

// ExtractURL returns the first http(s) URL in raw.
func ExtractURL(raw string) (string, bool) {
	u := urlPattern.FindString(raw)
	return u, u != ""
}

// Render returns the HTML for the tag text, or "" when it holds no URL.
func (a *Adapter) Render(ctx context.Context, raw string) string {
	u, ok := ExtractURL(raw)
	if !ok {
		return ""
	}
	return a.resolver.Resolve(ctx, u, a.caching)
}

// RenderAll renders many tag texts with at most concurrency in flight.
// Output order matches input order.
func (a *Adapter) RenderAll(ctx context.Context, raws []string, concurrency int) []string {
	out := make([]string, len(raws))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, raw := range raws {
		g.Go(func() error {
			out[i] = a.Render(ctx, raw)
			return nil
		})
	}
	g.Wait()

	return out
}

// Set maps tag names to adapters.
type Set struct {
	adapters map[string]*Adapter
}

// NewSet builds the cached and uncached tag forms over one resolver.
func NewSet(resolver Resolver) *Set {
	return &Set{adapters: map[string]*Adapter{
		NameCached:   New(resolver, true),
		NameUncached: New(resolver, false),
	}}
}

// Lookup returns the adapter registered under name.
func (s *Set) Lookup(name string) (*Adapter, bool) {
	a, ok := s.adapters[name]
	return a, ok
}
