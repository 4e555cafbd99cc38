// Package resolver turns a URL into embed HTML: cache lookup, provider
// match, discovery, then a plain-link fallback. Resolution never fails.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"oembedtag/internal/cache"
	"oembedtag/internal/oembed"
)

// State is a step of the resolution pipeline.
type State int

const (
	StateCacheLookup State = iota
	StateProviderMatch
	StateDiscovery
	StateFallback
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCacheLookup:
		return "cache-lookup"
	case StateProviderMatch:
		return "provider-match"
	case StateDiscovery:
		return "discovery"
	case StateFallback:
		return "fallback"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Providers is the registry capability the resolver needs.
type Providers interface {
	Match(rawURL string) (*oembed.Provider, bool)
	Discover(ctx context.Context, rawURL string) (*oembed.Provider, error)
	FetchHTML(ctx context.Context, p *oembed.Provider, rawURL string) (string, error)
}

// Resolver runs the pipeline against a provider registry and a cache store.
type Resolver struct {
	providers Providers
	store     cache.Store
	logger    zerolog.Logger
	group     singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver. store may be nil when every call disables caching.
func New(providers Providers, store cache.Store, opts ...Option) *Resolver {
	r := &Resolver{
		providers: providers,
		store:     store,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns embed HTML for rawURL, or a hyperlink when no provider
// yields one. With caching disabled the store is never touched.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, caching bool) string {
	if !caching || r.store == nil {
		return r.run(ctx, rawURL, "", false)
	}

	key := cache.Key(rawURL)
	v, _, _ := r.group.Do(key, func() (any, error) {
		return r.run(ctx, rawURL, key, true), nil
	})
	return v.(string)
}

// run walks the states in order; each is attempted at most once.
func (r *Resolver) run(ctx context.Context, rawURL, key string, caching bool) string {
	log := r.logger.With().Str("url", rawURL).Logger()
	if caching {
		log = log.With().Str("key", key).Logger()
	}

	var (
		html  string
		state = StateCacheLookup
		hit   bool
	)
	for state != StateDone {
		log.Debug().Stringer("state", state).Msg("resolving")

		switch state {
		case StateCacheLookup:
			state = StateProviderMatch
			if !caching {
				continue
			}
			cached, ok, err := r.store.Get(ctx, key)
			if err != nil {
				log.Warn().Err(err).Msg("cache read failed")
				continue
			}
			if ok {
				html, hit = cached, true
				state = StateDone
			}

		case StateProviderMatch:
			state = StateDiscovery
			p, ok := r.providers.Match(rawURL)
			if !ok {
				log.Debug().Err(oembed.ErrNoProviderMatch).Msg("no registered provider")
				continue
			}
			fetched, err := r.providers.FetchHTML(ctx, p, rawURL)
			if err != nil {
				log.Debug().Err(err).Str("provider", p.Name).Msg("provider fetch failed")
				continue
			}
			html = fetched
			state = StateDone

		case StateDiscovery:
			state = StateFallback
			p, err := r.providers.Discover(ctx, rawURL)
			if err != nil {
				log.Debug().Err(err).Msg("discovery failed")
				continue
			}
			fetched, err := r.providers.FetchHTML(ctx, p, rawURL)
			if err != nil {
				log.Debug().Err(err).Str("provider", p.Name).Msg("discovered provider fetch failed")
				continue
			}
			html = fetched
			state = StateDone

		case StateFallback:
			html = Link(rawURL)
			state = StateDone
		}
	}

	if caching && !hit {
		if err := r.store.Put(ctx, key, html); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return html
}

var linkEscaper = strings.NewReplacer(`"`, "&#34;", "<", "&lt;", ">", "&gt;")

// Link renders the fallback hyperlink for rawURL.
func Link(rawURL string) string {
	u := linkEscaper.Replace(rawURL)
	return `<a href="` + u + `">` + u + `</a>`
}
