package oembed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"oembedtag/internal/httputil"
)

// DefaultTimeout bounds each outbound request when no client is supplied.
const DefaultTimeout = 5 * time.Second

// Registry holds providers in registration order and performs endpoint
// and discovery requests. It is built once at startup and read
// concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	providers []*Provider

	client    *http.Client
	userAgent string
	request   RequestOptions
	logger    zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used for all outbound requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.client = c }
}

// WithUserAgent sets the User-Agent header for outbound requests.
func WithUserAgent(ua string) Option {
	return func(r *Registry) { r.userAgent = ua }
}

// WithRequestOptions sets the format and size hints sent to endpoints.
func WithRequestOptions(opts RequestOptions) Option {
	return func(r *Registry) { r.request = opts }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		request: RequestOptions{Format: FormatJSON},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = httputil.NewClient(DefaultTimeout)
	}
	return r
}

// Register appends providers. Earlier registrations win ambiguous matches,
// so explicitly configured providers belong before the built-in set.
func (r *Registry) Register(providers ...*Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, providers...)
}

// Providers returns the registered providers in precedence order.
func (r *Registry) Providers() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Provider(nil), r.providers...)
}

// Match returns the first registered provider claiming rawURL.
func (r *Registry) Match(rawURL string) (*Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.Matches(rawURL) {
			return p, true
		}
	}
	return nil, false
}

// Fetch requests rawURL's embed from provider p.
func (r *Registry) Fetch(ctx context.Context, p *Provider, rawURL string) (*Response, error) {
	target := rawURL
	if p.target != "" {
		target = p.target
	}

	endpoint, err := p.RequestURL(target, r.request)
	if err != nil {
		return nil, fetchErr(ErrMalformedResponse, p.Endpoint, err)
	}

	requested := p.formatFor(r.request)
	accept := httputil.AcceptJSON
	if requested == FormatXML {
		accept = httputil.AcceptXML
	}

	r.logger.Debug().Str("provider", p.Name).Str("endpoint", endpoint).Msg("fetching oEmbed")

	resp, err := httputil.Get(ctx, r.client, endpoint, accept, r.userAgent)
	if err != nil {
		return nil, fetchErr(ErrNetwork, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: ErrNetwork, URL: endpoint, Status: resp.StatusCode, Err: statusReason(resp.StatusCode)}
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fetchErr(ErrNetwork, endpoint, err)
	}

	format := formatFromContentType(resp.Header.Get("Content-Type"), requested)
	out, err := decodeResponse(body, format)
	if err != nil {
		return nil, fetchErr(ErrMalformedResponse, endpoint, err)
	}
	return out, nil
}

// FetchHTML is Fetch followed by extracting the embeddable fragment.
func (r *Registry) FetchHTML(ctx context.Context, p *Provider, rawURL string) (string, error) {
	resp, err := r.Fetch(ctx, p, rawURL)
	if err != nil {
		return "", err
	}
	html, err := resp.HTML()
	if err != nil {
		return "", fetchErr(ErrMalformedResponse, p.Endpoint, err)
	}
	return html, nil
}
