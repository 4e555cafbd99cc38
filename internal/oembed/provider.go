// Package oembed matches URLs to oEmbed providers, discovers providers
// declared by pages, and fetches embeddable HTML from provider endpoints.
package oembed

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Format is the response serialization requested from an endpoint.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Provider is an oEmbed endpoint together with the URL globs it claims.
// A Provider is immutable once constructed.
type Provider struct {
	Name     string
	Endpoint string
	Schemes  []string

	params   url.Values
	target   string
	format   Format
	patterns []*regexp.Regexp
}

// NewProvider compiles schemes into matchers. Every character other than
// '*' is literal; see compileScheme for how '*' behaves in each URL part.
func NewProvider(name, endpoint string, schemes ...string) (*Provider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("provider %q has no endpoint", name)
	}

	p := &Provider{
		Name:     name,
		Endpoint: endpoint,
		Schemes:  append([]string(nil), schemes...),
	}
	for _, s := range schemes {
		re, err := compileScheme(s)
		if err != nil {
			return nil, fmt.Errorf("compiling scheme %q for %s: %w", s, name, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// MustProvider is NewProvider for static provider tables.
func MustProvider(name, endpoint string, schemes ...string) *Provider {
	p, err := NewProvider(name, endpoint, schemes...)
	if err != nil {
		panic(err)
	}
	return p
}

// compileScheme anchors a glob of the form scheme://host/path. A leading
// "*." in the host makes the subdomain optional and any other host '*' stays
// within the host. In the path, '*' matches anything.
func compileScheme(scheme string) (*regexp.Regexp, error) {
	proto, rest, ok := strings.Cut(scheme, "://")
	if !ok {
		return regexp.Compile("^" + globPart(scheme, ".*") + "$")
	}

	host, path := rest, ""
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		host, path = rest[:i], rest[i:]
	}

	hostPrefix := ""
	if strings.HasPrefix(host, "*.") {
		hostPrefix = `([^./]+\.)?`
		host = host[2:]
	}

	return regexp.Compile("^" + globPart(proto, "[a-z]*") + "://" +
		hostPrefix + globPart(host, "[^/?#]*") + globPart(path, ".*") + "$")
}

// globPart quotes s and replaces each '*' with star.
func globPart(s, star string) string {
	parts := strings.Split(s, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, star)
}

// Matches reports whether any of the provider's schemes matches rawURL.
func (p *Provider) Matches(rawURL string) bool {
	for _, re := range p.patterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// formatFor returns the format to request: a discovered provider keeps the
// format its discovery link declared.
func (p *Provider) formatFor(opts RequestOptions) Format {
	switch {
	case p.format != "":
		return p.format
	case opts.Format != "":
		return opts.Format
	}
	return FormatJSON
}

// RequestOptions are the optional consumer parameters of an oEmbed request.
type RequestOptions struct {
	Format    Format
	MaxWidth  int
	MaxHeight int
}

// RequestURL builds the endpoint URL for rawURL: {format} in the endpoint
// is substituted and url/format query parameters are set.
func (p *Provider) RequestURL(rawURL string, opts RequestOptions) (string, error) {
	format := p.formatFor(opts)

	endpoint := strings.ReplaceAll(p.Endpoint, "{format}", string(format))
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}

	q := u.Query()
	for k, vs := range p.params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("url", rawURL)
	q.Set("format", string(format))
	if opts.MaxWidth > 0 {
		q.Set("maxwidth", strconv.Itoa(opts.MaxWidth))
	}
	if opts.MaxHeight > 0 {
		q.Set("maxheight", strconv.Itoa(opts.MaxHeight))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
