package oembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"oembedtag/internal/httputil"
)

// Discovery link types by format.
var discoveryTypes = map[Format][]string{
	FormatJSON: {"application/json+oembed"},
	FormatXML:  {"text/xml+oembed", "application/xml+oembed"},
}

// Discover fetches the page at rawURL and builds a provider from its
// declared oEmbed discovery link. Links in the registry's requested format
// are preferred over the other format.
func (r *Registry) Discover(ctx context.Context, rawURL string) (*Provider, error) {
	doc, err := r.fetchDocument(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	href, format, ok := findDiscoveryLink(doc, r.request.Format)
	if !ok {
		return nil, fetchErr(ErrDiscoveryFailed, rawURL, errors.New("page declares no oEmbed link"))
	}

	endpoint, err := httputil.ResolveReference(rawURL, href)
	if err != nil {
		return nil, fetchErr(ErrDiscoveryFailed, rawURL, fmt.Errorf("bad discovery href %q: %w", href, err))
	}

	p, err := providerFromLink(endpoint, format)
	if err != nil {
		return nil, fetchErr(ErrDiscoveryFailed, rawURL, err)
	}

	r.logger.Debug().Str("url", rawURL).Str("endpoint", p.Endpoint).Str("format", string(format)).Msg("discovered oEmbed provider")
	return p, nil
}

// fetchDocument fetches a URL and parses it into a goquery Document.
func (r *Registry) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := httputil.Get(ctx, r.client, rawURL, httputil.AcceptHTML, r.userAgent)
	if err != nil {
		return nil, fetchErr(ErrNetwork, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: ErrNetwork, URL: rawURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, httputil.MaxBodySize))
	if err != nil {
		return nil, fetchErr(ErrDiscoveryFailed, rawURL, fmt.Errorf("parsing HTML: %w", err))
	}
	return doc, nil
}

// findDiscoveryLink returns the href and format of the first usable
// <link rel="alternate"> oEmbed declaration.
func findDiscoveryLink(doc *goquery.Document, preferred Format) (string, Format, bool) {
	order := []Format{FormatJSON, FormatXML}
	if preferred == FormatXML {
		order = []Format{FormatXML, FormatJSON}
	}

	for _, format := range order {
		for _, typ := range discoveryTypes[format] {
			var href string
			doc.Find(`link[type="` + typ + `"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if !hasRel(s, "alternate") {
					return true
				}
				if v, ok := s.Attr("href"); ok && strings.TrimSpace(v) != "" {
					href = v
					return false
				}
				return true
			})
			if href != "" {
				return href, format, true
			}
		}
	}
	return "", "", false
}

func hasRel(s *goquery.Selection, want string) bool {
	rel, ok := s.Attr("rel")
	if !ok {
		return false
	}
	for _, r := range strings.Fields(rel) {
		if strings.EqualFold(r, want) {
			return true
		}
	}
	return false
}

// providerFromLink splits a discovery href into endpoint and fixed params.
// The href's url parameter becomes the URL requested from the endpoint.
func providerFromLink(href string, format Format) (*Provider, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parsing discovery href: %w", err)
	}

	params := u.Query()
	target := params.Get("url")
	params.Del("url")
	params.Del("format")

	u.RawQuery = ""
	u.Fragment = ""

	p, err := NewProvider(u.Host, u.String())
	if err != nil {
		return nil, err
	}
	p.params = params
	p.target = target
	p.format = format
	return p, nil
}
