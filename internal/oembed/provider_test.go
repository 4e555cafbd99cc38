package oembed

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Matches(t *testing.T) {
	tw := Twitter()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"https status", "https://twitter.com/user/status/123", true},
		{"http status", "http://twitter.com/user/status/123", true},
		{"https statuses", "https://twitter.com/user/statuses/123", true},
		{"http statuses", "http://twitter.com/user/statuses/123", true},
		{"profile page", "https://twitter.com/user", false},
		{"other host", "https://example.com/user/status/123", false},
		{"host suffix attack", "https://twitter.com.evil.example/user/status/1", false},
		{"subdomain not declared", "https://mobile.twitter.com/user/status/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tw.Matches(tt.url))
		})
	}
}

func TestProvider_SchemeMetacharactersAreLiteral(t *testing.T) {
	p := MustProvider("dots", "https://x.test/oembed", "https://x.test/a.b/*")

	assert.True(t, p.Matches("https://x.test/a.b/c"))
	assert.False(t, p.Matches("https://x.test/aXb/c"), "'.' must not behave as a regexp wildcard")
}

func TestProvider_StarCrossesSlashes(t *testing.T) {
	p := MustProvider("yt", "https://www.youtube.com/oembed", "https://*.youtube.com/watch*")
	assert.True(t, p.Matches("https://www.youtube.com/watch?v=rrsxEGgQDkM"))
	assert.True(t, p.Matches("https://m.youtube.com/watch?v=abc&t=1"))
}

func TestProvider_HostWildcard(t *testing.T) {
	registry := NewDefaultRegistry(nil)

	tests := []struct {
		name     string
		url      string
		provider string
	}{
		{"youtube www", "https://www.youtube.com/watch?v=rrsxEGgQDkM", "YouTube"},
		{"youtube bare host", "https://youtube.com/watch?v=rrsxEGgQDkM", "YouTube"},
		{"flickr bare host", "https://flickr.com/photos/foo/123", "Flickr"},
		{"ted bare host", "https://ted.com/talks/x", "TED"},
		{"ted subdomain", "https://www.ted.com/talks/x", "TED"},
		{"host in path", "https://attacker.test/x.youtube.com/watch", ""},
		{"nested subdomain", "https://a.b.youtube.com/watch?v=1", ""},
		{"suffix host", "https://evilyoutube.com/watch?v=1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := registry.Match(tt.url)
			if tt.provider == "" {
				assert.False(t, ok, "matched %v", p)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.provider, p.Name)
		})
	}
}

func TestProvider_HostStarStaysInHost(t *testing.T) {
	p := MustProvider("any-host", "https://x.test/oembed", "https://*/video/*")

	assert.True(t, p.Matches("https://cdn.x.test/video/1"))
	assert.False(t, p.Matches("https://x.test/a/video/1"), "host '*' must not cross into the path")
}

func TestNewProvider_RequiresEndpoint(t *testing.T) {
	_, err := NewProvider("empty", "")
	assert.Error(t, err)
}

func TestProvider_RequestURL(t *testing.T) {
	p := MustProvider("Vimeo", "https://vimeo.com/api/oembed.{format}", "https://vimeo.com/*")

	got, err := p.RequestURL("https://vimeo.com/76979871", RequestOptions{Format: FormatJSON, MaxWidth: 640})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/api/oembed.json", u.Path)
	assert.Equal(t, "https://vimeo.com/76979871", u.Query().Get("url"))
	assert.Equal(t, "json", u.Query().Get("format"))
	assert.Equal(t, "640", u.Query().Get("maxwidth"))
	assert.Empty(t, u.Query().Get("maxheight"))
}

func TestProvider_RequestURLKeepsEndpointQuery(t *testing.T) {
	p := MustProvider("Fixed", "https://x.test/oembed?key=abc", "https://x.test/*")

	got, err := p.RequestURL("https://x.test/page", RequestOptions{Format: FormatXML})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Query().Get("key"))
	assert.Equal(t, "xml", u.Query().Get("format"))
}

func TestDefaultProviders_Compile(t *testing.T) {
	providers := DefaultProviders()
	require.NotEmpty(t, providers)
	for _, p := range providers {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Schemes, "provider %s claims no URLs", p.Name)
	}
}

func TestNewDefaultRegistry_Precedence(t *testing.T) {
	custom := MustProvider("Mirror", "https://mirror.test/oembed", "https://www.youtube.com/*")
	r := NewDefaultRegistry([]*Provider{custom})

	p, ok := r.Match("https://www.youtube.com/watch?v=abc")
	require.True(t, ok)
	assert.Equal(t, "Mirror", p.Name, "custom providers win over built-ins")

	p, ok = r.Match("https://twitter.com/user/status/123")
	require.True(t, ok)
	assert.Equal(t, "Twitter", p.Name)

	p, ok = r.Match("https://vimeo.com/76979871")
	require.True(t, ok)
	assert.Equal(t, "Vimeo", p.Name)

	_, ok = r.Match("http://example.com/unknown-page")
	assert.False(t, ok)

	names := r.Providers()
	assert.Equal(t, "Mirror", names[0].Name)
	assert.Equal(t, "Twitter", names[1].Name)
}
